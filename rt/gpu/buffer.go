package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// GrowableBuffer is a GPU buffer that is rewritten in place while the payload
// fits and recreated at exactly the payload size when it does not.
type GrowableBuffer struct {
	backend Backend
	desc    wgpu.BufferDescriptor
	buffer  Buffer
}

// NewGrowableBuffer allocates desc.Size bytes. CopyDst is always added to the
// usage so the buffer can be written through the queue.
func NewGrowableBuffer(backend Backend, desc wgpu.BufferDescriptor) (*GrowableBuffer, error) {
	desc.Usage |= wgpu.BufferUsageCopyDst
	desc.MappedAtCreation = false
	buf, err := backend.CreateBuffer(&desc)
	if err != nil {
		return nil, err
	}
	return &GrowableBuffer{backend: backend, desc: desc, buffer: buf}, nil
}

// SetDataLossy writes data at offset 0. It reports true when the buffer had to
// be recreated, in which case previous contents are gone and every bind group
// referencing the old buffer must be rebuilt.
func (g *GrowableBuffer) SetDataLossy(data []byte) (bool, error) {
	reallocated := false
	if uint64(len(data)) > g.desc.Size {
		if err := g.setSizeLossy(uint64(len(data))); err != nil {
			return false, err
		}
		reallocated = true
	}
	if len(data) > 0 {
		if err := g.backend.WriteBuffer(g.buffer, 0, data); err != nil {
			return reallocated, err
		}
	}
	return reallocated, nil
}

func (g *GrowableBuffer) setSizeLossy(size uint64) error {
	desc := g.desc
	desc.Size = size
	buf, err := g.backend.CreateBuffer(&desc)
	if err != nil {
		return fmt.Errorf("grow %q to %d bytes: %w", desc.Label, size, err)
	}
	g.buffer.Release()
	g.buffer = buf
	g.desc = desc
	return nil
}

// Capacity is the size the current buffer was created with.
func (g *GrowableBuffer) Capacity() uint64 { return g.desc.Size }

func (g *GrowableBuffer) Buffer() Buffer { return g.buffer }

func (g *GrowableBuffer) Release() {
	if g.buffer != nil {
		g.buffer.Release()
		g.buffer = nil
	}
}
