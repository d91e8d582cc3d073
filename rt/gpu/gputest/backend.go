// Package gputest provides an in-memory gpu.Backend for tests. It tracks every
// resource it hands out and rejects any use of a released one, so a stale bind
// group or buffer surfaces as an error instead of undefined GPU behaviour.
package gputest

import (
	"errors"
	"fmt"

	"github.com/gekko3d/tesseracts/rt/gpu"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

var ErrReleased = errors.New("gputest: use of released resource")

type Kind string

const (
	KindBuffer    Kind = "buffer"
	KindTexture   Kind = "texture"
	KindLayout    Kind = "layout"
	KindBindGroup Kind = "bindgroup"
	KindKernel    Kind = "kernel"
)

type resource struct {
	backend  *Backend
	id       uuid.UUID
	label    string
	kind     Kind
	released bool
}

func (r *resource) ID() uuid.UUID { return r.id }
func (r *resource) Label() string { return r.label }
func (r *resource) Released() bool { return r.released }

func (r *resource) Release() {
	if r.released {
		r.backend.DoubleReleases++
		return
	}
	r.released = true
	delete(r.backend.live, r.id)
}

type Buffer struct {
	resource
	Desc wgpu.BufferDescriptor
	Data []byte
}

func (b *Buffer) Size() uint64 { return b.Desc.Size }

type Texture struct {
	resource
	Desc wgpu.TextureDescriptor
}

func (t *Texture) Width() uint32  { return t.Desc.Size.Width }
func (t *Texture) Height() uint32 { return t.Desc.Size.Height }

type BindGroupLayout struct {
	resource
	Desc wgpu.BindGroupLayoutDescriptor
}

type BindGroup struct {
	resource
	Layout  gpu.BindGroupLayout
	Entries []gpu.BindGroupEntry
	ids     []uuid.UUID
}

func (g *BindGroup) Resources() []uuid.UUID { return g.ids }

type Kernel struct {
	resource
	Desc gpu.KernelDescriptor
}

// Write records one WriteBuffer call.
type Write struct {
	Buffer uuid.UUID
	Label  string
	Offset uint64
	Size   int
}

// Dispatch records one submitted compute pass.
type Dispatch struct {
	Label      string
	Kernel     uuid.UUID
	BindGroups []uuid.UUID
	X, Y, Z    uint32
}

// Backend is a fake gpu.Backend. The zero value is not usable; call New.
type Backend struct {
	// Fail, when set, is consulted before every creation; a non-nil result is
	// returned as the creation error.
	Fail func(kind Kind, label string) error

	Created        map[Kind]int
	Writes         []Write
	Dispatches     []Dispatch
	DoubleReleases int

	live map[uuid.UUID]*resource
}

func New() *Backend {
	return &Backend{
		Created: make(map[Kind]int),
		live:    make(map[uuid.UUID]*resource),
	}
}

var _ gpu.Backend = (*Backend)(nil)

func (b *Backend) newResource(kind Kind, label string) (resource, error) {
	if b.Fail != nil {
		if err := b.Fail(kind, label); err != nil {
			return resource{}, err
		}
	}
	b.Created[kind]++
	return resource{backend: b, id: uuid.New(), label: label, kind: kind}, nil
}

func (b *Backend) track(r *resource) {
	b.live[r.id] = r
}

// Live returns the number of created and not yet released resources.
func (b *Backend) Live() int { return len(b.live) }

// LiveOf counts live resources of one kind.
func (b *Backend) LiveOf(kind Kind) int {
	n := 0
	for _, r := range b.live {
		if r.kind == kind {
			n++
		}
	}
	return n
}

// IsLive reports whether the resource with id exists and is not released.
func (b *Backend) IsLive(id uuid.UUID) bool {
	_, ok := b.live[id]
	return ok
}

func (b *Backend) CreateBuffer(desc *wgpu.BufferDescriptor) (gpu.Buffer, error) {
	r, err := b.newResource(KindBuffer, desc.Label)
	if err != nil {
		return nil, err
	}
	buf := &Buffer{resource: r, Desc: *desc, Data: make([]byte, desc.Size)}
	b.track(&buf.resource)
	return buf, nil
}

func (b *Backend) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) error {
	fb, ok := buf.(*Buffer)
	if !ok {
		return fmt.Errorf("gputest: foreign buffer %T", buf)
	}
	if fb.released {
		return fmt.Errorf("write %q: %w", fb.label, ErrReleased)
	}
	if offset+uint64(len(data)) > fb.Desc.Size {
		return fmt.Errorf("gputest: write of %d bytes at %d overflows %q (%d bytes)", len(data), offset, fb.label, fb.Desc.Size)
	}
	copy(fb.Data[offset:], data)
	b.Writes = append(b.Writes, Write{Buffer: fb.id, Label: fb.label, Offset: offset, Size: len(data)})
	return nil
}

func (b *Backend) CreateTexture(desc *wgpu.TextureDescriptor) (gpu.Texture, error) {
	if desc.Size.Width == 0 || desc.Size.Height == 0 {
		return nil, fmt.Errorf("gputest: texture %q has zero extent", desc.Label)
	}
	r, err := b.newResource(KindTexture, desc.Label)
	if err != nil {
		return nil, err
	}
	t := &Texture{resource: r, Desc: *desc}
	b.track(&t.resource)
	return t, nil
}

func (b *Backend) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayout, error) {
	r, err := b.newResource(KindLayout, desc.Label)
	if err != nil {
		return nil, err
	}
	l := &BindGroupLayout{resource: r, Desc: *desc}
	b.track(&l.resource)
	return l, nil
}

func (b *Backend) CreateBindGroup(desc *gpu.BindGroupDescriptor) (gpu.BindGroup, error) {
	if desc.Layout == nil || !b.IsLive(desc.Layout.ID()) {
		return nil, fmt.Errorf("bind group %q layout: %w", desc.Label, ErrReleased)
	}
	ids := make([]uuid.UUID, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		var id uuid.UUID
		switch {
		case e.Buffer != nil:
			id = e.Buffer.ID()
		case e.Texture != nil:
			id = e.Texture.ID()
		default:
			return nil, fmt.Errorf("gputest: bind group %q entry %d is empty", desc.Label, e.Binding)
		}
		if !b.IsLive(id) {
			return nil, fmt.Errorf("bind group %q entry %d: %w", desc.Label, e.Binding, ErrReleased)
		}
		ids = append(ids, id)
	}

	r, err := b.newResource(KindBindGroup, desc.Label)
	if err != nil {
		return nil, err
	}
	g := &BindGroup{resource: r, Layout: desc.Layout, Entries: append([]gpu.BindGroupEntry(nil), desc.Entries...), ids: ids}
	b.track(&g.resource)
	return g, nil
}

func (b *Backend) CreateKernel(desc *gpu.KernelDescriptor) (gpu.Kernel, error) {
	for _, l := range desc.Layouts {
		if l == nil || !b.IsLive(l.ID()) {
			return nil, fmt.Errorf("kernel %q layout: %w", desc.Label, ErrReleased)
		}
	}
	r, err := b.newResource(KindKernel, desc.Label)
	if err != nil {
		return nil, err
	}
	k := &Kernel{resource: r, Desc: *desc}
	b.track(&k.resource)
	return k, nil
}

// Dispatch fails if the kernel, a bind group, or any resource a bind group
// references has been released.
func (b *Backend) Dispatch(desc *gpu.DispatchDescriptor) error {
	if desc.Kernel == nil || !b.IsLive(desc.Kernel.ID()) {
		return fmt.Errorf("dispatch %q kernel: %w", desc.Label, ErrReleased)
	}
	groups := make([]uuid.UUID, 0, len(desc.BindGroups))
	for i, g := range desc.BindGroups {
		if g == nil || !b.IsLive(g.ID()) {
			return fmt.Errorf("dispatch %q group %d: %w", desc.Label, i, ErrReleased)
		}
		for _, id := range g.Resources() {
			if !b.IsLive(id) {
				return fmt.Errorf("dispatch %q group %d resource %s: %w", desc.Label, i, id, ErrReleased)
			}
		}
		groups = append(groups, g.ID())
	}
	b.Dispatches = append(b.Dispatches, Dispatch{
		Label:      desc.Label,
		Kernel:     desc.Kernel.ID(),
		BindGroups: groups,
		X:          desc.X,
		Y:          desc.Y,
		Z:          desc.Z,
	})
	return nil
}

// FailOnce returns a Fail hook that rejects the first creation of kind whose
// label matches, then lets everything through.
func FailOnce(kind Kind, label string, err error) func(Kind, string) error {
	fired := false
	return func(k Kind, l string) error {
		if !fired && k == kind && l == label {
			fired = true
			return err
		}
		return nil
	}
}
