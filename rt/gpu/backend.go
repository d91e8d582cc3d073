package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

// Resource is a GPU object owned by exactly one wrapper. Its ID is assigned at
// creation and never reused, so a recreated object always has a new ID.
type Resource interface {
	ID() uuid.UUID
	Label() string
	Release()
}

type Buffer interface {
	Resource
	Size() uint64
}

// Texture is a 2D image together with its default full view.
type Texture interface {
	Resource
	Width() uint32
	Height() uint32
}

type BindGroupLayout interface {
	Resource
}

// BindGroup is an immutable binding snapshot.
type BindGroup interface {
	Resource
	// Resources returns the IDs of the bound resources in entry order.
	Resources() []uuid.UUID
}

// Kernel is a compute pipeline together with its shader module and layout.
type Kernel interface {
	Resource
}

// BindGroupEntry binds exactly one of Buffer or Texture.
type BindGroupEntry struct {
	Binding uint32
	Buffer  Buffer
	Texture Texture
}

type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

type KernelDescriptor struct {
	Label      string
	Source     string // WGSL
	EntryPoint string
	Layouts    []BindGroupLayout
}

// DispatchDescriptor describes one compute pass. BindGroups[i] is bound at
// group index i.
type DispatchDescriptor struct {
	Label      string
	Kernel     Kernel
	BindGroups []BindGroup
	X, Y, Z    uint32
}

// Backend creates GPU objects and records work on a device queue. All writes
// and dispatches go through the same ordered queue; Dispatch submits and
// returns without waiting for the GPU.
type Backend interface {
	CreateBuffer(desc *wgpu.BufferDescriptor) (Buffer, error)
	WriteBuffer(buf Buffer, offset uint64, data []byte) error
	CreateTexture(desc *wgpu.TextureDescriptor) (Texture, error)
	CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (BindGroupLayout, error)
	CreateBindGroup(desc *BindGroupDescriptor) (BindGroup, error)
	CreateKernel(desc *KernelDescriptor) (Kernel, error)
	Dispatch(desc *DispatchDescriptor) error
}
