package gpu

import (
	"errors"
	"fmt"

	"github.com/gekko3d/tesseracts/rt/logging"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

var (
	// ErrNoAdapter means no GPU adapter satisfies the requested options.
	ErrNoAdapter = errors.New("gpu: no suitable adapter")

	errForeignResource = errors.New("gpu: resource was not created by this backend")
)

// WgpuBackend implements Backend on a wgpu device.
type WgpuBackend struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue
	Logger logging.Logger
}

func NewWgpuBackend(device *wgpu.Device, logger logging.Logger) *WgpuBackend {
	return &WgpuBackend{
		Device: device,
		Queue:  device.GetQueue(),
		Logger: logging.OrNop(logger),
	}
}

type wgpuBuffer struct {
	id     uuid.UUID
	label  string
	buffer *wgpu.Buffer
}

func (b *wgpuBuffer) ID() uuid.UUID { return b.id }
func (b *wgpuBuffer) Label() string { return b.label }
func (b *wgpuBuffer) Size() uint64  { return b.buffer.GetSize() }
func (b *wgpuBuffer) Release()      { b.buffer.Release() }

type wgpuTexture struct {
	id      uuid.UUID
	label   string
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (t *wgpuTexture) ID() uuid.UUID  { return t.id }
func (t *wgpuTexture) Label() string  { return t.label }
func (t *wgpuTexture) Width() uint32  { return t.texture.GetWidth() }
func (t *wgpuTexture) Height() uint32 { return t.texture.GetHeight() }
func (t *wgpuTexture) Release() {
	t.view.Release()
	t.texture.Release()
}

type wgpuBindGroupLayout struct {
	id     uuid.UUID
	label  string
	layout *wgpu.BindGroupLayout
}

func (l *wgpuBindGroupLayout) ID() uuid.UUID { return l.id }
func (l *wgpuBindGroupLayout) Label() string { return l.label }
func (l *wgpuBindGroupLayout) Release()      { l.layout.Release() }

type wgpuBindGroup struct {
	id        uuid.UUID
	label     string
	group     *wgpu.BindGroup
	resources []uuid.UUID
}

func (g *wgpuBindGroup) ID() uuid.UUID          { return g.id }
func (g *wgpuBindGroup) Label() string          { return g.label }
func (g *wgpuBindGroup) Resources() []uuid.UUID { return g.resources }
func (g *wgpuBindGroup) Release()               { g.group.Release() }

type wgpuKernel struct {
	id       uuid.UUID
	label    string
	module   *wgpu.ShaderModule
	layout   *wgpu.PipelineLayout
	pipeline *wgpu.ComputePipeline
}

func (k *wgpuKernel) ID() uuid.UUID { return k.id }
func (k *wgpuKernel) Label() string { return k.label }
func (k *wgpuKernel) Release() {
	k.pipeline.Release()
	k.layout.Release()
	k.module.Release()
}

func (w *WgpuBackend) CreateBuffer(desc *wgpu.BufferDescriptor) (Buffer, error) {
	buf, err := w.Device.CreateBuffer(desc)
	if err != nil {
		return nil, fmt.Errorf("create buffer %q (%d bytes): %w", desc.Label, desc.Size, err)
	}
	b := &wgpuBuffer{id: uuid.New(), label: desc.Label, buffer: buf}
	w.Logger.Debugf("created buffer %q size=%d id=%s", desc.Label, desc.Size, b.id)
	return b, nil
}

func (w *WgpuBackend) WriteBuffer(buf Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*wgpuBuffer)
	if !ok {
		return errForeignResource
	}
	if err := w.Queue.WriteBuffer(b.buffer, offset, data); err != nil {
		return fmt.Errorf("write buffer %q: %w", b.label, err)
	}
	return nil
}

func (w *WgpuBackend) CreateTexture(desc *wgpu.TextureDescriptor) (Texture, error) {
	tex, err := w.Device.CreateTexture(desc)
	if err != nil {
		return nil, fmt.Errorf("create texture %q %dx%d: %w", desc.Label, desc.Size.Width, desc.Size.Height, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("create view for %q: %w", desc.Label, err)
	}
	t := &wgpuTexture{id: uuid.New(), label: desc.Label, texture: tex, view: view}
	w.Logger.Debugf("created texture %q %dx%d id=%s", desc.Label, desc.Size.Width, desc.Size.Height, t.id)
	return t, nil
}

func (w *WgpuBackend) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (BindGroupLayout, error) {
	layout, err := w.Device.CreateBindGroupLayout(desc)
	if err != nil {
		return nil, fmt.Errorf("create bind group layout %q: %w", desc.Label, err)
	}
	return &wgpuBindGroupLayout{id: uuid.New(), label: desc.Label, layout: layout}, nil
}

func (w *WgpuBackend) CreateBindGroup(desc *BindGroupDescriptor) (BindGroup, error) {
	layout, ok := desc.Layout.(*wgpuBindGroupLayout)
	if !ok {
		return nil, errForeignResource
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(desc.Entries))
	resources := make([]uuid.UUID, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		switch {
		case e.Buffer != nil:
			b, ok := e.Buffer.(*wgpuBuffer)
			if !ok {
				return nil, errForeignResource
			}
			entries = append(entries, wgpu.BindGroupEntry{Binding: e.Binding, Buffer: b.buffer, Size: wgpu.WholeSize})
			resources = append(resources, b.id)
		case e.Texture != nil:
			t, ok := e.Texture.(*wgpuTexture)
			if !ok {
				return nil, errForeignResource
			}
			entries = append(entries, wgpu.BindGroupEntry{Binding: e.Binding, TextureView: t.view})
			resources = append(resources, t.id)
		default:
			return nil, fmt.Errorf("bind group %q: entry %d has no resource", desc.Label, e.Binding)
		}
	}

	group, err := w.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout.layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group %q: %w", desc.Label, err)
	}
	g := &wgpuBindGroup{id: uuid.New(), label: desc.Label, group: group, resources: resources}
	w.Logger.Debugf("created bind group %q id=%s", desc.Label, g.id)
	return g, nil
}

func (w *WgpuBackend) CreateKernel(desc *KernelDescriptor) (Kernel, error) {
	module, err := w.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          desc.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: desc.Source},
	})
	if err != nil {
		return nil, fmt.Errorf("create shader module %q: %w", desc.Label, err)
	}

	layouts := make([]*wgpu.BindGroupLayout, 0, len(desc.Layouts))
	for _, l := range desc.Layouts {
		wl, ok := l.(*wgpuBindGroupLayout)
		if !ok {
			module.Release()
			return nil, errForeignResource
		}
		layouts = append(layouts, wl.layout)
	}
	pipelineLayout, err := w.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label + " Layout",
		BindGroupLayouts: layouts,
	})
	if err != nil {
		module.Release()
		return nil, fmt.Errorf("create pipeline layout %q: %w", desc.Label, err)
	}

	pipeline, err := w.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  desc.Label,
		Layout: pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: desc.EntryPoint,
		},
	})
	if err != nil {
		pipelineLayout.Release()
		module.Release()
		return nil, fmt.Errorf("create compute pipeline %q: %w", desc.Label, err)
	}

	return &wgpuKernel{id: uuid.New(), label: desc.Label, module: module, layout: pipelineLayout, pipeline: pipeline}, nil
}

func (w *WgpuBackend) Dispatch(desc *DispatchDescriptor) error {
	kernel, ok := desc.Kernel.(*wgpuKernel)
	if !ok {
		return errForeignResource
	}

	encoder, err := w.Device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: desc.Label + " Encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: desc.Label})
	pass.SetPipeline(kernel.pipeline)
	for i, g := range desc.BindGroups {
		wg, ok := g.(*wgpuBindGroup)
		if !ok {
			pass.End()
			return errForeignResource
		}
		pass.SetBindGroup(uint32(i), wg.group, nil)
	}
	pass.DispatchWorkgroups(desc.X, desc.Y, desc.Z)
	if err := pass.End(); err != nil {
		return fmt.Errorf("end compute pass %q: %w", desc.Label, err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish %q: %w", desc.Label, err)
	}
	defer cmd.Release()
	w.Queue.Submit(cmd)
	return nil
}
