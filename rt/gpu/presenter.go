package gpu

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/gekko3d/tesseracts/rt/core"
	"github.com/gekko3d/tesseracts/rt/logging"
	"github.com/gekko3d/tesseracts/rt/shaders"

	"github.com/cogentcore/webgpu/wgpu"
)

// TextureID names a texture registered with the display.
type TextureID uint32

var ErrUnknownTexture = errors.New("gpu: unknown display texture")

// Presenter shows a registered texture on the window surface with a fullscreen
// blit, optionally followed by HUD text.
type Presenter struct {
	backend *WgpuBackend
	surface *wgpu.Surface
	adapter *wgpu.Adapter
	config  *wgpu.SurfaceConfiguration
	logger  logging.Logger

	framebufferSize func() (int, int)

	sampler      *wgpu.Sampler
	blitPipeline *wgpu.RenderPipeline
	registered   map[TextureID]*wgpu.BindGroup
	nextID       TextureID

	text          *core.TextRenderer
	textPipeline  *wgpu.RenderPipeline
	textAtlas     *wgpu.Texture
	textAtlasView *wgpu.TextureView
	textBindGroup *wgpu.BindGroup
	textVertices  *GrowableBuffer
	textItems     []core.TextItem
}

type PresenterOptions struct {
	Surface         *wgpu.Surface
	Adapter         *wgpu.Adapter
	PresentMode     wgpu.PresentMode
	FramebufferSize func() (int, int)

	// Text enables the HUD pass when non-nil.
	Text   *core.TextRenderer
	Logger logging.Logger
}

func NewPresenter(backend *WgpuBackend, opts PresenterOptions) (*Presenter, error) {
	width, height := opts.FramebufferSize()
	caps := opts.Surface.GetCapabilities(opts.Adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		return nil, fmt.Errorf("surface reports no formats or alpha modes")
	}

	p := &Presenter{
		backend:         backend,
		surface:         opts.Surface,
		adapter:         opts.Adapter,
		logger:          logging.OrNop(opts.Logger),
		framebufferSize: opts.FramebufferSize,
		registered:      make(map[TextureID]*wgpu.BindGroup),
		text:            opts.Text,
		config: &wgpu.SurfaceConfiguration{
			Usage:       wgpu.TextureUsageRenderAttachment,
			Format:      caps.Formats[0],
			Width:       uint32(max(width, 1)),
			Height:      uint32(max(height, 1)),
			PresentMode: choosePresentMode(caps.PresentModes, opts.PresentMode),
			AlphaMode:   caps.AlphaModes[0],
		},
	}
	p.surface.Configure(p.adapter, backend.Device, p.config)

	var err error
	p.sampler, err = backend.Device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeNearest,
		MagFilter:     wgpu.FilterModeNearest,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("create display sampler: %w", err)
	}

	module, err := backend.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Fullscreen VS/FS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.FullscreenWGSL},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("create blit shader: %w", err)
	}
	defer module.Release()

	p.blitPipeline, err = backend.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Blit Pipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    p.config.Format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("create blit pipeline: %w", err)
	}

	if p.text != nil {
		if err := p.setupText(); err != nil {
			p.Release()
			return nil, err
		}
	}
	return p, nil
}

func choosePresentMode(available []wgpu.PresentMode, want wgpu.PresentMode) wgpu.PresentMode {
	for _, m := range available {
		if m == want {
			return m
		}
	}
	return wgpu.PresentModeFifo
}

// Viewport is the drawable area of the window in pixels.
func (p *Presenter) Viewport() (int, int) {
	return p.framebufferSize()
}

func (p *Presenter) bindTexture(tex Texture) (*wgpu.BindGroup, error) {
	t, ok := tex.(*wgpuTexture)
	if !ok {
		return nil, errForeignResource
	}
	return p.backend.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Display Bind Group",
		Layout: p.blitPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: t.view},
			{Binding: 1, Sampler: p.sampler},
		},
	})
}

func (p *Presenter) RegisterTexture(tex Texture) (TextureID, error) {
	bg, err := p.bindTexture(tex)
	if err != nil {
		return 0, fmt.Errorf("register display texture: %w", err)
	}
	p.nextID++
	p.registered[p.nextID] = bg
	return p.nextID, nil
}

// UpdateTexture points an existing registration at a new texture.
func (p *Presenter) UpdateTexture(id TextureID, tex Texture) error {
	old, ok := p.registered[id]
	if !ok {
		return ErrUnknownTexture
	}
	bg, err := p.bindTexture(tex)
	if err != nil {
		return fmt.Errorf("update display texture %d: %w", id, err)
	}
	old.Release()
	p.registered[id] = bg
	return nil
}

// SetOverlay replaces the HUD text drawn on top of the next presented frames.
func (p *Presenter) SetOverlay(items []core.TextItem) {
	p.textItems = append(p.textItems[:0], items...)
}

// Present draws the texture over a width x height surface. A frame whose
// surface texture cannot be acquired is dropped with a warning.
func (p *Presenter) Present(id TextureID, width, height int) error {
	bg, ok := p.registered[id]
	if !ok {
		return ErrUnknownTexture
	}

	w, h := uint32(max(width, 1)), uint32(max(height, 1))
	if w != p.config.Width || h != p.config.Height {
		p.config.Width, p.config.Height = w, h
		p.surface.Configure(p.adapter, p.backend.Device, p.config)
	}

	textVertexCount, err := p.uploadText(int(w), int(h))
	if err != nil {
		return err
	}

	frame, err := p.surface.GetCurrentTexture()
	if err != nil {
		p.logger.Warnf("dropping frame: acquire surface texture: %v", err)
		return nil
	}
	defer frame.Release()
	view, err := frame.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create surface view: %w", err)
	}
	defer view.Release()

	encoder, err := p.backend.Device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "Display Encoder"})
	if err != nil {
		return fmt.Errorf("create display encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{1, 0, 1, 1}, // never visible while the blit covers the surface
		}},
	})
	pass.SetPipeline(p.blitPipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Draw(3, 1, 0, 0)

	if textVertexCount > 0 {
		vb := p.textVertices.Buffer().(*wgpuBuffer).buffer
		pass.SetPipeline(p.textPipeline)
		pass.SetBindGroup(0, p.textBindGroup, nil)
		pass.SetVertexBuffer(0, vb, 0, uint64(textVertexCount)*uint64(unsafe.Sizeof(core.TextVertex{})))
		pass.Draw(textVertexCount, 1, 0, 0)
	}

	if err := pass.End(); err != nil {
		return fmt.Errorf("end display pass: %w", err)
	}
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish display encoder: %w", err)
	}
	defer cmd.Release()
	p.backend.Queue.Submit(cmd)
	p.surface.Present()
	return nil
}

func (p *Presenter) uploadText(width, height int) (uint32, error) {
	if p.text == nil || len(p.textItems) == 0 {
		return 0, nil
	}
	vertices := p.text.BuildVertices(p.textItems, width, height)
	if len(vertices) == 0 {
		return 0, nil
	}
	size := len(vertices) * int(unsafe.Sizeof(core.TextVertex{}))
	data := unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), size)
	if _, err := p.textVertices.SetDataLossy(data); err != nil {
		return 0, fmt.Errorf("upload HUD vertices: %w", err)
	}
	return uint32(len(vertices)), nil
}

func (p *Presenter) setupText() error {
	device := p.backend.Device
	tr := p.text
	w, h := tr.AtlasImage.Bounds().Dx(), tr.AtlasImage.Bounds().Dy()

	var err error
	p.textAtlas, err = device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "HUD Atlas",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("create HUD atlas: %w", err)
	}
	p.backend.Queue.WriteTexture(p.textAtlas.AsImageCopy(), tr.AtlasImage.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(tr.AtlasImage.Stride),
		RowsPerImage: uint32(h),
	}, &wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1})
	p.textAtlasView, err = p.textAtlas.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create HUD atlas view: %w", err)
	}

	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "HUD Text Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.TextWGSL},
	})
	if err != nil {
		return fmt.Errorf("create HUD shader: %w", err)
	}
	defer module.Release()

	p.textPipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "HUD Text Pipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(core.TextVertex{})),
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format: p.config.Format,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOne,
						Operation: wgpu.BlendOperationAdd,
					},
				},
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create HUD pipeline: %w", err)
	}

	p.textBindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "HUD Bind Group",
		Layout: p.textPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: p.textAtlasView},
			{Binding: 1, Sampler: p.sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("create HUD bind group: %w", err)
	}

	p.textVertices, err = NewGrowableBuffer(p.backend, wgpu.BufferDescriptor{
		Label: "HUD Vertex Buffer",
		Size:  64 * 6 * uint64(unsafe.Sizeof(core.TextVertex{})),
		Usage: wgpu.BufferUsageVertex,
	})
	return err
}

func (p *Presenter) Release() {
	for id, bg := range p.registered {
		bg.Release()
		delete(p.registered, id)
	}
	if p.textVertices != nil {
		p.textVertices.Release()
	}
	if p.textBindGroup != nil {
		p.textBindGroup.Release()
	}
	if p.textPipeline != nil {
		p.textPipeline.Release()
	}
	if p.textAtlasView != nil {
		p.textAtlasView.Release()
	}
	if p.textAtlas != nil {
		p.textAtlas.Release()
	}
	if p.blitPipeline != nil {
		p.blitPipeline.Release()
	}
	if p.sampler != nil {
		p.sampler.Release()
	}
}
