package app

import (
	"fmt"
	"time"

	"github.com/gekko3d/tesseracts/rt/core"
	"github.com/gekko3d/tesseracts/rt/gpu"
	"github.com/gekko3d/tesseracts/rt/logging"
)

type FrameOptions struct {
	Backend gpu.Backend
	Display Display
	Input   InputSource
	Scene   *core.Scene
	Camera  *core.Camera

	// Speed of the camera controller; <= 0 uses core.DefaultCameraSpeed.
	Speed    float32
	Logger   logging.Logger
	Profiler *Profiler

	// Now defaults to time.Now.
	Now func() time.Time
}

// FrameOrchestrator runs the per-frame protocol: move the camera, match the
// render target to the viewport, upload camera and scene, rebuild stale bind
// groups, dispatch the kernel and present the result. Every resource the
// kernel reads is current before Dispatch is encoded.
type FrameOrchestrator struct {
	backend  gpu.Backend
	display  Display
	input    InputSource
	logger   logging.Logger
	profiler *Profiler
	now      func() time.Time
	last     time.Time

	Scene      *core.Scene
	Camera     *core.Camera
	Controller *core.CameraController

	target    *gpu.RenderTarget
	textureID gpu.TextureID
	camera    *gpu.CameraUniform
	uploader  *gpu.SceneUploader
	registry  *gpu.BindingRegistry
	kernel    gpu.Kernel
}

// NewFrameOrchestrator creates the render target, buffers, bindings and kernel.
// If any step fails everything created so far is released.
func NewFrameOrchestrator(opts FrameOptions) (_ *FrameOrchestrator, err error) {
	if err := opts.Scene.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene: %w", err)
	}

	f := &FrameOrchestrator{
		backend:    opts.Backend,
		display:    opts.Display,
		input:      opts.Input,
		logger:     logging.OrNop(opts.Logger),
		profiler:   opts.Profiler,
		now:        opts.Now,
		Scene:      opts.Scene,
		Camera:     opts.Camera,
		Controller: core.NewCameraController(opts.Speed),
	}
	if f.now == nil {
		f.now = time.Now
	}
	if f.profiler == nil {
		f.profiler = newProfiler(f.now)
	}
	if f.Camera == nil {
		f.Camera = core.NewCamera()
	}
	defer func() {
		if err != nil {
			f.Release()
		}
	}()

	w, h := f.display.Viewport()
	if f.target, err = gpu.NewRenderTarget(f.backend, w, h); err != nil {
		return nil, fmt.Errorf("create render target: %w", err)
	}
	if f.textureID, err = f.display.RegisterTexture(f.target.Texture()); err != nil {
		return nil, fmt.Errorf("register render target: %w", err)
	}
	if f.camera, err = gpu.NewCameraUniform(f.backend); err != nil {
		return nil, fmt.Errorf("create camera buffer: %w", err)
	}
	if f.uploader, err = gpu.NewSceneUploader(f.backend); err != nil {
		return nil, fmt.Errorf("create scene buffers: %w", err)
	}
	if f.registry, err = gpu.NewBindingRegistry(f.backend, f.target, f.camera, f.uploader); err != nil {
		return nil, fmt.Errorf("create bindings: %w", err)
	}
	if f.kernel, err = gpu.NewRayTracingKernel(f.backend, f.registry); err != nil {
		return nil, fmt.Errorf("create ray tracing kernel: %w", err)
	}

	tw, th := f.target.Size()
	f.logger.Debugf("frame orchestrator ready: target %dx%d, %d materials", tw, th, len(f.Scene.Materials))
	f.last = f.now()
	return f, nil
}

func (f *FrameOrchestrator) Frame() error {
	now := f.now()
	dt := float32(now.Sub(f.last).Seconds())
	f.last = now

	if !f.input.KeyboardClaimed() {
		f.Controller.Step(f.Camera, f.input.Movement(), dt)
	}

	f.profiler.BeginScope("resize")
	vw, vh := f.display.Viewport()
	resized, err := f.target.Resize(vw, vh)
	if err != nil {
		return err
	}
	if resized {
		if err := f.display.UpdateTexture(f.textureID, f.target.Texture()); err != nil {
			return fmt.Errorf("re-register render target: %w", err)
		}
		if err := f.registry.RebuildRenderTargetBinding(); err != nil {
			return fmt.Errorf("rebuild render target binding: %w", err)
		}
		w, h := f.target.Size()
		f.logger.Debugf("render target resized to %dx%d", w, h)
		f.profiler.Incr("resizes")
	}
	f.profiler.EndScope("resize")

	f.profiler.BeginScope("upload")
	if err := f.camera.Upload(f.Camera); err != nil {
		return fmt.Errorf("upload camera: %w", err)
	}
	invalidated, err := f.uploader.Upload(f.Scene)
	if err != nil {
		return err
	}
	if invalidated {
		if err := f.registry.RebuildSceneDataBinding(); err != nil {
			return fmt.Errorf("rebuild scene data binding: %w", err)
		}
		f.logger.Debugf("scene buffers reallocated: materials %d bytes, voxels %d bytes",
			f.uploader.Materials.Capacity(), f.uploader.Voxels.Capacity())
		f.profiler.Incr("rebinds")
	}
	f.profiler.EndScope("upload")

	f.profiler.BeginScope("dispatch")
	w, h := f.target.Size()
	x, y, z := gpu.DispatchSize(w, h)
	if err := f.backend.Dispatch(&gpu.DispatchDescriptor{
		Label:      "Ray Tracing Pass",
		Kernel:     f.kernel,
		BindGroups: f.registry.Groups(),
		X:          x,
		Y:          y,
		Z:          z,
	}); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	f.profiler.EndScope("dispatch")

	f.profiler.BeginScope("present")
	if err := f.display.Present(f.textureID, int(w), int(h)); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	f.profiler.EndScope("present")
	return nil
}

func (f *FrameOrchestrator) RenderTarget() *gpu.RenderTarget { return f.target }

func (f *FrameOrchestrator) Bindings() *gpu.BindingRegistry { return f.registry }

func (f *FrameOrchestrator) SceneBuffers() *gpu.SceneUploader { return f.uploader }

func (f *FrameOrchestrator) TextureID() gpu.TextureID { return f.textureID }

// Release frees GPU resources in reverse creation order. The display keeps
// its registration; releasing it is up to the display's owner.
func (f *FrameOrchestrator) Release() {
	if f.kernel != nil {
		f.kernel.Release()
		f.kernel = nil
	}
	if f.registry != nil {
		f.registry.Release()
		f.registry = nil
	}
	if f.uploader != nil {
		f.uploader.Release()
		f.uploader = nil
	}
	if f.camera != nil {
		f.camera.Release()
		f.camera = nil
	}
	if f.target != nil {
		f.target.Release()
		f.target = nil
	}
}
