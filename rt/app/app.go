package app

import (
	"fmt"

	"github.com/gekko3d/tesseracts/rt/core"
	"github.com/gekko3d/tesseracts/rt/gpu"
	"github.com/gekko3d/tesseracts/rt/logging"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const hudFontSize = 16

type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Surface  *wgpu.Surface

	Backend   *gpu.WgpuBackend
	Presenter *gpu.Presenter
	Frames    *FrameOrchestrator

	Config   Config
	Logger   logging.Logger
	Input    *WindowInput
	Profiler *Profiler
	Scene    *core.Scene
	Camera   *core.Camera

	ShowHUD bool
}

func NewApp(window *glfw.Window, cfg Config, logger logging.Logger) *App {
	cam := core.NewCamera()
	cam.FOV = cfg.Camera.FOV
	cam.MaxDistance = cfg.Camera.MaxDistance
	return &App{
		Window:   window,
		Config:   cfg,
		Logger:   logging.OrNop(logger),
		Input:    NewWindowInput(window),
		Profiler: NewProfiler(),
		Scene:    core.DefaultScene(),
		Camera:   cam,
		ShowHUD:  cfg.Debug,
	}
}

func (a *App) Init() error {
	a.Instance = wgpu.CreateInstance(nil)
	a.Surface = a.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(a.Window))

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   a.Config.PowerPreference(),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", gpu.ErrNoAdapter, err)
	}
	a.Adapter = adapter
	a.Logger.Debugf("adapter acquired (%s)", a.Config.GPU.PowerPreference)

	a.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	a.Backend = gpu.NewWgpuBackend(a.Device, a.Logger)

	var text *core.TextRenderer
	if a.Config.Debug {
		text, err = core.NewHUDTextRenderer(hudFontSize)
		if err != nil {
			return fmt.Errorf("load HUD font: %w", err)
		}
	}
	a.Presenter, err = gpu.NewPresenter(a.Backend, gpu.PresenterOptions{
		Surface:         a.Surface,
		Adapter:         a.Adapter,
		PresentMode:     a.Config.PresentMode(),
		FramebufferSize: a.Window.GetFramebufferSize,
		Text:            text,
		Logger:          a.Logger,
	})
	if err != nil {
		return fmt.Errorf("create presenter: %w", err)
	}

	a.Frames, err = NewFrameOrchestrator(FrameOptions{
		Backend:  a.Backend,
		Display:  a.Presenter,
		Input:    a.Input,
		Scene:    a.Scene,
		Camera:   a.Camera,
		Speed:    a.Config.Camera.Speed,
		Logger:   a.Logger,
		Profiler: a.Profiler,
	})
	if err != nil {
		return err
	}
	a.Logger.Infof("renderer ready, present mode %s", a.Config.GPU.PresentMode)
	return nil
}

// Run drives frames until the window is asked to close.
func (a *App) Run() error {
	for !a.Window.ShouldClose() {
		glfw.PollEvents()
		a.Input.Poll()
		if a.Config.Debug && a.Input.JustPressed(glfw.KeyF3) {
			a.ShowHUD = !a.ShowHUD
		}

		if err := a.Frames.Frame(); err != nil {
			return err
		}

		if a.Profiler.FrameDone() && a.Config.Debug {
			a.updateHUD()
		}
	}
	return nil
}

func (a *App) updateHUD() {
	if !a.ShowHUD {
		a.Presenter.SetOverlay(nil)
		return
	}
	a.Profiler.SetCount("materials", len(a.Scene.Materials))
	a.Profiler.SetCount("voxels", a.Scene.Chunk.SolidCount())

	lines := a.Profiler.StatsLines()
	items := make([]core.TextItem, 0, len(lines))
	for i, line := range lines {
		items = append(items, core.TextItem{
			Text:     line,
			Position: [2]float32{10, 10 + float32(i)*hudFontSize*1.25},
			Scale:    1,
			Color:    [4]float32{1, 1, 0, 1},
		})
	}
	a.Presenter.SetOverlay(items)
	a.Logger.Debugf("fps %.1f", a.Profiler.FPS)
}

func (a *App) Release() {
	if a.Frames != nil {
		a.Frames.Release()
	}
	if a.Presenter != nil {
		a.Presenter.Release()
	}
	if a.Device != nil {
		a.Device.Release()
	}
	if a.Adapter != nil {
		a.Adapter.Release()
	}
	if a.Surface != nil {
		a.Surface.Release()
	}
	if a.Instance != nil {
		a.Instance.Release()
	}
}
