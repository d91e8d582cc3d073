package main

import (
	"errors"
	"flag"
	"os"
	"runtime"

	"github.com/gekko3d/tesseracts/rt/app"
	"github.com/gekko3d/tesseracts/rt/logging"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	cfg, err := app.ParseFlags(os.Args[0], os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	logger := logging.NewDefaultLogger("tesseracts", cfg.Debug)
	if err != nil {
		logger.Errorf("config: %v", err)
		os.Exit(2)
	}
	if !cfg.Debug {
		if err := logger.SetLevel(cfg.LogLevel); err != nil {
			logger.Errorf("config: %v", err)
			os.Exit(2)
		}
	}

	if err := run(cfg, logger); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(cfg app.Config, logger logging.Logger) error {
	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		return err
	}
	defer window.Destroy()

	application := app.NewApp(window, cfg, logger)
	defer application.Release()
	if err := application.Init(); err != nil {
		return err
	}
	return application.Run()
}
