package app

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pelletier/go-toml/v2"
)

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

type GPUConfig struct {
	// PowerPreference is "high-performance" or "low-power".
	PowerPreference string `toml:"power_preference"`

	// PresentMode is "immediate", "mailbox" or "fifo". Unsupported modes fall
	// back to fifo at surface configuration.
	PresentMode string `toml:"present_mode"`
}

type CameraConfig struct {
	Speed       float32 `toml:"speed"`
	FOV         float32 `toml:"fov"`
	MaxDistance float32 `toml:"max_distance"`
}

type Config struct {
	Window   WindowConfig `toml:"window"`
	GPU      GPUConfig    `toml:"gpu"`
	Camera   CameraConfig `toml:"camera"`
	Debug    bool         `toml:"debug"`
	LogLevel string       `toml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		Window:   WindowConfig{Width: 1280, Height: 720, Title: "4D Game"},
		GPU:      GPUConfig{PowerPreference: "high-performance", PresentMode: "immediate"},
		Camera:   CameraConfig{Speed: 5, FOV: 90, MaxDistance: 100},
		LogLevel: "info",
	}
}

var powerPreferences = map[string]wgpu.PowerPreference{
	"high-performance": wgpu.PowerPreferenceHighPerformance,
	"low-power":        wgpu.PowerPreferenceLowPower,
}

var presentModes = map[string]wgpu.PresentMode{
	"immediate": wgpu.PresentModeImmediate,
	"mailbox":   wgpu.PresentModeMailbox,
	"fifo":      wgpu.PresentModeFifo,
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// LoadConfig reads a TOML file over the defaults. Keys missing from the file
// keep their default value; unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := decodeConfig(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func decodeConfig(data []byte, cfg *Config) error {
	err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg)
	var strict *toml.StrictMissingError
	if errors.As(err, &strict) {
		return errors.New(strict.String())
	}
	return err
}

func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if _, ok := powerPreferences[c.GPU.PowerPreference]; !ok {
		errs = append(errs, fmt.Errorf("unknown gpu.power_preference %q", c.GPU.PowerPreference))
	}
	if _, ok := presentModes[c.GPU.PresentMode]; !ok {
		errs = append(errs, fmt.Errorf("unknown gpu.present_mode %q", c.GPU.PresentMode))
	}
	if c.Camera.Speed <= 0 {
		errs = append(errs, fmt.Errorf("camera.speed %v must be positive", c.Camera.Speed))
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		errs = append(errs, fmt.Errorf("camera.fov %v must be in (0, 180)", c.Camera.FOV))
	}
	if c.Camera.MaxDistance <= 0 {
		errs = append(errs, fmt.Errorf("camera.max_distance %v must be positive", c.Camera.MaxDistance))
	}
	if !logLevels[c.LogLevel] {
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

func (c Config) PowerPreference() wgpu.PowerPreference {
	return powerPreferences[c.GPU.PowerPreference]
}

func (c Config) PresentMode() wgpu.PresentMode {
	return presentModes[c.GPU.PresentMode]
}

// ParseFlags parses the command line, loads the file named by -config and
// applies the flags that were set explicitly on top of it.
func ParseFlags(name string, args []string) (Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	path := fs.String("config", "", "Path to a TOML config file")
	debug := fs.Bool("debug", false, "Enable debug mode (HUD with FPS and frame timings)")
	width := fs.Int("width", 0, "Window width in pixels")
	height := fs.Int("height", 0, "Window height in pixels")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg, err := LoadConfig(*path)
	if err != nil {
		return cfg, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug":
			cfg.Debug = *debug
		case "width":
			cfg.Window.Width = *width
		case "height":
			cfg.Window.Height = *height
		}
	})
	return cfg, cfg.Validate()
}
