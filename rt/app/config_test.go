package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tesseracts.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, "4D Game", cfg.Window.Title)
	assert.Equal(t, float32(5), cfg.Camera.Speed)
	assert.Equal(t, wgpu.PowerPreferenceHighPerformance, cfg.PowerPreference())
	assert.Equal(t, wgpu.PresentModeImmediate, cfg.PresentMode())
	assert.False(t, cfg.Debug)
}

func TestLoadConfig_EmptyPathIsDefault(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
debug = true

[window]
width = 640

[gpu]
present_mode = "fifo"

[camera]
speed = 2.5
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.Debug)
	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, "4D Game", cfg.Window.Title)
	assert.Equal(t, wgpu.PresentModeFifo, cfg.PresentMode())
	assert.Equal(t, float32(2.5), cfg.Camera.Speed)
	assert.Equal(t, float32(90), cfg.Camera.FOV)
}

func TestLoadConfig_UnknownKey(t *testing.T) {
	path := writeConfig(t, "[window]\nwidht = 10\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "widht")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }, "window size"},
		{"power", func(c *Config) { c.GPU.PowerPreference = "turbo" }, "power_preference"},
		{"present", func(c *Config) { c.GPU.PresentMode = "vsync" }, "present_mode"},
		{"speed", func(c *Config) { c.Camera.Speed = -1 }, "camera.speed"},
		{"fov", func(c *Config) { c.Camera.FOV = 180 }, "camera.fov"},
		{"distance", func(c *Config) { c.Camera.MaxDistance = 0 }, "camera.max_distance"},
		{"log level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseFlags_OverrideFile(t *testing.T) {
	path := writeConfig(t, "debug = false\n[window]\nwidth = 800\nheight = 600\n")

	cfg, err := ParseFlags("tesseracts", []string{"-config", path, "-debug", "-height", "300"})
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 300, cfg.Window.Height)
}

func TestParseFlags_UnsetFlagsDoNotOverride(t *testing.T) {
	cfg, err := ParseFlags("tesseracts", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseFlags_InvalidOverride(t *testing.T) {
	_, err := ParseFlags("tesseracts", []string{"-width", "-5"})
	assert.ErrorContains(t, err, "window size")
}
