package gpu_test

import (
	"testing"

	"github.com/gekko3d/tesseracts/rt/gpu"
	"github.com/gekko3d/tesseracts/rt/gpu/gputest"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTarget_ResizeClamps(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH uint32
	}{
		{0, 0, 1, 1},
		{0, 7, 1, 7},
		{9, 0, 9, 1},
		{-5, -5, 1, 1},
		{640, 480, 640, 480},
		{1, 1, 1, 1},
	}
	for _, tt := range tests {
		be := gputest.New()
		rt, err := gpu.NewRenderTarget(be, 3, 3)
		require.NoError(t, err)

		_, err = rt.Resize(tt.w, tt.h)
		require.NoError(t, err)

		w, h := rt.Size()
		assert.Equal(t, tt.wantW, w, "width for %dx%d", tt.w, tt.h)
		assert.Equal(t, tt.wantH, h, "height for %dx%d", tt.w, tt.h)
		assert.Equal(t, tt.wantW, rt.Texture().Width())
		assert.Equal(t, tt.wantH, rt.Texture().Height())
	}
}

func TestRenderTarget_ResizeReportsChange(t *testing.T) {
	be := gputest.New()
	rt, err := gpu.NewRenderTarget(be, 1, 1)
	require.NoError(t, err)

	steps := []struct {
		w, h int
		want bool
	}{
		{1, 1, false},
		{0, 0, false}, // clamps to the current 1x1
		{33, 17, true},
		{33, 17, false},
		{33, 18, true},
		{0, 18, true},
		{-1, 18, false},
	}
	for i, s := range steps {
		before := rt.Texture().ID()
		changed, err := rt.Resize(s.w, s.h)
		require.NoError(t, err)
		assert.Equal(t, s.want, changed, "step %d (%dx%d)", i, s.w, s.h)
		if changed {
			assert.NotEqual(t, before, rt.Texture().ID())
			assert.False(t, be.IsLive(before))
		} else {
			assert.Equal(t, before, rt.Texture().ID())
		}
	}
	assert.Equal(t, 1, be.LiveOf(gputest.KindTexture))
}

func TestRenderTarget_Descriptor(t *testing.T) {
	be := gputest.New()
	rt, err := gpu.NewRenderTarget(be, 4, 2)
	require.NoError(t, err)

	desc := rt.Texture().(*gputest.Texture).Desc
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, desc.Format)
	assert.NotZero(t, desc.Usage&wgpu.TextureUsageStorageBinding)
	assert.NotZero(t, desc.Usage&wgpu.TextureUsageTextureBinding)
	assert.Equal(t, uint32(1), desc.Size.DepthOrArrayLayers)

	rt.Release()
	assert.Zero(t, be.Live())
}
