package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

const RenderTargetFormat = wgpu.TextureFormatRGBA8Unorm

// RenderTarget is the image the kernel writes and the display samples. It is
// recreated whenever the requested size changes.
type RenderTarget struct {
	backend Backend
	desc    wgpu.TextureDescriptor
	texture Texture
}

func NewRenderTarget(backend Backend, width, height int) (*RenderTarget, error) {
	w, h := clampExtent(width, height)
	desc := wgpu.TextureDescriptor{
		Label:         "Render Target",
		Size:          wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        RenderTargetFormat,
		Usage:         wgpu.TextureUsageStorageBinding | wgpu.TextureUsageTextureBinding,
	}
	tex, err := backend.CreateTexture(&desc)
	if err != nil {
		return nil, err
	}
	return &RenderTarget{backend: backend, desc: desc, texture: tex}, nil
}

// Resize matches the target to width x height, each clamped to at least 1.
// It returns true when the texture was recreated; the old texture is released
// and any bind group or display registration using it is stale.
func (rt *RenderTarget) Resize(width, height int) (bool, error) {
	w, h := clampExtent(width, height)
	if w == rt.desc.Size.Width && h == rt.desc.Size.Height {
		return false, nil
	}

	desc := rt.desc
	desc.Size.Width = w
	desc.Size.Height = h
	tex, err := rt.backend.CreateTexture(&desc)
	if err != nil {
		return false, fmt.Errorf("resize render target to %dx%d: %w", w, h, err)
	}
	rt.texture.Release()
	rt.texture = tex
	rt.desc = desc
	return true, nil
}

func (rt *RenderTarget) Size() (width, height uint32) {
	return rt.desc.Size.Width, rt.desc.Size.Height
}

func (rt *RenderTarget) Texture() Texture { return rt.texture }

func (rt *RenderTarget) Release() {
	if rt.texture != nil {
		rt.texture.Release()
		rt.texture = nil
	}
}

func clampExtent(width, height int) (uint32, uint32) {
	return uint32(max(width, 1)), uint32(max(height, 1))
}
