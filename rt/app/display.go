package app

import (
	"github.com/gekko3d/tesseracts/rt/core"
	"github.com/gekko3d/tesseracts/rt/gpu"
)

// Display shows the render target. A registered texture keeps its ID across
// UpdateTexture calls; the previous texture must not be used afterwards.
type Display interface {
	Viewport() (width, height int)
	RegisterTexture(tex gpu.Texture) (gpu.TextureID, error)
	UpdateTexture(id gpu.TextureID, tex gpu.Texture) error
	Present(id gpu.TextureID, width, height int) error
}

// InputSource reports the movement keys held this frame. While the keyboard
// is claimed elsewhere the camera does not move.
type InputSource interface {
	Movement() core.MovementInput
	KeyboardClaimed() bool
}

var _ Display = (*gpu.Presenter)(nil)
