package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultCameraSpeed is the movement speed in units per second.
const DefaultCameraSpeed = 5.0

// Camera is a 4D pinhole camera. Directions have w = 0 only by convention of
// the default pose; all four components are used.
type Camera struct {
	Position    mgl32.Vec4
	Forward     mgl32.Vec4
	Right       mgl32.Vec4
	Up          mgl32.Vec4
	FOV         float32 // degrees
	MaxDistance float32
}

func NewCamera() *Camera {
	return &Camera{
		Position:    mgl32.Vec4{0, 0, -3, 0},
		Forward:     mgl32.Vec4{0, 0, 1, 0},
		Right:       mgl32.Vec4{1, 0, 0, 0},
		Up:          mgl32.Vec4{0, 1, 0, 0},
		FOV:         90,
		MaxDistance: 100,
	}
}

// IsOrthonormal reports whether Forward, Right and Up are unit length and
// mutually perpendicular within eps.
func (c *Camera) IsOrthonormal(eps float32) bool {
	basis := [3]mgl32.Vec4{c.Forward, c.Right, c.Up}
	for i := range basis {
		if !mgl32.FloatEqualThreshold(basis[i].Len(), 1, eps) {
			return false
		}
		for j := i + 1; j < len(basis); j++ {
			if !mgl32.FloatEqualThreshold(basis[i].Dot(basis[j]), 0, eps) {
				return false
			}
		}
	}
	return true
}

// MovementInput is the set of movement keys held this frame.
type MovementInput struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
	Up       bool
	Down     bool
}

func (in MovementInput) Any() bool {
	return in.Forward || in.Backward || in.Left || in.Right || in.Up || in.Down
}

type CameraController struct {
	Speed float32
}

func NewCameraController(speed float32) *CameraController {
	if speed <= 0 {
		speed = DefaultCameraSpeed
	}
	return &CameraController{Speed: speed}
}

// Step translates the camera along its basis for every held key. Keys add up
// without normalisation, so diagonals move faster than a single axis.
func (cc *CameraController) Step(cam *Camera, in MovementInput, dt float32) {
	d := cc.Speed * dt
	if in.Forward {
		cam.Position = cam.Position.Add(cam.Forward.Mul(d))
	}
	if in.Backward {
		cam.Position = cam.Position.Sub(cam.Forward.Mul(d))
	}
	if in.Left {
		cam.Position = cam.Position.Sub(cam.Right.Mul(d))
	}
	if in.Right {
		cam.Position = cam.Position.Add(cam.Right.Mul(d))
	}
	if in.Down {
		cam.Position = cam.Position.Sub(cam.Up.Mul(d))
	}
	if in.Up {
		cam.Position = cam.Position.Add(cam.Up.Mul(d))
	}
}
