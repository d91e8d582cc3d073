package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCameraController_Forward(t *testing.T) {
	cam := NewCamera()
	cam.Position = mgl32.Vec4{}
	cc := NewCameraController(5.0)

	cc.Step(cam, MovementInput{Forward: true}, 1.0)

	assert.Equal(t, mgl32.Vec4{0, 0, 5, 0}, cam.Position)
}

func TestCameraController_DiagonalIsAdditive(t *testing.T) {
	cam := NewCamera()
	cam.Position = mgl32.Vec4{}
	cc := NewCameraController(5.0)

	cc.Step(cam, MovementInput{Forward: true, Right: true}, 1.0)

	assert.Equal(t, mgl32.Vec4{5, 0, 5, 0}, cam.Position)
	assert.Greater(t, cam.Position.Len(), float32(5))
}

func TestCameraController_OpposingKeysCancel(t *testing.T) {
	cam := NewCamera()
	start := cam.Position
	cc := NewCameraController(5.0)

	cc.Step(cam, MovementInput{Forward: true, Backward: true, Left: true, Right: true, Up: true, Down: true}, 0.5)

	assert.True(t, cam.Position.ApproxEqual(start))
}

func TestCameraController_Directions(t *testing.T) {
	tests := []struct {
		name string
		in   MovementInput
		want mgl32.Vec4
	}{
		{"backward", MovementInput{Backward: true}, mgl32.Vec4{0, 0, -1, 0}},
		{"left", MovementInput{Left: true}, mgl32.Vec4{-1, 0, 0, 0}},
		{"right", MovementInput{Right: true}, mgl32.Vec4{1, 0, 0, 0}},
		{"up", MovementInput{Up: true}, mgl32.Vec4{0, 1, 0, 0}},
		{"down", MovementInput{Down: true}, mgl32.Vec4{0, -1, 0, 0}},
		{"none", MovementInput{}, mgl32.Vec4{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera()
			cam.Position = mgl32.Vec4{}
			NewCameraController(5).Step(cam, tt.in, 0.2)
			assert.True(t, cam.Position.ApproxEqual(tt.want), "got %v", cam.Position)
		})
	}
}

func TestCameraController_KeepsOrientation(t *testing.T) {
	cam := NewCamera()
	cc := NewCameraController(0)
	assert.Equal(t, float32(DefaultCameraSpeed), cc.Speed)

	for i := 0; i < 100; i++ {
		cc.Step(cam, MovementInput{Forward: true, Up: true, Left: true}, 1.0/60)
	}

	assert.True(t, cam.IsOrthonormal(1e-6))
	assert.Equal(t, mgl32.Vec4{0, 0, 1, 0}, cam.Forward)
}

func TestCamera_IsOrthonormal(t *testing.T) {
	cam := NewCamera()
	assert.True(t, cam.IsOrthonormal(1e-6))

	cam.Up = mgl32.Vec4{0, 1, 1, 0}
	assert.False(t, cam.IsOrthonormal(1e-6))
}
