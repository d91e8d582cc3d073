package app

import (
	"github.com/gekko3d/tesseracts/rt/core"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// keyWindow is the part of *glfw.Window the input source polls.
type keyWindow interface {
	GetKey(key glfw.Key) glfw.Action
	GetAttrib(attrib glfw.Hint) int
	SetShouldClose(value bool)
}

var trackedKeys = []glfw.Key{
	glfw.KeyW, glfw.KeyS, glfw.KeyA, glfw.KeyD, glfw.KeyE, glfw.KeyQ,
	glfw.KeyEscape, glfw.KeyF3,
}

// WindowInput polls key state from a glfw window once per frame.
type WindowInput struct {
	window keyWindow

	pressed     map[glfw.Key]bool
	justPressed map[glfw.Key]bool
}

func NewWindowInput(window *glfw.Window) *WindowInput {
	return newWindowInput(window)
}

func newWindowInput(window keyWindow) *WindowInput {
	return &WindowInput{
		window:      window,
		pressed:     make(map[glfw.Key]bool),
		justPressed: make(map[glfw.Key]bool),
	}
}

// Poll refreshes key state; call it after glfw.PollEvents. Escape requests
// the window to close.
func (in *WindowInput) Poll() {
	for _, key := range trackedKeys {
		action := in.window.GetKey(key)
		in.justPressed[key] = false

		if glfw.Press == action {
			if !in.pressed[key] {
				in.justPressed[key] = true
			}
			in.pressed[key] = true
		} else if glfw.Release == action {
			in.pressed[key] = false
		}
	}

	if in.justPressed[glfw.KeyEscape] {
		in.window.SetShouldClose(true)
	}
}

func (in *WindowInput) Pressed(key glfw.Key) bool {
	return in.pressed[key]
}

func (in *WindowInput) JustPressed(key glfw.Key) bool {
	return in.justPressed[key]
}

func (in *WindowInput) Movement() core.MovementInput {
	return core.MovementInput{
		Forward:  in.pressed[glfw.KeyW],
		Backward: in.pressed[glfw.KeyS],
		Left:     in.pressed[glfw.KeyA],
		Right:    in.pressed[glfw.KeyD],
		Up:       in.pressed[glfw.KeyE],
		Down:     in.pressed[glfw.KeyQ],
	}
}

// KeyboardClaimed is true while the window does not have input focus.
func (in *WindowInput) KeyboardClaimed() bool {
	return in.window.GetAttrib(glfw.Focused) == glfw.False
}
