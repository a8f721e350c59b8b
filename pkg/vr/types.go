// Package vr defines the host-side data model seen by output plugins.
package vr

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// WindowID identifies a live host window. It is only ever used as a lookup key.
type WindowID uintptr

func (w WindowID) String() string {
	return fmt.Sprintf("0x%x", uintptr(w))
}

// ProcessID identifies the host process rendering a window.
type ProcessID int

// Texture is a GPU texture name.
type Texture uint32

// Eye is the eye a view is rendered for.
type Eye int

const (
	EyeCenter Eye = iota
	EyeLeft
	EyeRight
)

// String returns the lower-case eye name.
func (e Eye) String() string {
	switch e {
	case EyeCenter:
		return "center"
	case EyeLeft:
		return "left"
	case EyeRight:
		return "right"
	default:
		return "unknown"
	}
}

// ParseEye converts a host eye code to an Eye. Unknown codes map to EyeCenter.
func ParseEye(code int) Eye {
	switch Eye(code) {
	case EyeLeft:
		return EyeLeft
	case EyeRight:
		return EyeRight
	default:
		return EyeCenter
	}
}

// View describes one rendered sub-image of a frame.
type View struct {
	TextureWidth  int
	TextureHeight int
	Eye           Eye
	Projection    mgl32.Mat4
	ViewMatrix    mgl32.Mat4
}

// Window is the host window an output plugin draws into.
type Window struct {
	ID     WindowID
	Width  int
	Height int
}
