// Package plugin provides the output plugin framework: the interfaces an
// output plugin implements and the Registry that binds one instance to each
// host window.
package plugin

import (
	"github.com/justyntemme/vroutput/pkg/framework/plugin"
	"github.com/justyntemme/vroutput/pkg/framework/process"
	"github.com/justyntemme/vroutput/pkg/gpu"
	"github.com/justyntemme/vroutput/pkg/vr"
)

// Plugin is the main interface that users implement
type Plugin interface {
	// Info returns plugin metadata
	Info() plugin.Info

	// CreateInstance creates the private state for one window
	CreateInstance() Instance
}

// Instance is the per-window state of an output plugin. All three calls run
// on the thread that owns the window's graphics context.
type Instance interface {
	// Init acquires GPU resources. On error, everything acquired so far
	// must already be released.
	Init(dev gpu.Device, opts plugin.Options) error

	// Output draws one frame. textures[i] is the source for view i and is
	// only valid for the duration of the call.
	Output(dev gpu.Device, ctx *process.Context, textures []vr.Texture)

	// Exit releases every resource acquired by Init.
	Exit(dev gpu.Device)
}
