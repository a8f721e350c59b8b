// Package postfx is an output plugin that draws the first view's texture
// full screen, optionally distorted by a time-driven ripple and/or an edge
// filter. It ignores every view but the first, so stereo and multi-view
// layouts show only view 0.
package postfx

import (
	"github.com/justyntemme/vroutput/pkg/framework/clock"
	"github.com/justyntemme/vroutput/pkg/framework/debug"
	"github.com/justyntemme/vroutput/pkg/framework/plugin"
	"github.com/justyntemme/vroutput/pkg/framework/process"
	"github.com/justyntemme/vroutput/pkg/gpu"
	outputs "github.com/justyntemme/vroutput/pkg/plugin"
	"github.com/justyntemme/vroutput/pkg/shaders"
	"github.com/justyntemme/vroutput/pkg/vr"
)

// Info describes the plugin.
var Info = plugin.Info{
	ID:          "com.vroutput.postfx",
	Name:        "PostFX",
	Version:     "1.0.0",
	Vendor:      "vroutput",
	Description: "Full-screen ripple and edge post-processing of the first view",
}

// Plugin creates PostFX instances.
type Plugin struct {
	// Shaders loads the GLSL sources. The zero value uses the embedded copies.
	Shaders shaders.Loader
	// Watcher, if set, triggers a shader rebuild when sources change on disk.
	Watcher *shaders.Watcher
	// Clock drives the ripple; nil means wall-clock time.
	Clock clock.Clock
	// Logger receives instance diagnostics; nil means the default logger.
	Logger *debug.Logger
}

func (p *Plugin) Info() plugin.Info {
	return Info
}

func (p *Plugin) CreateInstance() outputs.Instance {
	inst := &Instance{
		Base:   plugin.NewBase(Info),
		loader: p.Shaders,
	}
	if p.Clock != nil {
		inst.SetClock(p.Clock)
	}
	if p.Logger != nil {
		inst.SetLogger(p.Logger)
	}
	if p.Watcher != nil {
		inst.watcher = p.Watcher
	}
	return inst
}

// Instance is the per-window state.
type Instance struct {
	*plugin.Base

	loader  shaders.Loader
	watcher *shaders.Watcher
	changes *shaders.Subscription

	program *gpu.Program
	quad    *gpu.Quad
}

// Init requires vertex array objects, then builds the program and quad.
func (i *Instance) Init(dev gpu.Device, opts plugin.Options) error {
	if err := gpu.Require(dev, gpu.CapVertexArrayObject); err != nil {
		return err
	}

	var scope gpu.Scope
	defer scope.Release()

	prog, err := i.buildProgram(dev)
	if err != nil {
		return err
	}
	scope.Defer(prog.Delete)

	quad, err := gpu.NewQuad(dev)
	if err != nil {
		return err
	}
	scope.Defer(quad.Delete)

	scope.Commit()
	i.program, i.quad = prog, quad
	if i.watcher != nil {
		i.changes = i.watcher.Subscribe(shaders.QuadVertex, shaders.PostFXFragment)
	}
	i.Begin(opts)
	return nil
}

func (i *Instance) buildProgram(dev gpu.Device) (*gpu.Program, error) {
	src, err := i.loader.Load(shaders.QuadVertex, shaders.PostFXFragment)
	if err != nil {
		return nil, err
	}
	return gpu.BuildProgram(dev, src.Vertex, src.Fragment)
}

// reload swaps in a freshly built program. A broken edit keeps the old one.
func (i *Instance) reload(dev gpu.Device) {
	prog, err := i.buildProgram(dev)
	if err != nil {
		i.Logger().Warn("shader reload failed, keeping previous program: %v", err)
		return
	}
	i.program.Delete()
	i.program = prog
	i.Logger().Info("shaders reloaded into program %d", prog.ID())
}

// RippleTime returns the value of the time uniform: hundredths of a second
// since Init when ripple is enabled, otherwise 0.
func (i *Instance) RippleTime() float32 {
	if !i.Options().Ripple {
		return 0
	}
	return i.Centiseconds()
}

// Output draws textures[0] over the whole window.
func (i *Instance) Output(dev gpu.Device, ctx *process.Context, textures []vr.Texture) {
	if i.changes.Changed() {
		i.reload(dev)
	}

	ctx.ProcessFirstView(textures, func(view vr.View, tex vr.Texture) {
		opts := i.Options()

		dev.BindFramebuffer(0)
		dev.Viewport(0, 0, ctx.Window.Width, ctx.Window.Height)
		i.program.Use()
		dev.BindTexture(0, uint32(tex))
		i.program.SetInt("u_texture", 0)
		i.program.SetBool("u_ripple", opts.Ripple)
		i.program.SetBool("u_edge", opts.Edge)
		i.program.SetFloat("u_time", i.RippleTime())
		i.quad.Draw()
		dev.BindTexture(0, 0)
		dev.UseProgram(0)
	})
}

// Exit frees the quad and program.
func (i *Instance) Exit(dev gpu.Device) {
	if i.watcher != nil && i.changes != nil {
		i.watcher.Unsubscribe(i.changes)
	}
	i.quad.Delete()
	i.program.Delete()
}
