// Package displayid is an output plugin that identifies displays: each view
// shows a label with the process, the window and the eye it belongs to.
package displayid

import (
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
	ID:          "com.vroutput.displayid",
	Name:        "Display Identification",
	Version:     "1.0.0",
	Vendor:      "vroutput",
	Description: "Labels every view with its process, window and eye",
}

// Plugin creates display identification instances.
type Plugin struct {
	Shaders shaders.Loader
	Logger  *debug.Logger
}

func (p *Plugin) Info() plugin.Info {
	return Info
}

func (p *Plugin) CreateInstance() outputs.Instance {
	inst := &Instance{
		Base:   plugin.NewBase(Info),
		loader: p.Shaders,
	}
	if p.Logger != nil {
		inst.SetLogger(p.Logger)
	}
	return inst
}

type viewLabel struct {
	tex   *gpu.Texture
	label Label
}

// Instance is the per-window state.
type Instance struct {
	*plugin.Base

	loader  shaders.Loader
	program *gpu.Program
	quad    *gpu.Quad
	labels  []*viewLabel
}

// Init builds the label program and quad. Label textures are created on
// demand as views appear.
func (i *Instance) Init(dev gpu.Device, opts plugin.Options) error {
	if err := gpu.Require(dev, gpu.CapVertexArrayObject, gpu.CapNonPowerOfTwo); err != nil {
		return err
	}

	var scope gpu.Scope
	defer scope.Release()

	src, err := i.loader.Load(shaders.QuadVertex, shaders.LabelFragment)
	if err != nil {
		return err
	}
	prog, err := gpu.BuildProgram(dev, src.Vertex, src.Fragment)
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
	i.Begin(opts)
	return nil
}

// labelFor returns the texture for view index holding lbl, uploading it if
// the label or its size changed since the last frame.
func (i *Instance) labelFor(dev gpu.Device, index int, lbl Label) (*gpu.Texture, error) {
	for len(i.labels) <= index {
		i.labels = append(i.labels, &viewLabel{})
	}
	vl := i.labels[index]
	if vl.tex == nil {
		tex, err := gpu.NewTexture(dev)
		if err != nil {
			return nil, err
		}
		vl.tex = tex
	}
	w, h := vl.tex.Size()
	if lw, lh := lbl.Size(); w != lw || h != lh || vl.label != lbl {
		vl.tex.Upload(lbl.Render())
		vl.label = lbl
	}
	return vl.tex, nil
}

// Output draws one label per view, with views tiled across the window.
// The source textures are not sampled.
func (i *Instance) Output(dev gpu.Device, ctx *process.Context, textures []vr.Texture) {
	dev.BindFramebuffer(0)
	dev.Viewport(0, 0, ctx.Window.Width, ctx.Window.Height)
	dev.Clear(0, 0, 0, 1)

	i.program.Use()
	i.program.SetInt("u_texture", 0)

	ctx.ProcessViews(textures, func(index int, view vr.View, _ vr.Texture) {
		lbl := LabelFor(ctx.Process, ctx.Window.ID, view)
		tex, err := i.labelFor(dev, index, lbl)
		if err != nil {
			i.Logger().Warn("view %d: %v", index, err)
			return
		}

		x, y, w, h := ctx.Viewport(index)
		dev.Viewport(x, y, w, h)
		tex.Bind(0)
		i.quad.Draw()
	})

	dev.BindTexture(0, 0)
	dev.UseProgram(0)
}

// LabelTexture returns the texture holding view index's label, or 0.
func (i *Instance) LabelTexture(index int) uint32 {
	if index < 0 || index >= len(i.labels) || i.labels[index].tex == nil {
		return 0
	}
	return i.labels[index].tex.ID()
}

// Exit frees label textures, the quad and the program.
func (i *Instance) Exit(dev gpu.Device) {
	for _, vl := range i.labels {
		if vl.tex != nil {
			vl.tex.Delete()
		}
	}
	i.labels = nil
	i.quad.Delete()
	i.program.Delete()
}
