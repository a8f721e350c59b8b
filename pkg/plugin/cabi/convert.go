package cabi

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/justyntemme/vroutput/pkg/framework/process"
	"github.com/justyntemme/vroutput/pkg/vr"
)

// rawView mirrors struct vrout_view.
type rawView struct {
	TextureWidth  int32
	TextureHeight int32
	Eye           int32
	Projection    [16]float32
	View          [16]float32
}

// rawContext mirrors the scalar fields of struct vrout_render_context.
type rawContext struct {
	Process int64
	Width   int32
	Height  int32
}

// newContext copies host frame data for window into Go memory. The host
// owns its buffers only for the duration of the call.
func newContext(window vr.WindowID, rc rawContext, views []rawView) *process.Context {
	ctx := process.NewContext(
		vr.ProcessID(rc.Process),
		vr.Window{ID: window, Width: int(rc.Width), Height: int(rc.Height)},
		len(views),
	)
	for i, v := range views {
		ctx.Views[i] = vr.View{
			TextureWidth:  int(v.TextureWidth),
			TextureHeight: int(v.TextureHeight),
			Eye:           vr.ParseEye(int(v.Eye)),
			Projection:    mgl32.Mat4(v.Projection),
			ViewMatrix:    mgl32.Mat4(v.View),
		}
	}
	return ctx
}

func copyTextures(raw []uint32) []vr.Texture {
	if len(raw) == 0 {
		return nil
	}
	textures := make([]vr.Texture, len(raw))
	for i, t := range raw {
		textures[i] = vr.Texture(t)
	}
	return textures
}
