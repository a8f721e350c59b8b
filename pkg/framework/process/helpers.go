package process

import "github.com/justyntemme/vroutput/pkg/vr"

// ProcessViews calls fn for every view that has a source texture
func (c *Context) ProcessViews(textures []vr.Texture, fn func(index int, view vr.View, tex vr.Texture)) {
	n := len(c.Views)
	if len(textures) < n {
		n = len(textures)
	}

	for i := 0; i < n; i++ {
		fn(i, c.Views[i], textures[i])
	}
}

// ProcessFirstView calls fn for view 0 only. Output plugins that ignore
// stereo and multi-view layouts use this.
func (c *Context) ProcessFirstView(textures []vr.Texture, fn func(view vr.View, tex vr.Texture)) {
	if view, ok := c.View(0); ok && len(textures) > 0 {
		fn(view, textures[0])
	}
}
