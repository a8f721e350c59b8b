// Package process provides the per-frame render context handed to output plugins.
package process

import (
	"fmt"

	"github.com/justyntemme/vroutput/pkg/vr"
)

// Context is the per-frame metadata supplied by the host for one window.
type Context struct {
	Process vr.ProcessID
	Window  vr.Window
	Views   []vr.View
}

// NewContext creates a render context with room for viewCount views
func NewContext(pid vr.ProcessID, window vr.Window, viewCount int) *Context {
	return &Context{
		Process: pid,
		Window:  window,
		Views:   make([]vr.View, viewCount),
	}
}

// NumViews returns the number of views in the frame
func (c *Context) NumViews() int {
	return len(c.Views)
}

// View returns the view at index, or false if out of range
func (c *Context) View(index int) (vr.View, bool) {
	if index < 0 || index >= len(c.Views) {
		return vr.View{}, false
	}
	return c.Views[index], true
}

// Viewport returns the window region for view index when views are tiled
// horizontally across the window. The last view also covers the pixels
// left over when the width does not divide evenly.
func (c *Context) Viewport(index int) (x, y, width, height int) {
	n := len(c.Views)
	if n == 0 {
		return 0, 0, c.Window.Width, c.Window.Height
	}
	width = c.Window.Width / n
	x = index * width
	if index == n-1 {
		width = c.Window.Width - x
	}
	return x, 0, width, c.Window.Height
}

// Validate checks that the textures array covers every view
func (c *Context) Validate(textures []vr.Texture) error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window %s has invalid size %dx%d", c.Window.ID, c.Window.Width, c.Window.Height)
	}
	if len(textures) < len(c.Views) {
		return fmt.Errorf("%d views but only %d textures", len(c.Views), len(textures))
	}
	return nil
}
