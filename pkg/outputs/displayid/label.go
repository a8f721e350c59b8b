package displayid

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/justyntemme/vroutput/pkg/vr"
)

const (
	labelPadding = 8
	lineSpacing  = 4
)

var (
	labelBackground = color.RGBA{R: 0x10, G: 0x10, B: 0x30, A: 0xff}
	labelForeground = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Label is the identification text shown for one view. Width and Height
// request the image size, normally the view's texture size; the image is
// never smaller than the text.
type Label struct {
	Process vr.ProcessID
	Window  vr.WindowID
	Eye     vr.Eye
	Width   int
	Height  int
}

// LabelFor returns the label for view, shown in window of process pid.
func LabelFor(pid vr.ProcessID, window vr.WindowID, view vr.View) Label {
	return Label{
		Process: pid,
		Window:  window,
		Eye:     view.Eye,
		Width:   view.TextureWidth,
		Height:  view.TextureHeight,
	}
}

// Lines returns the label text, one entry per line.
func (l Label) Lines() []string {
	return []string{
		fmt.Sprintf("process %d", l.Process),
		fmt.Sprintf("window %s", l.Window),
		fmt.Sprintf("eye %s", l.Eye),
	}
}

func (l Label) String() string {
	lines := l.Lines()
	return lines[0] + " / " + lines[1] + " / " + lines[2]
}

// MinSize returns the smallest image that holds the text. It depends only
// on process and window so every view of a window has the same minimum.
func (l Label) MinSize() (int, int) {
	face := basicfont.Face7x13
	widest := Label{Process: l.Process, Window: l.Window, Eye: vr.EyeCenter}

	var w fixed.Int26_6
	for _, line := range widest.Lines() {
		if adv := font.MeasureString(face, line); adv > w {
			w = adv
		}
	}
	lineHeight := face.Metrics().Height.Ceil()
	n := len(widest.Lines())
	return w.Ceil() + 2*labelPadding, n*lineHeight + (n-1)*lineSpacing + 2*labelPadding
}

// Size returns the image size: the requested size clamped to MinSize.
func (l Label) Size() (int, int) {
	w, h := l.MinSize()
	return max(w, l.Width), max(h, l.Height)
}

// LineBand returns the vertical pixel range [y0, y1) occupied by line i.
func (l Label) LineBand(i int) (int, int) {
	lineHeight := basicfont.Face7x13.Metrics().Height.Ceil()
	y0 := labelPadding + i*(lineHeight+lineSpacing)
	return y0, y0 + lineHeight
}

// Render rasterizes the label into a new image.
func (l Label) Render() *image.RGBA {
	w, h := l.Size()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: labelBackground}, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	ascent := face.Metrics().Ascent.Ceil()
	d := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{C: labelForeground},
		Face: face,
	}
	for i, line := range l.Lines() {
		y0, _ := l.LineBand(i)
		d.Dot = fixed.P(labelPadding, y0+ascent)
		d.DrawString(line)
	}
	return img
}
