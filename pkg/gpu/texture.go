package gpu

import (
	"fmt"
	"image"
)

// Texture is a texture object owned by a plugin instance.
type Texture struct {
	dev    Device
	id     uint32
	width  int
	height int
}

// NewTexture allocates an empty texture object.
func NewTexture(dev Device) (*Texture, error) {
	id, err := dev.GenTexture()
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}
	return &Texture{dev: dev, id: id}, nil
}

// ID returns the texture object name.
func (t *Texture) ID() uint32 {
	return t.id
}

// Size returns the dimensions of the last upload.
func (t *Texture) Size() (int, int) {
	return t.width, t.height
}

// Upload replaces the texture contents with img.
func (t *Texture) Upload(img *image.RGBA) {
	b := img.Bounds()
	t.width, t.height = b.Dx(), b.Dy()
	t.dev.UploadTexture(t.id, img)
}

// Bind binds the texture to unit.
func (t *Texture) Bind(unit uint32) {
	t.dev.BindTexture(unit, t.id)
}

// Delete frees the texture object.
func (t *Texture) Delete() {
	if t.id != 0 {
		t.dev.DeleteTexture(t.id)
		t.id = 0
	}
}
