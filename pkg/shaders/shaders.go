// Package shaders holds the GLSL sources of the output plugins. Sources are
// embedded in the binary and may be overridden from a directory on disk.
package shaders

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed glsl/*.vert glsl/*.frag
var embedded embed.FS

// File names of the shipped sources.
const (
	QuadVertex     = "quad.vert"
	PostFXFragment = "postfx.frag"
	LabelFragment  = "label.frag"
)

// Source is a vertex and fragment stage pair.
type Source struct {
	Vertex   string
	Fragment string
}

// Loader reads shader sources, preferring files in Dir over the embedded copies.
type Loader struct {
	Dir string
}

// Read returns the text of one shader file.
func (l Loader) Read(name string) (string, error) {
	if l.Dir != "" {
		b, err := os.ReadFile(filepath.Join(l.Dir, name))
		if err == nil {
			return string(b), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read shader %s: %w", name, err)
		}
	}
	b, err := embedded.ReadFile("glsl/" + name)
	if err != nil {
		return "", fmt.Errorf("read shader %s: %w", name, err)
	}
	return string(b), nil
}

// Load returns the vertex and fragment sources named.
func (l Loader) Load(vertex, fragment string) (Source, error) {
	vs, err := l.Read(vertex)
	if err != nil {
		return Source{}, err
	}
	fsrc, err := l.Read(fragment)
	if err != nil {
		return Source{}, err
	}
	return Source{Vertex: vs, Fragment: fsrc}, nil
}
