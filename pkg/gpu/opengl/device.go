// Package opengl implements gpu.Device on the OpenGL 3.3 core profile via
// go-gl. Every method must be called on the thread that owns the current
// context; the host guarantees this for plugin callbacks.
package opengl

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/justyntemme/vroutput/pkg/gpu"
)

// Device drives the current OpenGL context.
type Device struct {
	once    sync.Once
	initErr error
	major   int32
	exts    map[string]bool
}

// New returns a device. Function pointers are loaded on Prepare, once a
// context is current.
func New() *Device {
	return &Device{}
}

// Prepare loads GL entry points and caches version and extension data.
func (d *Device) Prepare() error {
	d.once.Do(func() {
		if err := gl.Init(); err != nil {
			d.initErr = fmt.Errorf("load OpenGL: %w", err)
			return
		}
		gl.GetIntegerv(gl.MAJOR_VERSION, &d.major)

		var n int32
		gl.GetIntegerv(gl.NUM_EXTENSIONS, &n)
		d.exts = make(map[string]bool, n)
		for i := int32(0); i < n; i++ {
			d.exts[gl.GoStr(gl.GetStringi(gl.EXTENSIONS, uint32(i)))] = true
		}
	})
	return d.initErr
}

func (d *Device) HasCapability(c gpu.Capability) bool {
	if d.Prepare() != nil {
		return false
	}
	switch c {
	case gpu.CapVertexArrayObject:
		return d.major >= 3 || d.exts["GL_ARB_vertex_array_object"]
	case gpu.CapNonPowerOfTwo:
		return d.major >= 2 || d.exts["GL_ARB_texture_non_power_of_two"]
	default:
		return d.exts[string(c)]
	}
}

func (d *Device) CreateShader(stage gpu.ShaderStage) (uint32, error) {
	kind := uint32(gl.VERTEX_SHADER)
	if stage == gpu.FragmentShader {
		kind = gl.FRAGMENT_SHADER
	}
	sh := gl.CreateShader(kind)
	if sh == 0 {
		return 0, gpu.ErrObjectCreation
	}
	return sh, nil
}

func (d *Device) ShaderSource(shader uint32, src string) {
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
}

func (d *Device) CompileShader(shader uint32) (bool, string) {
	gl.CompileShader(shader)
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}
	var n int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &n)
	return false, infoLog(n, func(buf *uint8) { gl.GetShaderInfoLog(shader, n, nil, buf) })
}

func (d *Device) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (d *Device) CreateProgram() (uint32, error) {
	p := gl.CreateProgram()
	if p == 0 {
		return 0, gpu.ErrObjectCreation
	}
	return p, nil
}

func (d *Device) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

func (d *Device) DetachShader(program, shader uint32) { gl.DetachShader(program, shader) }

func (d *Device) BindAttribLocation(program, index uint32, name string) {
	gl.BindAttribLocation(program, index, gl.Str(name+"\x00"))
}

func (d *Device) LinkProgram(program uint32) (bool, string) {
	gl.LinkProgram(program)
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}
	var n int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &n)
	return false, infoLog(n, func(buf *uint8) { gl.GetProgramInfoLog(program, n, nil, buf) })
}

func infoLog(n int32, read func(*uint8)) string {
	if n <= 0 {
		return ""
	}
	buf := strings.Repeat("\x00", int(n+1))
	read(gl.Str(buf))
	return strings.TrimRight(buf, "\x00")
}

func (d *Device) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (d *Device) UseProgram(program uint32) { gl.UseProgram(program) }

func (d *Device) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *Device) Uniform1i(location int32, v int32) { gl.Uniform1i(location, v) }

func (d *Device) Uniform1f(location int32, v float32) { gl.Uniform1f(location, v) }

func (d *Device) GenVertexArray() (uint32, error) {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	if vao == 0 {
		return 0, gpu.ErrObjectCreation
	}
	return vao, nil
}

func (d *Device) BindVertexArray(vao uint32) { gl.BindVertexArray(vao) }

func (d *Device) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }

func (d *Device) GenBuffer() (uint32, error) {
	var buf uint32
	gl.GenBuffers(1, &buf)
	if buf == 0 {
		return 0, gpu.ErrObjectCreation
	}
	return buf, nil
}

func (d *Device) BufferData(buf uint32, data []float32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, buf)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
}

func (d *Device) DeleteBuffer(buf uint32) { gl.DeleteBuffers(1, &buf) }

func (d *Device) VertexAttrib(index uint32, size int32, stride, offset int) {
	gl.EnableVertexAttribArray(index)
	gl.VertexAttribPointerWithOffset(index, size, gl.FLOAT, false, int32(stride), uintptr(offset))
}

func (d *Device) GenTexture() (uint32, error) {
	var tex uint32
	gl.GenTextures(1, &tex)
	if tex == 0 {
		return 0, gpu.ErrObjectCreation
	}
	return tex, nil
}

func (d *Device) UploadTexture(tex uint32, img *image.RGBA) {
	b := img.Bounds()
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
}

func (d *Device) DeleteTexture(tex uint32) { gl.DeleteTextures(1, &tex) }

func (d *Device) BindTexture(unit uint32, tex uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, tex)
}

func (d *Device) BindFramebuffer(fb uint32) { gl.BindFramebuffer(gl.FRAMEBUFFER, fb) }

func (d *Device) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (d *Device) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (d *Device) DrawTriangles(first, count int32) { gl.DrawArrays(gl.TRIANGLES, first, count) }

func (d *Device) GetError() uint32 { return gl.GetError() }

var (
	_ gpu.Device   = (*Device)(nil)
	_ gpu.Preparer = (*Device)(nil)
)
