// Package gpu wraps the subset of OpenGL used by output plugins behind a
// Device interface, so lifecycle and draw sequencing can run against a
// recording fake in tests and against the driver in a host.
package gpu

import "image"

// Capability names a feature an instance requires from the driver.
// Values are either well-known names below or raw GL extension strings.
type Capability string

const (
	CapVertexArrayObject Capability = "vertex_array_object"
	CapNonPowerOfTwo     Capability = "texture_non_power_of_two"
)

// ShaderStage selects the pipeline stage of a shader object.
type ShaderStage int

const (
	VertexShader ShaderStage = iota
	FragmentShader
)

func (s ShaderStage) String() string {
	switch s {
	case VertexShader:
		return "vertex"
	case FragmentShader:
		return "fragment"
	default:
		return "unknown"
	}
}

// Device issues GPU commands on the calling thread's current context.
// Object creation returns 0 and an error when the driver refuses.
type Device interface {
	HasCapability(c Capability) bool

	CreateShader(stage ShaderStage) (uint32, error)
	ShaderSource(shader uint32, src string)
	// CompileShader returns whether compilation succeeded and the info log.
	CompileShader(shader uint32) (bool, string)
	DeleteShader(shader uint32)

	CreateProgram() (uint32, error)
	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	BindAttribLocation(program, index uint32, name string)
	// LinkProgram returns whether linking succeeded and the info log.
	LinkProgram(program uint32) (bool, string)
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	UniformLocation(program uint32, name string) int32
	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)

	GenVertexArray() (uint32, error)
	BindVertexArray(vao uint32)
	DeleteVertexArray(vao uint32)

	GenBuffer() (uint32, error)
	// BufferData binds buf as the array buffer and uploads data.
	BufferData(buf uint32, data []float32)
	DeleteBuffer(buf uint32)
	// VertexAttrib enables a float attribute of size components read from
	// the bound array buffer at byte offset with byte stride.
	VertexAttrib(index uint32, size int32, stride, offset int)

	GenTexture() (uint32, error)
	// UploadTexture replaces the contents of tex with img (RGBA8, linear filtering).
	UploadTexture(tex uint32, img *image.RGBA)
	DeleteTexture(tex uint32)
	BindTexture(unit uint32, tex uint32)

	BindFramebuffer(fb uint32)
	Viewport(x, y, width, height int)
	Clear(r, g, b, a float32)
	DrawTriangles(first, count int32)

	// GetError returns the oldest pending error code, or 0.
	GetError() uint32
}

// Preparer is implemented by devices that must bind to the current context
// before first use.
type Preparer interface {
	Prepare() error
}

// Prepare binds dev to the current context if it needs to.
func Prepare(dev Device) error {
	if p, ok := dev.(Preparer); ok {
		return p.Prepare()
	}
	return nil
}
