package gpu

import "fmt"

// Attribute locations bound before linking.
const (
	AttribPosition uint32 = 0
	AttribTexCoord uint32 = 1
)

// Program is a linked shader program with cached uniform locations.
type Program struct {
	dev      Device
	id       uint32
	uniforms map[string]int32
}

// BuildProgram compiles both stages and links them. Shader objects never
// outlive the call; on failure no GPU objects remain.
func BuildProgram(dev Device, vertexSrc, fragmentSrc string) (*Program, error) {
	var scope Scope
	defer scope.Release()

	vs, err := compile(dev, VertexShader, vertexSrc)
	if err != nil {
		return nil, err
	}
	defer dev.DeleteShader(vs)

	fs, err := compile(dev, FragmentShader, fragmentSrc)
	if err != nil {
		return nil, err
	}
	defer dev.DeleteShader(fs)

	id, err := dev.CreateProgram()
	if err != nil {
		return nil, fmt.Errorf("create program: %w", err)
	}
	scope.Defer(func() { dev.DeleteProgram(id) })

	dev.AttachShader(id, vs)
	dev.AttachShader(id, fs)
	dev.BindAttribLocation(id, AttribPosition, "a_position")
	dev.BindAttribLocation(id, AttribTexCoord, "a_texcoord")

	ok, log := dev.LinkProgram(id)
	dev.DetachShader(id, vs)
	dev.DetachShader(id, fs)
	if !ok {
		return nil, &LinkError{Log: log}
	}

	scope.Commit()
	return &Program{dev: dev, id: id, uniforms: make(map[string]int32)}, nil
}

func compile(dev Device, stage ShaderStage, src string) (uint32, error) {
	sh, err := dev.CreateShader(stage)
	if err != nil {
		return 0, fmt.Errorf("create %s shader: %w", stage, err)
	}

	dev.ShaderSource(sh, src)
	if ok, log := dev.CompileShader(sh); !ok {
		dev.DeleteShader(sh)
		return 0, &CompileError{Stage: stage, Log: log}
	}
	return sh, nil
}

// ID returns the program object name.
func (p *Program) ID() uint32 {
	return p.id
}

// Use makes p the current program.
func (p *Program) Use() {
	p.dev.UseProgram(p.id)
}

func (p *Program) location(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := p.dev.UniformLocation(p.id, name)
	p.uniforms[name] = loc
	return loc
}

// SetInt sets an int or sampler uniform on the current program. Uniforms
// the driver optimized away are skipped.
func (p *Program) SetInt(name string, v int32) {
	if loc := p.location(name); loc >= 0 {
		p.dev.Uniform1i(loc, v)
	}
}

// SetBool sets a bool uniform.
func (p *Program) SetBool(name string, v bool) {
	var i int32
	if v {
		i = 1
	}
	p.SetInt(name, i)
}

// SetFloat sets a float uniform on the current program.
func (p *Program) SetFloat(name string, v float32) {
	if loc := p.location(name); loc >= 0 {
		p.dev.Uniform1f(loc, v)
	}
}

// Delete frees the program object.
func (p *Program) Delete() {
	if p.id != 0 {
		p.dev.DeleteProgram(p.id)
		p.id = 0
	}
}
