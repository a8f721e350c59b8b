// Package gputest provides a recording gpu.Device for tests. It tracks every
// live object, records each draw with the state bound at the time, and can
// be told to fail capability checks, compilation, linking or allocation.
package gputest

import (
	"errors"
	"image"
	"image/draw"
	"sync"

	"github.com/justyntemme/vroutput/pkg/gpu"
)

// Kind is the type of a GPU object.
type Kind string

const (
	KindShader      Kind = "shader"
	KindProgram     Kind = "program"
	KindVertexArray Kind = "vertex_array"
	KindBuffer      Kind = "buffer"
	KindTexture     Kind = "texture"
)

// ErrRefused is returned by allocation calls for kinds listed in FailCreate.
var ErrRefused = errors.New("gputest: allocation refused")

// Draw is one recorded draw call and the state it used.
type Draw struct {
	Program     uint32
	VertexArray uint32
	Framebuffer uint32
	Viewport    [4]int
	Textures    map[uint32]uint32
	Uniforms    map[string]float64
	First       int32
	Count       int32
}

type uniformLoc struct {
	program uint32
	name    string
}

// Device is a fake gpu.Device. Configure the exported fields before use.
type Device struct {
	// Missing lists capabilities HasCapability reports as absent.
	Missing map[gpu.Capability]bool
	// FailCompile makes compilation of a stage fail with the given log.
	FailCompile map[gpu.ShaderStage]string
	// FailLink makes linking fail with this log when non-empty.
	FailLink string
	// FailCreate makes allocation of these kinds fail.
	FailCreate map[Kind]bool

	mu        sync.Mutex
	next      uint32
	live      map[uint32]Kind
	stage     map[uint32]gpu.ShaderStage
	created   map[Kind]int
	errors    []uint32
	program   uint32
	vao       uint32
	fb        uint32
	viewport  [4]int
	textures  map[uint32]uint32
	locations []uniformLoc
	uniforms  map[uint32]map[string]float64
	images    map[uint32]*image.RGBA
	draws     []Draw
	clears    int
}

// New creates a fake device with every capability present.
func New() *Device {
	return &Device{
		Missing:     make(map[gpu.Capability]bool),
		FailCompile: make(map[gpu.ShaderStage]string),
		FailCreate:  make(map[Kind]bool),
		live:        make(map[uint32]Kind),
		stage:       make(map[uint32]gpu.ShaderStage),
		created:     make(map[Kind]int),
		textures:    make(map[uint32]uint32),
		uniforms:    make(map[uint32]map[string]float64),
		images:      make(map[uint32]*image.RGBA),
	}
}

func (d *Device) alloc(kind Kind) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailCreate[kind] {
		return 0, ErrRefused
	}
	d.next++
	d.live[d.next] = kind
	d.created[kind]++
	return d.next, nil
}

func (d *Device) free(id uint32, kind Kind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id == 0 {
		return
	}
	if d.live[id] != kind {
		d.errors = append(d.errors, gpu.ErrCodeInvalidValue)
		return
	}
	delete(d.live, id)
	delete(d.images, id)
	delete(d.uniforms, id)
}

func (d *Device) isLive(id uint32, kind Kind) bool {
	return id != 0 && d.live[id] == kind
}

// PushError queues a driver error code for GetError.
func (d *Device) PushError(code uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errors = append(d.errors, code)
}

// Live returns the number of live objects of kind.
func (d *Device) Live(kind Kind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, k := range d.live {
		if k == kind {
			n++
		}
	}
	return n
}

// LiveTotal returns the number of live objects of every kind.
func (d *Device) LiveTotal() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

// Created returns how many objects of kind were ever allocated.
func (d *Device) Created(kind Kind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.created[kind]
}

// Draws returns the recorded draw calls.
func (d *Device) Draws() []Draw {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Draw(nil), d.draws...)
}

// ResetDraws forgets recorded draw calls.
func (d *Device) ResetDraws() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.draws = nil
	d.clears = 0
}

// Clears returns the number of Clear calls since the last ResetDraws.
func (d *Device) Clears() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clears
}

// Image returns the last image uploaded to tex.
func (d *Device) Image(tex uint32) *image.RGBA {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.images[tex]
}

// Uniform returns the last value set for name on program.
func (d *Device) Uniform(program uint32, name string) (float64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.uniforms[program][name]
	return v, ok
}

func (d *Device) HasCapability(c gpu.Capability) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.Missing[c]
}

func (d *Device) CreateShader(stage gpu.ShaderStage) (uint32, error) {
	id, err := d.alloc(KindShader)
	if err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stage[id] = stage
	return id, nil
}

func (d *Device) ShaderSource(shader uint32, src string) {}

func (d *Device) CompileShader(shader uint32) (bool, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.isLive(shader, KindShader) {
		d.errors = append(d.errors, gpu.ErrCodeInvalidValue)
		return false, "no such shader"
	}
	if log, fail := d.FailCompile[d.stage[shader]]; fail {
		return false, log
	}
	return true, ""
}

func (d *Device) DeleteShader(shader uint32) { d.free(shader, KindShader) }

func (d *Device) CreateProgram() (uint32, error) { return d.alloc(KindProgram) }

func (d *Device) AttachShader(program, shader uint32) {}

func (d *Device) DetachShader(program, shader uint32) {}

func (d *Device) BindAttribLocation(program, index uint32, name string) {}

func (d *Device) LinkProgram(program uint32) (bool, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailLink != "" {
		return false, d.FailLink
	}
	return d.isLive(program, KindProgram), ""
}

func (d *Device) DeleteProgram(program uint32) {
	d.free(program, KindProgram)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.program == program {
		d.program = 0
	}
}

func (d *Device) UseProgram(program uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if program != 0 && !d.isLive(program, KindProgram) {
		d.errors = append(d.errors, gpu.ErrCodeInvalidOperation)
		return
	}
	d.program = program
}

func (d *Device) UniformLocation(program uint32, name string) int32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, l := range d.locations {
		if l.program == program && l.name == name {
			return int32(i)
		}
	}
	d.locations = append(d.locations, uniformLoc{program: program, name: name})
	return int32(len(d.locations) - 1)
}

func (d *Device) setUniform(location int32, v float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if location < 0 || int(location) >= len(d.locations) || d.locations[location].program != d.program || d.program == 0 {
		d.errors = append(d.errors, gpu.ErrCodeInvalidOperation)
		return
	}
	m, ok := d.uniforms[d.program]
	if !ok {
		m = make(map[string]float64)
		d.uniforms[d.program] = m
	}
	m[d.locations[location].name] = v
}

func (d *Device) Uniform1i(location int32, v int32) {
	d.setUniform(location, float64(v))
}

func (d *Device) Uniform1f(location int32, v float32) {
	d.setUniform(location, float64(v))
}

func (d *Device) GenVertexArray() (uint32, error) { return d.alloc(KindVertexArray) }

func (d *Device) BindVertexArray(vao uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if vao != 0 && !d.isLive(vao, KindVertexArray) {
		d.errors = append(d.errors, gpu.ErrCodeInvalidOperation)
		return
	}
	d.vao = vao
}

func (d *Device) DeleteVertexArray(vao uint32) { d.free(vao, KindVertexArray) }

func (d *Device) GenBuffer() (uint32, error) { return d.alloc(KindBuffer) }

func (d *Device) BufferData(buf uint32, data []float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.isLive(buf, KindBuffer) {
		d.errors = append(d.errors, gpu.ErrCodeInvalidOperation)
	}
}

func (d *Device) DeleteBuffer(buf uint32) { d.free(buf, KindBuffer) }

func (d *Device) VertexAttrib(index uint32, size int32, stride, offset int) {}

func (d *Device) GenTexture() (uint32, error) { return d.alloc(KindTexture) }

func (d *Device) UploadTexture(tex uint32, img *image.RGBA) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.isLive(tex, KindTexture) {
		d.errors = append(d.errors, gpu.ErrCodeInvalidOperation)
		return
	}
	cp := image.NewRGBA(img.Bounds())
	draw.Draw(cp, cp.Bounds(), img, img.Bounds().Min, draw.Src)
	d.images[tex] = cp
}

func (d *Device) DeleteTexture(tex uint32) {
	d.free(tex, KindTexture)
	d.mu.Lock()
	defer d.mu.Unlock()
	for unit, bound := range d.textures {
		if bound == tex {
			delete(d.textures, unit)
		}
	}
}

// BindTexture accepts names it did not allocate: host-owned source
// textures are bound the same way as instance-owned ones.
func (d *Device) BindTexture(unit uint32, tex uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.textures[unit] = tex
}

func (d *Device) BindFramebuffer(fb uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fb = fb
}

func (d *Device) Viewport(x, y, width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.viewport = [4]int{x, y, width, height}
}

func (d *Device) Clear(r, g, b, a float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clears++
}

func (d *Device) DrawTriangles(first, count int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.program == 0 || d.vao == 0 {
		d.errors = append(d.errors, gpu.ErrCodeInvalidOperation)
		return
	}

	textures := make(map[uint32]uint32, len(d.textures))
	for unit, tex := range d.textures {
		textures[unit] = tex
	}
	uniforms := make(map[string]float64, len(d.uniforms[d.program]))
	for name, v := range d.uniforms[d.program] {
		uniforms[name] = v
	}

	d.draws = append(d.draws, Draw{
		Program:     d.program,
		VertexArray: d.vao,
		Framebuffer: d.fb,
		Viewport:    d.viewport,
		Textures:    textures,
		Uniforms:    uniforms,
		First:       first,
		Count:       count,
	})
}

func (d *Device) GetError() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.errors) == 0 {
		return 0
	}
	code := d.errors[0]
	d.errors = d.errors[1:]
	return code
}

var _ gpu.Device = (*Device)(nil)
