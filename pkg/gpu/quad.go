package gpu

import "fmt"

// quadVertices is a full-screen quad as two triangles, interleaved
// clip-space position (x, y) and texture coordinate (u, v).
var quadVertices = []float32{
	-1, -1, 0, 0,
	1, -1, 1, 0,
	1, 1, 1, 1,

	-1, -1, 0, 0,
	1, 1, 1, 1,
	-1, 1, 0, 1,
}

const (
	quadVertexCount = 6
	quadStride      = 4 * 4 // four float32 per vertex
)

// Quad is a full-screen quad with its own vertex array and buffer.
type Quad struct {
	dev Device
	vao uint32
	vbo uint32
}

// NewQuad allocates and fills the quad's vertex array. On failure nothing
// stays allocated.
func NewQuad(dev Device) (*Quad, error) {
	var scope Scope
	defer scope.Release()

	vao, err := dev.GenVertexArray()
	if err != nil {
		return nil, fmt.Errorf("create vertex array: %w", err)
	}
	scope.Defer(func() { dev.DeleteVertexArray(vao) })

	vbo, err := dev.GenBuffer()
	if err != nil {
		return nil, fmt.Errorf("create vertex buffer: %w", err)
	}
	scope.Defer(func() { dev.DeleteBuffer(vbo) })

	dev.BindVertexArray(vao)
	dev.BufferData(vbo, quadVertices)
	dev.VertexAttrib(AttribPosition, 2, quadStride, 0)
	dev.VertexAttrib(AttribTexCoord, 2, quadStride, 2*4)
	dev.BindVertexArray(0)

	scope.Commit()
	return &Quad{dev: dev, vao: vao, vbo: vbo}, nil
}

// Draw issues one draw call covering the current viewport.
func (q *Quad) Draw() {
	q.dev.BindVertexArray(q.vao)
	q.dev.DrawTriangles(0, quadVertexCount)
	q.dev.BindVertexArray(0)
}

// Delete frees the vertex array and buffer.
func (q *Quad) Delete() {
	if q.vbo != 0 {
		q.dev.DeleteBuffer(q.vbo)
		q.vbo = 0
	}
	if q.vao != 0 {
		q.dev.DeleteVertexArray(q.vao)
		q.vao = 0
	}
}
