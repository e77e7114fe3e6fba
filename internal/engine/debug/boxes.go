package debug

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/veldt-gl/veldt/internal/engine/geom"
	"github.com/veldt-gl/veldt/internal/engine/shader"
)

const boxVertexShader = `#version 410 core
layout(location = 0) in vec3 aPosition;

uniform mat4 uViewProj;

void main() {
    gl_Position = uViewProj * vec4(aPosition, 1.0);
}
`

const boxFragmentShader = `#version 410 core
uniform vec3 uColor;

out vec4 fragColor;

void main() {
    fragColor = vec4(uColor, 1.0);
}
`

// BoxRenderer draws wireframe boxes from a dynamic vertex buffer, one
// color per batch. Used to visualize the LOD selection.
type BoxRenderer struct {
	program *shader.Program

	locViewProj int32
	locColor    int32

	vao uint32
	vbo uint32

	// Scratch vertex storage reused across frames.
	verts []float32
}

// NewBoxRenderer compiles the line shader and allocates the buffers.
func NewBoxRenderer() (*BoxRenderer, error) {
	program, err := shader.NewProgram(boxVertexShader, boxFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("box shader: %w", err)
	}

	r := &BoxRenderer{
		program:     program,
		locViewProj: program.Uniform("uViewProj"),
		locColor:    program.Uniform("uColor"),
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)

	gl.BindVertexArray(0)

	return r, nil
}

// Render draws one batch of boxes in a single color. Boxes of different
// colors (e.g. per LOD level) are drawn as separate batches.
func (r *BoxRenderer) Render(viewProj mgl32.Mat4, boxes []geom.AABB, color [3]float32) {
	if len(boxes) == 0 {
		return
	}

	r.verts = r.verts[:0]
	for _, box := range boxes {
		r.verts = AppendBoxWireframe(r.verts, box)
	}

	r.program.Use()
	gl.UniformMatrix4fv(r.locViewProj, 1, false, &viewProj[0])
	gl.Uniform3f(r.locColor, color[0], color[1], color[2])

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(r.verts)*4, unsafe.Pointer(&r.verts[0]), gl.STREAM_DRAW)

	gl.DrawArrays(gl.LINES, 0, int32(len(r.verts)/3))

	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

// Destroy releases the GPU resources.
func (r *BoxRenderer) Destroy() {
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		r.vao = 0
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
		r.vbo = 0
	}
	if r.program != nil {
		r.program.Destroy()
	}
}
