// Package terrain implements CDLOD terrain rendering: a fixed-topology
// grid mesh, a quadtree LOD selector and the renderer that draws the
// selected patches.
package terrain

import (
	"fmt"
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// Quadrant indices into the grid mesh vertex blocks. The order matches the
// sign loop that builds them: z sign varies slowest, x sign fastest.
const (
	QuadBottomLeft  = 0 // -x, -z
	QuadBottomRight = 1 // +x, -z
	QuadTopLeft     = 2 // -x, +z
	QuadTopRight    = 3 // +x, +z
)

// maxIndexSpace is the 16-bit index budget bounding the grid dimension:
// 4 * (dim/2+1)^2 vertices must stay addressable.
const maxIndexSpace = 1 << 16

// GridTopology is the CPU side of a grid mesh: vertex offsets, triangle
// indices and the per-quadrant index ranges. It has no GPU state so the
// index layout and winding are testable without a GL context.
type GridTopology struct {
	Dimension int

	// Vertices holds interleaved (x, z) cell offsets, signed per quadrant.
	// Each quadrant is a physically separate block of (dim/2+1)^2 vertices;
	// edge vertices between quadrants are duplicated, not merged.
	Vertices []int16

	// Indices holds triangles grouped so each quadrant occupies one
	// contiguous range, in quadrant order 0..3.
	Indices []uint16
}

// NewGridTopology builds the vertex and index layout for an even grid
// dimension. The four quadrants carry sign-flipped copies of a
// (dim/2+1)^2 sub-grid; triangle winding compensates the flip so every
// triangle keeps the same orientation seen from above.
func NewGridTopology(dimension int) (*GridTopology, error) {
	if dimension < 2 || dimension%2 != 0 {
		return nil, fmt.Errorf("grid dimension must be even and >= 2, got %d", dimension)
	}
	dim2 := dimension / 2
	vertexCount := 4 * (dim2 + 1) * (dim2 + 1)
	if vertexCount > maxIndexSpace {
		return nil, fmt.Errorf("grid dimension %d needs %d vertices, over the 16-bit index budget", dimension, vertexCount)
	}

	t := &GridTopology{Dimension: dimension}
	t.Vertices = make([]int16, 0, 2*vertexCount)
	t.Indices = make([]uint16, 0, 4*6*dim2*dim2)

	for _, zsign := range []int{-1, 1} {
		for _, xsign := range []int{-1, 1} {
			for z := 0; z <= dim2; z++ {
				for x := 0; x <= dim2; x++ {
					t.Vertices = append(t.Vertices, int16(xsign*x), int16(zsign*z))
				}
			}
		}
	}

	quad := 0
	for _, zsign := range []int{-1, 1} {
		for _, xsign := range []int{-1, 1} {
			for z := 0; z < dim2; z++ {
				for x := 0; x < dim2; x++ {
					// The sign flip mirrors the quadrant, which would
					// reverse the winding; emit the mirrored vertex order
					// so orientation stays uniform.
					if xsign*zsign > 0 {
						t.Indices = append(t.Indices,
							t.indexOf(quad, x, z), t.indexOf(quad, x, z+1), t.indexOf(quad, x+1, z),
							t.indexOf(quad, x+1, z), t.indexOf(quad, x, z+1), t.indexOf(quad, x+1, z+1),
						)
					} else {
						t.Indices = append(t.Indices,
							t.indexOf(quad, x, z), t.indexOf(quad, x+1, z+1), t.indexOf(quad, x, z+1),
							t.indexOf(quad, x, z), t.indexOf(quad, x+1, z), t.indexOf(quad, x+1, z+1),
						)
					}
				}
			}
			quad++
		}
	}

	return t, nil
}

func (t *GridTopology) indexOf(quad, x, z int) uint16 {
	dim2 := t.Dimension / 2
	perQuad := (dim2 + 1) * (dim2 + 1)
	return uint16(quad*perQuad + z*(dim2+1) + x)
}

// QuadIndexCount is the number of indices in one quadrant's range.
func (t *GridTopology) QuadIndexCount() int {
	dim2 := t.Dimension / 2
	return 6 * dim2 * dim2
}

// VertexAt returns the (x, z) cell offset of vertex i.
func (t *GridTopology) VertexAt(i uint16) (int16, int16) {
	return t.Vertices[2*int(i)], t.Vertices[2*int(i)+1]
}

// DrawSpan is one glDrawElements call: QuadCount quadrants' worth of
// indices starting at quadrant StartQuad's range.
type DrawSpan struct {
	StartQuad int
	QuadCount int
}

// DrawPlan returns the minimal contiguous index spans covering the
// requested quadrants. Because the quadrant ranges are laid out back to
// back in quadrant order, any subset reduces to the runs of consecutive
// selected quadrants, and with four quadrants there are never more than
// two runs. All-false returns an empty plan.
func DrawPlan(tl, tr, bl, br bool) []DrawSpan {
	selected := [4]bool{
		QuadBottomLeft:  bl,
		QuadBottomRight: br,
		QuadTopLeft:     tl,
		QuadTopRight:    tr,
	}

	var plan []DrawSpan
	for q := 0; q < 4; q++ {
		if !selected[q] {
			continue
		}
		if n := len(plan); n > 0 && plan[n-1].StartQuad+plan[n-1].QuadCount == q {
			plan[n-1].QuadCount++
		} else {
			plan = append(plan, DrawSpan{StartQuad: q, QuadCount: 1})
		}
	}
	return plan
}

// MorphOffset moves a grid offset toward the coarser (every-other-vertex)
// grid by the morph factor. At morph=1 every odd offset collapses onto the
// even neighbor below it, which is exactly a parent-level vertex position.
// The terrain vertex shader computes the same function on the GPU.
func MorphOffset(v int16, morph float32) float32 {
	f := float32(v)
	frac := f*0.5 - math32.Floor(f*0.5) // fract(v/2): 0.5 for odd offsets
	return f - frac*2*morph
}

// GridMesh owns the GPU buffers for a GridTopology.
type GridMesh struct {
	Topology *GridTopology

	vao uint32
	vbo uint32
	ebo uint32
}

// NewGridMesh builds the topology and uploads it. Requires a current GL
// context.
func NewGridMesh(dimension int) (*GridMesh, error) {
	topo, err := NewGridTopology(dimension)
	if err != nil {
		return nil, err
	}

	m := &GridMesh{Topology: topo}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(topo.Vertices)*2, unsafe.Pointer(&topo.Vertices[0]), gl.STATIC_DRAW)

	// Position (location 0): two signed shorts per vertex.
	gl.VertexAttribPointerWithOffset(0, 2, gl.SHORT, false, 4, 0)
	gl.EnableVertexAttribArray(0)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(topo.Indices)*2, unsafe.Pointer(&topo.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)

	return m, nil
}

// Render draws the requested quadrants and returns the number of draw
// calls issued (0, 1 or 2). The VAO is bound and unbound inside the call;
// no bind state leaks to the caller.
func (m *GridMesh) Render(tl, tr, bl, br bool) int {
	plan := DrawPlan(tl, tr, bl, br)
	if len(plan) == 0 {
		return 0
	}

	perQuad := m.Topology.QuadIndexCount()

	gl.BindVertexArray(m.vao)
	for _, span := range plan {
		gl.DrawElementsWithOffset(
			gl.TRIANGLES,
			int32(span.QuadCount*perQuad),
			gl.UNSIGNED_SHORT,
			uintptr(span.StartQuad*perQuad*2),
		)
	}
	gl.BindVertexArray(0)

	return len(plan)
}

// Destroy releases the GPU buffers.
func (m *GridMesh) Destroy() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
		m.vbo = 0
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
		m.ebo = 0
	}
}
