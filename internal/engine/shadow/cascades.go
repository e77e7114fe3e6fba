// Package shadow provides cascaded shadow maps for the terrain renderer.
// The terrain side consumes a narrow view of it: cascade count, the
// bias-adjusted matrices and a bindable depth texture array.
package shadow

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxCascades bounds the depth texture array and the shader-side matrix
// array.
const MaxCascades = 4

// DefaultResolution is the default per-cascade resolution.
const DefaultResolution = 2048

// Cascades owns a depth texture array with one layer per cascade and a
// framebuffer per layer. Layers are rendered finest first.
type Cascades struct {
	tex        uint32
	fbos       []uint32
	resolution int32

	// Bias-adjusted light view-projection per layer, finest to coarsest.
	matrices [MaxCascades]mgl32.Mat4

	// Layers written this frame. -1 outside a Begin/End bracket.
	current int
	used    int

	prevViewport [4]int32
}

// NewCascades allocates the depth texture array and per-layer framebuffers.
// Requires a current GL context.
func NewCascades(resolution int32, count int) (*Cascades, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("shadow resolution must be positive, got %d", resolution)
	}
	if count < 1 || count > MaxCascades {
		return nil, fmt.Errorf("cascade count %d outside [1, %d]", count, MaxCascades)
	}

	c := &Cascades{
		resolution: resolution,
		fbos:       make([]uint32, count),
		current:    -1,
	}

	gl.GenTextures(1, &c.tex)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, c.tex)
	gl.TexImage3D(
		gl.TEXTURE_2D_ARRAY,
		0,
		gl.DEPTH_COMPONENT24,
		resolution,
		resolution,
		int32(count),
		0,
		gl.DEPTH_COMPONENT,
		gl.FLOAT,
		nil,
	)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	// Comparison mode for sampler2DArrayShadow
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)

	gl.GenFramebuffers(int32(count), &c.fbos[0])
	for i := range c.fbos {
		gl.BindFramebuffer(gl.FRAMEBUFFER, c.fbos[i])
		gl.FramebufferTextureLayer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, c.tex, 0, int32(i))

		// No color output in the depth pass
		gl.DrawBuffer(gl.NONE)
		gl.ReadBuffer(gl.NONE)

		if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
			gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
			c.Destroy()
			return nil, fmt.Errorf("cascade %d framebuffer incomplete: 0x%x", i, status)
		}
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, 0)

	return c, nil
}

// Begin starts the depth pass on the finest cascade: binds its
// framebuffer, sets the shadow viewport and switches to front-face culling
// to reduce acne. Must be paired with End.
func (c *Cascades) Begin() {
	gl.GetIntegerv(gl.VIEWPORT, &c.prevViewport[0])

	c.current = 0
	c.used = 1

	gl.BindFramebuffer(gl.FRAMEBUFFER, c.fbos[0])
	gl.Viewport(0, 0, c.resolution, c.resolution)
	gl.Clear(gl.DEPTH_BUFFER_BIT)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.FRONT)
}

// Push advances to the next cascade layer. Running past the configured
// cascade count is reported as an error the caller decides about, not a
// panic.
func (c *Cascades) Push() error {
	if c.current < 0 {
		return fmt.Errorf("shadow push outside Begin/End")
	}
	if c.current+1 >= len(c.fbos) {
		return fmt.Errorf("shadow cascade capacity %d exceeded", len(c.fbos))
	}

	c.current++
	c.used++
	gl.BindFramebuffer(gl.FRAMEBUFFER, c.fbos[c.current])
	gl.Clear(gl.DEPTH_BUFFER_BIT)
	return nil
}

// SetMatrix records the bias-adjusted light view-projection for the layer
// currently being rendered.
func (c *Cascades) SetMatrix(m mgl32.Mat4) {
	if c.current >= 0 {
		c.matrices[c.current] = m
	}
}

// End closes the depth pass: unbinds the framebuffer and restores the
// viewport and back-face culling.
func (c *Cascades) End() {
	c.current = -1

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(c.prevViewport[0], c.prevViewport[1], c.prevViewport[2], c.prevViewport[3])
	gl.CullFace(gl.BACK)
}

// Count returns the number of cascades rendered in the last pass.
func (c *Cascades) Count() int {
	return c.used
}

// Matrices returns the bias-adjusted matrices for the rendered cascades,
// finest to coarsest.
func (c *Cascades) Matrices() []mgl32.Mat4 {
	return c.matrices[:c.used]
}

// BindTexture binds the depth texture array to the given texture unit.
func (c *Cascades) BindTexture(unit uint32) {
	gl.ActiveTexture(unit)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, c.tex)
}

// Resolution returns the per-cascade texture size.
func (c *Cascades) Resolution() int32 {
	return c.resolution
}

// Destroy releases all GPU resources.
func (c *Cascades) Destroy() {
	if c.tex != 0 {
		gl.DeleteTextures(1, &c.tex)
		c.tex = 0
	}
	if len(c.fbos) > 0 && c.fbos[0] != 0 {
		gl.DeleteFramebuffers(int32(len(c.fbos)), &c.fbos[0])
		for i := range c.fbos {
			c.fbos[i] = 0
		}
	}
}
