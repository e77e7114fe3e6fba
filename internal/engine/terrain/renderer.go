package terrain

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/veldt-gl/veldt/internal/engine/heightfield"
	"github.com/veldt-gl/veldt/internal/engine/lighting"
	"github.com/veldt-gl/veldt/internal/engine/shader"
)

// ShadowSource is the narrow view of the shadow collaborator the terrain
// renderer consumes: bias-adjusted matrices finest to coarsest and a
// bindable depth texture array.
type ShadowSource interface {
	Count() int
	Matrices() []mgl32.Mat4
	BindTexture(unit uint32)
	Resolution() int32
}

// FrameParams carries the per-frame state into a render pass. Everything
// is an explicit input; the renderer leaves no bindings behind.
type FrameParams struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	CameraPos  mgl32.Vec3

	Sun lighting.Sun

	// Shadows may be nil to render unshadowed.
	Shadows ShadowSource

	Wireframe bool
}

// Renderer draws the patches picked by the Selector: per-patch offset,
// scale and morph bounds feed the grid mesh vertex shader, which
// displaces by the height texture.
type Renderer struct {
	mesh *GridMesh

	program      *shader.Program
	depthProgram *shader.Program

	heightTex uint32
	fieldW    int32
	fieldH    int32

	// Main program uniforms
	locFieldSize   int32
	locOffset      int32
	locScale       int32
	locHeightScale int32
	locCameraPos   int32
	locMorphStart  int32
	locMorphEnd    int32
	locView        int32
	locProjection  int32
	locHeightMap   int32
	locSunDir      int32
	locAmbient     int32
	locDiffuse     int32
	locNumCascades int32
	locShadowCP    int32
	locShadowMap   int32

	// Depth program uniforms (same vertex shader, separate program)
	depthLocFieldSize   int32
	depthLocOffset      int32
	depthLocScale       int32
	depthLocHeightScale int32
	depthLocCameraPos   int32
	depthLocMorphStart  int32
	depthLocMorphEnd    int32
	depthLocView        int32
	depthLocProjection  int32
	depthLocHeightMap   int32

	heightScale float32
}

// NewRenderer compiles the terrain programs, uploads the height raster as
// a displacement texture and builds the grid mesh. Requires a current GL
// context.
func NewRenderer(field heightfield.Field, dimension int, heightScale float32) (*Renderer, error) {
	program, err := shader.NewProgram(terrainVertexShader, terrainFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("terrain shader: %w", err)
	}

	depthProgram, err := shader.NewProgram(terrainVertexShader, depthFragmentShader)
	if err != nil {
		program.Destroy()
		return nil, fmt.Errorf("terrain depth shader: %w", err)
	}

	mesh, err := NewGridMesh(dimension)
	if err != nil {
		program.Destroy()
		depthProgram.Destroy()
		return nil, err
	}

	r := &Renderer{
		mesh:         mesh,
		program:      program,
		depthProgram: depthProgram,
		fieldW:       int32(field.W()),
		fieldH:       int32(field.H()),
		heightScale:  heightScale,
	}

	r.locFieldSize = program.Uniform("uFieldSize")
	r.locOffset = program.Uniform("uOffset")
	r.locScale = program.Uniform("uScale")
	r.locHeightScale = program.Uniform("uHeightScale")
	r.locCameraPos = program.Uniform("uCameraPos")
	r.locMorphStart = program.Uniform("uMorphStart")
	r.locMorphEnd = program.Uniform("uMorphEnd")
	r.locView = program.Uniform("uView")
	r.locProjection = program.Uniform("uProjection")
	r.locHeightMap = program.Uniform("uHeightMap")
	r.locSunDir = program.Uniform("uSunDir")
	r.locAmbient = program.Uniform("uAmbient")
	r.locDiffuse = program.Uniform("uDiffuse")
	r.locNumCascades = program.Uniform("uNumCascades")
	r.locShadowCP = program.Uniform("uShadowCP")
	r.locShadowMap = program.Uniform("uShadowMap")

	r.depthLocFieldSize = depthProgram.Uniform("uFieldSize")
	r.depthLocOffset = depthProgram.Uniform("uOffset")
	r.depthLocScale = depthProgram.Uniform("uScale")
	r.depthLocHeightScale = depthProgram.Uniform("uHeightScale")
	r.depthLocCameraPos = depthProgram.Uniform("uCameraPos")
	r.depthLocMorphStart = depthProgram.Uniform("uMorphStart")
	r.depthLocMorphEnd = depthProgram.Uniform("uMorphEnd")
	r.depthLocView = depthProgram.Uniform("uView")
	r.depthLocProjection = depthProgram.Uniform("uProjection")
	r.depthLocHeightMap = depthProgram.Uniform("uHeightMap")

	r.uploadHeightTexture(field)

	return r, nil
}

// uploadHeightTexture uploads the raster as a single-channel float texture
// for vertex displacement and normal reconstruction.
func (r *Renderer) uploadHeightTexture(field heightfield.Field) {
	data := field.Data()

	gl.GenTextures(1, &r.heightTex)
	gl.BindTexture(gl.TEXTURE_2D, r.heightTex)
	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.R32F,
		r.fieldW,
		r.fieldH,
		0,
		gl.RED,
		gl.FLOAT,
		unsafe.Pointer(&data[0]),
	)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// HeightTexture returns the GL handle of the displacement texture.
func (r *Renderer) HeightTexture() uint32 {
	return r.heightTex
}

// Render draws the selected patches and returns the number of draw calls
// issued. All GL bindings are set up and torn down inside the call.
func (r *Renderer) Render(p FrameParams, patches []Patch) int {
	if len(patches) == 0 {
		return 0
	}

	r.program.Use()

	gl.UniformMatrix4fv(r.locView, 1, false, &p.View[0])
	gl.UniformMatrix4fv(r.locProjection, 1, false, &p.Projection[0])
	gl.Uniform3f(r.locCameraPos, p.CameraPos.X(), p.CameraPos.Y(), p.CameraPos.Z())
	gl.Uniform2f(r.locFieldSize, float32(r.fieldW), float32(r.fieldH))
	gl.Uniform1f(r.locHeightScale, r.heightScale)

	sunDir := p.Sun.Direction()
	gl.Uniform3f(r.locSunDir, sunDir.X(), sunDir.Y(), sunDir.Z())
	gl.Uniform3f(r.locAmbient, p.Sun.Ambient.X(), p.Sun.Ambient.Y(), p.Sun.Ambient.Z())
	gl.Uniform3f(r.locDiffuse, p.Sun.Diffuse.X(), p.Sun.Diffuse.Y(), p.Sun.Diffuse.Z())

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.heightTex)
	gl.Uniform1i(r.locHeightMap, 0)

	if p.Shadows != nil && p.Shadows.Count() > 0 {
		matrices := p.Shadows.Matrices()
		gl.Uniform1i(r.locNumCascades, int32(len(matrices)))
		gl.UniformMatrix4fv(r.locShadowCP, int32(len(matrices)), false, &matrices[0][0])
		p.Shadows.BindTexture(gl.TEXTURE1)
		gl.Uniform1i(r.locShadowMap, 1)
	} else {
		gl.Uniform1i(r.locNumCascades, 0)
	}

	if p.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	}

	draws := r.drawPatches(patches, r.locOffset, r.locScale, r.locMorphStart, r.locMorphEnd)

	if p.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	// Leave no bindings behind for the next subsystem.
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.UseProgram(0)

	return draws
}

// RenderDepth draws the patches into the current depth-only framebuffer
// for one shadow cascade. The camera position must match the main pass so
// the morphed geometry is identical in both.
func (r *Renderer) RenderDepth(lightViewProj mgl32.Mat4, cameraPos mgl32.Vec3, patches []Patch) {
	if len(patches) == 0 {
		return
	}

	r.depthProgram.Use()

	identity := mgl32.Ident4()
	gl.UniformMatrix4fv(r.depthLocView, 1, false, &identity[0])
	gl.UniformMatrix4fv(r.depthLocProjection, 1, false, &lightViewProj[0])
	gl.Uniform3f(r.depthLocCameraPos, cameraPos.X(), cameraPos.Y(), cameraPos.Z())
	gl.Uniform2f(r.depthLocFieldSize, float32(r.fieldW), float32(r.fieldH))
	gl.Uniform1f(r.depthLocHeightScale, r.heightScale)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.heightTex)
	gl.Uniform1i(r.depthLocHeightMap, 0)

	r.drawPatches(patches, r.depthLocOffset, r.depthLocScale, r.depthLocMorphStart, r.depthLocMorphEnd)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.UseProgram(0)
}

func (r *Renderer) drawPatches(patches []Patch, locOffset, locScale, locMorphStart, locMorphEnd int32) int {
	dimension := float32(r.mesh.Topology.Dimension)

	draws := 0
	for _, patch := range patches {
		gl.Uniform2f(locOffset, patch.CenterX, patch.CenterZ)
		gl.Uniform1f(locScale, patch.Size/dimension)
		gl.Uniform1f(locMorphStart, patch.MorphStart)
		gl.Uniform1f(locMorphEnd, patch.MorphEnd)

		draws += r.mesh.Render(patch.TL, patch.TR, patch.BL, patch.BR)
	}
	return draws
}

// Destroy releases the GPU resources.
func (r *Renderer) Destroy() {
	if r.heightTex != 0 {
		gl.DeleteTextures(1, &r.heightTex)
		r.heightTex = 0
	}
	if r.mesh != nil {
		r.mesh.Destroy()
	}
	if r.program != nil {
		r.program.Destroy()
	}
	if r.depthProgram != nil {
		r.depthProgram.Destroy()
	}
}
