package shadow

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// BiasMatrix maps clip space [-1,1] to texture space [0,1] so fragments
// can sample the depth texture directly.
func BiasMatrix() mgl32.Mat4 {
	return mgl32.Mat4{
		0.5, 0.0, 0.0, 0.0,
		0.0, 0.5, 0.0, 0.0,
		0.0, 0.0, 0.5, 0.0,
		0.5, 0.5, 0.5, 1.0,
	}
}

// CascadeRadii returns the footprint radius of each cascade, finest
// first, doubling per cascade.
func CascadeRadii(count int, base float32) []float32 {
	radii := make([]float32, count)
	r := base
	for i := range radii {
		radii[i] = r
		r *= 2
	}
	return radii
}

// LightMatrix computes the view-projection of a directional light whose
// orthographic box covers a sphere of the given radius around focus.
// lightDir points toward the light.
func LightMatrix(lightDir, focus mgl32.Vec3, radius float32) mgl32.Mat4 {
	dir := lightDir.Normalize()
	pos := focus.Add(dir.Mul(radius))

	// Avoid a degenerate up vector when the light is near vertical.
	up := mgl32.Vec3{0, 1, 0}
	if math32.Abs(dir.Y()) > 0.99 {
		up = mgl32.Vec3{0, 0, 1}
	}

	view := mgl32.LookAtV(pos, focus, up)
	proj := mgl32.Ortho(-radius, radius, -radius, radius, 0, 2*radius)

	return proj.Mul4(view)
}

// SnapToTexels quantizes the focus point to shadow-texel increments so the
// shadow edges don't shimmer as the camera moves.
func SnapToTexels(focus mgl32.Vec3, radius float32, resolution int32) mgl32.Vec3 {
	if resolution <= 0 {
		return focus
	}
	texel := 2 * radius / float32(resolution)
	return mgl32.Vec3{
		math32.Floor(focus.X()/texel) * texel,
		math32.Floor(focus.Y()/texel) * texel,
		math32.Floor(focus.Z()/texel) * texel,
	}
}
