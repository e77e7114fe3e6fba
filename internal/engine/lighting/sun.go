// Package lighting provides the directional sun light feeding the terrain
// shader.
package lighting

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Sun is a directional light.
type Sun struct {
	// AzimuthDegrees rotates around the Y axis, 0 pointing down +Z.
	AzimuthDegrees float32
	// ElevationDegrees is the angle above the horizon, 0-90.
	ElevationDegrees float32

	Ambient mgl32.Vec3
	Diffuse mgl32.Vec3
}

// Default returns a mid-morning sun.
func Default() Sun {
	return Sun{
		AzimuthDegrees:   135,
		ElevationDegrees: 45,
		Ambient:          mgl32.Vec3{0.3, 0.3, 0.32},
		Diffuse:          mgl32.Vec3{1.0, 0.98, 0.9},
	}
}

// Direction returns the normalized vector pointing toward the sun.
func (s Sun) Direction() mgl32.Vec3 {
	az := mgl32.DegToRad(s.AzimuthDegrees)
	el := mgl32.DegToRad(s.ElevationDegrees)

	return mgl32.Vec3{
		math32.Cos(el) * math32.Sin(az),
		math32.Sin(el),
		math32.Cos(el) * math32.Cos(az),
	}
}
