// Package geom provides the plane, frustum and bounding-box math used by
// terrain culling.
package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Center returns the center point of the box.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Contains reports whether p lies inside the box (inclusive).
func (b AABB) Contains(p mgl32.Vec3) bool {
	return p.X() >= b.Min.X() && p.X() <= b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y() &&
		p.Z() >= b.Min.Z() && p.Z() <= b.Max.Z()
}

// ClosestPoint returns the point of the box nearest to p.
func (b AABB) ClosestPoint(p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		math32.Min(math32.Max(p.X(), b.Min.X()), b.Max.X()),
		math32.Min(math32.Max(p.Y(), b.Min.Y()), b.Max.Y()),
		math32.Min(math32.Max(p.Z(), b.Min.Z()), b.Max.Z()),
	}
}

// Distance returns the distance from p to the box surface, 0 if p is inside.
func (b AABB) Distance(p mgl32.Vec3) float32 {
	return b.ClosestPoint(p).Sub(p).Len()
}

// Plane is a half-space ax+by+cz+d >= 0 with a normalized normal.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// Normalize scales the plane so the normal has unit length.
func (p Plane) Normalize() Plane {
	l := p.Normal.Len()
	if l == 0 {
		return p
	}
	return Plane{Normal: p.Normal.Mul(1 / l), D: p.D / l}
}

// DistanceTo returns the signed distance from the plane to a point.
func (p Plane) DistanceTo(v mgl32.Vec3) float32 {
	return p.Normal.Dot(v) + p.D
}
