package geom

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Frustum is the six clip planes of a view-projection matrix, normals
// pointing inward.
type Frustum [6]Plane

// Frustum plane indices.
const (
	PlaneLeft = iota
	PlaneRight
	PlaneBottom
	PlaneTop
	PlaneNear
	PlaneFar
)

// FrustumFromMat4 extracts the six planes from a combined view-projection
// matrix (Gribb-Hartmann). The matrix is column-major, as mgl32 stores it.
func FrustumFromMat4(m mgl32.Mat4) Frustum {
	row := func(i int) mgl32.Vec4 {
		return mgl32.Vec4{m.At(i, 0), m.At(i, 1), m.At(i, 2), m.At(i, 3)}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	plane := func(v mgl32.Vec4) Plane {
		return Plane{Normal: mgl32.Vec3{v.X(), v.Y(), v.Z()}, D: v.W()}.Normalize()
	}

	return Frustum{
		PlaneLeft:   plane(r3.Add(r0)),
		PlaneRight:  plane(r3.Sub(r0)),
		PlaneBottom: plane(r3.Add(r1)),
		PlaneTop:    plane(r3.Sub(r1)),
		PlaneNear:   plane(r3.Add(r2)),
		PlaneFar:    plane(r3.Sub(r2)),
	}
}

// ContainsPoint reports whether p is inside all six planes.
func (f Frustum) ContainsPoint(p mgl32.Vec3) bool {
	for _, pl := range f {
		if pl.DistanceTo(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsAABB reports whether the box intersects the frustum. For each
// plane only the most positive vertex of the box is tested; if that vertex
// is behind any plane the whole box is outside.
func (f Frustum) IntersectsAABB(b AABB) bool {
	for _, pl := range f {
		v := b.Min
		if pl.Normal.X() >= 0 {
			v[0] = b.Max.X()
		}
		if pl.Normal.Y() >= 0 {
			v[1] = b.Max.Y()
		}
		if pl.Normal.Z() >= 0 {
			v[2] = b.Max.Z()
		}
		if pl.DistanceTo(v) < 0 {
			return false
		}
	}
	return true
}
