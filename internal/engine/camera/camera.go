// Package camera provides the cameras used by the terrain viewer.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/veldt-gl/veldt/internal/engine/geom"
)

// Lens holds the perspective projection parameters shared by all cameras.
type Lens struct {
	FOVDegrees float32
	Aspect     float32
	Near       float32
	Far        float32
}

// Projection returns the perspective projection matrix.
func (l Lens) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(l.FOVDegrees), l.Aspect, l.Near, l.Far)
}

// maxPitch keeps the fly camera away from the poles where the look-at up
// vector degenerates.
const maxPitch = 1.55

// Fly is a free-flying camera driven by mouse look and WASD movement.
type Fly struct {
	Position mgl32.Vec3
	Yaw      float32 // radians, 0 looks down +Z
	Pitch    float32 // radians, positive looks up

	MoveSpeed   float32 // world units per second
	Sensitivity float32 // radians per mouse count
}

// NewFly creates a fly camera at the given position looking toward +Z.
func NewFly(pos mgl32.Vec3) *Fly {
	return &Fly{
		Position:    pos,
		MoveSpeed:   200,
		Sensitivity: 0.0025,
	}
}

// Forward returns the normalized view direction.
func (c *Fly) Forward() mgl32.Vec3 {
	cp := math32.Cos(c.Pitch)
	return mgl32.Vec3{
		cp * math32.Sin(c.Yaw),
		math32.Sin(c.Pitch),
		cp * math32.Cos(c.Yaw),
	}
}

// Right returns the normalized right direction on the XZ plane.
func (c *Fly) Right() mgl32.Vec3 {
	return mgl32.Vec3{math32.Cos(c.Yaw), 0, -math32.Sin(c.Yaw)}
}

// HandleMouse rotates the view by a relative mouse motion.
func (c *Fly) HandleMouse(dx, dy float32) {
	c.Yaw -= dx * c.Sensitivity
	c.Pitch -= dy * c.Sensitivity

	if c.Pitch > maxPitch {
		c.Pitch = maxPitch
	}
	if c.Pitch < -maxPitch {
		c.Pitch = -maxPitch
	}
}

// Move translates the camera along its own axes. forward/right/up are
// -1..1 input axes; dt is the frame time in seconds.
func (c *Fly) Move(forward, right, up, dt float32) {
	step := c.MoveSpeed * dt
	c.Position = c.Position.
		Add(c.Forward().Mul(forward * step)).
		Add(c.Right().Mul(right * step)).
		Add(mgl32.Vec3{0, up * step, 0})
}

// ViewMatrix returns the view matrix for this camera.
func (c *Fly) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Forward()), mgl32.Vec3{0, 1, 0})
}

// Frustum returns the camera's six clip planes for the given lens.
func (c *Fly) Frustum(lens Lens) geom.Frustum {
	return geom.FrustumFromMat4(lens.Projection().Mul4(c.ViewMatrix()))
}

// Orbit circles a center point, used for the terrain overview mode.
type Orbit struct {
	Center mgl32.Vec3

	// Spherical coordinates
	Distance float32
	Pitch    float32 // vertical angle, radians
	Yaw      float32 // horizontal angle, radians

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbit creates an orbit camera with default settings.
func NewOrbit() *Orbit {
	return &Orbit{
		Distance:        2000,
		Pitch:           0.6,
		MinDistance:     50,
		MaxDistance:     20000,
		MinPitch:        0.1,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *Orbit) Position() mgl32.Vec3 {
	cp := math32.Cos(c.Pitch)
	offset := mgl32.Vec3{
		c.Distance * cp * math32.Sin(c.Yaw),
		c.Distance * math32.Sin(c.Pitch),
		c.Distance * cp * math32.Cos(c.Yaw),
	}
	return c.Center.Add(offset)
}

// ViewMatrix returns the view matrix for this camera.
func (c *Orbit) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Center, mgl32.Vec3{0, 1, 0})
}

// Frustum returns the camera's six clip planes for the given lens.
func (c *Orbit) Frustum(lens Lens) geom.Frustum {
	return geom.FrustumFromMat4(lens.Projection().Mul4(c.ViewMatrix()))
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *Orbit) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch += deltaY * c.DragSensitivity

	// Clamp pitch
	if c.Pitch < c.MinPitch {
		c.Pitch = c.MinPitch
	}
	if c.Pitch > c.MaxPitch {
		c.Pitch = c.MaxPitch
	}
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *Orbit) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}

// FitToBounds adjusts the camera to view the given bounding box.
func (c *Orbit) FitToBounds(box geom.AABB) {
	c.Center = box.Center()

	size := box.Max.X() - box.Min.X()
	if d := box.Max.Z() - box.Min.Z(); d > size {
		size = d
	}

	c.Distance = size * 0.8
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	c.Pitch = 0.6
	c.Yaw = 0
}
