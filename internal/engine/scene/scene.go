// Package scene composes entities from typed behavior records. Dispatch
// runs over a closed set of behavior kinds instead of an inheritance
// tree, so an entity is exactly the sum of the records attached to it.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/veldt-gl/veldt/internal/engine/geom"
	"github.com/veldt-gl/veldt/internal/engine/input"
)

// Kind tags a behavior record. The set is closed: the scene knows how to
// dispatch exactly these.
type Kind int

const (
	KindUpdate Kind = iota
	KindRender
	KindInput
)

// RenderContext carries the per-frame camera state into render behaviors.
// All of it is explicit input; render behaviors must not assume any
// ambient GL state beyond a current context.
type RenderContext struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	ViewProj   mgl32.Mat4
	CameraPos  mgl32.Vec3
	Frustum    geom.Frustum
	Delta      float32
}

// UpdateFunc advances an entity by dt seconds.
type UpdateFunc func(dt float32)

// RenderFunc draws an entity.
type RenderFunc func(ctx RenderContext)

// InputFunc reacts to an input event; returning true consumes it.
type InputFunc func(ev input.Event) bool

// Behavior is one typed record. Exactly the field matching Kind is set.
type Behavior struct {
	Kind   Kind
	Update UpdateFunc
	Render RenderFunc
	Input  InputFunc
}

// Entity is a named bag of behavior records.
type Entity struct {
	Name      string
	behaviors []Behavior
}

// NewEntity creates an empty entity.
func NewEntity(name string) *Entity {
	return &Entity{Name: name}
}

// OnUpdate attaches an update record. Returns the entity for chaining.
func (e *Entity) OnUpdate(fn UpdateFunc) *Entity {
	e.behaviors = append(e.behaviors, Behavior{Kind: KindUpdate, Update: fn})
	return e
}

// OnRender attaches a render record.
func (e *Entity) OnRender(fn RenderFunc) *Entity {
	e.behaviors = append(e.behaviors, Behavior{Kind: KindRender, Render: fn})
	return e
}

// OnInput attaches an input record.
func (e *Entity) OnInput(fn InputFunc) *Entity {
	e.behaviors = append(e.behaviors, Behavior{Kind: KindInput, Input: fn})
	return e
}

// Scene dispatches over its entities in insertion order.
type Scene struct {
	entities []*Entity
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{}
}

// Add appends an entity. Entities update, render and receive input in the
// order they were added.
func (s *Scene) Add(e *Entity) {
	s.entities = append(s.entities, e)
}

// Update runs all update records.
func (s *Scene) Update(dt float32) {
	for _, e := range s.entities {
		for _, b := range e.behaviors {
			if b.Kind == KindUpdate {
				b.Update(dt)
			}
		}
	}
}

// Render runs all render records.
func (s *Scene) Render(ctx RenderContext) {
	for _, e := range s.entities {
		for _, b := range e.behaviors {
			if b.Kind == KindRender {
				b.Render(ctx)
			}
		}
	}
}

// DispatchInput offers the event to input records in order until one
// consumes it. Returns whether the event was consumed.
func (s *Scene) DispatchInput(ev input.Event) bool {
	for _, e := range s.entities {
		for _, b := range e.behaviors {
			if b.Kind == KindInput && b.Input(ev) {
				return true
			}
		}
	}
	return false
}
