// Package blend moves every live element toward its target pose for the
// current scene state, one render frame at a time.
package blend

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/yuletide/internal/layout"
	"github.com/ayusman/yuletide/internal/scene"
)

// Blend rates in 1/s.
const (
	OrnamentRate = 2.0
	PhotoRate    = 3.0
)

const (
	spinRate       = 0.2
	pulseAmplitude = 0.1
	pulseFrequency = 2.0
	hoverScale     = 1.2
)

// Factor returns the per-frame interpolation weight for a frame of dt
// seconds at rate. It is clamped to [0, 1] so a long frame snaps to the
// target instead of overshooting it.
func Factor(dt, rate float64) float64 {
	f := dt * rate
	switch {
	case f < 0 || math.IsNaN(f):
		return 0
	case f > 1:
		return 1
	}
	return f
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func lerpVec(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// instance is the live record for one element.
type instance struct {
	el       *layout.Element
	position r3.Vec
	scale    float64
	spin     r3.Vec
	rotation quat.Number
	hovered  bool
	display  float64
}

// ElementPose is the displayed pose of one element for a single frame.
type ElementPose struct {
	ID       string          `json:"id"`
	Index    int             `json:"index"`
	Category layout.Category `json:"category"`
	Shape    layout.Shape    `json:"shape,omitempty"`
	Color    string          `json:"color,omitempty"`
	Position r3.Vec          `json:"position"`
	Rotation quat.Number     `json:"rotation"`
	Scale    float64         `json:"scale"`
	Hovered  bool            `json:"hovered,omitempty"`
}

// Engine owns the live element records. Step and Sync are meant to be
// called from the render loop only; SetHover and Snapshot may be called from
// any goroutine.
type Engine struct {
	mu        sync.Mutex
	instances []*instance
	byID      map[string]*instance
}

// NewEngine returns an engine with no instances allocated.
func NewEngine() *Engine {
	return &Engine{byID: make(map[string]*instance)}
}

// Sync allocates live records for elements beyond those already known.
// elements must be the population in insertion order. New records start at
// the origin with unit scale. It returns the number of records added.
func (e *Engine) Sync(elements []*layout.Element) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	added := 0
	for _, el := range elements[min(len(e.instances), len(elements)):] {
		in := &instance{
			el:       el,
			scale:    1,
			display:  1,
			rotation: layout.Identity,
		}
		if el.Category == layout.Ornament {
			in.rotation = layout.EulerXYZ(el.InitialRotation.X, el.InitialRotation.Y, el.InitialRotation.Z)
		}
		e.instances = append(e.instances, in)
		e.byID[el.ID] = in
		added++
	}
	return added
}

// Len returns the number of allocated records.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.instances)
}

// Step advances every record by one frame of dt seconds toward its target
// for st. elapsed is the time since start in seconds and drives the tree
// pulse. view is the viewer position in scene-local space, used to turn
// photos toward the camera. Step reports false and does nothing when no
// records have been allocated yet.
func (e *Engine) Step(st scene.State, dt, elapsed float64, view r3.Vec) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.instances) == 0 {
		return false
	}

	for _, in := range e.instances {
		switch in.el.Category {
		case layout.Ornament:
			stepOrnament(in, st, dt, elapsed)
		case layout.Photo:
			stepPhoto(in, st, dt, view)
		}
	}
	return true
}

func stepOrnament(in *instance, st scene.State, dt, elapsed float64) {
	target := in.el.Target(st)
	f := Factor(dt, OrnamentRate)

	scale := target.Scale
	if st == scene.Tree {
		scale *= 1 + pulseAmplitude*math.Sin(pulseFrequency*elapsed+float64(in.el.Index))
	}

	in.position = lerpVec(in.position, target.Position, f)
	in.scale = lerp(in.scale, scale, f)
	in.display = in.scale

	in.spin.X += dt * spinRate
	in.spin.Y += dt * spinRate
	r := in.el.InitialRotation
	in.rotation = layout.EulerXYZ(r.X+in.spin.X, r.Y+in.spin.Y, r.Z)
}

func stepPhoto(in *instance, st scene.State, dt float64, view r3.Vec) {
	target := in.el.Target(st)
	f := Factor(dt, PhotoRate)

	in.position = lerpVec(in.position, target.Position, f)
	in.scale = lerp(in.scale, target.Scale, f)

	if st == scene.Zoom && in.el.Focus {
		in.rotation = layout.Identity
	} else {
		in.rotation = Billboard(in.position, view)
	}

	in.display = in.scale
	if in.hovered && st == scene.Scatter {
		in.display *= hoverScale
	}
}

// SetHover marks the photo id as hovered or not. Hover only enlarges
// photos while scattered. It reports whether id is a known photo.
func (e *Engine) SetHover(id string, hovered bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	in, ok := e.byID[id]
	if !ok || in.el.Category != layout.Photo {
		return false
	}
	in.hovered = hovered
	return true
}

// Snapshot copies the displayed pose of every record.
func (e *Engine) Snapshot() []ElementPose {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]ElementPose, len(e.instances))
	for i, in := range e.instances {
		out[i] = ElementPose{
			ID:       in.el.ID,
			Index:    in.el.Index,
			Category: in.el.Category,
			Shape:    in.el.Shape,
			Color:    in.el.Color,
			Position: in.position,
			Rotation: in.rotation,
			Scale:    in.display,
			Hovered:  in.hovered,
		}
	}
	return out
}
