// Package orbit turns the scene around its vertical axis and tilts it,
// steered by the position of the tracked hand.
package orbit

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/yuletide/internal/layout"
	"github.com/ayusman/yuletide/internal/scene"
)

const (
	idleYawRate = 0.1
	steerGain   = 2.0
	steerRate   = 2.0
	tiltGain    = 0.5
)

// Hand is the normalized image position of the steering knuckle.
type Hand struct {
	X, Y float64
}

// Orbit holds the scene yaw and pitch. It is not safe for concurrent use;
// the render loop owns it.
type Orbit struct {
	yaw   float64
	pitch float64
}

// New returns an Orbit at rest.
func New() *Orbit {
	return &Orbit{}
}

// Step advances the orbit by dt seconds. Outside ZOOM the scene drifts
// slowly and a visible hand steers yaw and sets the tilt target. In ZOOM
// both angles ease back to zero.
func (o *Orbit) Step(st scene.State, dt float64, hand *Hand) {
	// Lerp factor; a long frame snaps instead of overshooting.
	f := min(max(dt, 0), 1)

	if st == scene.Zoom {
		o.yaw += (0 - o.yaw) * f
		o.pitch += (0 - o.pitch) * f
		return
	}

	o.yaw += dt * idleYawRate
	if hand == nil {
		return
	}

	force := (hand.X - 0.5) * steerGain
	o.yaw += force * dt * steerRate

	tilt := (hand.Y - 0.5) * tiltGain
	o.pitch += (tilt - o.pitch) * f
}

// Angles returns yaw and pitch in radians.
func (o *Orbit) Angles() (yaw, pitch float64) {
	return o.yaw, o.pitch
}

// Rotation returns the scene group orientation.
func (o *Orbit) Rotation() quat.Number {
	return layout.EulerXYZ(o.pitch, o.yaw, 0)
}

// View maps a world-space camera position into the rotated scene's local
// space.
func (o *Orbit) View(camera r3.Vec) r3.Vec {
	return r3.Rotation(quat.Conj(o.Rotation())).Rotate(camera)
}
