package orbit

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/yuletide/internal/scene"
)

func TestOrbit_IdleDrift(t *testing.T) {
	o := New()
	for i := 0; i < 60; i++ {
		o.Step(scene.Tree, 1.0/60, nil)
	}
	yaw, pitch := o.Angles()
	if math.Abs(yaw-0.1) > 1e-9 {
		t.Errorf("yaw = %v, want 0.1 after one second", yaw)
	}
	if pitch != 0 {
		t.Errorf("pitch = %v, want 0 without a hand", pitch)
	}
}

func TestOrbit_Steering(t *testing.T) {
	tests := []struct {
		name    string
		hand    Hand
		wantYaw float64
	}{
		{"centered", Hand{X: 0.5, Y: 0.5}, 0.1},
		{"right", Hand{X: 1, Y: 0.5}, 0.1 + 2},
		{"left", Hand{X: 0, Y: 0.5}, 0.1 - 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New()
			h := tt.hand
			o.Step(scene.Scatter, 1, &h)
			yaw, _ := o.Angles()
			if math.Abs(yaw-tt.wantYaw) > 1e-9 {
				t.Errorf("yaw = %v, want %v", yaw, tt.wantYaw)
			}
		})
	}
}

func TestOrbit_TiltTowardHand(t *testing.T) {
	o := New()
	h := Hand{X: 0.5, Y: 1}
	for i := 0; i < 600; i++ {
		o.Step(scene.Tree, 1.0/60, &h)
	}
	if _, pitch := o.Angles(); math.Abs(pitch-0.25) > 1e-3 {
		t.Errorf("pitch = %v, want ~0.25", pitch)
	}
}

func TestOrbit_ZoomSettles(t *testing.T) {
	o := New()
	h := Hand{X: 0.9, Y: 0.9}
	for i := 0; i < 60; i++ {
		o.Step(scene.Tree, 1.0/60, &h)
	}
	for i := 0; i < 1200; i++ {
		o.Step(scene.Zoom, 1.0/60, &h)
	}
	yaw, pitch := o.Angles()
	if math.Abs(yaw) > 1e-3 || math.Abs(pitch) > 1e-3 {
		t.Errorf("angles = (%v, %v), want ~0", yaw, pitch)
	}
}

func TestOrbit_LongFrameDoesNotOvershoot(t *testing.T) {
	for _, dt := range []float64{1, 1.5, 3, 10} {
		t.Run(fmt.Sprintf("zoom dt=%v", dt), func(t *testing.T) {
			o := New()
			o.yaw, o.pitch = 1.2, -0.3
			for i := 0; i < 5; i++ {
				o.Step(scene.Zoom, dt, nil)
				yaw, pitch := o.Angles()
				if yaw < 0 || yaw > 1.2 || pitch > 0 || pitch < -0.3 {
					t.Fatalf("step %d angles = (%v, %v), overshot rest", i, yaw, pitch)
				}
			}
			if yaw, pitch := o.Angles(); yaw != 0 || pitch != 0 {
				t.Errorf("angles = (%v, %v), want snapped to rest", yaw, pitch)
			}
		})
		t.Run(fmt.Sprintf("tilt dt=%v", dt), func(t *testing.T) {
			o := New()
			h := Hand{X: 0.5, Y: 1}
			o.Step(scene.Tree, dt, &h)
			if _, pitch := o.Angles(); math.Abs(pitch-0.25) > 1e-9 {
				t.Errorf("pitch = %v, want 0.25", pitch)
			}
		})
	}
}

func TestOrbit_View(t *testing.T) {
	camera := r3.Vec{Z: 25}

	o := New()
	if v := o.View(camera); r3.Norm(r3.Sub(v, camera)) > 1e-9 {
		t.Errorf("view at rest = %+v, want %+v", v, camera)
	}

	// A quarter turn of the scene moves the camera a quarter turn the other
	// way in local space.
	o.yaw = math.Pi / 2
	v := o.View(camera)
	want := r3.Vec{X: -25}
	if r3.Norm(r3.Sub(v, want)) > 1e-9 {
		t.Errorf("view = %+v, want %+v", v, want)
	}
}

func TestSmoother(t *testing.T) {
	s := NewSmoother(1.0 / 15)

	h, err := s.Observe(0.3, 0.4)
	if err != nil {
		t.Fatal(err)
	}
	if h.X != 0.3 || h.Y != 0.4 {
		t.Errorf("first observation = %+v, want passthrough", h)
	}

	for i := 0; i < 50; i++ {
		if h, err = s.Observe(0.7, 0.6); err != nil {
			t.Fatal(err)
		}
	}
	if math.Abs(h.X-0.7) > 0.05 || math.Abs(h.Y-0.6) > 0.05 {
		t.Errorf("filtered = %+v, want near (0.7, 0.6)", h)
	}

	s.Reset()
	if h, _ = s.Observe(0.1, 0.1); h.X != 0.1 || h.Y != 0.1 {
		t.Errorf("after reset = %+v, want passthrough", h)
	}
}

func TestSmoother_SetInterval(t *testing.T) {
	s := NewSmoother(1.0 / 30)
	for i := 0; i < 30; i++ {
		if _, err := s.Observe(0.6, 0.4); err != nil {
			t.Fatal(err)
		}
	}

	s.SetInterval(1.0 / 5)
	if got := s.Interval(); got != 1.0/5 {
		t.Errorf("Interval() = %v, want %v", got, 1.0/5)
	}

	// The rebuilt filter keeps its position rather than passing the next
	// observation through.
	h, err := s.Observe(0.9, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if h.X == 0.9 && h.Y == 0.1 {
		t.Error("observation after SetInterval passed through unfiltered")
	}
	for i := 0; i < 50; i++ {
		if h, err = s.Observe(0.9, 0.1); err != nil {
			t.Fatal(err)
		}
	}
	if math.Abs(h.X-0.9) > 0.05 || math.Abs(h.Y-0.1) > 0.05 {
		t.Errorf("filtered = %+v, want near (0.9, 0.1)", h)
	}
}
