package blend

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/yuletide/internal/layout"
	"github.com/ayusman/yuletide/internal/scene"
)

var camera = r3.Vec{Z: 25}

func newEngine(t *testing.T, ornaments int, photos ...string) (*Engine, *layout.Population) {
	t.Helper()
	pop := layout.NewPopulation(layout.NewGenerator(layout.DefaultDimensions(), 11))
	pop.AddOrnaments(ornaments)
	pop.AddPhotos(photos...)
	e := NewEngine()
	e.Sync(pop.Elements())
	return e, pop
}

func TestFactor(t *testing.T) {
	tests := []struct {
		dt, rate, want float64
	}{
		{0.016, 2, 0.032},
		{0.5, 3, 1},
		{2, 2, 1},
		{0, 2, 0},
		{-1, 2, 0},
		{math.NaN(), 2, 0},
	}
	for _, tt := range tests {
		if got := Factor(tt.dt, tt.rate); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Factor(%v, %v) = %v, want %v", tt.dt, tt.rate, got, tt.want)
		}
	}
}

func TestStep_SkipsWhenUnallocated(t *testing.T) {
	e := NewEngine()
	if e.Step(scene.Tree, 0.016, 0, camera) {
		t.Error("Step should skip before any records exist")
	}
	e.Sync(nil)
	if e.Step(scene.Tree, 0.016, 0, camera) {
		t.Error("Step should skip after an empty sync")
	}
	if len(e.Snapshot()) != 0 {
		t.Error("snapshot of empty engine should be empty")
	}
}

func TestSync_Incremental(t *testing.T) {
	e, pop := newEngine(t, 5, "a")
	if e.Len() != 6 {
		t.Fatalf("Len = %d, want 6", e.Len())
	}

	pop.AddPhotos("b", "c")
	if added := e.Sync(pop.Elements()); added != 2 {
		t.Errorf("added = %d, want 2", added)
	}
	if added := e.Sync(pop.Elements()); added != 0 {
		t.Errorf("second sync added %d, want 0", added)
	}

	for _, p := range e.Snapshot() {
		if p.Position != (r3.Vec{}) {
			t.Errorf("%s starts at %+v, want origin", p.ID, p.Position)
		}
		if p.Scale != 1 {
			t.Errorf("%s starts at scale %v, want 1", p.ID, p.Scale)
		}
	}
}

func TestStep_Converges(t *testing.T) {
	for _, st := range scene.States {
		for _, from := range scene.States {
			if from == st {
				continue
			}
			for _, dt := range []float64{1.0 / 144, 1.0 / 60, 1.0 / 20} {
				name := fmt.Sprintf("%s from %s at %.0f fps", st, from, 1/dt)
				t.Run(name, func(t *testing.T) {
					e, pop := newEngine(t, 20, "a", "b", "c")

					// Start part way toward another state, away from the origin.
					for i := 0; i < 7; i++ {
						e.Step(from, 1.0/30, 0, camera)
					}

					prev := distances(e, pop, st)
					for i := 0; i < int(12/dt); i++ {
						if !e.Step(st, dt, 0, camera) {
							t.Fatal("Step skipped")
						}
						cur := distances(e, pop, st)
						for j := range cur {
							if cur[j].position > prev[j].position+1e-12 || cur[j].scale > prev[j].scale+1e-12 {
								t.Fatalf("frame %d element %d moved away: %+v -> %+v", i, j, prev[j], cur[j])
							}
						}
						prev = cur
					}
					for j, d := range prev {
						if d.position > 1e-3 || d.scale > 1e-3 {
							t.Errorf("element %d still %+v from target", j, d)
						}
					}
				})
			}
		}
	}
}

type distance struct {
	position, scale float64
}

// distances measures every record against its target for st. Steps must be
// taken with elapsed 0 so the tree pulse is a fixed factor.
func distances(e *Engine, pop *layout.Population, st scene.State) []distance {
	els := pop.Elements()
	snap := e.Snapshot()
	out := make([]distance, len(snap))
	for i, p := range snap {
		target := els[i].Target(st)
		scale := target.Scale
		if st == scene.Tree && els[i].Category == layout.Ornament {
			scale *= 1 + pulseAmplitude*math.Sin(float64(els[i].Index))
		}
		out[i] = distance{
			position: r3.Norm(r3.Sub(p.Position, target.Position)),
			scale:    math.Abs(p.Scale - scale),
		}
	}
	return out
}

func TestStep_ScatterTargetIsStable(t *testing.T) {
	e, pop := newEngine(t, 12, "a", "b")
	els := pop.Elements()

	var first []r3.Vec
	for round := 0; round < 2; round++ {
		e.Step(scene.Tree, 1, 0, camera)
		e.Step(scene.Scatter, 1, 0, camera)

		snap := e.Snapshot()
		got := make([]r3.Vec, len(snap))
		for i, p := range snap {
			got[i] = p.Position
			if want := els[i].Target(scene.Scatter).Position; r3.Norm(r3.Sub(p.Position, want)) > 1e-9 {
				t.Errorf("round %d: %s at %+v, want %+v", round, p.ID, p.Position, want)
			}
		}
		if first == nil {
			first = got
			continue
		}
		for i := range got {
			if r3.Norm(r3.Sub(got[i], first[i])) > 1e-9 {
				t.Errorf("%s scattered to %+v, first time %+v", snap[i].ID, got[i], first[i])
			}
		}
	}
}

func TestStep_NoOvershoot(t *testing.T) {
	e, pop := newEngine(t, 10, "a", "b")

	// A one second frame exceeds 1/rate for both categories and must snap.
	e.Step(scene.Scatter, 1, 0, camera)
	els := pop.Elements()
	for i, p := range e.Snapshot() {
		want := els[i].Target(scene.Scatter)
		if r3.Norm(r3.Sub(p.Position, want.Position)) > 1e-9 {
			t.Errorf("%s at %+v, want %+v", p.ID, p.Position, want.Position)
		}
		if math.Abs(p.Scale-want.Scale) > 1e-9 {
			t.Errorf("%s scale %v, want %v", p.ID, p.Scale, want.Scale)
		}
	}
}

func TestStep_FrameRateIndependent(t *testing.T) {
	run := func(fps int) r3.Vec {
		e, _ := newEngine(t, 0, "a")
		dt := 1 / float64(fps)
		for i := 0; i < 2*fps; i++ {
			e.Step(scene.Scatter, dt, float64(i)*dt, camera)
		}
		return e.Snapshot()[0].Position
	}

	a, b := run(30), run(120)
	if d := r3.Norm(r3.Sub(a, b)); d > 0.05 {
		t.Errorf("30fps and 120fps diverge by %v", d)
	}
}

func TestStep_TreePulse(t *testing.T) {
	e, pop := newEngine(t, 1)
	el := pop.Elements()[0]

	// Snap so the displayed scale equals the pulsed target.
	e.Step(scene.Tree, 1, math.Pi/4, camera)
	want := el.BaseScale * (1 + 0.1*math.Sin(2*math.Pi/4+0))
	if got := e.Snapshot()[0].Scale; math.Abs(got-want) > 1e-9 {
		t.Errorf("tree scale = %v, want %v", got, want)
	}

	e.Step(scene.Scatter, 1, math.Pi/4, camera)
	if got := e.Snapshot()[0].Scale; math.Abs(got-el.BaseScale) > 1e-9 {
		t.Errorf("scatter scale = %v, want base %v", got, el.BaseScale)
	}
}

func TestStep_OrnamentSpins(t *testing.T) {
	e, _ := newEngine(t, 1)
	e.Step(scene.Tree, 0.1, 0, camera)
	a := e.Snapshot()[0].Rotation
	e.Step(scene.Tree, 0.1, 0.1, camera)
	b := e.Snapshot()[0].Rotation
	if a == b {
		t.Error("ornament rotation did not advance")
	}
	if math.Abs(quat.Abs(b)-1) > 1e-9 {
		t.Errorf("|rotation| = %v, want 1", quat.Abs(b))
	}
}

func TestStep_ZoomFocusUpright(t *testing.T) {
	e, _ := newEngine(t, 0, "focus", "other")
	e.Step(scene.Zoom, 1, 0, camera)

	snap := e.Snapshot()
	if snap[0].Rotation != layout.Identity {
		t.Errorf("focus rotation = %v, want identity", snap[0].Rotation)
	}
	if snap[0].Position != layout.FocusPosition || snap[0].Scale != layout.FocusScale {
		t.Errorf("focus pose = %+v", snap[0])
	}

	// Non-focus photos face the viewer.
	facing := r3.Rotation(snap[1].Rotation).Rotate(r3.Vec{Z: 1})
	want := r3.Unit(r3.Sub(camera, snap[1].Position))
	if r3.Norm(r3.Sub(facing, want)) > 1e-6 {
		t.Errorf("photo faces %+v, want %+v", facing, want)
	}
}

func TestSetHover(t *testing.T) {
	e, _ := newEngine(t, 0, "a")
	if e.SetHover("missing", true) {
		t.Error("SetHover on unknown id should report false")
	}
	if !e.SetHover("a", true) {
		t.Fatal("SetHover on known id should report true")
	}

	e.Step(scene.Scatter, 1, 0, camera)
	if got := e.Snapshot()[0].Scale; math.Abs(got-layout.PhotoScatterScale*1.2) > 1e-9 {
		t.Errorf("hovered scatter scale = %v, want %v", got, layout.PhotoScatterScale*1.2)
	}

	// The blended scale is untouched, so leaving SCATTER drops the boost.
	e.Step(scene.Tree, 1, 0, camera)
	if got := e.Snapshot()[0].Scale; math.Abs(got-layout.PhotoTreeScale) > 1e-9 {
		t.Errorf("hovered tree scale = %v, want %v", got, layout.PhotoTreeScale)
	}
}

func TestSetHover_PhotosOnly(t *testing.T) {
	e, _ := newEngine(t, 3, "a")
	if e.SetHover("ornament-1", true) {
		t.Error("SetHover on an ornament should report false")
	}
	e.Step(scene.Scatter, 1, 0, camera)
	for _, p := range e.Snapshot() {
		if p.Category == layout.Ornament && p.Hovered {
			t.Errorf("%s reported hovered", p.ID)
		}
	}
}

func TestBillboard(t *testing.T) {
	tests := []struct {
		name     string
		from, to r3.Vec
	}{
		{"straight ahead", r3.Vec{}, r3.Vec{Z: 25}},
		{"behind", r3.Vec{}, r3.Vec{Z: -10}},
		{"side", r3.Vec{X: 3, Y: 1}, r3.Vec{X: -5, Z: 2}},
		{"above", r3.Vec{}, r3.Vec{Y: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Billboard(tt.from, tt.to)
			if math.Abs(quat.Abs(q)-1) > 1e-9 {
				t.Fatalf("|q| = %v", quat.Abs(q))
			}
			got := r3.Rotation(q).Rotate(r3.Vec{Z: 1})
			want := r3.Unit(r3.Sub(tt.to, tt.from))
			if r3.Norm(r3.Sub(got, want)) > 1e-6 {
				t.Errorf("+Z maps to %+v, want %+v", got, want)
			}
		})
	}

	if q := Billboard(r3.Vec{X: 1}, r3.Vec{X: 1}); q != layout.Identity {
		t.Errorf("degenerate billboard = %v, want identity", q)
	}
}
