package layout

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/yuletide/internal/scene"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestTreePosition_Spiral(t *testing.T) {
	d := DefaultDimensions()
	n := 400

	first := TreePosition(d, Ornament, 0, n)
	if !near(first.Y, -d.TreeHeight/2) {
		t.Errorf("first y = %v, want %v", first.Y, -d.TreeHeight/2)
	}
	// At the base the radius is the full tree radius and the angle is zero.
	if !near(first.X, d.TreeRadius) || !near(first.Z, 0) {
		t.Errorf("first = %+v, want (%v, _, 0)", first, d.TreeRadius)
	}

	prevY := first.Y
	prevR := math.Hypot(first.X, first.Z)
	for i := 1; i < n; i++ {
		p := TreePosition(d, Ornament, i, n)
		r := math.Hypot(p.X, p.Z)
		if p.Y <= prevY {
			t.Fatalf("element %d: height %v not above %v", i, p.Y, prevY)
		}
		if r >= prevR {
			t.Fatalf("element %d: radius %v not below %v", i, r, prevR)
		}
		prevY, prevR = p.Y, r
	}
}

func TestTreePosition_PhotoOffsets(t *testing.T) {
	d := DefaultDimensions()
	p := TreePosition(d, Photo, 0, 4)

	wantY := -d.TreeHeight/2 + PhotoLift
	if !near(p.Y, wantY) {
		t.Errorf("y = %v, want %v", p.Y, wantY)
	}
	wantR := (d.TreeHeight/2-wantY)/d.TreeHeight*d.TreeRadius + PhotoPush
	if got := math.Hypot(p.X, p.Z); !near(got, wantR) {
		t.Errorf("radius = %v, want %v", got, wantR)
	}

	q := TreePosition(d, Photo, 1, 4)
	if got := math.Atan2(q.Z, q.X); !near(got, PhotoAngleStep-2*math.Pi) && !near(got, PhotoAngleStep) {
		t.Errorf("angle = %v, want %v mod 2pi", got, PhotoAngleStep)
	}
}

func TestTreePosition_ZeroTotal(t *testing.T) {
	d := DefaultDimensions()
	// n <= 0 is treated as i+1, never dividing by zero.
	p := TreePosition(d, Ornament, 0, 0)
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) {
		t.Fatalf("got NaN position %+v", p)
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(DefaultDimensions(), 42)
	b := NewGenerator(DefaultDimensions(), 42)

	for i := 0; i < 20; i++ {
		ea, eb := a.Ornament(i, 20), b.Ornament(i, 20)
		if ea.Targets != eb.Targets || ea.Shape != eb.Shape || ea.Color != eb.Color {
			t.Fatalf("ornament %d differs between equal seeds", i)
		}
	}
}

func TestGenerator_OrnamentScatterInsideBall(t *testing.T) {
	d := DefaultDimensions()
	g := NewGenerator(d, 7)
	for i := 0; i < 500; i++ {
		e := g.Ornament(i, 500)
		p := e.Targets[scene.Scatter].Position
		if r3.Norm(p) > d.ScatterRadius+eps {
			t.Fatalf("ornament %d scatter %+v outside radius %v", i, p, d.ScatterRadius)
		}
		if e.Targets[scene.Zoom] != e.Targets[scene.Scatter] {
			t.Fatalf("ornament %d zoom target differs from scatter", i)
		}
		if e.BaseScale < 0.1 || e.BaseScale >= 0.5 {
			t.Fatalf("ornament %d base scale %v out of range", i, e.BaseScale)
		}
		switch e.Color {
		case ColorGreen, ColorRed, ColorGold:
		default:
			t.Fatalf("ornament %d unexpected color %q", i, e.Color)
		}
	}
}

func TestGenerator_PhotoTargets(t *testing.T) {
	d := DefaultDimensions()
	g := NewGenerator(d, 1)

	focus := g.Photo("a", 0, 3)
	if !focus.Focus {
		t.Fatal("photo 0 should be the focus")
	}
	z := focus.Targets[scene.Zoom]
	if z.Position != FocusPosition || z.Scale != FocusScale {
		t.Errorf("focus zoom = %+v, want %v scale %v", z, FocusPosition, FocusScale)
	}
	if z.Rotation != Identity {
		t.Errorf("focus rotation = %v, want identity", z.Rotation)
	}

	other := g.Photo("b", 1, 3)
	if other.Focus {
		t.Fatal("photo 1 should not be the focus")
	}
	s := other.Targets[scene.Scatter]
	oz := other.Targets[scene.Zoom]
	want := r3.Scale(ZoomPush, s.Position)
	if r3.Norm(r3.Sub(oz.Position, want)) > eps {
		t.Errorf("zoom position = %+v, want %+v", oz.Position, want)
	}
	if oz.Scale != ZoomScale || s.Scale != PhotoScatterScale || other.Targets[scene.Tree].Scale != PhotoTreeScale {
		t.Errorf("unexpected scales: tree %v scatter %v zoom %v",
			other.Targets[scene.Tree].Scale, s.Scale, oz.Scale)
	}

	r := d.ScatterRadius
	if math.Abs(s.Position.X) > 0.75*r || math.Abs(s.Position.Y) > 0.75*r || math.Abs(s.Position.Z) > 0.25*r {
		t.Errorf("scatter %+v outside box", s.Position)
	}
}

func TestPopulation_AppendOnly(t *testing.T) {
	p := NewPopulation(NewGenerator(DefaultDimensions(), 3))

	first := p.AddPhotos("a", "b")
	before := first[1].Targets

	p.AddPhotos("c", "d", "e")
	if first[1].Targets != before {
		t.Error("existing photo targets moved after append")
	}
	if got := p.Len(Photo); got != 5 {
		t.Errorf("Len(Photo) = %d, want 5", got)
	}

	els := p.Elements()
	ids := []string{"a", "b", "c", "d", "e"}
	for i, e := range els {
		if e.ID != ids[i] || e.Index != i {
			t.Errorf("element %d = %s/%d, want %s/%d", i, e.ID, e.Index, ids[i], i)
		}
	}
	if f := p.Focus(); f == nil || f.ID != "a" {
		t.Errorf("focus = %v, want a", f)
	}

	// Existing elements keep the spacing of their original batch size.
	want := TreePosition(DefaultDimensions(), Photo, 1, 2)
	if first[1].Targets[scene.Tree].Position != want {
		t.Errorf("tree position = %+v, want %+v", first[1].Targets[scene.Tree].Position, want)
	}
}

func TestPopulation_Empty(t *testing.T) {
	p := NewPopulation(NewGenerator(DefaultDimensions(), 3))
	if p.AddOrnaments(0) != nil || p.AddPhotos() != nil {
		t.Error("empty additions should return nil")
	}
	if p.Focus() != nil {
		t.Error("focus of empty population should be nil")
	}
	p.AddOrnaments(10)
	if p.Len(Ornament) != 10 || p.Len(Photo) != 0 {
		t.Errorf("lens = %d/%d", p.Len(Ornament), p.Len(Photo))
	}
}

func TestEulerXYZ(t *testing.T) {
	q := EulerXYZ(0, 0, 0)
	if q != Identity {
		t.Errorf("zero euler = %v, want identity", q)
	}
	q = EulerXYZ(math.Pi/2, 0, 0)
	if !near(quat.Abs(q), 1) {
		t.Errorf("|q| = %v, want 1", quat.Abs(q))
	}
}

func TestPopulation_SkipsKnownPhotos(t *testing.T) {
	p := NewPopulation(NewGenerator(DefaultDimensions(), 3))
	p.AddOrnaments(2)
	p.AddPhotos("a", "b")

	added := p.AddPhotos("b", "c", "c")
	if len(added) != 1 || added[0].ID != "c" {
		t.Fatalf("added = %v, want only c", added)
	}
	if got := p.Len(Photo); got != 3 {
		t.Errorf("Len(Photo) = %d, want 3", got)
	}
	if added := p.AddPhotos("a"); added != nil {
		t.Errorf("re-adding a returned %v, want nil", added)
	}
	if got := len(p.Elements()); got != 5 {
		t.Errorf("elements = %d, want 5", got)
	}
}
