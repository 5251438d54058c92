package layout

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/yuletide/internal/scene"
)

// Category separates ornaments from photo panels; they use different
// formulas, rates and orientation rules.
type Category int

const (
	// Ornament is one instanced bauble.
	Ornament Category = iota
	// Photo is one photo panel.
	Photo
)

func (c Category) String() string {
	switch c {
	case Ornament:
		return "ornament"
	case Photo:
		return "photo"
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Shape is the ornament mesh.
type Shape string

const (
	ShapeSphere Shape = "sphere"
	ShapeBox    Shape = "box"
)

// Ornament palette.
const (
	ColorGreen = "#2F4F4F"
	ColorGold  = "#FFD700"
	ColorRed   = "#8B0000"
)

// Layout constants shared by every element.
const (
	OrnamentAngleStep = 0.5
	PhotoAngleStep    = 2 * math.Pi / 1.618

	// PhotoLift and PhotoPush move photos up and out of the ornament cone so
	// the two layers never overlap.
	PhotoLift = 2.0
	PhotoPush = 1.5

	PhotoTreeScale    = 1.5
	PhotoScatterScale = 2.0

	FocusScale = 5.0
	ZoomPush   = 1.2
	ZoomScale  = 1.0
)

// FocusPosition is where the focus photo sits in ZOOM, just in front of the
// camera.
var FocusPosition = r3.Vec{X: 0, Y: 0, Z: 8}

// Dimensions are the fixed global sizes of the layouts.
type Dimensions struct {
	TreeHeight    float64 `json:"tree_height" toml:"tree_height" env:"TREE_HEIGHT"`
	TreeRadius    float64 `json:"tree_radius" toml:"tree_radius" env:"TREE_RADIUS"`
	ScatterRadius float64 `json:"scatter_radius" toml:"scatter_radius" env:"SCATTER_RADIUS"`
}

// DefaultDimensions returns the stock tree and scatter sizes.
func DefaultDimensions() Dimensions {
	return Dimensions{
		TreeHeight:    15,
		TreeRadius:    6,
		ScatterRadius: 25,
	}
}

// Validate checks that every dimension is positive.
func (d Dimensions) Validate() error {
	if d.TreeHeight <= 0 || d.TreeRadius <= 0 || d.ScatterRadius <= 0 {
		return fmt.Errorf("layout dimensions must be positive: %+v", d)
	}
	return nil
}

// Element is one visual element and its immutable per-state targets.
type Element struct {
	ID       string   `json:"id"`
	Index    int      `json:"index"` // position within its category
	Category Category `json:"category"`

	// Focus marks the photo that comes forward in ZOOM.
	Focus bool `json:"focus,omitempty"`

	// Ornament attributes.
	Shape     Shape   `json:"shape,omitempty"`
	Color     string  `json:"color,omitempty"`
	BaseScale float64 `json:"base_scale"`
	// InitialRotation holds Euler angles (X, Y, Z) in radians.
	InitialRotation r3.Vec `json:"initial_rotation"`

	Targets [scene.NumStates]Pose `json:"targets"`
}

// Target returns the target pose for st.
func (e *Element) Target(st scene.State) Pose {
	return e.Targets[st]
}

// TreePosition places element i of n on a rising spiral wound around the
// cone. Height is linear in i/n, radius shrinks linearly toward the apex and
// the angle advances by a fixed non-integer step per element.
func TreePosition(d Dimensions, c Category, i, n int) r3.Vec {
	if n <= 0 {
		n = i + 1
	}

	y := float64(i)/float64(n)*d.TreeHeight - d.TreeHeight/2
	step := OrnamentAngleStep
	var push float64
	if c == Photo {
		y += PhotoLift
		step = PhotoAngleStep
		push = PhotoPush
	}

	radius := (d.TreeHeight/2-y)/d.TreeHeight*d.TreeRadius + push
	angle := float64(i) * step

	return r3.Vec{
		X: math.Cos(angle) * radius,
		Y: y,
		Z: math.Sin(angle) * radius,
	}
}

// Generator samples the random parts of element layouts. It is seeded so a
// population can be rebuilt identically.
type Generator struct {
	dims Dimensions
	rng  *rand.Rand
}

// NewGenerator creates a Generator for dims seeded with seed.
func NewGenerator(dims Dimensions, seed uint64) *Generator {
	return &Generator{
		dims: dims,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Dimensions returns the generator's dimensions.
func (g *Generator) Dimensions() Dimensions {
	return g.dims
}

// scatterBall samples uniformly inside a ball of the scatter radius.
func (g *Generator) scatterBall() r3.Vec {
	theta := 2 * math.Pi * g.rng.Float64()
	phi := math.Acos(2*g.rng.Float64() - 1)
	r := g.dims.ScatterRadius * math.Cbrt(g.rng.Float64())
	return r3.Vec{
		X: r * math.Sin(phi) * math.Cos(theta),
		Y: r * math.Sin(phi) * math.Sin(theta),
		Z: r * math.Cos(phi),
	}
}

// scatterBox samples uniformly inside a flattened box, wide and tall but
// shallow, so scattered photos stay readable from the camera.
func (g *Generator) scatterBox() r3.Vec {
	r := g.dims.ScatterRadius
	return r3.Vec{
		X: (g.rng.Float64() - 0.5) * r * 1.5,
		Y: (g.rng.Float64() - 0.5) * r * 1.5,
		Z: (g.rng.Float64() - 0.5) * r * 0.5,
	}
}

// Ornament builds ornament i of a population of n ornaments.
func (g *Generator) Ornament(i, n int) *Element {
	e := &Element{
		ID:       fmt.Sprintf("ornament-%d", i),
		Index:    i,
		Category: Ornament,
	}

	tree := TreePosition(g.dims, Ornament, i, n)
	scatter := g.scatterBall()

	e.Shape = ShapeSphere
	if g.rng.Float64() > 0.6 {
		e.Shape = ShapeBox
	}

	switch c := g.rng.Float64(); {
	case c < 0.33:
		e.Color = ColorGreen
	case c < 0.66:
		e.Color = ColorRed
	default:
		e.Color = ColorGold
	}

	e.InitialRotation = r3.Vec{
		X: g.rng.Float64() * math.Pi,
		Y: g.rng.Float64() * math.Pi,
	}
	e.BaseScale = g.rng.Float64()*0.4 + 0.1

	e.Targets[scene.Tree] = Pose{Position: tree, Rotation: Identity, Scale: e.BaseScale}
	e.Targets[scene.Scatter] = Pose{Position: scatter, Rotation: Identity, Scale: e.BaseScale}
	// Background ornaments treat ZOOM like SCATTER.
	e.Targets[scene.Zoom] = e.Targets[scene.Scatter]

	return e
}

// Photo builds photo i of a population of n photos. Photo 0 is the focus.
func (g *Generator) Photo(id string, i, n int) *Element {
	e := &Element{
		ID:        id,
		Index:     i,
		Category:  Photo,
		Focus:     i == 0,
		BaseScale: 1,
	}

	tree := TreePosition(g.dims, Photo, i, n)
	scatter := g.scatterBox()

	e.Targets[scene.Tree] = Pose{Position: tree, Rotation: Identity, Scale: PhotoTreeScale}
	e.Targets[scene.Scatter] = Pose{Position: scatter, Rotation: Identity, Scale: PhotoScatterScale}
	if e.Focus {
		e.Targets[scene.Zoom] = Pose{Position: FocusPosition, Rotation: Identity, Scale: FocusScale}
	} else {
		e.Targets[scene.Zoom] = Pose{Position: r3.Scale(ZoomPush, scatter), Rotation: Identity, Scale: ZoomScale}
	}

	return e
}
