// Package gesture classifies a single hand sample into a discrete gesture.
package gesture

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ayusman/yuletide/internal/detector"
)

// Gesture is the discrete classification of one hand sample.
type Gesture int

const (
	// None means no hand, an incomplete hand, or an ambiguous pose.
	None Gesture = iota
	// Fist is a hand with all four fingers curled.
	Fist
	// OpenPalm is a hand with all four fingers extended.
	OpenPalm
	// Pinch is the thumb tip touching the index tip.
	Pinch
)

// All lists every gesture in priority-independent declaration order.
var All = []Gesture{None, Fist, OpenPalm, Pinch}

func (g Gesture) String() string {
	switch g {
	case None:
		return "NONE"
	case Fist:
		return "FIST"
	case OpenPalm:
		return "OPEN_PALM"
	case Pinch:
		return "PINCH"
	}
	return fmt.Sprintf("Gesture(%d)", int(g))
}

// Parse converts a gesture name such as "OPEN_PALM" back into a Gesture.
func Parse(s string) (Gesture, error) {
	for _, g := range All {
		if strings.EqualFold(s, g.String()) {
			return g, nil
		}
	}
	return None, fmt.Errorf("unknown gesture %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (g Gesture) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Gesture) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// ErrInvalidThresholds is returned by Thresholds.Validate.
var ErrInvalidThresholds = errors.New("invalid gesture thresholds")

// Thresholds are distances in the landmark model's normalized coordinate
// space. They carry no physical meaning and must be retuned for a landmark
// source with a different normalization.
type Thresholds struct {
	// PinchMax is the thumb-tip to index-tip distance below which the hand pinches.
	PinchMax float64 `json:"pinch_max" toml:"pinch_max" env:"PINCH_MAX"`
	// FistMax is the mean fingertip to wrist distance below which the hand is a fist.
	FistMax float64 `json:"fist_max" toml:"fist_max" env:"FIST_MAX"`
	// OpenMin is the mean fingertip to wrist distance above which the palm is open.
	OpenMin float64 `json:"open_min" toml:"open_min" env:"OPEN_MIN"`
}

// DefaultThresholds returns the values tuned for MediaPipe's normalized output.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PinchMax: 0.05,
		FistMax:  0.35,
		OpenMin:  0.45,
	}
}

// Validate checks that the thresholds are finite and positive and that the
// fist band does not overlap the open band.
func (t Thresholds) Validate() error {
	for _, v := range []float64{t.PinchMax, t.FistMax, t.OpenMin} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: thresholds must be finite", ErrInvalidThresholds)
		}
	}
	if t.PinchMax <= 0 || t.FistMax <= 0 || t.OpenMin <= 0 {
		return fmt.Errorf("%w: all thresholds must be positive", ErrInvalidThresholds)
	}
	if t.FistMax > t.OpenMin {
		return fmt.Errorf("%w: fist_max %.3f exceeds open_min %.3f", ErrInvalidThresholds, t.FistMax, t.OpenMin)
	}
	return nil
}

// Classifier maps landmark samples to gestures. The zero value is not
// useful; use NewClassifier or DefaultClassifier.
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{thresholds: t}
}

// DefaultClassifier creates a Classifier with DefaultThresholds.
func DefaultClassifier() *Classifier {
	return NewClassifier(DefaultThresholds())
}

// Thresholds returns the thresholds the classifier uses.
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

var fingertips = [4]int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}

// Classify returns the gesture for one hand sample. Checks run in priority
// order PINCH, FIST, OPEN_PALM; the first match wins. A nil or short sample
// is NONE.
func (c *Classifier) Classify(landmarks []detector.Point3D) Gesture {
	if len(landmarks) < detector.NumLandmarks {
		return None
	}

	if PinchDistance(landmarks) < c.thresholds.PinchMax {
		return Pinch
	}

	spread := Spread(landmarks)
	if spread < c.thresholds.FistMax {
		return Fist
	}
	if spread > c.thresholds.OpenMin {
		return OpenPalm
	}

	return None
}

// Classify classifies with DefaultThresholds.
func Classify(landmarks []detector.Point3D) Gesture {
	return DefaultClassifier().Classify(landmarks)
}

// PinchDistance is the 3D distance between the thumb tip and the index tip.
// The caller must pass a complete sample.
func PinchDistance(landmarks []detector.Point3D) float64 {
	return detector.Distance(landmarks[detector.ThumbTip], landmarks[detector.IndexTip])
}

// Spread is the mean 3D distance from the four non-thumb fingertips to the
// wrist. The caller must pass a complete sample.
func Spread(landmarks []detector.Point3D) float64 {
	wrist := landmarks[detector.Wrist]
	var sum float64
	for _, tip := range fingertips {
		sum += detector.Distance(landmarks[tip], wrist)
	}
	return sum / float64(len(fingertips))
}
