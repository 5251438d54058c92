package gesture

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/yuletide/internal/detector"
)

var (
	// ErrNoSamples is returned when Calibrate gets nothing to work with.
	ErrNoSamples = errors.New("no calibration samples")
	// ErrMissingLabel is returned when a required gesture has no samples.
	ErrMissingLabel = errors.New("missing calibration samples for gesture")
	// ErrOverlap is returned when fist and open samples cannot be separated.
	ErrOverlap = errors.New("fist and open palm samples overlap")
)

// pinchMargin widens the largest recorded pinch distance so a slightly
// looser pinch still registers.
const pinchMargin = 1.5

// Sample is one labelled hand sample recorded for calibration.
type Sample struct {
	Label     Gesture            `json:"label"`
	Landmarks []detector.Point3D `json:"landmarks"`
}

// Calibrate derives thresholds from labelled samples. FIST and OPEN_PALM
// samples are required; the gap between the widest fist and the tightest
// open palm is split in thirds, leaving the middle third as the NONE band.
// PINCH samples are optional and PinchMax falls back to base when absent.
// NONE samples are ignored.
func Calibrate(base Thresholds, samples []Sample) (Thresholds, error) {
	if len(samples) == 0 {
		return Thresholds{}, ErrNoSamples
	}

	fistHi := math.Inf(-1)
	openLo := math.Inf(1)
	pinchHi := math.Inf(-1)
	var fists, opens, pinches int

	for i, s := range samples {
		if len(s.Landmarks) < detector.NumLandmarks {
			return Thresholds{}, fmt.Errorf("sample %d has %d landmarks, expected %d", i, len(s.Landmarks), detector.NumLandmarks)
		}

		switch s.Label {
		case Fist:
			fistHi = math.Max(fistHi, Spread(s.Landmarks))
			fists++
		case OpenPalm:
			openLo = math.Min(openLo, Spread(s.Landmarks))
			opens++
		case Pinch:
			pinchHi = math.Max(pinchHi, PinchDistance(s.Landmarks))
			pinches++
		case None:
		}
	}

	if fists == 0 {
		return Thresholds{}, fmt.Errorf("%w %s", ErrMissingLabel, Fist)
	}
	if opens == 0 {
		return Thresholds{}, fmt.Errorf("%w %s", ErrMissingLabel, OpenPalm)
	}
	if fistHi >= openLo {
		return Thresholds{}, fmt.Errorf("%w: widest fist %.3f, tightest open palm %.3f", ErrOverlap, fistHi, openLo)
	}

	gap := openLo - fistHi
	out := Thresholds{
		PinchMax: base.PinchMax,
		FistMax:  fistHi + gap/3,
		OpenMin:  openLo - gap/3,
	}
	if pinches > 0 {
		out.PinchMax = pinchHi * pinchMargin
	}

	if err := out.Validate(); err != nil {
		return Thresholds{}, err
	}
	return out, nil
}
