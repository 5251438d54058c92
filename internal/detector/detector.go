package detector

import (
	"errors"

	"gocv.io/x/gocv"
)

// ErrModelUnavailable is returned when the landmark model cannot be loaded.
var ErrModelUnavailable = errors.New("hand landmark model unavailable")

// Detector defines the interface for hand landmark sources.
type Detector interface {
	// Detect analyzes a video frame captured at timestampMs and returns the
	// detected hands. An empty slice means no hand is visible.
	Detect(frame *gocv.Mat, timestampMs int64) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Loader is implemented by detectors that load their model eagerly so an
// initialization failure can be reported before any loop starts.
type Loader interface {
	Load() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect. Only the first hand
	// is ever used, so the default is 1.
	MaxHands int `toml:"max_hands" env:"MAX_HANDS"`

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64 `toml:"min_confidence" env:"MIN_CONFIDENCE"`

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64 `toml:"min_tracking_confidence" env:"MIN_TRACKING_CONFIDENCE"`

	// ScriptPath overrides the lookup of the MediaPipe service script.
	ScriptPath string `toml:"script_path" env:"SCRIPT_PATH"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
