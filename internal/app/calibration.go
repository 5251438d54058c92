package app

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ayusman/yuletide/internal/detector"
	"github.com/ayusman/yuletide/internal/gesture"
	"github.com/ayusman/yuletide/internal/store"
)

// ErrNoHand is returned when a landmark capture is requested with no hand
// in view.
var ErrNoHand = errors.New("no hand in view")

// Thresholds returns the thresholds currently used for classification.
func (a *App) Thresholds() gesture.Thresholds {
	return a.classifier.Load().Thresholds()
}

// SetThresholds validates t, persists it and swaps it in. The next frame is
// classified with the new values.
func (a *App) SetThresholds(t gesture.Thresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if a.store != nil {
		if err := a.store.Settings().SetJSON(store.SettingThresholds, t); err != nil {
			return fmt.Errorf("save thresholds: %w", err)
		}
	}
	a.classifier.Store(gesture.NewClassifier(t))
	a.logger.Info("thresholds updated", "pinch_max", t.PinchMax, "fist_max", t.FistMax, "open_min", t.OpenMin)
	return nil
}

// LatestLandmarks returns the landmarks of the hand seen last.
func (a *App) LatestLandmarks() ([]detector.Point3D, error) {
	s := a.hand.Load()
	if s == nil || len(s.landmarks) == 0 {
		return nil, ErrNoHand
	}
	out := make([]detector.Point3D, len(s.landmarks))
	copy(out, s.landmarks)
	return out, nil
}

// Calibrate derives thresholds from the stored samples and applies them.
func (a *App) Calibrate() (gesture.Thresholds, error) {
	if a.store == nil {
		return gesture.Thresholds{}, gesture.ErrNoSamples
	}

	stored, err := a.store.Samples().List()
	if err != nil {
		return gesture.Thresholds{}, fmt.Errorf("load samples: %w", err)
	}

	samples := make([]gesture.Sample, 0, len(stored))
	for _, s := range stored {
		label, err := gesture.Parse(s.Label)
		if err != nil {
			return gesture.Thresholds{}, fmt.Errorf("sample %d: %w", s.ID, err)
		}
		var points []detector.Point3D
		if err := json.Unmarshal(s.Data, &points); err != nil {
			return gesture.Thresholds{}, fmt.Errorf("sample %d: %w", s.ID, err)
		}
		samples = append(samples, gesture.Sample{Label: label, Landmarks: points})
	}

	t, err := gesture.Calibrate(a.Thresholds(), samples)
	if err != nil {
		return gesture.Thresholds{}, err
	}
	if err := a.SetThresholds(t); err != nil {
		return gesture.Thresholds{}, err
	}
	a.journal.Success("Gesture thresholds calibrated.")
	return t, nil
}
