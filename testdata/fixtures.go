// Package testdata holds recorded hand landmark fixtures shared by tests.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/ayusman/yuletide/internal/detector"
)

//go:embed hands/*.json
var handsFS embed.FS

// NoHand is the session entry for a frame without a hand.
const NoHand = "none"

// LoadHand loads a hand fixture by name, e.g. "open_palm".
func LoadHand(name string) (detector.HandLandmarks, error) {
	data, err := handsFS.ReadFile("hands/" + name + ".json")
	if err != nil {
		return detector.HandLandmarks{}, fmt.Errorf("load hand %s: %w", name, err)
	}

	var h detector.HandLandmarks
	if err := json.Unmarshal(data, &h); err != nil {
		return detector.HandLandmarks{}, fmt.Errorf("decode hand %s: %w", name, err)
	}
	return h, nil
}

// LoadSession loads the recorded session: one entry per frame, each either
// a hand fixture name or NoHand. Frames without a hand come back as nil.
func LoadSession() ([][]detector.HandLandmarks, error) {
	data, err := handsFS.ReadFile("hands/session.json")
	if err != nil {
		return nil, err
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	frames := make([][]detector.HandLandmarks, len(names))
	for i, name := range names {
		if name == NoHand {
			continue
		}
		h, err := LoadHand(name)
		if err != nil {
			return nil, err
		}
		frames[i] = []detector.HandLandmarks{h}
	}
	return frames, nil
}
