package testdata

import (
	"testing"

	"github.com/ayusman/yuletide/internal/detector"
	"github.com/ayusman/yuletide/internal/gesture"
	"github.com/ayusman/yuletide/internal/scene"
)

func TestFixturesClassify(t *testing.T) {
	tests := []struct {
		name string
		want gesture.Gesture
	}{
		{"fist", gesture.Fist},
		{"open_palm", gesture.OpenPalm},
		{"pinch", gesture.Pinch},
		{"relaxed", gesture.None},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := LoadHand(tt.name)
			if err != nil {
				t.Fatalf("LoadHand() error = %v", err)
			}
			if len(h.Points) != detector.NumLandmarks {
				t.Fatalf("got %d points", len(h.Points))
			}
			if got := gesture.Classify(h.Points); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLoadHand_Missing(t *testing.T) {
	if _, err := LoadHand("wave"); err == nil {
		t.Error("expected error for missing fixture")
	}
}

func TestSessionEndsInTree(t *testing.T) {
	frames, err := LoadSession()
	if err != nil {
		t.Fatalf("LoadSession() error = %v", err)
	}

	m := scene.NewMachine()
	var states []scene.State
	m.OnStateChange(func(tr scene.Transition) { states = append(states, tr.To) })

	for _, hands := range frames {
		g := gesture.None
		if len(hands) > 0 {
			g = gesture.Classify(hands[0].Points)
		}
		m.Apply(g)
	}

	want := []scene.State{scene.Scatter, scene.Zoom, scene.Tree}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("states[%d] = %s, want %s", i, states[i], want[i])
		}
	}
}
