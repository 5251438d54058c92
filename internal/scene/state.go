// Package scene holds the application state machine that turns gestures
// into scene states.
package scene

import (
	"fmt"
	"strings"

	"github.com/ayusman/yuletide/internal/gesture"
)

// State selects which target layout every element animates toward.
type State int

const (
	// Tree gathers elements into the cone spiral. It is the initial state.
	Tree State = iota
	// Scatter spreads elements through the scatter volume.
	Scatter
	// Zoom brings the focus photo up to the camera and pushes the rest back.
	Zoom
)

// NumStates is the number of scene states; per-state tables are sized by it.
const NumStates = 3

// States lists every scene state.
var States = [NumStates]State{Tree, Scatter, Zoom}

func (s State) String() string {
	switch s {
	case Tree:
		return "TREE"
	case Scatter:
		return "SCATTER"
	case Zoom:
		return "ZOOM"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ParseState converts a state name such as "SCATTER" back into a State.
func ParseState(s string) (State, error) {
	for _, st := range States {
		if strings.EqualFold(s, st.String()) {
			return st, nil
		}
	}
	return Tree, fmt.Errorf("unknown scene state %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	parsed, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Advance returns the state that follows current when g is observed, and
// whether it differs from current. NONE never changes the state.
func Advance(current State, g gesture.Gesture) (State, bool) {
	next := current
	switch g {
	case gesture.Fist:
		next = Tree
	case gesture.OpenPalm:
		next = Scatter
	case gesture.Pinch:
		next = Zoom
	case gesture.None:
	}
	return next, next != current
}
