package scene

import (
	"sync"

	"github.com/ayusman/yuletide/internal/gesture"
)

// Transition describes the effect of one Apply call.
type Transition struct {
	From           State
	To             State
	PrevGesture    gesture.Gesture
	Gesture        gesture.Gesture
	StateChanged   bool
	GestureChanged bool
}

// Machine is the single cell shared by the perception and render loops. The
// perception loop writes through Apply; everyone else reads. Last write wins.
// It is guarded because the two loops run on separate goroutines.
type Machine struct {
	mu      sync.RWMutex
	state   State
	gesture gesture.Gesture

	onState   []func(Transition)
	onGesture []func(Transition)
}

// NewMachine creates a Machine in the Tree state with no gesture.
func NewMachine() *Machine {
	return &Machine{state: Tree, gesture: gesture.None}
}

// OnStateChange registers fn to run after every state change.
func (m *Machine) OnStateChange(fn func(Transition)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onState = append(m.onState, fn)
}

// OnGestureChange registers fn to run whenever the observed gesture changes,
// whether or not the state changed with it.
func (m *Machine) OnGestureChange(fn func(Transition)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onGesture = append(m.onGesture, fn)
}

// Apply records g as the current gesture and advances the state. Observers
// run after the lock is released, on the caller's goroutine.
func (m *Machine) Apply(g gesture.Gesture) Transition {
	m.mu.Lock()
	next, changed := Advance(m.state, g)
	tr := Transition{
		From:           m.state,
		To:             next,
		PrevGesture:    m.gesture,
		Gesture:        g,
		StateChanged:   changed,
		GestureChanged: g != m.gesture,
	}
	m.state = next
	m.gesture = g

	var notify []func(Transition)
	if tr.GestureChanged {
		notify = append(notify, m.onGesture...)
	}
	if tr.StateChanged {
		notify = append(notify, m.onState...)
	}
	m.mu.Unlock()

	for _, fn := range notify {
		fn(tr)
	}
	return tr
}

// State returns the current scene state.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Gesture returns the most recently applied gesture.
func (m *Machine) Gesture() gesture.Gesture {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gesture
}

// Snapshot returns state and gesture from the same write.
func (m *Machine) Snapshot() (State, gesture.Gesture) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state, m.gesture
}
