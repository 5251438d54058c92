// Package hook runs external programs when the scene changes mode or the
// recognized gesture changes.
package hook

import (
	"encoding/json"
	"slices"
)

// Event names a scene notification hooks can subscribe to.
type Event string

const (
	EventStateChanged   Event = "state_changed"
	EventGestureChanged Event = "gesture_changed"
)

// Manifest describes a hook's metadata and subscriptions. It is read from
// hook.json in the hook's directory.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Events      []Event         `json:"events"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Request is written as JSON to the hook's stdin.
type Request struct {
	Event       Event           `json:"event"`
	From        string          `json:"from,omitempty"`
	To          string          `json:"to,omitempty"`
	Gesture     string          `json:"gesture"`
	TimestampMs int64           `json:"timestamp_ms"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Response is read as JSON from the hook's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Hook is a discovered hook with its manifest and location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Subscribes reports whether the hook wants ev.
func (h *Hook) Subscribes(ev Event) bool {
	return slices.Contains(h.Manifest.Events, ev)
}
