// Command ambience is a macOS hook that adjusts audio when the scene changes
// mode. Its config maps a mode name to an action, for example
// {"ZOOM": "media-play-pause", "SCATTER": "volume-up"}.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
)

// Request mirrors the event the host writes to stdin.
type Request struct {
	Event   string          `json:"event"`
	From    string          `json:"from,omitempty"`
	To      string          `json:"to,omitempty"`
	Gesture string          `json:"gesture"`
	Config  json.RawMessage `json:"config,omitempty"`
}

// Response is written to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type actionHandler func() error

var actionHandlers = map[string]actionHandler{
	"volume-up":        volumeUp,
	"volume-down":      volumeDown,
	"volume-mute":      volumeMute,
	"media-play-pause": mediaPlayPause,
	"media-next":       mediaNext,
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	if req.Event != "state_changed" {
		writeResponse(Response{Success: true})
		return
	}

	actions := map[string]string{}
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &actions); err != nil {
			writeResponse(Response{Error: fmt.Sprintf("invalid config: %v", err)})
			return
		}
	}

	name, ok := actions[req.To]
	if !ok {
		writeResponse(Response{Success: true})
		return
	}

	handler, ok := actionHandlers[name]
	if !ok {
		writeResponse(Response{Error: fmt.Sprintf("unknown action: %s", name)})
		return
	}

	if err := handler(); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("action %s failed: %v", name, err)})
		return
	}

	data, _ := json.Marshal(map[string]string{"action": name})
	writeResponse(Response{Success: true, Data: data})
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

func volumeUp() error {
	return runAppleScript(`set volume output volume ((output volume of (get volume settings)) + 10)`)
}

func volumeDown() error {
	return runAppleScript(`set volume output volume ((output volume of (get volume settings)) - 10)`)
}

func volumeMute() error {
	return runAppleScript(`set volume output muted (not (output muted of (get volume settings)))`)
}

// mediaPlayPause presses the Play/Pause media key.
func mediaPlayPause() error {
	return runAppleScript(`tell application "System Events"
	key code 100
end tell`)
}

// mediaNext presses the Next media key.
func mediaNext() error {
	return runAppleScript(`tell application "System Events"
	key code 101
end tell`)
}
