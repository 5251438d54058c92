// Package tray provides the system tray menu for yuletide.
package tray

import (
	"context"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/ayusman/yuletide/internal/gesture"
	"github.com/ayusman/yuletide/internal/scene"
)

// pollInterval is how often the tray refreshes the mode and gesture lines.
const pollInterval = 250 * time.Millisecond

// Tray is the menu bar front of the running scene.
type Tray struct {
	onToggle func(enabled bool)
	onOpen   func()
	onQuit   func()
	snapshot func() (scene.State, gesture.Gesture)
	enabled  bool
	mu       sync.RWMutex

	menuToggle  *systray.MenuItem
	menuMode    *systray.MenuItem
	menuGesture *systray.MenuItem
}

// New creates a Tray reading the scene through snapshot. Perception starts
// enabled.
func New(snapshot func() (scene.State, gesture.Gesture)) *Tray {
	return &Tray{
		snapshot: snapshot,
		enabled:  true,
	}
}

// OnToggle sets the callback run when perception is paused or resumed.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback run by "Open Viewer...".
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback run by "Quit".
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the tray and blocks until it quits or ctx is done. It must be
// called from the main goroutine.
func (t *Tray) Run(ctx context.Context) {
	systray.Run(func() { t.onReady(ctx) }, func() {})
}

func (t *Tray) onReady(ctx context.Context) {
	systray.SetTitle("🎄")
	systray.SetTooltip("Yuletide")

	t.mu.Lock()
	t.menuMode = systray.AddMenuItem(modeTitle(scene.Tree), "Current scene mode")
	t.menuMode.Disable()
	t.menuGesture = systray.AddMenuItem(gestureTitle(gesture.None), "Current gesture")
	t.menuGesture.Disable()
	systray.AddSeparator()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume hand tracking")
	t.mu.Unlock()

	menuOpen := systray.AddMenuItem("Open Viewer...", "Open the scene in a browser")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Yuletide")

	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				systray.Quit()
				return
			case <-ticker.C:
				t.refresh()
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) refresh() {
	if t.snapshot == nil {
		return
	}
	st, g := t.snapshot()

	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuMode != nil {
		t.menuMode.SetTitle(modeTitle(st))
	}
	if t.menuGesture != nil {
		t.menuGesture.SetTitle(gestureTitle(g))
	}
}

// handleToggle flips the enabled flag and reports the new value.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func modeTitle(st scene.State) string {
	switch st {
	case scene.Tree:
		return "Mode: Tree"
	case scene.Scatter:
		return "Mode: Scatter"
	case scene.Zoom:
		return "Mode: Zoom"
	}
	return "Mode: " + st.String()
}

func gestureTitle(g gesture.Gesture) string {
	switch g {
	case gesture.Fist:
		return "Gesture: ✊ Fist"
	case gesture.OpenPalm:
		return "Gesture: 🖐 Open Hand"
	case gesture.Pinch:
		return "Gesture: 🤏 Pinch"
	case gesture.None:
		return "Gesture: none"
	}
	return "Gesture: " + g.String()
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Tracking"
	}
	return "○ Paused"
}
