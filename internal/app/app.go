// Package app wires perception, the scene machine and the blend engine into
// the running yuletide system.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ayusman/yuletide/internal/blend"
	"github.com/ayusman/yuletide/internal/capture"
	"github.com/ayusman/yuletide/internal/config"
	"github.com/ayusman/yuletide/internal/detector"
	"github.com/ayusman/yuletide/internal/gesture"
	"github.com/ayusman/yuletide/internal/hook"
	"github.com/ayusman/yuletide/internal/journal"
	"github.com/ayusman/yuletide/internal/layout"
	"github.com/ayusman/yuletide/internal/orbit"
	"github.com/ayusman/yuletide/internal/scene"
	"github.com/ayusman/yuletide/internal/store"
)

var (
	// ErrInit wraps every initialization failure.
	ErrInit = errors.New("initialization failed")
	// ErrNotInitialized is returned by Start before a successful Init.
	ErrNotInitialized = errors.New("app not initialized")
	// ErrUnknownPhoto is returned for photo ids the scene does not hold.
	ErrUnknownPhoto = errors.New("unknown photo")
)

// Options holds the collaborators of an App. Camera and Detector may be
// injected; when nil they are built from Settings during Init.
type Options struct {
	Settings config.Config
	Store    *store.Store
	Camera   capture.Camera
	Detector detector.Detector
	Hooks    *hook.Dispatcher
	Journal  *journal.Journal
	Logger   *log.Logger
}

// handSample is the latest observation of the tracked hand.
type handSample struct {
	landmarks []detector.Point3D
	knuckle   orbit.Hand
}

// App is the main application.
type App struct {
	cfg      config.Config
	logger   *log.Logger
	journal  *journal.Journal
	store    *store.Store
	camera   capture.Camera
	detector detector.Detector
	hooks    *hook.Dispatcher

	gate     *capture.Gate
	preview  *capture.Preview
	machine  *scene.Machine
	pop      *layout.Population
	engine   *blend.Engine
	orbit    *orbit.Orbit
	smoother *orbit.Smoother

	classifier atomic.Pointer[gesture.Classifier]
	hand       atomic.Pointer[handSample]
	enabled    atomic.Bool

	pendingMu sync.Mutex
	pending   []string

	subs   subscribers
	latest atomic.Pointer[Frame]

	mu          sync.Mutex
	initialized bool
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// New creates an App. It does not touch the camera or the model; call Init.
func New(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	j := opts.Journal
	if j == nil {
		j = journal.New(journal.DefaultCapacity, logger)
	}

	cfg := opts.Settings
	a := &App{
		cfg:      cfg,
		logger:   logger.WithPrefix("app"),
		journal:  j,
		store:    opts.Store,
		camera:   opts.Camera,
		detector: opts.Detector,
		hooks:    opts.Hooks,
		preview:  capture.NewPreview(),
		machine:  scene.NewMachine(),
		pop:      layout.NewPopulation(layout.NewGenerator(cfg.Scene, cfg.Render.Seed)),
		engine:   blend.NewEngine(),
		orbit:    orbit.New(),
		smoother: orbit.NewSmoother(interval(cfg.Camera.IdleFPS).Seconds()),
		subs:     subscribers{m: make(map[chan Frame]struct{})},
	}
	a.classifier.Store(gesture.NewClassifier(cfg.Gesture))
	a.enabled.Store(true)

	a.machine.OnGestureChange(a.onGestureChange)
	a.machine.OnStateChange(a.onStateChange)

	return a
}

// Init loads settings, builds the scene, loads the landmark model and opens
// the camera, reporting progress through the journal. Any failure is
// returned wrapped in ErrInit and leaves the App unable to Start.
func (a *App) Init(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.initialized {
		return nil
	}

	a.journal.Info("Initializing yuletide...")
	a.journal.SetProgress(5)

	a.journal.Info("Loading settings...")
	if err := a.loadThresholds(); err != nil {
		return a.initFailed("Init Failed", err)
	}
	a.journal.SetProgress(30)

	a.journal.Info("Building scene...")
	if err := a.buildScene(); err != nil {
		return a.initFailed("Init Failed", err)
	}
	if err := ctx.Err(); err != nil {
		return a.initFailed("Init Failed", err)
	}
	a.journal.SetProgress(60)

	a.journal.Info("Creating hand landmarker model...")
	if err := a.loadModel(); err != nil {
		return a.initFailed("Init Failed", err)
	}
	a.journal.Success("Hand model loaded successfully.")
	a.journal.SetProgress(70)

	a.journal.Info("Requesting camera access...")
	if err := a.openCamera(); err != nil {
		return a.initFailed("Camera Error", err)
	}
	a.journal.Success("Webcam stream active.")
	a.journal.SetProgress(90)

	a.gate = capture.NewGate(capture.GateConfig{
		Threshold:   a.cfg.Camera.MotionThreshold,
		IdleFPS:     a.cfg.Camera.IdleFPS,
		ActiveFPS:   a.cfg.Camera.ActiveFPS,
		IdleTimeout: a.cfg.Camera.IdleTimeout,
	})
	a.smoother.SetInterval(interval(a.gate.FPS()).Seconds())

	a.initialized = true
	return nil
}

func (a *App) initFailed(what string, err error) error {
	a.journal.Error(fmt.Sprintf("%s: %v", what, err))
	return fmt.Errorf("%w: %w", ErrInit, err)
}

func (a *App) loadThresholds() error {
	if a.store == nil {
		return nil
	}
	var t gesture.Thresholds
	err := a.store.Settings().GetJSON(store.SettingThresholds, &t)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("load thresholds: %w", err)
	}
	if err := t.Validate(); err != nil {
		a.logger.Warn("ignoring stored thresholds", "err", err)
		return nil
	}
	a.classifier.Store(gesture.NewClassifier(t))
	return nil
}

func (a *App) buildScene() error {
	// Re-initialization after Stop keeps the existing population.
	if len(a.pop.Elements()) > 0 {
		return nil
	}

	a.pop.AddOrnaments(a.cfg.Render.Ornaments)

	if a.store != nil {
		// Photos queued before now are already in the store.
		a.pendingMu.Lock()
		a.pending = nil
		a.pendingMu.Unlock()

		photos, err := a.store.Photos().List()
		if err != nil {
			return fmt.Errorf("load photos: %w", err)
		}
		ids := make([]string, len(photos))
		for i, p := range photos {
			ids[i] = p.ID
		}
		a.pop.AddPhotos(ids...)
	}

	a.engine.Sync(a.pop.Elements())
	a.logger.Info("scene built", "ornaments", a.pop.Len(layout.Ornament), "photos", a.pop.Len(layout.Photo))
	return nil
}

func (a *App) loadModel() error {
	if a.detector == nil {
		d, err := detector.NewMediaPipeDetector(a.cfg.Detector)
		if err != nil {
			return err
		}
		a.detector = d
	}
	if l, ok := a.detector.(detector.Loader); ok {
		if err := l.Load(); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) openCamera() error {
	if a.camera == nil {
		a.camera = capture.NewCamera(capture.Config{
			DeviceID: a.cfg.Camera.ID,
			FPS:      a.cfg.Camera.IdleFPS,
		})
	}
	return a.camera.Open()
}

// Start launches the perception and render loops. It is a no-op when the
// loops already run.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.initialized {
		return ErrNotInitialized
	}
	if a.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.journal.Info("Starting prediction loop...")

	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		a.runPerception(ctx)
	}()
	go func() {
		defer a.wg.Done()
		a.runRender(ctx)
	}()

	if a.hooks != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.hooks.Run(ctx)
		}()
	}

	a.journal.SetProgress(100)
	return nil
}

// Stop cancels both loops, waits for them and releases the camera and the
// detector.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.wg.Wait()

	if a.camera != nil {
		if err := a.camera.Close(); err != nil {
			a.logger.Error("closing camera", "err", err)
		}
	}
	if a.gate != nil {
		a.gate.Close()
	}
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			a.logger.Error("closing detector", "err", err)
		}
	}

	a.subs.closeAll()
	a.initialized = false
	a.logger.Info("stopped")
}

// Running reports whether the loops are running.
func (a *App) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}

// SetEnabled pauses or resumes perception. While paused the scene keeps
// its current state.
func (a *App) SetEnabled(enabled bool) {
	a.enabled.Store(enabled)
	a.logger.Info("perception toggled", "enabled", enabled)
}

// IsEnabled reports whether perception is running.
func (a *App) IsEnabled() bool {
	return a.enabled.Load()
}

// Journal returns the lifecycle journal.
func (a *App) Journal() *journal.Journal {
	return a.journal
}

// Preview returns the latest camera frame cache.
func (a *App) Preview() *capture.Preview {
	return a.preview
}

// Machine returns the scene state machine.
func (a *App) Machine() *scene.Machine {
	return a.machine
}

func (a *App) onGestureChange(tr scene.Transition) {
	a.logger.Debug("gesture changed", "from", tr.PrevGesture, "to", tr.Gesture)
	a.dispatch(hook.Request{
		Event:   hook.EventGestureChanged,
		Gesture: tr.Gesture.String(),
	})
}

func (a *App) onStateChange(tr scene.Transition) {
	a.smoother.Reset()
	a.logger.Info("state changed", "from", tr.From, "to", tr.To, "gesture", tr.Gesture)
	a.dispatch(hook.Request{
		Event:   hook.EventStateChanged,
		From:    tr.From.String(),
		To:      tr.To.String(),
		Gesture: tr.Gesture.String(),
	})
}

func (a *App) dispatch(req hook.Request) {
	if a.hooks == nil {
		return
	}
	req.TimestampMs = time.Now().UnixMilli()
	a.hooks.Dispatch(req)
}
