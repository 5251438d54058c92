package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/yuletide/internal/capture"
	"github.com/ayusman/yuletide/internal/config"
	"github.com/ayusman/yuletide/internal/detector"
	"github.com/ayusman/yuletide/internal/gesture"
	"github.com/ayusman/yuletide/internal/journal"
	"github.com/ayusman/yuletide/internal/scene"
	"github.com/ayusman/yuletide/internal/store"
)

type fixture struct {
	app      *App
	camera   *capture.MockCamera
	detector *detector.MockDetector
	store    *store.Store
}

func newFixture(t *testing.T, ornaments int) *fixture {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	cfg := config.Default()
	cfg.Server.DataDir = t.TempDir()
	cfg.Render.Ornaments = ornaments
	cfg.Render.FPS = 120
	cfg.Camera.IdleFPS = 50
	cfg.Camera.ActiveFPS = 50

	logger := log.New(io.Discard)
	f := &fixture{
		camera:   capture.NewMockCamera(64, 48),
		detector: detector.NewMockDetector(),
		store:    s,
	}
	f.app = New(Options{
		Settings: cfg,
		Store:    s,
		Camera:   f.camera,
		Detector: f.detector,
		Journal:  journal.New(0, logger),
		Logger:   logger,
	})
	return f
}

func hands(h ...detector.HandLandmarks) []detector.HandLandmarks { return h }

func TestApp_InitModelFailure(t *testing.T) {
	f := newFixture(t, 10)
	f.detector.SetLoadError(detector.ErrModelUnavailable)

	err := f.app.Init(context.Background())
	if !errors.Is(err, ErrInit) || !errors.Is(err, detector.ErrModelUnavailable) {
		t.Fatalf("Init() error = %v, want ErrInit wrapping ErrModelUnavailable", err)
	}
	if err := f.app.Start(context.Background()); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Start() error = %v, want ErrNotInitialized", err)
	}
	if f.camera.IsOpen() {
		t.Error("camera opened despite model failure")
	}

	entries := f.app.Journal().Entries(0)
	last := entries[len(entries)-1]
	if last.Level != journal.Error {
		t.Errorf("last journal entry = %+v, want an error", last)
	}
	if !f.app.Status().Loading {
		t.Error("status should still be loading")
	}
}

func TestApp_InitCameraFailure(t *testing.T) {
	f := newFixture(t, 10)
	f.camera.SetOpenError(errors.New("permission denied"))

	if err := f.app.Init(context.Background()); !errors.Is(err, ErrInit) {
		t.Fatalf("Init() error = %v, want ErrInit", err)
	}
}

func TestApp_InitProgress(t *testing.T) {
	f := newFixture(t, 10)

	if err := f.app.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if p := f.app.Journal().Progress(); p != 90 {
		t.Errorf("progress after Init = %d, want 90", p)
	}
	if !f.camera.IsOpen() {
		t.Error("camera should be open after Init")
	}

	var successes int
	for _, e := range f.app.Journal().Entries(0) {
		if e.Level == journal.Success {
			successes++
		}
	}
	if successes != 2 {
		t.Errorf("success entries = %d, want 2", successes)
	}

	if err := f.app.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer f.app.Stop()
	if f.app.Status().Loading {
		t.Error("status should not be loading after Start")
	}
}

func TestApp_ObserveDrivesMachine(t *testing.T) {
	f := newFixture(t, 0)
	a := f.app

	steps := []struct {
		name        string
		hands       []detector.HandLandmarks
		wantGesture gesture.Gesture
		wantState   scene.State
	}{
		{"open palm scatters", hands(detector.OpenPalmLandmarks()), gesture.OpenPalm, scene.Scatter},
		{"pinch zooms", hands(detector.PinchLandmarks()), gesture.Pinch, scene.Zoom},
		{"no hand keeps state", nil, gesture.None, scene.Zoom},
		{"relaxed keeps state", hands(detector.RelaxedLandmarks()), gesture.None, scene.Zoom},
		{"fist gathers", hands(detector.FistLandmarks()), gesture.Fist, scene.Tree},
	}
	for _, s := range steps {
		a.observe(s.hands)
		st, g := a.machine.Snapshot()
		if g != s.wantGesture || st != s.wantState {
			t.Errorf("%s: got (%s, %s), want (%s, %s)", s.name, g, st, s.wantGesture, s.wantState)
		}
	}
}

func TestApp_ObserveTracksHand(t *testing.T) {
	f := newFixture(t, 0)
	a := f.app

	a.observe(hands(detector.OpenPalmLandmarks()))
	h := a.latestHand()
	if h == nil {
		t.Fatal("expected a tracked hand")
	}
	open := detector.OpenPalmLandmarks()
	k, _ := open.Knuckle()
	if h.X != k.X || h.Y != k.Y {
		t.Errorf("first knuckle = %+v, want %+v", h, k)
	}
	if _, err := a.LatestLandmarks(); err != nil {
		t.Errorf("LatestLandmarks() error = %v", err)
	}

	a.observe(nil)
	if a.latestHand() != nil {
		t.Error("hand should clear when none is detected")
	}
	if _, err := a.LatestLandmarks(); !errors.Is(err, ErrNoHand) {
		t.Errorf("LatestLandmarks() error = %v, want ErrNoHand", err)
	}
}

func TestApp_RenderStep(t *testing.T) {
	camera := r3.Vec{Z: 25}

	t.Run("skips empty scene", func(t *testing.T) {
		f := newFixture(t, 0)
		if _, ok := f.app.renderStep(time.Now(), 0.016, 0, camera, 1); ok {
			t.Error("renderStep should skip without elements")
		}
	})

	t.Run("publishes ornaments", func(t *testing.T) {
		f := newFixture(t, 25)
		if err := f.app.buildScene(); err != nil {
			t.Fatal(err)
		}
		frame, ok := f.app.renderStep(time.Now(), 0.016, 0, camera, 1)
		if !ok {
			t.Fatal("renderStep skipped")
		}
		if len(frame.Elements) != 25 || frame.State != scene.Tree {
			t.Errorf("frame = %d elements in %s", len(frame.Elements), frame.State)
		}
	})
}

func TestApp_AddPhoto(t *testing.T) {
	f := newFixture(t, 5)
	a := f.app
	if err := a.buildScene(); err != nil {
		t.Fatal(err)
	}

	p := &store.Photo{Name: "snow.jpg", URL: "https://example.com/snow.jpg"}
	if err := a.AddPhoto(p); err != nil {
		t.Fatalf("AddPhoto() error = %v", err)
	}
	if p.ID == "" {
		t.Fatal("AddPhoto should assign an id")
	}

	// Not yet in the scene until the render loop syncs.
	if err := a.SetHover(p.ID, true); !errors.Is(err, ErrUnknownPhoto) {
		t.Errorf("SetHover before sync error = %v, want ErrUnknownPhoto", err)
	}

	frame, ok := a.renderStep(time.Now(), 0.016, 0, r3.Vec{Z: 25}, 1)
	if !ok || len(frame.Elements) != 6 {
		t.Fatalf("frame after AddPhoto = %v, %v", ok, frame)
	}
	if frame.Elements[5].ID != p.ID {
		t.Errorf("photo appended as %s, want %s", frame.Elements[5].ID, p.ID)
	}
	if err := a.SetHover(p.ID, true); err != nil {
		t.Errorf("SetHover() error = %v", err)
	}
	if a.Status().Photos != 1 {
		t.Errorf("Status().Photos = %d, want 1", a.Status().Photos)
	}

	if n, _ := f.store.Photos().Count(); n != 1 {
		t.Errorf("stored photos = %d, want 1", n)
	}
}

func TestApp_PhotoAddedBeforeSceneBuilt(t *testing.T) {
	f := newFixture(t, 3)
	a := f.app

	if err := a.AddPhoto(&store.Photo{ID: "early", Name: "early.jpg", URL: "https://example.com/early.jpg"}); err != nil {
		t.Fatalf("AddPhoto() error = %v", err)
	}
	if err := a.buildScene(); err != nil {
		t.Fatal(err)
	}

	frame, ok := a.renderStep(time.Now(), 0.016, 0, r3.Vec{Z: 25}, 1)
	if !ok {
		t.Fatal("renderStep skipped")
	}
	count := 0
	for _, el := range frame.Elements {
		if el.ID == "early" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("photo early appears %d times, want 1", count)
	}
	if len(frame.Elements) != 4 {
		t.Errorf("frame has %d elements, want 4", len(frame.Elements))
	}
}

func TestApp_SetHoverRejectsOrnaments(t *testing.T) {
	f := newFixture(t, 4)
	if err := f.app.buildScene(); err != nil {
		t.Fatal(err)
	}
	ornament := f.app.pop.Elements()[0].ID
	if err := f.app.SetHover(ornament, true); !errors.Is(err, ErrUnknownPhoto) {
		t.Errorf("SetHover(%s) error = %v, want ErrUnknownPhoto", ornament, err)
	}
}

func TestApp_PhotosReloadedInOrder(t *testing.T) {
	f := newFixture(t, 0)
	for _, id := range []string{"first", "second"} {
		if err := f.store.Photos().Create(&store.Photo{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.app.buildScene(); err != nil {
		t.Fatal(err)
	}
	focus := f.app.pop.Focus()
	if focus == nil || focus.ID != "first" {
		t.Errorf("focus = %v, want first", focus)
	}
}

func TestApp_Thresholds(t *testing.T) {
	f := newFixture(t, 0)
	a := f.app

	bad := gesture.Thresholds{PinchMax: 0.05, FistMax: 0.5, OpenMin: 0.4}
	if err := a.SetThresholds(bad); !errors.Is(err, gesture.ErrInvalidThresholds) {
		t.Fatalf("SetThresholds(bad) error = %v", err)
	}

	// A relaxed hand (spread 0.4) reads as OPEN_PALM once open_min drops.
	good := gesture.Thresholds{PinchMax: 0.05, FistMax: 0.2, OpenMin: 0.3}
	if err := a.SetThresholds(good); err != nil {
		t.Fatalf("SetThresholds() error = %v", err)
	}
	a.observe(hands(detector.RelaxedLandmarks()))
	if g := a.machine.Gesture(); g != gesture.OpenPalm {
		t.Errorf("gesture = %s, want OPEN_PALM", g)
	}

	// A fresh app on the same store starts with the saved values.
	logger := log.New(io.Discard)
	b := New(Options{Settings: config.Default(), Store: f.store, Logger: logger})
	if err := b.loadThresholds(); err != nil {
		t.Fatal(err)
	}
	if b.Thresholds() != good {
		t.Errorf("reloaded thresholds = %+v, want %+v", b.Thresholds(), good)
	}
}

func TestApp_Calibrate(t *testing.T) {
	f := newFixture(t, 0)

	if _, err := f.app.Calibrate(); !errors.Is(err, gesture.ErrNoSamples) {
		t.Fatalf("Calibrate() with no samples error = %v", err)
	}

	var samples []*store.Sample
	for label, h := range map[string]detector.HandLandmarks{
		"FIST":      detector.SyntheticHand(0.2, detector.Point3D{X: 0.7, Y: 0.75}),
		"OPEN_PALM": detector.SyntheticHand(0.5, detector.Point3D{X: 0.9, Y: 0.7}),
	} {
		data, err := json.Marshal(h.Points)
		if err != nil {
			t.Fatal(err)
		}
		samples = append(samples, &store.Sample{Label: label, Data: data})
	}
	if err := f.store.Samples().Create(samples); err != nil {
		t.Fatal(err)
	}

	got, err := f.app.Calibrate()
	if err != nil {
		t.Fatalf("Calibrate() error = %v", err)
	}
	if got.FistMax <= 0.2 || got.OpenMin >= 0.5 || got.FistMax > got.OpenMin {
		t.Errorf("calibrated thresholds = %+v", got)
	}
	if f.app.Thresholds() != got {
		t.Error("calibrated thresholds not applied")
	}
}

func TestApp_SmootherFollowsGateRate(t *testing.T) {
	f := newFixture(t, 0)
	f.app.cfg.Camera.IdleFPS = 10
	f.app.cfg.Camera.ActiveFPS = 40

	if err := f.app.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer f.app.Stop()

	if got, want := f.app.smoother.Interval(), 0.1; math.Abs(got-want) > 1e-9 {
		t.Errorf("smoother interval = %v, want idle %v", got, want)
	}
}

func TestApp_DetectorPanicIsContained(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	f := newFixture(t, 0)
	if err := f.app.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer f.app.Stop()

	f.detector.SetHands(hands(detector.OpenPalmLandmarks()))
	f.app.perceive(time.Now())
	if st := f.app.machine.State(); st != scene.Scatter {
		t.Fatalf("state = %s, want SCATTER", st)
	}

	f.detector.SetPanic("model crashed")
	f.app.perceive(time.Now())
	if st, g := f.app.machine.Snapshot(); st != scene.Scatter || g != gesture.OpenPalm {
		t.Errorf("after panic = (%s, %s), want unchanged", st, g)
	}

	f.detector.SetPanic(nil)
	f.camera.SetReadError(errors.New("unplugged"))
	calls := f.detector.Calls()
	f.app.perceive(time.Now())
	if f.detector.Calls() != calls {
		t.Error("detector called despite read failure")
	}
}

func TestApp_Loops_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	f := newFixture(t, 30)
	if err := f.app.Init(context.Background()); err != nil {
		t.Fatal(err)
	}

	frames, cancel := f.app.Subscribe()
	defer cancel()

	f.detector.SetHands(hands(detector.OpenPalmLandmarks()))
	if err := f.app.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer f.app.Stop()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case fr, ok := <-frames:
			if !ok {
				t.Fatal("frames closed early")
			}
			if fr.State == scene.Scatter && len(fr.Elements) == 30 {
				if f.detector.LastTimestamp() == 0 {
					t.Error("detector never received a timestamp")
				}
				return
			}
		case <-deadline:
			t.Fatalf("scene never scattered; status %+v", f.app.Status())
		}
	}
}
