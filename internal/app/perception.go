package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ayusman/yuletide/internal/capture"
	"github.com/ayusman/yuletide/internal/detector"
	"github.com/ayusman/yuletide/internal/gesture"
	"github.com/ayusman/yuletide/internal/orbit"
	"github.com/ayusman/yuletide/internal/scene"
)

// runPerception reads frames, classifies the first detected hand and feeds
// the result to the scene machine. The cadence follows the motion gate:
// idle rate while the picture is still, active rate while something moves.
// Read and detection failures are logged and the previous state is kept.
func (a *App) runPerception(ctx context.Context) {
	ticker := time.NewTicker(interval(a.gate.FPS()))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !a.IsEnabled() {
				continue
			}
			if fps, changed := a.perceive(now); changed {
				a.camera.SetFPS(fps)
				ticker.Reset(interval(fps))
				a.logger.Debug("perception rate changed", "fps", fps, "active", a.gate.Active())
			}
		}
	}
}

func interval(fps int) time.Duration {
	return time.Second / time.Duration(max(fps, 1))
}

// perceive runs one perception step and returns the gate's verdict.
func (a *App) perceive(now time.Time) (int, bool) {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		a.logger.Debug("reading frame", "err", err)
		return a.gate.FPS(), false
	}
	defer frame.Close()

	if err := a.preview.Publish(frame.Mat); err != nil {
		a.logger.Debug("publishing preview", "err", err)
	}

	fps, changed := a.gate.Observe(frame.Mat, now)
	if changed {
		a.smoother.SetInterval(interval(fps).Seconds())
	}

	hands, err := a.detect(frame)
	if err != nil {
		a.logger.Warn("prediction error", "err", err)
		return fps, changed
	}

	a.observe(hands)
	return fps, changed
}

// observe classifies the first hand, records it for steering and applies
// the gesture. An empty result clears the hand and reads as NONE.
func (a *App) observe(hands []detector.HandLandmarks) scene.Transition {
	if len(hands) == 0 {
		a.hand.Store(nil)
		return a.machine.Apply(gesture.None)
	}

	h := hands[0]
	sample := &handSample{landmarks: h.Points}
	if k, ok := h.Knuckle(); ok {
		smoothed, err := a.smoother.Observe(k.X, k.Y)
		if err != nil {
			a.logger.Debug("smoothing knuckle", "err", err)
		}
		sample.knuckle = smoothed
	} else {
		sample = nil
	}
	a.hand.Store(sample)

	return a.machine.Apply(a.classifier.Load().Classify(h.Points))
}

// detect calls the detector, turning a panic into an error so one bad frame
// cannot take the loop down.
func (a *App) detect(frame *capture.Frame) (hands []detector.HandLandmarks, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("detector panic: %v", r)
		}
	}()
	return a.detector.Detect(frame.Mat, frame.TimestampMs)
}

// latestHand returns the smoothed steering knuckle, or nil without a hand.
func (a *App) latestHand() *orbit.Hand {
	s := a.hand.Load()
	if s == nil {
		return nil
	}
	k := s.knuckle
	return &k
}
