package app

import (
	"context"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/yuletide/internal/blend"
	"github.com/ayusman/yuletide/internal/gesture"
	"github.com/ayusman/yuletide/internal/scene"
)

// Frame is one rendered scene snapshot.
type Frame struct {
	Seq      uint64              `json:"seq"`
	Time     time.Time           `json:"time"`
	State    scene.State         `json:"state"`
	Gesture  gesture.Gesture     `json:"gesture"`
	Yaw      float64             `json:"yaw"`
	Pitch    float64             `json:"pitch"`
	Camera   r3.Vec              `json:"camera"`
	Elements []blend.ElementPose `json:"elements"`
}

// runRender advances the orbit and the blend engine at the render rate and
// publishes a Frame per tick. dt comes from the wall clock so the motion is
// independent of the tick rate actually achieved.
func (a *App) runRender(ctx context.Context) {
	ticker := time.NewTicker(interval(a.cfg.Render.FPS))
	defer ticker.Stop()

	camera := r3.Vec{Z: a.cfg.Render.CameraZ}
	start := time.Now()
	last := start
	var seq uint64

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if f, ok := a.renderStep(now, dt, now.Sub(start).Seconds(), camera, seq+1); ok {
				seq = f.Seq
				a.publish(f)
			}
		}
	}
}

// renderStep advances the scene by dt. It reports false when the engine
// had nothing to draw.
func (a *App) renderStep(now time.Time, dt, elapsed float64, camera r3.Vec, seq uint64) (*Frame, bool) {
	a.syncPending()

	st, g := a.machine.Snapshot()
	a.orbit.Step(st, dt, a.latestHand())
	if !a.engine.Step(st, dt, elapsed, a.orbit.View(camera)) {
		return nil, false
	}

	yaw, pitch := a.orbit.Angles()
	return &Frame{
		Seq:      seq,
		Time:     now,
		State:    st,
		Gesture:  g,
		Yaw:      yaw,
		Pitch:    pitch,
		Camera:   camera,
		Elements: a.engine.Snapshot(),
	}, true
}

// syncPending moves queued photos into the population and allocates their
// live records.
func (a *App) syncPending() {
	a.pendingMu.Lock()
	ids := a.pending
	a.pending = nil
	a.pendingMu.Unlock()

	if len(ids) == 0 {
		return
	}
	added := a.pop.AddPhotos(ids...)
	if len(added) == 0 {
		return
	}
	a.engine.Sync(a.pop.Elements())
	a.logger.Debug("photos joined the scene", "count", len(added))
}
