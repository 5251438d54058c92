package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Motion detection constants
const (
	// GaussianBlurSize is the kernel size for Gaussian blur (21x21)
	GaussianBlurSize = 21
	// DiffThreshold is the binary threshold for difference detection
	DiffThreshold = 25
)

// MotionDetector compares consecutive frames by differencing their blurred
// grayscale versions.
type MotionDetector struct {
	threshold   float64
	prevGray    gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// NewMotionDetector creates a MotionDetector. threshold is the percentage
// of pixels that must change, so 1.0 means 1%.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		prevGray:  gocv.NewMat(),
	}
}

// Detect reports whether frame differs from the previous one by more than
// the threshold, and the percentage of changed pixels. The first frame only
// sets the baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	if !m.initialized {
		blurred.CopyTo(&m.prevGray)
		m.initialized = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(thresh)) / float64(thresh.Rows()*thresh.Cols()) * 100.0

	blurred.CopyTo(&m.prevGray)

	return changed > m.threshold, changed
}

// Reset drops the baseline frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

// Close releases resources used by the motion detector.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

func (m *MotionDetector) release() {
	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.initialized = false
}

// GateConfig configures a Gate.
type GateConfig struct {
	Threshold   float64
	IdleFPS     int
	ActiveFPS   int
	IdleTimeout time.Duration
}

// Gate picks the perception cadence: the idle rate while the picture is
// still, the active rate from the first moving frame until IdleTimeout has
// passed without motion.
type Gate struct {
	cfg        GateConfig
	motion     *MotionDetector
	active     bool
	lastMotion time.Time
}

// NewGate creates a Gate. Non-positive rates fall back to DefaultFPS and a
// non-positive threshold to 1%.
func NewGate(cfg GateConfig) *Gate {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 1.0
	}
	if cfg.IdleFPS <= 0 {
		cfg.IdleFPS = DefaultFPS
	}
	if cfg.ActiveFPS <= 0 {
		cfg.ActiveFPS = cfg.IdleFPS
	}
	return &Gate{
		cfg:    cfg,
		motion: NewMotionDetector(cfg.Threshold),
	}
}

// Observe feeds one frame taken at now. It returns the rate to run at next
// and whether the rate changed.
func (g *Gate) Observe(frame *gocv.Mat, now time.Time) (fps int, changed bool) {
	moving, _ := g.motion.Detect(frame)

	switch {
	case moving:
		g.lastMotion = now
		if !g.active {
			g.active = true
			changed = true
		}
	case g.active && now.Sub(g.lastMotion) > g.cfg.IdleTimeout:
		g.active = false
		changed = true
	}
	return g.FPS(), changed
}

// Active reports whether the gate is in active mode.
func (g *Gate) Active() bool {
	return g.active
}

// FPS returns the rate for the current mode.
func (g *Gate) FPS() int {
	if g.active {
		return g.cfg.ActiveFPS
	}
	return g.cfg.IdleFPS
}

// Close releases the motion detector.
func (g *Gate) Close() {
	g.motion.Close()
}
