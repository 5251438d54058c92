package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu      sync.Mutex
	hands   []HandLandmarks
	err     error
	loadErr error
	panicV  any
	calls   int
	lastTS  int64
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetLoadError sets the error returned by Load.
func (m *MockDetector) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

// SetPanic makes Detect panic with v, standing in for a crashing model.
func (m *MockDetector) SetPanic(v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panicV = v
}

// Load returns the configured load error.
func (m *MockDetector) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadErr
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat, timestampMs int64) ([]HandLandmarks, error) {
	m.mu.Lock()
	m.calls++
	m.lastTS = timestampMs
	hands, err, p := m.hands, m.err, m.panicV
	m.mu.Unlock()

	if p != nil {
		panic(p)
	}
	if err != nil {
		return nil, err
	}
	return hands, nil
}

// Calls returns how many times Detect was called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastTimestamp returns the timestamp passed to the most recent Detect call.
func (m *MockDetector) LastTimestamp() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastTS
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// fingerDirs are unit directions from the wrist toward the index, middle,
// ring and pinky tips, fanned like a right hand seen by the camera.
var fingerDirs = [4]Point3D{
	{X: 0.6, Y: -0.8},
	{X: 0, Y: -1},
	{X: -0.6, Y: -0.8},
	{X: -0.8, Y: -0.6},
}

var fingerJoints = [4][4]int{
	{IndexMCP, IndexPIP, IndexDIP, IndexTip},
	{MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip},
	{RingMCP, RingPIP, RingDIP, RingTip},
	{PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip},
}

// SyntheticHand builds a right hand with the wrist at (0.5, 0.8, 0) and every
// non-thumb fingertip exactly spread away from the wrist. The thumb chain ends
// at thumbTip.
func SyntheticHand(spread float64, thumbTip Point3D) HandLandmarks {
	hand := HandLandmarks{
		Points:     make([]Point3D, NumLandmarks),
		Handedness: "Right",
		Score:      0.95,
	}

	wrist := Point3D{X: 0.5, Y: 0.8, Z: 0}
	hand.Points[Wrist] = wrist

	along := [4]float64{0.35, 0.6, 0.8, 1.0}
	for f, joints := range fingerJoints {
		dir := fingerDirs[f]
		for j, idx := range joints {
			hand.Points[idx] = Point3D{
				X: wrist.X + dir.X*spread*along[j],
				Y: wrist.Y + dir.Y*spread*along[j],
				Z: wrist.Z + dir.Z*spread*along[j],
			}
		}
	}

	thumb := [4]int{ThumbCMC, ThumbMCP, ThumbIP, ThumbTip}
	for j, idx := range thumb {
		t := float64(j+1) / 4
		hand.Points[idx] = Point3D{
			X: wrist.X + (thumbTip.X-wrist.X)*t,
			Y: wrist.Y + (thumbTip.Y-wrist.Y)*t,
			Z: wrist.Z + (thumbTip.Z-wrist.Z)*t,
		}
	}

	return hand
}

// FistLandmarks returns a closed fist: fingertips 0.1 from the wrist and the
// thumb tucked beside, well away from the index tip.
func FistLandmarks() HandLandmarks {
	return SyntheticHand(0.1, Point3D{X: 0.7, Y: 0.75, Z: 0})
}

// OpenPalmLandmarks returns an open hand: fingertips 0.6 from the wrist and
// the thumb extended to the side.
func OpenPalmLandmarks() HandLandmarks {
	return SyntheticHand(0.6, Point3D{X: 0.9, Y: 0.7, Z: 0})
}

// RelaxedLandmarks returns a half-curled hand that matches no gesture.
func RelaxedLandmarks() HandLandmarks {
	return SyntheticHand(0.4, Point3D{X: 0.8, Y: 0.7, Z: 0})
}

// PinchLandmarks returns a hand with the thumb tip touching the index tip.
// The other fingers are half extended.
func PinchLandmarks() HandLandmarks {
	spread := 0.4
	indexTip := Point3D{
		X: 0.5 + fingerDirs[0].X*spread,
		Y: 0.8 + fingerDirs[0].Y*spread,
	}
	return SyntheticHand(spread, Point3D{X: indexTip.X + 0.01, Y: indexTip.Y + 0.01, Z: 0.01})
}
