package capture

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// MockCamera produces synthetic frames for tests. Each frame is a dark
// canvas with a bright square whose position advances when Moving is set,
// so the motion gate sees motion only when asked to.
type MockCamera struct {
	width, height int

	mu      sync.Mutex
	clock   clock
	running bool
	moving  bool
	openErr error
	readErr error
	fps     int
	offset  int
}

// NewMockCamera creates a MockCamera producing width x height frames.
func NewMockCamera(width, height int) *MockCamera {
	return &MockCamera{
		width:  width,
		height: height,
		clock:  clock{now: time.Now},
		fps:    DefaultFPS,
	}
}

// SetOpenError makes Open fail with err.
func (c *MockCamera) SetOpenError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openErr = err
}

// SetReadError makes ReadFrame fail with err until cleared with nil.
func (c *MockCamera) SetReadError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readErr = err
}

// SetMoving toggles the moving square.
func (c *MockCamera) SetMoving(moving bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.moving = moving
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openErr != nil {
		return c.openErr
	}
	c.running = true
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

func (c *MockCamera) ReadFrame() (*Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}
	if c.readErr != nil {
		return nil, c.readErr
	}
	if c.width <= 0 || c.height <= 0 {
		return nil, errors.New("no frames available")
	}

	mat := gocv.NewMatWithSize(c.height, c.width, gocv.MatTypeCV8UC3)
	if c.moving {
		c.offset = (c.offset + c.width/4) % (c.width / 2)
	}
	side := min(c.width, c.height) / 4
	square := image.Rect(c.offset, c.height/4, c.offset+side, c.height/4+side)
	gocv.Rectangle(&mat, square, color.RGBA{R: 255, G: 255, B: 255}, -1)

	seq, ts := c.clock.stamp()
	return &Frame{Mat: &mat, Seq: seq, TimestampMs: ts}, nil
}

func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
