package orbit

import (
	"sync"

	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"
)

// Smoother filters jittery knuckle observations with a constant-velocity
// Kalman filter.
type Smoother struct {
	dt float64

	mu sync.Mutex
	kf *kalman_filter.Kalman2D
}

/* Kalman filter props, in normalized image units */
const (
	stdDevA  = 1.0
	stdDevMx = 0.05
	stdDevMy = 0.05
)

// NewSmoother creates a smoother for observations arriving every dt seconds.
func NewSmoother(dt float64) *Smoother {
	return &Smoother{dt: dt}
}

// Observe feeds one observation and returns the filtered position. The first
// observation after construction or Reset is returned unchanged.
func (s *Smoother) Observe(x, y float64) (Hand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.kf == nil {
		s.kf = kalman_filter.NewKalman2D(s.dt, 0, 0, stdDevA, stdDevMx, stdDevMy, kalman_filter.WithState2D(x, y))
		return Hand{X: x, Y: y}, nil
	}

	s.kf.Predict()
	if err := s.kf.Update(x, y); err != nil {
		return Hand{X: x, Y: y}, errors.Wrap(err, "Can't update knuckle tracker")
	}
	fx, fy := s.kf.GetState()
	return Hand{X: fx, Y: fy}, nil
}

// SetInterval changes the expected time between observations. A running
// filter is rebuilt at its current position.
func (s *Smoother) SetInterval(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dt == s.dt {
		return
	}
	s.dt = dt
	if s.kf != nil {
		x, y := s.kf.GetState()
		s.kf = kalman_filter.NewKalman2D(dt, 0, 0, stdDevA, stdDevMx, stdDevMy, kalman_filter.WithState2D(x, y))
	}
}

// Interval returns the expected time between observations in seconds.
func (s *Smoother) Interval() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dt
}

// Reset drops the filter state.
func (s *Smoother) Reset() {
	s.mu.Lock()
	s.kf = nil
	s.mu.Unlock()
}
