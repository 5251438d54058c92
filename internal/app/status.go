package app

import (
	"sync"

	"github.com/ayusman/yuletide/internal/gesture"
	"github.com/ayusman/yuletide/internal/layout"
	"github.com/ayusman/yuletide/internal/scene"
)

// Status is a point-in-time summary for operator surfaces.
type Status struct {
	State     scene.State     `json:"state"`
	Gesture   gesture.Gesture `json:"gesture"`
	Loading   bool            `json:"loading"`
	Progress  int             `json:"progress"`
	Running   bool            `json:"running"`
	Enabled   bool            `json:"enabled"`
	HandSeen  bool            `json:"hand_seen"`
	Ornaments int             `json:"ornaments"`
	Photos    int             `json:"photos"`
	Frame     uint64          `json:"frame"`
}

// Status returns the current summary.
func (a *App) Status() Status {
	st, g := a.machine.Snapshot()
	s := Status{
		State:     st,
		Gesture:   g,
		Loading:   a.journal.Loading(),
		Progress:  a.journal.Progress(),
		Running:   a.Running(),
		Enabled:   a.IsEnabled(),
		HandSeen:  a.hand.Load() != nil,
		Ornaments: a.pop.Len(layout.Ornament),
		Photos:    a.pop.Len(layout.Photo),
	}
	if f := a.latest.Load(); f != nil {
		s.Frame = f.Seq
	}
	return s
}

// LatestFrame returns the most recently published frame, or nil.
func (a *App) LatestFrame() *Frame {
	return a.latest.Load()
}

// Subscribe returns a channel receiving every published frame and a cancel
// func. Slow subscribers miss frames instead of stalling the render loop.
func (a *App) Subscribe() (<-chan Frame, func()) {
	return a.subs.add()
}

func (a *App) publish(f *Frame) {
	a.latest.Store(f)
	a.subs.send(*f)
}

type subscribers struct {
	mu sync.RWMutex
	m  map[chan Frame]struct{}
}

func (s *subscribers) add() (<-chan Frame, func()) {
	ch := make(chan Frame, 4)
	s.mu.Lock()
	s.m[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			if _, ok := s.m[ch]; ok {
				delete(s.m, ch)
				close(ch)
			}
			s.mu.Unlock()
		})
	}
}

func (s *subscribers) send(f Frame) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.m {
		select {
		case ch <- f:
		default:
		}
	}
}

func (s *subscribers) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.m {
		delete(s.m, ch)
		close(ch)
	}
}
