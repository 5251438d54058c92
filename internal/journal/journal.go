// Package journal keeps the operator-facing record of lifecycle notices
// and the initialization progress shown while the system loads.
package journal

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Level classifies an entry.
type Level string

const (
	Info    Level = "info"
	Error   Level = "error"
	Success Level = "success"
)

// DefaultCapacity is the number of entries retained.
const DefaultCapacity = 200

// Entry is one notice.
type Entry struct {
	Seq     uint64    `json:"seq"`
	Time    time.Time `json:"time"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
}

// Clock returns the wall-clock stamp of the entry as HH:MM:SS.
func (e Entry) Clock() string {
	return e.Time.Format(time.TimeOnly)
}

// Journal is a bounded, concurrency-safe list of entries. Every entry is
// also written to the structured logger.
type Journal struct {
	logger *log.Logger
	now    func() time.Time

	mu       sync.RWMutex
	entries  []Entry
	capacity int
	seq      uint64
	progress int
}

// New creates a Journal keeping at most capacity entries. A nil logger
// falls back to log.Default().
func New(capacity int, logger *log.Logger) *Journal {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Journal{
		logger:   logger.WithPrefix("watchdog"),
		now:      time.Now,
		capacity: capacity,
	}
}

// Add records a notice.
func (j *Journal) Add(level Level, msg string) Entry {
	j.mu.Lock()
	j.seq++
	e := Entry{Seq: j.seq, Time: j.now(), Level: level, Message: msg}
	j.entries = append(j.entries, e)
	if over := len(j.entries) - j.capacity; over > 0 {
		j.entries = append(j.entries[:0], j.entries[over:]...)
	}
	j.mu.Unlock()

	switch level {
	case Error:
		j.logger.Error(msg)
	default:
		j.logger.Info(msg)
	}
	return e
}

func (j *Journal) Info(msg string)    { j.Add(Info, msg) }
func (j *Journal) Error(msg string)   { j.Add(Error, msg) }
func (j *Journal) Success(msg string) { j.Add(Success, msg) }

// Entries returns the retained entries with Seq greater than since, oldest
// first.
func (j *Journal) Entries(since uint64) []Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]Entry, 0, len(j.entries))
	for _, e := range j.entries {
		if e.Seq > since {
			out = append(out, e)
		}
	}
	return out
}

// SetProgress records initialization progress, clamped to 0..100.
func (j *Journal) SetProgress(p int) {
	p = max(0, min(100, p))
	j.mu.Lock()
	j.progress = p
	j.mu.Unlock()
}

// Progress returns initialization progress in percent.
func (j *Journal) Progress() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.progress
}

// Loading reports whether initialization has not finished.
func (j *Journal) Loading() bool {
	return j.Progress() < 100
}
