package predictform

import (
	"sync"
	"time"
)

// FrameScheduler runs a callback on the next animation frame.
type FrameScheduler interface {
	RequestFrame(fn func())
}

// SyncScheduler runs frames on the calling goroutine. Frames requested while a
// frame is running are queued and run after it, so a self-rescheduling
// animation completes within the first RequestFrame call without recursion.
type SyncScheduler struct {
	mu      sync.Mutex
	queue   []func()
	running bool
	frames  int
}

func (s *SyncScheduler) RequestFrame(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.frames++
		s.mu.Unlock()
		next()
		s.mu.Lock()
	}
	s.running = false
	s.mu.Unlock()
}

// Frames reports how many frames have run.
func (s *SyncScheduler) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// DefaultFrameInterval approximates a 60Hz display.
const DefaultFrameInterval = 16 * time.Millisecond

// TickerScheduler batches requested callbacks and runs them on a timer
// goroutine once per interval. Callbacks requested during a frame run on the
// following frame.
type TickerScheduler struct {
	interval time.Duration
	mu       sync.Mutex
	pending  []func()
	timer    *time.Timer
	stopped  bool
}

// NewTickerScheduler constructs a TickerScheduler; interval <= 0 uses DefaultFrameInterval.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &TickerScheduler{interval: interval}
}

func (s *TickerScheduler) RequestFrame(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.pending = append(s.pending, fn)
	if s.timer == nil {
		s.timer = time.AfterFunc(s.interval, s.flush)
	}
}

func (s *TickerScheduler) flush() {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.timer = nil
	s.mu.Unlock()
	for _, fn := range batch {
		fn()
	}
}

// Stop drops pending frames and ignores later requests.
func (s *TickerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
