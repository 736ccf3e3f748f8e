package mirror

import (
	"sync"
	"time"
)

// Limiter is a fixed-window request limiter shared by all clients.
type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu    sync.Mutex
	start time.Time
	used  int
}

// NewLimiter allows limit requests per window. A limit of zero or less
// disables limiting.
func NewLimiter(limit int, window time.Duration) *Limiter {
	if window <= 0 {
		window = time.Hour
	}
	return &Limiter{limit: limit, window: window, now: time.Now}
}

// Limit returns the requests allowed per window.
func (l *Limiter) Limit() int {
	return l.limit
}

// Enabled reports whether the limiter rejects anything.
func (l *Limiter) Enabled() bool {
	return l != nil && l.limit > 0
}

// Take consumes one request. It returns the requests left in the window,
// when the window resets, and whether the request is allowed.
func (l *Limiter) Take() (remaining int, reset time.Time, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.start.IsZero() || !now.Before(l.start.Add(l.window)) {
		l.start = now
		l.used = 0
	}
	reset = l.start.Add(l.window)

	if l.used >= l.limit {
		return 0, reset, false
	}
	l.used++
	return l.limit - l.used, reset, true
}
