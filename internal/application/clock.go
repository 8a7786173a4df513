package app

import (
	"sync"
	"time"

	"inspect-sim/internal/domain/port"
)

// SessionClock время от начала сессии по системным часам
type SessionClock struct {
	mu    sync.Mutex
	now   func() time.Time
	start time.Time
}

func NewSessionClock() *SessionClock {
	c := &SessionClock{now: time.Now}
	c.start = c.now()
	return c
}

func (c *SessionClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Sub(c.start)
}

func (c *SessionClock) Restart() {
	c.mu.Lock()
	c.start = c.now()
	c.mu.Unlock()
}

var _ port.Clock = (*SessionClock)(nil)
