package port

import "time"

// Clock время от начала сессии
type Clock interface {
	Elapsed() time.Duration
	Restart()
}
