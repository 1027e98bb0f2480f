package ratelimit

import "time"

// SetClock replaces the time source of a Memory limiter
func (m *Memory) SetClock(now func() time.Time) {
	m.now = now
}
