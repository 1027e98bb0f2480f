package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/secmon-lab/themis/pkg/domain/interfaces"
)

type window struct {
	count   int
	resetAt time.Time
}

// Memory is a process local fixed window counter
type Memory struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	windows map[string]*window
}

var _ interfaces.RateLimiter = &Memory{}

func NewMemory(limit int, windowSize time.Duration) *Memory {
	return &Memory{
		limit:   limit,
		window:  windowSize,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

func (m *Memory) Allow(ctx context.Context, userID string) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[userID]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(m.window)}
		m.windows[userID] = w
	}

	w.count++
	if w.count > m.limit {
		return false, w.resetAt.Sub(now), nil
	}
	return true, 0, nil
}
