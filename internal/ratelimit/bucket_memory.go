package ratelimit

import (
	"context"
	"sync"
	"time"
)

// InMemoryBuckets is a sliding-window bucket store local to one process.
type InMemoryBuckets struct {
	mu      sync.Mutex
	buckets map[string]*slidingWindow
	now     func() time.Time
}

type slidingWindow struct {
	timestamps []time.Time
}

func NewInMemoryBuckets() *InMemoryBuckets {
	return &InMemoryBuckets{buckets: make(map[string]*slidingWindow), now: time.Now}
}

// Allow records one request against key if the window has room.
func (s *InMemoryBuckets) Allow(_ context.Context, key string, limit Limit) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sw := s.buckets[key]
	if sw == nil {
		sw = &slidingWindow{}
		s.buckets[key] = sw
	}
	sw.cleanup(now, limit.Window)

	if len(sw.timestamps) >= limit.Requests {
		resetAt := now.Add(limit.Window)
		if len(sw.timestamps) > 0 {
			resetAt = sw.timestamps[0].Add(limit.Window)
		}
		return &Result{
			Allowed:    false,
			Limit:      limit.Requests,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
		}, nil
	}

	sw.timestamps = append(sw.timestamps, now)
	return &Result{
		Allowed:   true,
		Limit:     limit.Requests,
		Remaining: limit.Requests - len(sw.timestamps),
		ResetAt:   sw.timestamps[0].Add(limit.Window),
	}, nil
}

// cleanup drops timestamps that fell out of the window.
func (sw *slidingWindow) cleanup(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}
