package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMaxSessions bounds the number of live sessions. Non-positive means unbounded.
func WithMaxSessions(n int) Option {
	return func(s *MemoryStore) {
		s.maxSessions = n
	}
}

// WithSweepInterval sets how often expired sessions are removed.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.sweepInterval = interval
		}
	}
}

// WithClock overrides the time source used by the sweeper.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
