package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMaxJobs bounds how many jobs are kept. Zero or less means unbounded.
func WithMaxJobs(n int) Option {
	return func(s *MemoryStore) {
		s.maxJobs = n
	}
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *MemoryStore) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithClock replaces time.Now.
func WithClock(fn func() time.Time) Option {
	return func(s *MemoryStore) {
		if fn != nil {
			s.now = fn
		}
	}
}
