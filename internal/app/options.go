package service

import (
	"github.com/okian/reelplan/internal/adapters/repository"
	"github.com/okian/reelplan/internal/domain/planner"
	"github.com/okian/reelplan/internal/domain/policy"
	"github.com/okian/reelplan/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of planning workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithBatchConcurrency caps parallel plans inside one batch.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

// WithMaxBatchSize caps the number of items in one batch.
func WithMaxBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBatchSize = n
		}
	}
}

// WithPolicy sets the service-wide planning policy.
func WithPolicy(p policy.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithStore sets the job store. The default is an in-memory store.
func WithStore(store repository.JobStore) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithPlanner replaces the planning engine.
func WithPlanner(p planner.Planner) Option {
	return func(s *Service) {
		if p != nil {
			s.engine = p
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
