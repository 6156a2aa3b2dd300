// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	planqueue "github.com/okian/reelplan/internal/adapters/mq/queue"
	workerpool "github.com/okian/reelplan/internal/adapters/mq/worker"
	"github.com/okian/reelplan/internal/adapters/repository"
	"github.com/okian/reelplan/internal/domain/model"
	"github.com/okian/reelplan/internal/domain/planner"
	"github.com/okian/reelplan/internal/domain/policy"
	"github.com/okian/reelplan/internal/domain/types"
	"github.com/okian/reelplan/pkg/logger"
	"github.com/okian/reelplan/pkg/metrics"
)

// Service implements the API dependencies for the highlight planner.
type Service struct {
	mu sync.RWMutex

	// Core components
	engine planner.Planner
	store  repository.JobStore
	queue  *planqueue.InMemoryQueue
	pool   *workerpool.Pool

	// Configuration
	workerCount      int
	queueSize        int
	batchConcurrency int
	maxBatchSize     int
	policy           policy.Policy

	started bool
	logger  logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      runtime.NumCPU() * 2,
		queueSize:        10_000,
		batchConcurrency: runtime.NumCPU(),
		maxBatchSize:     100,
		policy:           policy.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the missing components and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if err := s.policy.Validate(); err != nil {
		return fmt.Errorf("service policy: %w", err)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting planning service...")

	if s.engine == nil {
		s.engine = planner.NewEngine(planner.WithLogger(s.logger.Named("planner")))
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.logger.Info(ctx, "using in-memory job store")
	}
	s.queue = planqueue.NewInMemoryQueue(planqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.engine, s.store,
		workerpool.WithLogger(s.logger.Named("worker")))
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "planning service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("batchConcurrency", s.batchConcurrency),
	)
	return nil
}

// Stop closes the queue and waits for workers to drain it.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping planning service...")

	err := s.pool.Shutdown(ctx)
	s.started = false
	if err != nil {
		s.logger.Warn(ctx, "planning service stopped with pending work", logger.Error(err))
		return err
	}
	s.logger.Info(ctx, "planning service stopped")
	return nil
}

// request applies the input's overrides on top of the service policy.
func (s *Service) request(in types.PlanInput) planner.Request { //nolint:gocritic // hugeParam: inputs travel by value
	return planner.Request{
		Moments:       in.Moments(),
		VideoDuration: in.VideoDuration,
		Policy:        in.Policy.Apply(s.policy),
	}
}

// Plan builds a plan synchronously.
func (s *Service) Plan(ctx context.Context, in types.PlanInput) (model.Plan, error) {
	s.mu.RLock()
	engine := s.engine
	s.mu.RUnlock()
	if engine == nil {
		return model.Plan{}, ErrNotStarted
	}
	return engine.Plan(ctx, s.request(in))
}

// Submit validates in, records a pending job and queues it. The job is
// removed again when the queue rejects it.
func (s *Service) Submit(ctx context.Context, in types.PlanInput) (types.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return types.Job{}, ErrNotStarted
	}

	req := s.request(in)
	if err := req.Validate(); err != nil {
		return types.Job{}, err
	}

	job, err := s.store.Create(ctx, req.VideoDuration)
	if err != nil {
		return types.Job{}, fmt.Errorf("submit: %w", err)
	}
	if !s.queue.Enqueue(ctx, planqueue.Job{ID: job.ID, Request: req}) {
		if derr := s.store.Delete(ctx, job.ID); derr != nil {
			s.logger.Warn(ctx, "failed to drop rejected job", logger.String("job_id", job.ID), logger.Error(derr))
		}
		return types.Job{}, ErrQueueFull
	}
	metrics.RecordJobSubmitted()
	s.logger.Debug(ctx, "job submitted", logger.String("job_id", job.ID), logger.Int("moments", len(req.Moments)))
	return job, nil
}

// Job returns a submitted job.
func (s *Service) Job(ctx context.Context, id string) (types.Job, error) {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	if store == nil {
		return types.Job{}, ErrNotStarted
	}
	return store.Get(ctx, id)
}

// PlanBatch plans every input concurrently, bounded by the batch
// concurrency. A failing item is reported in its result and does not stop
// the others; only a cancelled ctx fails the batch.
func (s *Service) PlanBatch(ctx context.Context, inputs []types.PlanInput) ([]types.BatchResult, error) {
	if len(inputs) == 0 {
		return []types.BatchResult{}, nil
	}
	if len(inputs) > s.maxBatchSize {
		return nil, fmt.Errorf("%w: %d items, limit %d", ErrBatchTooLarge, len(inputs), s.maxBatchSize)
	}

	results := make([]types.BatchResult, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i].Index = i
			plan, err := s.Plan(gctx, inputs[i])
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				results[i].Error = err.Error()
				return nil
			}
			results[i].Plan = &plan
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("plan batch: %w", err)
	}
	return results, nil
}

// Policy returns the service-wide planning policy.
func (s *Service) Policy() policy.Policy {
	return s.policy
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":          s.started,
		"workerCount":      s.workerCount,
		"queueSize":        s.queueSize,
		"batchConcurrency": s.batchConcurrency,
		"maxBatchSize":     s.maxBatchSize,
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["storedJobs"] = s.store.Count(ctx)
	}
	return stats
}
