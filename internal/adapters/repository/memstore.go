package repository

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/reelplan/internal/domain/model"
	"github.com/okian/reelplan/internal/domain/types"
	"github.com/okian/reelplan/pkg/metrics"
)

const defaultMaxJobs = 10000

// MemoryStore is a bounded in-memory JobStore. When full, the oldest job
// is evicted regardless of status.
type MemoryStore struct {
	mu    sync.RWMutex
	jobs  map[string]*list.Element // id -> element holding *types.Job
	order *list.List               // front = oldest

	maxJobs int
	newID   func() string
	now     func() time.Time
}

// NewMemoryStore creates a bounded in-memory job store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		jobs:    make(map[string]*list.Element),
		order:   list.New(),
		maxJobs: defaultMaxJobs,
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Create(ctx context.Context, videoDuration float64) (types.Job, error) {
	job := types.Job{
		ID:            s.newID(),
		Status:        types.JobPending,
		VideoDuration: videoDuration,
		SubmittedAt:   s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.jobs[job.ID]; dup {
		return types.Job{}, fmt.Errorf("%w: duplicate job id %s", ErrStoreBackend, job.ID)
	}
	for s.maxJobs > 0 && s.order.Len() >= s.maxJobs {
		oldest := s.order.Front()
		delete(s.jobs, oldest.Value.(*types.Job).ID)
		s.order.Remove(oldest)
		metrics.RecordJobEvicted()
	}
	stored := job
	s.jobs[job.ID] = s.order.PushBack(&stored)
	metrics.UpdateJobsStored(s.order.Len())
	return job, nil
}

func (s *MemoryStore) MarkRunning(ctx context.Context, id string) error {
	return s.update(id, func(j *types.Job) {
		j.Status = types.JobRunning
	})
}

func (s *MemoryStore) Complete(ctx context.Context, id string, plan model.Plan) error {
	return s.update(id, func(j *types.Job) {
		p := plan
		j.Status = types.JobDone
		j.Plan = &p
		j.FinishedAt = s.stamp()
	})
}

func (s *MemoryStore) Fail(ctx context.Context, id string, reason string) error {
	return s.update(id, func(j *types.Job) {
		j.Status = types.JobFailed
		j.Error = reason
		j.FinishedAt = s.stamp()
	})
}

func (s *MemoryStore) Get(ctx context.Context, id string) (types.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	el, ok := s.jobs[id]
	if !ok {
		return types.Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return cloneJob(*el.Value.(*types.Job)), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.jobs, id)
	s.order.Remove(el)
	metrics.UpdateJobsStored(s.order.Len())
	return nil
}

func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.Len()
}

func (s *MemoryStore) update(id string, fn func(*types.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	job := el.Value.(*types.Job)
	if job.Finished() {
		return fmt.Errorf("%w: %s", ErrJobFinished, id)
	}
	fn(job)
	return nil
}

func (s *MemoryStore) stamp() *time.Time {
	t := s.now().UTC()
	return &t
}

// cloneJob detaches the plan so callers can't edit stored segments.
func cloneJob(j types.Job) types.Job {
	if j.Plan != nil {
		p := *j.Plan
		p.Segments = append([]model.Segment(nil), p.Segments...)
		j.Plan = &p
	}
	return j
}
