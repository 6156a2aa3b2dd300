package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/okian/reelplan/internal/domain/model"
	"github.com/okian/reelplan/internal/domain/types"
	"github.com/okian/reelplan/pkg/metrics"
)

const (
	defaultRedisPrefix = "reelplan:"
	defaultRedisTTL    = 24 * time.Hour
	redisDialTimeout   = 5 * time.Second
)

// RedisStore is a JobStore shared by several service replicas. Jobs are
// JSON documents with a TTL; a sorted set indexes them by submission time
// so the oldest can be evicted once maxJobs is reached.
type RedisStore struct {
	rdb     goredis.Cmdable
	prefix  string
	ttl     time.Duration
	maxJobs int
	newID   func() string
	now     func() time.Time
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisPrefix namespaces every key.
func WithRedisPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithRedisTTL sets how long a job document lives.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithRedisMaxJobs bounds the index. Zero or less means unbounded.
func WithRedisMaxJobs(n int) RedisOption {
	return func(s *RedisStore) {
		s.maxJobs = n
	}
}

// DialRedis connects and pings a Redis server.
func DialRedis(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: redisDialTimeout,
	})
	pingCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%w: redis ping: %w", ErrStoreBackend, err)
	}
	return rdb, nil
}

// NewRedisStore creates a Redis-backed job store.
func NewRedisStore(rdb goredis.Cmdable, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		rdb:     rdb,
		prefix:  defaultRedisPrefix,
		ttl:     defaultRedisTTL,
		maxJobs: defaultMaxJobs,
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) jobKey(id string) string { return s.prefix + "job:" + id }
func (s *RedisStore) indexKey() string        { return s.prefix + "jobs" }

func (s *RedisStore) Create(ctx context.Context, videoDuration float64) (types.Job, error) {
	now := s.now().UTC()
	job := types.Job{
		ID:            s.newID(),
		Status:        types.JobPending,
		VideoDuration: videoDuration,
		SubmittedAt:   now,
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return types.Job{}, fmt.Errorf("%w: encode job: %w", ErrStoreBackend, err)
	}

	expired := strconv.FormatInt(now.Add(-s.ttl).UnixNano(), 10)
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.jobKey(job.ID), raw, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), goredis.Z{Score: float64(now.UnixNano()), Member: job.ID})
	pipe.ZRemRangeByScore(ctx, s.indexKey(), "-inf", "("+expired)
	card := pipe.ZCard(ctx, s.indexKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return types.Job{}, fmt.Errorf("%w: create job: %w", ErrStoreBackend, err)
	}

	size := int(card.Val())
	if s.maxJobs > 0 && size > s.maxJobs {
		evicted, err := s.rdb.ZPopMin(ctx, s.indexKey(), int64(size-s.maxJobs)).Result()
		if err != nil {
			return types.Job{}, fmt.Errorf("%w: evict jobs: %w", ErrStoreBackend, err)
		}
		keys := make([]string, 0, len(evicted))
		for _, z := range evicted {
			if id, ok := z.Member.(string); ok {
				keys = append(keys, s.jobKey(id))
				metrics.RecordJobEvicted()
			}
		}
		if len(keys) > 0 {
			if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
				return types.Job{}, fmt.Errorf("%w: evict jobs: %w", ErrStoreBackend, err)
			}
		}
		size = s.maxJobs
	}
	metrics.UpdateJobsStored(size)
	return job, nil
}

func (s *RedisStore) MarkRunning(ctx context.Context, id string) error {
	return s.update(ctx, id, func(j *types.Job) {
		j.Status = types.JobRunning
	})
}

func (s *RedisStore) Complete(ctx context.Context, id string, plan model.Plan) error {
	return s.update(ctx, id, func(j *types.Job) {
		t := s.now().UTC()
		j.Status = types.JobDone
		j.Plan = &plan
		j.FinishedAt = &t
	})
}

func (s *RedisStore) Fail(ctx context.Context, id string, reason string) error {
	return s.update(ctx, id, func(j *types.Job) {
		t := s.now().UTC()
		j.Status = types.JobFailed
		j.Error = reason
		j.FinishedAt = &t
	})
}

func (s *RedisStore) Get(ctx context.Context, id string) (types.Job, error) {
	raw, err := s.rdb.Get(ctx, s.jobKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return types.Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return types.Job{}, fmt.Errorf("%w: get job: %w", ErrStoreBackend, err)
	}
	var job types.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return types.Job{}, fmt.Errorf("%w: decode job: %w", ErrStoreBackend, err)
	}
	return job, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	pipe := s.rdb.TxPipeline()
	del := pipe.Del(ctx, s.jobKey(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: delete job: %w", ErrStoreBackend, err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *RedisStore) Count(ctx context.Context) int {
	n, err := s.rdb.ZCard(ctx, s.indexKey()).Result()
	if err != nil {
		return 0
	}
	return int(n)
}

func (s *RedisStore) update(ctx context.Context, id string, fn func(*types.Job)) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if job.Finished() {
		return fmt.Errorf("%w: %s", ErrJobFinished, id)
	}
	fn(&job)
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("%w: encode job: %w", ErrStoreBackend, err)
	}
	if err := s.rdb.Set(ctx, s.jobKey(id), raw, goredis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("%w: update job: %w", ErrStoreBackend, err)
	}
	return nil
}
