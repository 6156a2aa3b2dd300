// Package repository stores async planning jobs and their results.
package repository

import (
	"context"

	"github.com/okian/reelplan/internal/domain/model"
	"github.com/okian/reelplan/internal/domain/types"
)

// JobStore tracks planning jobs from submission to result.
type JobStore interface {
	// Create registers a pending job and returns it with a fresh ID.
	Create(ctx context.Context, videoDuration float64) (types.Job, error)

	// MarkRunning moves a pending job to running.
	MarkRunning(ctx context.Context, id string) error

	// Complete stores the plan of a job and marks it done.
	Complete(ctx context.Context, id string, plan model.Plan) error

	// Fail marks a job failed with a human-readable reason.
	Fail(ctx context.Context, id string, reason string) error

	// Get returns a job. Returns ErrNotFound for unknown or evicted IDs.
	Get(ctx context.Context, id string) (types.Job, error)

	// Delete forgets a job, used when it could not be enqueued.
	Delete(ctx context.Context, id string) error

	// Count returns the number of jobs held.
	Count(ctx context.Context) int
}
