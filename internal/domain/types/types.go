// Package types contains view types shared by the store, service and API.
package types

import (
	"time"

	"github.com/okian/reelplan/internal/domain/ingest"
	"github.com/okian/reelplan/internal/domain/model"
	"github.com/okian/reelplan/internal/domain/policy"
)

// PlanInput is one video to plan: the detector payload with optional
// policy overrides under "policy".
type PlanInput struct {
	ingest.Payload `yaml:",inline"`
	Policy         policy.Overrides `json:"policy,omitempty" yaml:"policy,omitempty"`
}

// BatchResult is the outcome for one item of a batch, in input order.
type BatchResult struct {
	Index int         `json:"index" yaml:"index"`
	Plan  *model.Plan `json:"plan,omitempty" yaml:"plan,omitempty"`
	Error string      `json:"error,omitempty" yaml:"error,omitempty"`
}

// JobStatus is the lifecycle state of an async planning job.
type JobStatus string

// Job states.
const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Job is the externally visible record of an async planning request.
type Job struct {
	ID            string      `json:"id" yaml:"id"`
	Status        JobStatus   `json:"status" yaml:"status"`
	VideoDuration float64     `json:"video_duration" yaml:"video_duration"`
	Plan          *model.Plan `json:"plan,omitempty" yaml:"plan,omitempty"`
	Error         string      `json:"error,omitempty" yaml:"error,omitempty"`
	SubmittedAt   time.Time   `json:"submitted_at" yaml:"submitted_at"`
	FinishedAt    *time.Time  `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
}

// Finished reports whether the job reached a final state.
func (j Job) Finished() bool {
	return j.Status == JobDone || j.Status == JobFailed
}
