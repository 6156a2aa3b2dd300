package planload

import (
	"time"

	"github.com/okian/reelplan/internal/domain/model"
	"github.com/okian/reelplan/internal/domain/types"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL      string        // Base URL of the service
	NumVideos    int           // Number of synthetic videos to plan
	MinDuration  float64       // Shortest generated video in seconds
	MaxDuration  float64       // Longest generated video in seconds
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	PollInterval time.Duration // Delay between job polls
	PollTimeout  time.Duration // Give up on a job after this long
	Coverage     float64       // Closing window every plan must touch
	OutputFile   string        // Report file
	Format       string        // Report format: json or yaml
	LogFile      string        // Log file for run output
	Verbose      bool          // Enable verbose logging
}

// Video is one generated detector payload.
type Video struct {
	VideoID string          `json:"video_id" yaml:"video_id"`
	Input   types.PlanInput `json:"input" yaml:"input"`
}

// JobAck is the response to a job submission.
type JobAck struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Outcome is the result of planning one video.
type Outcome struct {
	VideoID       string      `json:"video_id" yaml:"video_id"`
	JobID         string      `json:"job_id,omitempty" yaml:"job_id,omitempty"`
	VideoDuration float64     `json:"video_duration" yaml:"video_duration"`
	Status        string      `json:"status" yaml:"status"`
	Error         string      `json:"error,omitempty" yaml:"error,omitempty"`
	Plan          *model.Plan `json:"plan,omitempty" yaml:"plan,omitempty"`
	Violations    []string    `json:"violations,omitempty" yaml:"violations,omitempty"`
}

// Stats holds run statistics.
type Stats struct {
	VideosGenerated int           `json:"videos_generated" yaml:"videos_generated"`
	JobsSubmitted   int           `json:"jobs_submitted" yaml:"jobs_submitted"`
	JobsAccepted    int           `json:"jobs_accepted" yaml:"jobs_accepted"`
	JobsRejected    int           `json:"jobs_rejected" yaml:"jobs_rejected"`
	JobsDone        int           `json:"jobs_done" yaml:"jobs_done"`
	JobsFailed      int           `json:"jobs_failed" yaml:"jobs_failed"`
	JobsTimedOut    int           `json:"jobs_timed_out" yaml:"jobs_timed_out"`
	PlansInvalid    int           `json:"plans_invalid" yaml:"plans_invalid"`
	StartTime       time.Time     `json:"start_time" yaml:"start_time"`
	EndTime         time.Time     `json:"end_time" yaml:"end_time"`
	Duration        time.Duration `json:"duration" yaml:"duration"`
}

// Report is written at the end of a run.
type Report struct {
	BaseURL  string    `json:"base_url" yaml:"base_url"`
	Stats    Stats     `json:"stats" yaml:"stats"`
	Outcomes []Outcome `json:"outcomes" yaml:"outcomes"`
}
