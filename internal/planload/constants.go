package planload

import "time"

// Job states as reported by the service.
const (
	StatusPending  = "pending"
	StatusRunning  = "running"
	StatusDone     = "done"
	StatusFailed   = "failed"
	StatusRejected = "rejected"
	StatusTimedOut = "timed_out"
)

// Report formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	DefaultPollInterval  = 50 * time.Millisecond
	DefaultPollTimeout   = 30 * time.Second
	DefaultCoverage      = 15.0
	PercentageMultiplier = 100
)

// boundsEpsilon absorbs float rounding when comparing segment edges.
const boundsEpsilon = 1e-6
