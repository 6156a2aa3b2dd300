package service

import (
	"errors"

	planqueue "github.com/okian/reelplan/internal/adapters/mq/queue"
)

var (
	ErrNotStarted    = errors.New("planning service not started")
	ErrBatchTooLarge = errors.New("batch too large")

	// ErrQueueFull is the queue's own sentinel so callers can match either.
	ErrQueueFull = planqueue.ErrFull
)
