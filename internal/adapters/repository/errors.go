package repository

import "errors"

// Sentinel kinds for job store errors.
var (
	ErrNotFound     = errors.New("job not found")
	ErrJobFinished  = errors.New("job already finished")
	ErrStoreBackend = errors.New("job store backend failure")
)
