package ingest

import "errors"

// ErrInvalidPayload is returned when detector output cannot be decoded.
var ErrInvalidPayload = errors.New("invalid detector payload")
