package policy

import "errors"

// ErrInvalidPolicy is returned by Validate.
var ErrInvalidPolicy = errors.New("invalid planning policy")
