package fallback

import (
	"github.com/okian/reelplan/internal/domain/overlap"
	"github.com/okian/reelplan/internal/domain/segment"
)

// Option configures the chain.
type Option func(*levelChain)

// WithBuilder sets the segment builder used by every level.
func WithBuilder(b segment.Builder) Option {
	return func(c *levelChain) {
		if b != nil {
			c.builder = b
		}
	}
}

// WithResolver sets the overlap resolver used by every level.
func WithResolver(r overlap.Resolver) Option {
	return func(c *levelChain) {
		c.resolver = r
	}
}
