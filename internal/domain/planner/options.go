package planner

import (
	"github.com/okian/reelplan/internal/domain/dedupe"
	"github.com/okian/reelplan/internal/domain/ending"
	"github.com/okian/reelplan/internal/domain/fallback"
	"github.com/okian/reelplan/internal/domain/overlap"
	"github.com/okian/reelplan/internal/domain/scoring"
	"github.com/okian/reelplan/internal/domain/segment"
	"github.com/okian/reelplan/pkg/logger"
)

// Option configures the Engine.
type Option func(*Engine)

// WithScorer replaces the policy scorer.
func WithScorer(s scoring.Scorer) Option {
	return func(e *Engine) {
		if s != nil {
			e.scorer = s
		}
	}
}

// WithDeduper pins a deduper instead of building one per request.
func WithDeduper(d dedupe.Deduper) Option {
	return func(e *Engine) {
		e.deduper = d
	}
}

// WithBuilder replaces the segment builder.
func WithBuilder(b segment.Builder) Option {
	return func(e *Engine) {
		if b != nil {
			e.builder = b
		}
	}
}

// WithResolver pins an overlap resolver instead of building one per request.
func WithResolver(r overlap.Resolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithGuarantor pins an ending guarantor.
func WithGuarantor(g ending.Guarantor) Option {
	return func(e *Engine) {
		e.guarantor = g
	}
}

// WithFallback pins a fallback chain.
func WithFallback(c fallback.Chain) Option {
	return func(e *Engine) {
		e.chain = c
	}
}

// WithRandFactory sets how the per-call random source is created.
func WithRandFactory(f RandFactory) Option {
	return func(e *Engine) {
		if f != nil {
			e.randFactory = f
		}
	}
}

// WithSeedSource sets where seeds come from when the policy does not pin one.
func WithSeedSource(f func() int64) Option {
	return func(e *Engine) {
		if f != nil {
			e.seedSource = f
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}
