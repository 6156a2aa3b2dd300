// Package planner turns detector moments into a chronological,
// non-overlapping highlight plan.
package planner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/okian/reelplan/internal/domain/dedupe"
	"github.com/okian/reelplan/internal/domain/ending"
	"github.com/okian/reelplan/internal/domain/fallback"
	"github.com/okian/reelplan/internal/domain/model"
	"github.com/okian/reelplan/internal/domain/overlap"
	"github.com/okian/reelplan/internal/domain/policy"
	"github.com/okian/reelplan/internal/domain/scoring"
	"github.com/okian/reelplan/internal/domain/segment"
	"github.com/okian/reelplan/pkg/logger"
	"github.com/okian/reelplan/pkg/metrics"
)

// Request is one planning call.
type Request struct {
	Moments       []model.Moment
	VideoDuration float64
	Policy        policy.Policy
}

// Validate reports whether req can be planned.
func (r Request) Validate() error {
	d := r.VideoDuration
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return &model.InvalidInputError{Field: "video_duration", Value: d, Reason: "must be a finite non-negative number"}
	}
	if err := r.Policy.Validate(); err != nil {
		return fmt.Errorf("plan: %w", err)
	}
	return nil
}

// RandFactory creates the random source for one call.
type RandFactory func(seed int64) scoring.Rand

// Planner is implemented by Engine; callers depend on this.
type Planner interface {
	Plan(ctx context.Context, req Request) (model.Plan, error)
}

// Engine runs the planning pipeline. Components left unset are built from
// each request's policy, so one Engine serves requests with different
// policies. An Engine is safe for concurrent use as long as the injected
// components are.
type Engine struct {
	scorer    scoring.Scorer
	deduper   dedupe.Deduper
	builder   segment.Builder
	resolver  overlap.Resolver
	guarantor ending.Guarantor
	chain     fallback.Chain

	randFactory RandFactory
	seedSource  func() int64
	log         logger.Logger
}

// NewEngine creates a planning engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		scorer:      scoring.NewPolicyScorer(),
		builder:     segment.NewBuilder(),
		randFactory: defaultRandFactory,
		seedSource:  func() int64 { return time.Now().UnixNano() },
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func defaultRandFactory(seed int64) scoring.Rand {
	return rand.New(rand.NewSource(seed)) //nolint:gosec // jitter, not crypto
}

// Plan validates the request and runs the pipeline. Errors are returned
// only for invalid input or a cancelled context.
func (e *Engine) Plan(ctx context.Context, req Request) (model.Plan, error) {
	if err := ctx.Err(); err != nil {
		return model.Plan{}, err
	}
	start := time.Now()

	if err := req.Validate(); err != nil {
		if errors.Is(err, model.ErrInvalidInput) {
			metrics.RecordPlanningError("invalid_duration")
		} else {
			metrics.RecordPlanningError("invalid_policy")
		}
		return model.Plan{}, err
	}
	d, p := req.VideoDuration, req.Policy

	moments, dropped := Normalize(req.Moments, d)
	metrics.RecordMoments(len(moments), dropped)
	if dropped > 0 {
		e.log.Debug(ctx, "dropped invalid moments", logger.Int("dropped", dropped), logger.Int("kept", len(moments)))
	}

	if d == 0 {
		plan := model.NewPlan(nil, 0)
		plan.MomentsConsidered = len(moments)
		plan.MomentsDropped = dropped
		e.record(plan, start)
		return plan, nil
	}

	var rng scoring.Rand
	if p.Randomized() {
		seed := p.Seed
		if seed == 0 {
			seed = e.seedSource()
		}
		rng = e.randFactory(seed)
	}

	segs := e.primary(moments, d, p, rng)
	level := model.FallbackNone
	if len(segs) == 0 {
		metrics.RecordEmptyPlan()
		e.log.Warn(ctx, "primary pipeline selected nothing, falling back",
			logger.Int("moments", len(moments)), logger.Float64("video_duration", d))
		segs, level = e.fallbackChain(p).Run(fallback.Input{Moments: moments, VideoDuration: d, Policy: p})
		e.log.Info(ctx, "fallback produced segments", logger.String("level", string(level)), logger.Int("segments", len(segs)))
	}

	segs = e.endingGuarantor(p).Ensure(segs, d)

	plan := model.NewPlan(segs, d)
	plan.MomentsConsidered = len(moments)
	plan.MomentsDropped = dropped
	plan.Fallback = level
	e.record(plan, start)
	return plan, nil
}

func (e *Engine) primary(moments []model.Moment, d float64, p policy.Policy, rng scoring.Rand) []model.Segment {
	sc := scoring.Context{VideoDuration: d, Policy: p}
	if p.JitterEnabled {
		sc.Rand = rng
	}
	var swapRng scoring.Rand
	if p.SwapEnabled {
		swapRng = rng
	}

	scored := scoring.ScoreAll(e.scorer, moments, sc)
	ranked := scoring.Rank(scoring.Filter(scored, p.ScoreThreshold), p, swapRng)
	kept := e.dedupe(p).Dedupe(ranked)

	bc := segment.Context{VideoDuration: d, Policy: p}
	segs := make([]model.Segment, 0, len(kept))
	for _, sm := range kept {
		if s, ok := e.builder.Build(sm, bc); ok {
			segs = append(segs, s)
		}
	}
	return e.overlapResolver(p).Resolve(segs)
}

func (e *Engine) dedupe(p policy.Policy) dedupe.Deduper {
	if e.deduper != nil {
		return e.deduper
	}
	return dedupe.NewTemporalDeduper(dedupe.WithWindow(p.DedupeWindow))
}

func (e *Engine) overlapResolver(p policy.Policy) overlap.Resolver {
	if e.resolver != nil {
		return e.resolver
	}
	return overlap.NewResolver(
		overlap.WithTolerance(p.OverlapTolerance),
		overlap.WithReelCap(p.MaxReelDuration),
		overlap.WithMinDuration(p.MinDuration),
	)
}

func (e *Engine) endingGuarantor(p policy.Policy) ending.Guarantor {
	if e.guarantor != nil {
		return e.guarantor
	}
	return ending.NewGuarantor(ending.WithCoverage(p.EndingCoverage), ending.WithImportance(p.EndingImportance))
}

func (e *Engine) fallbackChain(p policy.Policy) fallback.Chain {
	if e.chain != nil {
		return e.chain
	}
	return fallback.NewChain(fallback.WithBuilder(e.builder), fallback.WithResolver(e.overlapResolver(p)))
}

func (e *Engine) record(plan model.Plan, start time.Time) {
	metrics.RecordPlan(string(plan.Fallback), plan.HighlightCount, plan.TotalDuration,
		float64(time.Since(start).Microseconds())/1000)
}
