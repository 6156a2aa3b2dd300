// Package dedupe suppresses near-duplicate moments that describe the same
// real-world action.
package dedupe

import (
	"math"
	"sort"

	"github.com/okian/reelplan/internal/domain/model"
	"github.com/okian/reelplan/internal/domain/scoring"
)

// DefaultWindow is the proximity, in seconds, below which two moments are
// treated as one.
const DefaultWindow = 3.0

// Deduper removes near-duplicates from a ranked moment list.
type Deduper interface {
	// Dedupe returns the surviving moments in the caller's order.
	Dedupe(scored []model.ScoredMoment) []model.ScoredMoment
}

// temporalDeduper keeps, for every cluster of moments closer than window,
// the one with the highest score.
type temporalDeduper struct {
	window float64
}

// NewTemporalDeduper creates a proximity-based deduper.
func NewTemporalDeduper(opts ...Option) Deduper {
	d := &temporalDeduper{window: DefaultWindow}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dedupe decides survivors in score order, so a ranking swap upstream never
// lets the weaker of a duplicate pair win. Ties go to the earlier moment.
func (d *temporalDeduper) Dedupe(scored []model.ScoredMoment) []model.ScoredMoment {
	if len(scored) == 0 {
		return nil
	}

	order := make([]int, len(scored))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scoring.Less(scored[order[a]], scored[order[b]])
	})

	keep := make([]bool, len(scored))
	kept := make([]float64, 0, len(scored))
	for _, idx := range order {
		ts := scored[idx].Timestamp
		if d.near(ts, kept) {
			continue
		}
		keep[idx] = true
		kept = append(kept, ts)
	}

	out := make([]model.ScoredMoment, 0, len(kept))
	for i, sm := range scored {
		if keep[i] {
			out = append(out, sm)
		}
	}
	return out
}

func (d *temporalDeduper) near(ts float64, kept []float64) bool {
	for _, k := range kept {
		if math.Abs(ts-k) < d.window {
			return true
		}
	}
	return false
}
