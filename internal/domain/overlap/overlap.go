// Package overlap selects a non-overlapping subset of candidate segments,
// preferring higher importance.
package overlap

import (
	"math"
	"sort"

	"github.com/okian/reelplan/internal/domain/model"
)

// Defaults used when no option overrides them.
const (
	DefaultTolerance   = 3.0
	DefaultReelCap     = 120.0
	DefaultMinDuration = 3.0
)

// Resolver picks which segments make the reel.
type Resolver interface {
	// Resolve returns a chronological, strictly non-overlapping selection.
	Resolve(segs []model.Segment) []model.Segment
}

type greedyResolver struct {
	tolerance   float64
	reelCap     float64
	minDuration float64
}

// NewResolver creates a greedy importance-first resolver.
func NewResolver(opts ...Option) Resolver {
	r := &greedyResolver{
		tolerance:   DefaultTolerance,
		reelCap:     DefaultReelCap,
		minDuration: DefaultMinDuration,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *greedyResolver) Resolve(segs []model.Segment) []model.Segment {
	if len(segs) == 0 {
		return nil
	}

	byImportance := make([]model.Segment, len(segs))
	copy(byImportance, segs)
	sort.SliceStable(byImportance, func(i, j int) bool {
		return byImportance[i].Importance > byImportance[j].Importance
	})

	accepted := make([]model.Segment, 0, len(segs))
	total := 0.0
	for _, s := range byImportance {
		if s.Duration() <= 0 || r.conflicts(s, accepted) {
			continue
		}
		if r.reelCap > 0 && total+s.Duration() > r.reelCap {
			continue
		}
		accepted = append(accepted, s)
		total += s.Duration()
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		if accepted[i].StartTime != accepted[j].StartTime {
			return accepted[i].StartTime < accepted[j].StartTime
		}
		return accepted[i].EndTime < accepted[j].EndTime
	})
	return r.trim(accepted)
}

func (r *greedyResolver) conflicts(s model.Segment, accepted []model.Segment) bool {
	for _, a := range accepted {
		if s.Overlap(a) > r.tolerance {
			return true
		}
	}
	return false
}

// trim removes the tolerated overlaps left between chronological
// neighbours. The less important side gives up the shared seconds.
func (r *greedyResolver) trim(chrono []model.Segment) []model.Segment {
	out := make([]model.Segment, 0, len(chrono))
	for _, s := range chrono {
		trimmed := false
		for len(out) > 0 {
			prev := out[len(out)-1]
			if prev.EndTime <= s.StartTime {
				break
			}
			if prev.Importance >= s.Importance {
				s.StartTime = prev.EndTime
				trimmed = true
				break
			}
			prev.EndTime = s.StartTime
			if prev.Duration() < r.minDuration {
				out = out[:len(out)-1]
				continue
			}
			out[len(out)-1] = clampEvent(prev)
			break
		}
		if s.Duration() <= 0 || (trimmed && s.Duration() < r.minDuration) {
			continue
		}
		out = append(out, clampEvent(s))
	}
	return out
}

func clampEvent(s model.Segment) model.Segment {
	s.EventStart = math.Min(math.Max(s.EventStart, s.StartTime), s.EndTime)
	s.EventEnd = math.Min(math.Max(s.EventEnd, s.EventStart), s.EndTime)
	return s
}
