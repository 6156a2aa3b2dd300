package planner

import (
	"math"

	"github.com/okian/reelplan/internal/domain/model"
)

const maxCrowdReaction = 10

// Normalize returns cleaned copies of the moments that fall inside
// [0, videoDuration] and how many were dropped. Out-of-range optional
// fields are clamped, non-finite ones treated as absent.
func Normalize(in []model.Moment, videoDuration float64) ([]model.Moment, int) {
	out := make([]model.Moment, 0, len(in))
	for _, m := range in {
		ts := m.Timestamp
		if math.IsNaN(ts) || math.IsInf(ts, 0) || ts < 0 || ts > videoDuration {
			continue
		}
		c := m.Clone()
		if math.IsNaN(c.Span) || math.IsInf(c.Span, 0) || c.Span < 0 {
			c.Span = 0
		}
		if !c.Source.Valid() {
			c.Source = model.ParseSource(string(c.Source))
		}
		if c.BaseConfidence != nil {
			v := *c.BaseConfidence
			if math.IsNaN(v) || math.IsInf(v, 0) {
				c.BaseConfidence = nil
			} else {
				v = math.Min(1, math.Max(0, v))
				c.BaseConfidence = &v
			}
		}
		if c.CrowdReaction != nil {
			v := min(maxCrowdReaction, max(0, *c.CrowdReaction))
			c.CrowdReaction = &v
		}
		out = append(out, c)
	}
	return out, len(in) - len(out)
}
