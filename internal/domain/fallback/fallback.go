// Package fallback recovers a usable plan when the primary pipeline
// selects nothing.
package fallback

import (
	"math"
	"sort"

	"github.com/okian/reelplan/internal/domain/model"
	"github.com/okian/reelplan/internal/domain/overlap"
	"github.com/okian/reelplan/internal/domain/policy"
	"github.com/okian/reelplan/internal/domain/segment"
)

// DefaultDescription labels the last-resort segment.
const DefaultDescription = "opening highlights"

// Input is what the chain needs from one planning call. Moments must
// already be normalized.
type Input struct {
	Moments       []model.Moment
	VideoDuration float64
	Policy        policy.Policy
}

// Chain tries progressively weaker strategies until one yields segments.
type Chain interface {
	Run(in Input) ([]model.Segment, model.Fallback)
}

type levelChain struct {
	builder  segment.Builder
	resolver overlap.Resolver
}

// NewChain creates the five-level chain: vision events, shot changes,
// structured plays, timeline filler and finally a default opening segment.
// A chain without a resolver builds one from the call's policy.
func NewChain(opts ...Option) Chain {
	c := &levelChain{builder: segment.NewBuilder()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type level struct {
	name   model.Fallback
	source model.Source
	limit  int
	score  float64
}

func (c *levelChain) Run(in Input) ([]model.Segment, model.Fallback) {
	p := in.Policy
	if in.VideoDuration <= 0 || math.IsNaN(in.VideoDuration) {
		return nil, model.FallbackExhausted
	}

	resolver := c.resolver
	if resolver == nil {
		resolver = overlap.NewResolver(
			overlap.WithTolerance(p.OverlapTolerance),
			overlap.WithReelCap(p.MaxReelDuration),
			overlap.WithMinDuration(p.MinDuration),
		)
	}
	sc := segment.Context{VideoDuration: in.VideoDuration, Policy: p}

	levels := []level{
		{model.FallbackVisionEvents, model.SourceVisionEvent, p.FallbackVisionLimit, p.FallbackVisionScore},
		{model.FallbackShotChanges, model.SourceShotChange, p.FallbackShotLimit, p.FallbackShotScore},
		{model.FallbackStructuredPlays, model.SourceStructuredPlay, p.FallbackPlayLimit, p.FallbackPlayScore},
	}
	for _, lv := range levels {
		picked := topBySource(in.Moments, lv.source, lv.limit, p)
		if segs := c.build(picked, lv.score, sc, resolver); len(segs) > 0 {
			return segs, lv.name
		}
	}

	if len(in.Moments) > 0 {
		filler := Filler(in.VideoDuration, p)
		if segs := c.build(filler, p.FillerImportance, sc, resolver); len(segs) > 0 {
			return segs, model.FallbackTimelineFiller
		}
	}

	end := math.Min(p.DefaultLength, in.VideoDuration)
	if end <= 0 {
		return nil, model.FallbackExhausted
	}
	return []model.Segment{{
		StartTime:   0,
		EndTime:     end,
		EventStart:  0,
		EventEnd:    end,
		Description: DefaultDescription,
		Importance:  p.DefaultImportance,
		Source:      model.SourceTimelineFiller,
	}}, model.FallbackDefaultSegment
}

func (c *levelChain) build(moments []model.Moment, score float64, sc segment.Context, r overlap.Resolver) []model.Segment {
	if len(moments) == 0 {
		return nil
	}
	segs := make([]model.Segment, 0, len(moments))
	for _, m := range moments {
		if s, ok := c.builder.Build(model.ScoredMoment{Moment: m, Score: score}, sc); ok {
			segs = append(segs, s)
		}
	}
	return r.Resolve(segs)
}

// topBySource returns up to limit moments of src ordered by base confidence,
// highest first. Missing confidence counts as the source default.
func topBySource(moments []model.Moment, src model.Source, limit int, p policy.Policy) []model.Moment {
	if limit <= 0 {
		return nil
	}
	var out []model.Moment
	for _, m := range moments {
		if m.Source == src {
			out = append(out, m)
		}
	}
	confidence := func(m model.Moment) float64 {
		if m.BaseConfidence != nil {
			return *m.BaseConfidence
		}
		return p.SourceDefault(src)
	}
	sort.SliceStable(out, func(i, j int) bool { return confidence(out[i]) > confidence(out[j]) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Filler spreads synthetic moments over the video, one at the centre of
// each equal slot. The count is min(FillerTarget, max(1, floor(D/FillerSpacing))).
func Filler(videoDuration float64, p policy.Policy) []model.Moment {
	if videoDuration <= 0 || p.FillerTarget <= 0 {
		return nil
	}
	n := 1
	if p.FillerSpacing > 0 {
		n = int(math.Floor(videoDuration / p.FillerSpacing))
	}
	n = max(1, min(p.FillerTarget, n))

	slot := videoDuration / float64(n)
	out := make([]model.Moment, n)
	for i := range out {
		out[i] = model.Moment{
			Timestamp: (float64(i) + 0.5) * slot,
			Source:    model.SourceTimelineFiller,
		}
	}
	return out
}
