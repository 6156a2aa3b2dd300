// Package segment turns a scored moment into a buffer-expanded, duration
// bounded video segment.
package segment

import (
	"math"

	"github.com/okian/reelplan/internal/domain/model"
	"github.com/okian/reelplan/internal/domain/policy"
)

// Context carries the video bounds and buffer policy for one planning call.
type Context struct {
	VideoDuration float64
	Policy        policy.Policy
}

// Builder converts a scored moment into a segment. ok is false when no
// valid segment fits inside the video.
type Builder interface {
	Build(sm model.ScoredMoment, c Context) (seg model.Segment, ok bool)
}

// bufferBuilder pads each moment with pre/post buffers chosen from the
// moment's kind, then clamps the result to the policy duration bounds.
type bufferBuilder struct{}

// NewBuilder creates the default buffer-based builder.
func NewBuilder() Builder {
	return bufferBuilder{}
}

func (bufferBuilder) Build(sm model.ScoredMoment, c Context) (model.Segment, bool) {
	p := c.Policy
	d := c.VideoDuration
	if d <= 0 || math.IsNaN(d) {
		return model.Segment{}, false
	}

	ts := sm.Timestamp
	eventEnd := math.Min(d, ts+sm.Span)

	start := math.Max(0, ts-PreBuffer(sm.Moment, p))
	end := math.Min(d, eventEnd+p.PostBuffer)

	if end-start < p.MinDuration {
		end = math.Min(d, start+p.MinDuration)
		if end-start < p.MinDuration {
			start = math.Max(0, end-p.MinDuration)
		}
	}
	if end-start > p.MaxDuration {
		end = start + p.MaxDuration
	}
	if start >= end {
		return model.Segment{}, false
	}

	return model.Segment{
		StartTime:   start,
		EndTime:     end,
		EventStart:  math.Min(math.Max(ts, start), end),
		EventEnd:    math.Min(math.Max(eventEnd, start), end),
		Description: Describe(sm.Moment),
		Importance:  math.Max(0, sm.Score),
		Source:      sm.Source,
	}, true
}

// PreBuffer returns the lead-in for m: longer for scoring plays, longest
// when the scorer is on screen.
func PreBuffer(m model.Moment, p policy.Policy) float64 {
	switch {
	case p.IsScoringPlay(m) && m.PlayerVisible:
		return p.VisiblePreBuffer
	case p.IsScoringPlay(m):
		return p.ScoringPreBuffer
	default:
		return p.PreBuffer
	}
}

// Describe labels a segment with the moment kind, or with its source when
// the detector gave no kind.
func Describe(m model.Moment) string {
	if m.Kind != "" {
		return m.Kind
	}
	switch m.Source {
	case model.SourceStructuredPlay:
		return "play"
	case model.SourceShotChange:
		return "scene change"
	case model.SourceTimelineFiller:
		return "timeline highlight"
	default:
		return "highlight"
	}
}
