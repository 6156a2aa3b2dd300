// Package ending makes sure every reel shows how the video ends.
package ending

import (
	"math"
	"sort"

	"github.com/okian/reelplan/internal/domain/model"
)

// Defaults used when no option overrides them.
const (
	DefaultCoverage    = 15.0
	DefaultImportance  = 0.4
	DefaultDescription = "closing moments"
)

// Guarantor adds a closing segment when the plan misses the end of the video.
type Guarantor interface {
	Ensure(segs []model.Segment, videoDuration float64) []model.Segment
}

type windowGuarantor struct {
	coverage    float64
	importance  float64
	description string
}

// NewGuarantor creates a guarantor that checks the last coverage seconds.
func NewGuarantor(opts ...Option) Guarantor {
	g := &windowGuarantor{
		coverage:    DefaultCoverage,
		importance:  DefaultImportance,
		description: DefaultDescription,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Ensure returns a chronological copy of segs that intersects the closing
// window [max(0, D-coverage), D]. Input segments are never modified.
func (g *windowGuarantor) Ensure(segs []model.Segment, videoDuration float64) []model.Segment {
	out := make([]model.Segment, len(segs))
	copy(out, segs)
	if videoDuration <= 0 || g.coverage <= 0 || math.IsNaN(videoDuration) {
		return out
	}

	windowStart := math.Max(0, videoDuration-g.coverage)
	for _, s := range out {
		if s.Intersects(windowStart, videoDuration) {
			return out
		}
	}

	closing := model.Segment{
		StartTime:   windowStart,
		EndTime:     videoDuration,
		EventStart:  windowStart,
		EventEnd:    videoDuration,
		Description: g.description,
		Importance:  g.importance,
		Source:      model.SourceTimelineFiller,
	}
	at := sort.Search(len(out), func(i int) bool { return out[i].StartTime >= closing.StartTime })
	out = append(out, model.Segment{})
	copy(out[at+1:], out[at:])
	out[at] = closing
	return out
}
