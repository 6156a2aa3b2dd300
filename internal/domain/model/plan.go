package model

// Segment is a buffer-expanded interval handed to the reel compiler.
type Segment struct {
	StartTime   float64 `json:"start_time" yaml:"start_time"`
	EndTime     float64 `json:"end_time" yaml:"end_time"`
	EventStart  float64 `json:"event_start" yaml:"event_start"`
	EventEnd    float64 `json:"event_end" yaml:"event_end"`
	Description string  `json:"description" yaml:"description"`
	Importance  float64 `json:"importance" yaml:"importance"`
	Source      Source  `json:"source" yaml:"source"`
}

// Duration returns EndTime - StartTime.
func (s Segment) Duration() float64 {
	return s.EndTime - s.StartTime
}

// Overlap returns how many seconds s and o share; zero when disjoint.
func (s Segment) Overlap(o Segment) float64 {
	lo := s.StartTime
	if o.StartTime > lo {
		lo = o.StartTime
	}
	hi := s.EndTime
	if o.EndTime < hi {
		hi = o.EndTime
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// Intersects reports whether s shares any time with [start, end].
func (s Segment) Intersects(start, end float64) bool {
	return s.EndTime > start && s.StartTime < end
}

// Fallback names the stage that produced a plan's segments.
type Fallback string

// Fallback stages in the order they are tried.
const (
	FallbackNone            Fallback = "none"
	FallbackVisionEvents    Fallback = "vision-events"
	FallbackShotChanges     Fallback = "shot-changes"
	FallbackStructuredPlays Fallback = "structured-plays"
	FallbackTimelineFiller  Fallback = "timeline-filler"
	FallbackDefaultSegment  Fallback = "default-segment"
	FallbackExhausted       Fallback = "exhausted"
)

// OrderingChronological is the only ordering a Plan is emitted in.
const OrderingChronological = "chronological"

// Plan is the ordered, non-overlapping segment sequence for one video.
type Plan struct {
	Segments          []Segment `json:"segments" yaml:"segments"`
	TotalDuration     float64   `json:"total_duration" yaml:"total_duration"`
	HighlightCount    int       `json:"highlight_count" yaml:"highlight_count"`
	VideoDuration     float64   `json:"video_duration" yaml:"video_duration"`
	MomentsConsidered int       `json:"moments_considered" yaml:"moments_considered"`
	MomentsDropped    int       `json:"moments_dropped" yaml:"moments_dropped"`
	Fallback          Fallback  `json:"fallback" yaml:"fallback"`
	Ordering          string    `json:"ordering" yaml:"ordering"`
}

// NewPlan computes the totals for segs, which must already be chronological.
func NewPlan(segs []Segment, videoDuration float64) Plan {
	out := make([]Segment, len(segs))
	copy(out, segs)
	total := 0.0
	for _, s := range out {
		total += s.Duration()
	}
	return Plan{
		Segments:       out,
		TotalDuration:  total,
		HighlightCount: len(out),
		VideoDuration:  videoDuration,
		Fallback:       FallbackNone,
		Ordering:       OrderingChronological,
	}
}
