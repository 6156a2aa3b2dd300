// Package model contains domain models passed between layers.
package model

import "strings"

// Source identifies the detector that produced a Moment.
type Source string

// Known moment sources.
const (
	SourceVisionEvent    Source = "vision-event"
	SourceStructuredPlay Source = "structured-play"
	SourceShotChange     Source = "shot-change"
	SourceTimelineFiller Source = "timeline-filler"
)

// Sources lists every known source in fallback order.
var Sources = []Source{SourceVisionEvent, SourceShotChange, SourceStructuredPlay, SourceTimelineFiller}

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	switch s {
	case SourceVisionEvent, SourceStructuredPlay, SourceShotChange, SourceTimelineFiller:
		return true
	}
	return false
}

// ParseSource maps loose detector labels onto a Source. Unknown labels
// fall back to SourceVisionEvent.
func ParseSource(label string) Source {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "structured-play", "play", "plays", "structured_play":
		return SourceStructuredPlay
	case "shot-change", "shot", "shot_change", "key_frame", "keyframe":
		return SourceShotChange
	case "timeline-filler", "timeline", "filler":
		return SourceTimelineFiller
	default:
		return SourceVisionEvent
	}
}

// Outcome is the tri-state success flag of an observed play.
type Outcome int8

// Outcome values. The zero value is OutcomeUnknown.
const (
	OutcomeUnknown Outcome = iota
	OutcomeSuccessful
	OutcomeUnsuccessful
)

// OutcomeOf converts an optional boolean into an Outcome.
func OutcomeOf(successful *bool) Outcome {
	switch {
	case successful == nil:
		return OutcomeUnknown
	case *successful:
		return OutcomeSuccessful
	default:
		return OutcomeUnsuccessful
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccessful:
		return "successful"
	case OutcomeUnsuccessful:
		return "unsuccessful"
	default:
		return "unknown"
	}
}

// Moment is a normalized candidate highlight observation.
//
// Optional detector fields are pointers; nil means the detector did not
// report them.
type Moment struct {
	Timestamp      float64  // seconds from video start
	Span           float64  // interval length in seconds, 0 for point observations
	Source         Source   // originating detector
	Kind           string   // free-form action label, e.g. "three-point basket made"
	Outcome        Outcome  // whether the play culminated successfully
	PlayerVisible  bool     // a principal actor is visible
	CrowdReaction  *int     // 0-10
	HasAction      bool     // detector saw action
	BaseConfidence *float64 // detector confidence in [0,1]
}

// Clone returns a deep copy so the caller can't mutate optional fields
// behind the engine's back.
func (m Moment) Clone() Moment {
	out := m
	if m.CrowdReaction != nil {
		v := *m.CrowdReaction
		out.CrowdReaction = &v
	}
	if m.BaseConfidence != nil {
		v := *m.BaseConfidence
		out.BaseConfidence = &v
	}
	return out
}

// EventEnd returns the end of the observed interval.
func (m Moment) EventEnd() float64 {
	return m.Timestamp + m.Span
}

// ScoredMoment pairs a Moment with its importance score and rank.
// Values are never mutated; re-scoring produces a new ScoredMoment.
type ScoredMoment struct {
	Moment
	Score float64
	Rank  int
}

// Int returns a pointer to v, handy for optional detector fields.
func Int(v int) *int { return &v }

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
