// Package ingest converts raw detector output into normalized moments.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/okian/reelplan/internal/domain/model"
)

// Payload is the combined output of the upstream detectors for one video.
// Every optional field is a pointer; a missing field stays absent.
type Payload struct {
	VideoDuration float64       `json:"video_duration" yaml:"video_duration"`
	Events        []VisionEvent `json:"events,omitempty" yaml:"events,omitempty"`
	Plays         []Play        `json:"plays,omitempty" yaml:"plays,omitempty"`
	KeyFrames     []KeyFrame    `json:"key_frames,omitempty" yaml:"key_frames,omitempty"`
}

// VisionEvent is a point observation from the frame analyzer.
type VisionEvent struct {
	Timestamp     float64  `json:"timestamp" yaml:"timestamp"`
	Kind          string   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Analysis      string   `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	Confidence    *float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	IsSuccessful  *bool    `json:"is_successful,omitempty" yaml:"is_successful,omitempty"`
	CrowdReaction *int     `json:"crowd_reaction,omitempty" yaml:"crowd_reaction,omitempty"`
	HasAction     *bool    `json:"has_action,omitempty" yaml:"has_action,omitempty"`
	PlayerVisible *bool    `json:"player_visible,omitempty" yaml:"player_visible,omitempty"`
}

// Play is a labelled interval from the structured play detector.
type Play struct {
	StartTime    float64  `json:"start_time" yaml:"start_time"`
	EndTime      float64  `json:"end_time" yaml:"end_time"`
	Label        string   `json:"label,omitempty" yaml:"label,omitempty"`
	Confidence   *float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	IsSuccessful *bool    `json:"is_successful,omitempty" yaml:"is_successful,omitempty"`
}

// KeyFrame is a shot-change interval.
type KeyFrame struct {
	StartTime  float64  `json:"start_time" yaml:"start_time"`
	EndTime    float64  `json:"end_time" yaml:"end_time"`
	Confidence *float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
}

// Decode reads a JSON payload.
func Decode(r io.Reader) (Payload, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return p, nil
}

// Moments flattens the payload into moments: events first, then plays,
// then key frames. Range checks are left to the planner.
func (p Payload) Moments() []model.Moment {
	out := make([]model.Moment, 0, len(p.Events)+len(p.Plays)+len(p.KeyFrames))
	for _, e := range p.Events {
		out = append(out, e.Moment())
	}
	for _, pl := range p.Plays {
		out = append(out, pl.Moment())
	}
	for _, k := range p.KeyFrames {
		out = append(out, k.Moment())
	}
	return out
}

// Moment converts a vision event. Without a reported confidence, one is
// derived from the crowd reaction and action flag when either is known.
func (e VisionEvent) Moment() model.Moment {
	kind := e.Kind
	if kind == "" {
		kind = e.Analysis
	}
	m := model.Moment{
		Timestamp:      e.Timestamp,
		Source:         model.SourceVisionEvent,
		Kind:           kind,
		Outcome:        model.OutcomeOf(e.IsSuccessful),
		PlayerVisible:  e.PlayerVisible != nil && *e.PlayerVisible,
		CrowdReaction:  copyInt(e.CrowdReaction),
		HasAction:      e.HasAction != nil && *e.HasAction,
		BaseConfidence: copyFloat(e.Confidence),
	}
	if m.BaseConfidence == nil && (e.CrowdReaction != nil || e.HasAction != nil) {
		m.BaseConfidence = model.Float64(DeriveConfidence(e.CrowdReaction, m.HasAction))
	}
	return m
}

// DeriveConfidence estimates a vision event confidence: the crowd reaction
// scaled to [0,1], floored at 0.4 for action and 0.3 otherwise.
func DeriveConfidence(crowd *int, hasAction bool) float64 {
	floor := 0.3
	if hasAction {
		floor = 0.4
	}
	if crowd == nil {
		return floor
	}
	return math.Min(1, math.Max(floor, float64(*crowd)/10))
}

// Moment converts a structured play into an interval moment.
func (pl Play) Moment() model.Moment {
	return model.Moment{
		Timestamp:      pl.StartTime,
		Span:           span(pl.StartTime, pl.EndTime),
		Source:         model.SourceStructuredPlay,
		Kind:           pl.Label,
		Outcome:        model.OutcomeOf(pl.IsSuccessful),
		BaseConfidence: copyFloat(pl.Confidence),
	}
}

// Moment converts a key frame into an interval moment.
func (k KeyFrame) Moment() model.Moment {
	return model.Moment{
		Timestamp:      k.StartTime,
		Span:           span(k.StartTime, k.EndTime),
		Source:         model.SourceShotChange,
		BaseConfidence: copyFloat(k.Confidence),
	}
}

func span(start, end float64) float64 {
	if end > start {
		return end - start
	}
	return 0
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	return model.Int(*v)
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return model.Float64(*v)
}
