// Package policy holds the immutable planning policy: scoring weights,
// buffer constants and fallback limits.
package policy

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/reelplan/internal/domain/model"
)

// Policy is passed by value into every planning call. The zero value is
// not useful; start from Default.
type Policy struct {
	// Scoring.
	ScoreThreshold   float64
	SuccessBonus     float64
	MissPenalty      float64
	MissCrowdCutoff  int
	EndingWindow     float64
	EndingBonus      float64
	ActionBonus      float64
	CrowdHigh        int
	CrowdHighBonus   float64
	CrowdMid         int
	CrowdMidBonus    float64
	ScoringKindBonus float64
	ScoringLexicon   []string
	MissLexicon      []string
	SourceDefaults   map[model.Source]float64

	// Randomness. Seed != 0 pins the random source for the call.
	JitterEnabled   bool
	JitterAmplitude float64
	SwapEnabled     bool
	SwapProbability float64
	Seed            int64

	// Deduplication and segment construction, in seconds.
	DedupeWindow     float64
	PreBuffer        float64
	ScoringPreBuffer float64
	VisiblePreBuffer float64
	PostBuffer       float64
	MinDuration      float64
	MaxDuration      float64
	OverlapTolerance float64
	MaxReelDuration  float64 // 0 disables the cap

	// Ending guarantee.
	EndingCoverage   float64
	EndingImportance float64

	// Fallback chain.
	FallbackVisionLimit int
	FallbackShotLimit   int
	FallbackPlayLimit   int
	FallbackVisionScore float64
	FallbackShotScore   float64
	FallbackPlayScore   float64
	FillerTarget        int
	FillerSpacing       float64
	FillerImportance    float64
	DefaultLength       float64
	DefaultImportance   float64
}

// Default returns the stock planning policy.
func Default() Policy {
	return Policy{
		ScoreThreshold:   0.2,
		SuccessBonus:     0.5,
		MissPenalty:      0.3,
		MissCrowdCutoff:  5,
		EndingWindow:     30,
		EndingBonus:      0.4,
		ActionBonus:      0.2,
		CrowdHigh:        7,
		CrowdHighBonus:   0.3,
		CrowdMid:         5,
		CrowdMidBonus:    0.1,
		ScoringKindBonus: 0.3,
		ScoringLexicon:   []string{"goal", "touchdown", "dunk", "basket", "score", "made", "home run"},
		MissLexicon:      []string{"miss", "blocked"},
		SourceDefaults: map[model.Source]float64{
			model.SourceVisionEvent:    0.4,
			model.SourceStructuredPlay: 0.5,
			model.SourceShotChange:     0.3,
			model.SourceTimelineFiller: 0.3,
		},

		JitterEnabled:   true,
		JitterAmplitude: 0.05,
		SwapEnabled:     true,
		SwapProbability: 0.30,

		DedupeWindow:     3.0,
		PreBuffer:        2.0,
		ScoringPreBuffer: 6.0,
		VisiblePreBuffer: 8.0,
		PostBuffer:       5.0,
		MinDuration:      3.0,
		MaxDuration:      30.0,
		OverlapTolerance: 3.0,
		MaxReelDuration:  120,

		EndingCoverage:   15,
		EndingImportance: 0.4,

		FallbackVisionLimit: 15,
		FallbackShotLimit:   10,
		FallbackPlayLimit:   10,
		FallbackVisionScore: 0.4,
		FallbackShotScore:   0.5,
		FallbackPlayScore:   0.5,
		FillerTarget:        5,
		FillerSpacing:       15,
		FillerImportance:    0.5,
		DefaultLength:       30,
		DefaultImportance:   0.3,
	}
}

// Deterministic returns a copy of p with jitter and the rank swap turned off.
func (p Policy) Deterministic() Policy {
	p.JitterEnabled = false
	p.SwapEnabled = false
	return p
}

// Randomized reports whether planning with p draws from a random source.
func (p Policy) Randomized() bool {
	return (p.JitterEnabled && p.JitterAmplitude > 0) || (p.SwapEnabled && p.SwapProbability > 0)
}

// SourceDefault returns the base confidence used when a moment carries none.
func (p Policy) SourceDefault(s model.Source) float64 {
	if v, ok := p.SourceDefaults[s]; ok {
		return v
	}
	return p.SourceDefaults[model.SourceVisionEvent]
}

// IsScoringKind reports whether kind names a scoring play: it contains a
// scoring term and no miss term.
func (p Policy) IsScoringKind(kind string) bool {
	k := strings.ToLower(kind)
	if k == "" {
		return false
	}
	for _, miss := range p.MissLexicon {
		if miss != "" && strings.Contains(k, miss) {
			return false
		}
	}
	for _, term := range p.ScoringLexicon {
		if term != "" && strings.Contains(k, term) {
			return true
		}
	}
	return false
}

// IsScoringPlay reports whether m should get the long pre-buffer.
func (p Policy) IsScoringPlay(m model.Moment) bool {
	return m.Outcome == model.OutcomeSuccessful || p.IsScoringKind(m.Kind)
}

// Validate rejects policies the pipeline cannot honor.
func (p Policy) Validate() error {
	nonNegative := map[string]float64{
		"pre_buffer":         p.PreBuffer,
		"scoring_pre_buffer": p.ScoringPreBuffer,
		"visible_pre_buffer": p.VisiblePreBuffer,
		"post_buffer":        p.PostBuffer,
		"dedupe_window":      p.DedupeWindow,
		"overlap_tolerance":  p.OverlapTolerance,
		"max_reel_duration":  p.MaxReelDuration,
		"ending_coverage":    p.EndingCoverage,
		"jitter_amplitude":   p.JitterAmplitude,
		"filler_spacing":     p.FillerSpacing,
		"default_length":     p.DefaultLength,
	}
	for name, v := range nonNegative {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s must be a finite non-negative number, got %v", ErrInvalidPolicy, name, v)
		}
	}
	if p.MinDuration <= 0 || p.MaxDuration < p.MinDuration {
		return fmt.Errorf("%w: need 0 < min_duration <= max_duration, got %v/%v", ErrInvalidPolicy, p.MinDuration, p.MaxDuration)
	}
	if p.SwapProbability < 0 || p.SwapProbability > 1 {
		return fmt.Errorf("%w: swap_probability must be within [0,1], got %v", ErrInvalidPolicy, p.SwapProbability)
	}
	if p.FallbackVisionLimit < 0 || p.FallbackShotLimit < 0 || p.FallbackPlayLimit < 0 || p.FillerTarget < 0 {
		return fmt.Errorf("%w: fallback limits must not be negative", ErrInvalidPolicy)
	}
	return nil
}
