package policy

import "strings"

// Overrides is a sparse set of policy changes. Nil fields keep the base
// value. It is decoded from config files and from API requests.
type Overrides struct {
	ScoreThreshold   *float64 `json:"score_threshold,omitempty" yaml:"score_threshold,omitempty" koanf:"score_threshold"`
	JitterEnabled    *bool    `json:"jitter_enabled,omitempty" yaml:"jitter_enabled,omitempty" koanf:"jitter_enabled"`
	JitterAmplitude  *float64 `json:"jitter_amplitude,omitempty" yaml:"jitter_amplitude,omitempty" koanf:"jitter_amplitude"`
	SwapEnabled      *bool    `json:"swap_enabled,omitempty" yaml:"swap_enabled,omitempty" koanf:"swap_enabled"`
	SwapProbability  *float64 `json:"swap_probability,omitempty" yaml:"swap_probability,omitempty" koanf:"swap_probability"`
	Seed             *int64   `json:"seed,omitempty" yaml:"seed,omitempty" koanf:"seed"`
	DedupeWindow     *float64 `json:"dedupe_window,omitempty" yaml:"dedupe_window,omitempty" koanf:"dedupe_window"`
	PreBuffer        *float64 `json:"pre_buffer,omitempty" yaml:"pre_buffer,omitempty" koanf:"pre_buffer"`
	PostBuffer       *float64 `json:"post_buffer,omitempty" yaml:"post_buffer,omitempty" koanf:"post_buffer"`
	MinDuration      *float64 `json:"min_duration,omitempty" yaml:"min_duration,omitempty" koanf:"min_duration"`
	MaxDuration      *float64 `json:"max_duration,omitempty" yaml:"max_duration,omitempty" koanf:"max_duration"`
	OverlapTolerance *float64 `json:"overlap_tolerance,omitempty" yaml:"overlap_tolerance,omitempty" koanf:"overlap_tolerance"`
	MaxReelDuration  *float64 `json:"max_reel_duration,omitempty" yaml:"max_reel_duration,omitempty" koanf:"max_reel_duration"`
	EndingCoverage   *float64 `json:"ending_coverage,omitempty" yaml:"ending_coverage,omitempty" koanf:"ending_coverage"`
	ScoringLexicon   []string `json:"scoring_lexicon,omitempty" yaml:"scoring_lexicon,omitempty" koanf:"scoring_lexicon"`
	MissLexicon      []string `json:"miss_lexicon,omitempty" yaml:"miss_lexicon,omitempty" koanf:"miss_lexicon"`
}

// Apply returns base with every non-nil override set. Lexicon terms are
// lower-cased; a single comma separated entry is split.
func (o Overrides) Apply(base Policy) Policy {
	p := base
	setFloat(&p.ScoreThreshold, o.ScoreThreshold)
	setFloat(&p.JitterAmplitude, o.JitterAmplitude)
	setFloat(&p.SwapProbability, o.SwapProbability)
	setFloat(&p.DedupeWindow, o.DedupeWindow)
	setFloat(&p.PreBuffer, o.PreBuffer)
	setFloat(&p.PostBuffer, o.PostBuffer)
	setFloat(&p.MinDuration, o.MinDuration)
	setFloat(&p.MaxDuration, o.MaxDuration)
	setFloat(&p.OverlapTolerance, o.OverlapTolerance)
	setFloat(&p.MaxReelDuration, o.MaxReelDuration)
	setFloat(&p.EndingCoverage, o.EndingCoverage)
	if o.JitterEnabled != nil {
		p.JitterEnabled = *o.JitterEnabled
	}
	if o.SwapEnabled != nil {
		p.SwapEnabled = *o.SwapEnabled
	}
	if o.Seed != nil {
		p.Seed = *o.Seed
	}
	if len(o.ScoringLexicon) > 0 {
		p.ScoringLexicon = terms(o.ScoringLexicon)
	}
	if len(o.MissLexicon) > 0 {
		p.MissLexicon = terms(o.MissLexicon)
	}
	return p
}

// Empty reports whether o changes nothing.
func (o Overrides) Empty() bool {
	return o.ScoreThreshold == nil && o.JitterEnabled == nil && o.JitterAmplitude == nil &&
		o.SwapEnabled == nil && o.SwapProbability == nil && o.Seed == nil &&
		o.DedupeWindow == nil && o.PreBuffer == nil && o.PostBuffer == nil &&
		o.MinDuration == nil && o.MaxDuration == nil && o.OverlapTolerance == nil &&
		o.MaxReelDuration == nil && o.EndingCoverage == nil &&
		len(o.ScoringLexicon) == 0 && len(o.MissLexicon) == 0
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func terms(in []string) []string {
	if len(in) == 1 && strings.Contains(in[0], ",") {
		in = strings.Split(in[0], ",")
	}
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
