// Package scoring defines the contract for computing moment importance scores
// and ranking the results.
package scoring

import (
	"sort"

	"github.com/okian/reelplan/internal/domain/model"
	"github.com/okian/reelplan/internal/domain/policy"
)

// Contribution names.
const (
	TermBase        = "base"
	TermSuccess     = "success"
	TermMiss        = "miss_penalty"
	TermEnding      = "ending"
	TermAction      = "action"
	TermCrowd       = "crowd"
	TermScoringKind = "scoring_kind"
	TermJitter      = "jitter"
)

// Rand is the random source used for jitter and the rank swap.
// *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Context carries what a score depends on besides the moment itself.
type Context struct {
	VideoDuration float64
	Policy        policy.Policy
	// Rand drives the jitter term; nil disables jitter.
	Rand Rand
}

// Contribution is one additive term of a score.
type Contribution struct {
	Term  string
	Value float64
}

// Scorer computes an importance score for a moment.
type Scorer interface {
	Score(m model.Moment, c Context) float64
}

// PolicyScorer implements Scorer with the additive policy formula.
// It holds no state and is safe for concurrent use.
type PolicyScorer struct{}

// NewPolicyScorer creates a policy-driven scorer.
func NewPolicyScorer() *PolicyScorer {
	return &PolicyScorer{}
}

// Score sums the contributions returned by Explain.
func (s *PolicyScorer) Score(m model.Moment, c Context) float64 {
	total := 0.0
	for _, part := range s.Explain(m, c) {
		total += part.Value
	}
	return total
}

// Explain returns the non-zero terms making up the score of m. The jitter
// term draws from c.Rand, so calling Explain twice advances the source twice.
func (s *PolicyScorer) Explain(m model.Moment, c Context) []Contribution {
	p := c.Policy
	parts := make([]Contribution, 0, 8)
	add := func(term string, v float64) {
		if v != 0 {
			parts = append(parts, Contribution{Term: term, Value: v})
		}
	}

	base := p.SourceDefault(m.Source)
	if m.BaseConfidence != nil {
		base = *m.BaseConfidence
	}
	add(TermBase, base)

	switch m.Outcome {
	case model.OutcomeSuccessful:
		add(TermSuccess, p.SuccessBonus)
	case model.OutcomeUnsuccessful:
		// boring misses only; a loud crowd keeps a miss alive
		if m.CrowdReaction == nil || *m.CrowdReaction < p.MissCrowdCutoff {
			add(TermMiss, -p.MissPenalty)
		}
	}

	if m.Timestamp >= c.VideoDuration-p.EndingWindow {
		add(TermEnding, p.EndingBonus)
	}
	if m.HasAction {
		add(TermAction, p.ActionBonus)
	}
	if m.CrowdReaction != nil {
		switch crowd := *m.CrowdReaction; {
		case crowd >= p.CrowdHigh:
			add(TermCrowd, p.CrowdHighBonus)
		case crowd >= p.CrowdMid:
			add(TermCrowd, p.CrowdMidBonus)
		}
	}
	if m.Outcome != model.OutcomeUnsuccessful && p.IsScoringKind(m.Kind) {
		add(TermScoringKind, p.ScoringKindBonus)
	}
	if c.Rand != nil && p.JitterEnabled && p.JitterAmplitude > 0 {
		add(TermJitter, (c.Rand.Float64()*2-1)*p.JitterAmplitude)
	}
	return parts
}

// ScoreAll scores moments in input order, so a seeded source yields the
// same jitter sequence for the same input.
func ScoreAll(s Scorer, moments []model.Moment, c Context) []model.ScoredMoment {
	out := make([]model.ScoredMoment, len(moments))
	for i, m := range moments {
		out[i] = model.ScoredMoment{Moment: m, Score: s.Score(m, c)}
	}
	return out
}

// Filter drops scored moments below threshold, keeping order.
func Filter(scored []model.ScoredMoment, threshold float64) []model.ScoredMoment {
	out := make([]model.ScoredMoment, 0, len(scored))
	for _, sm := range scored {
		if sm.Score >= threshold {
			out = append(out, sm)
		}
	}
	return out
}

// Less orders by score descending, then earlier timestamp.
func Less(a, b model.ScoredMoment) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Timestamp < b.Timestamp
}

// Rank sorts a copy of scored by Less and assigns ranks 1..n. When the
// policy allows it and at least three moments exist, ranks 2 and 3 are
// swapped with probability SwapProbability. A nil rng never swaps.
func Rank(scored []model.ScoredMoment, p policy.Policy, rng Rand) []model.ScoredMoment {
	out := make([]model.ScoredMoment, len(scored))
	copy(out, scored)
	sort.SliceStable(out, func(i, j int) bool { return Less(out[i], out[j]) })

	if p.SwapEnabled && rng != nil && len(out) >= 3 && rng.Float64() < p.SwapProbability {
		out[1], out[2] = out[2], out[1]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
