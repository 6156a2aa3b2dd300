package scoring_test

import (
	"testing"

	"github.com/okian/reelplan/internal/domain/model"
	"github.com/okian/reelplan/internal/domain/policy"
	scoring "github.com/okian/reelplan/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

// seqRand replays a fixed sequence of draws.
type seqRand struct {
	vals []float64
	i    int
}

func (r *seqRand) Float64() float64 {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v
}

func deterministicContext(duration float64) scoring.Context {
	return scoring.Context{VideoDuration: duration, Policy: policy.Default().Deterministic()}
}

func TestPolicyScorer_Score(t *testing.T) {
	Convey("Given a policy scorer with jitter disabled", t, func() {
		scorer := scoring.NewPolicyScorer()
		ctx := deterministicContext(100)

		Convey("When a moment has no confidence", func() {
			Convey("Then the source default is the base", func() {
				So(scorer.Score(model.Moment{Timestamp: 10, Source: model.SourceVisionEvent}, ctx), ShouldAlmostEqual, 0.4)
				So(scorer.Score(model.Moment{Timestamp: 10, Source: model.SourceStructuredPlay}, ctx), ShouldAlmostEqual, 0.5)
				So(scorer.Score(model.Moment{Timestamp: 10, Source: model.SourceShotChange}, ctx), ShouldAlmostEqual, 0.3)
			})
		})

		Convey("When a successful moment has a loud crowd", func() {
			m := model.Moment{Timestamp: 10, Outcome: model.OutcomeSuccessful, CrowdReaction: model.Int(8)}

			Convey("Then success and crowd bonuses add up", func() {
				So(scorer.Score(m, ctx), ShouldAlmostEqual, 0.4+0.5+0.3)
			})
		})

		Convey("When a miss has a quiet crowd", func() {
			m := model.Moment{Timestamp: 10, Outcome: model.OutcomeUnsuccessful, CrowdReaction: model.Int(2), BaseConfidence: model.Float64(0.6)}

			Convey("Then it is penalized", func() {
				So(scorer.Score(m, ctx), ShouldAlmostEqual, 0.3)
			})
		})

		Convey("When a miss has no crowd reading", func() {
			m := model.Moment{Timestamp: 10, Outcome: model.OutcomeUnsuccessful, BaseConfidence: model.Float64(0.6)}

			Convey("Then it is penalized too", func() {
				So(scorer.Score(m, ctx), ShouldAlmostEqual, 0.3)
			})
		})

		Convey("When a miss drew a mid-size reaction", func() {
			m := model.Moment{Timestamp: 10, Outcome: model.OutcomeUnsuccessful, CrowdReaction: model.Int(5), BaseConfidence: model.Float64(0.6)}

			Convey("Then no penalty applies and the mid crowd bonus does", func() {
				So(scorer.Score(m, ctx), ShouldAlmostEqual, 0.7)
			})
		})

		Convey("When a moment falls in the last 30 seconds", func() {
			So(scorer.Score(model.Moment{Timestamp: 70, BaseConfidence: model.Float64(0.5)}, ctx), ShouldAlmostEqual, 0.9)
			So(scorer.Score(model.Moment{Timestamp: 69.9, BaseConfidence: model.Float64(0.5)}, ctx), ShouldAlmostEqual, 0.5)
		})

		Convey("When a moment has action", func() {
			So(scorer.Score(model.Moment{Timestamp: 1, HasAction: true, BaseConfidence: model.Float64(0.5)}, ctx), ShouldAlmostEqual, 0.7)
		})

		Convey("When the kind names a scoring play", func() {
			m := model.Moment{Timestamp: 1, Kind: "Three-point BASKET made", BaseConfidence: model.Float64(0.5)}

			Convey("Then the lexicon bonus applies unless the play failed", func() {
				So(scorer.Score(m, ctx), ShouldAlmostEqual, 0.8)

				failed := m
				failed.Outcome = model.OutcomeUnsuccessful
				failed.CrowdReaction = model.Int(9)
				So(scorer.Score(failed, ctx), ShouldAlmostEqual, 0.5+0.3)
			})

			Convey("And a miss term cancels the lexicon match", func() {
				missed := m
				missed.Kind = "missed basket"
				So(scorer.Score(missed, ctx), ShouldAlmostEqual, 0.5)
			})
		})
	})
}

func TestPolicyScorer_Monotonic(t *testing.T) {
	Convey("Given identical moments that differ only in outcome", t, func() {
		scorer := scoring.NewPolicyScorer()
		ctx := deterministicContext(60)

		kinds := []string{"", "goal", "dunk attempt", "turnover"}
		crowds := []*int{nil, model.Int(0), model.Int(5), model.Int(9)}
		stamps := []float64{0, 20, 45}

		Convey("Then the successful variant never scores lower", func() {
			for _, kind := range kinds {
				for _, crowd := range crowds {
					for _, ts := range stamps {
						base := model.Moment{Timestamp: ts, Kind: kind, CrowdReaction: crowd}
						win, lose := base, base
						win.Outcome = model.OutcomeSuccessful
						lose.Outcome = model.OutcomeUnsuccessful
						So(scorer.Score(win, ctx), ShouldBeGreaterThanOrEqualTo, scorer.Score(lose, ctx))
					}
				}
			}
		})
	})
}

func TestPolicyScorer_Jitter(t *testing.T) {
	Convey("Given a scorer with jitter enabled", t, func() {
		scorer := scoring.NewPolicyScorer()
		m := model.Moment{Timestamp: 5, BaseConfidence: model.Float64(0.5)}

		Convey("When the source returns its extremes", func() {
			lo := scoring.Context{VideoDuration: 100, Policy: policy.Default(), Rand: &seqRand{vals: []float64{0}}}
			hi := scoring.Context{VideoDuration: 100, Policy: policy.Default(), Rand: &seqRand{vals: []float64{0.999999}}}

			Convey("Then the jitter stays within the amplitude", func() {
				So(scorer.Score(m, lo), ShouldAlmostEqual, 0.45)
				So(scorer.Score(m, hi), ShouldAlmostEqual, 0.55, 1e-5)
			})
		})

		Convey("When the context has no random source", func() {
			ctx := scoring.Context{VideoDuration: 100, Policy: policy.Default()}

			Convey("Then no jitter is added", func() {
				So(scorer.Score(m, ctx), ShouldEqual, 0.5)
			})
		})

		Convey("When explaining the score", func() {
			ctx := scoring.Context{VideoDuration: 100, Policy: policy.Default(), Rand: &seqRand{vals: []float64{0.75}}}
			parts := scorer.Explain(m, ctx)

			Convey("Then the jitter term is listed", func() {
				So(len(parts), ShouldEqual, 2)
				So(parts[0].Term, ShouldEqual, scoring.TermBase)
				So(parts[1].Term, ShouldEqual, scoring.TermJitter)
				So(parts[1].Value, ShouldAlmostEqual, 0.025)
			})
		})
	})
}

func TestFilterAndRank(t *testing.T) {
	Convey("Given scored moments", t, func() {
		scored := []model.ScoredMoment{
			{Moment: model.Moment{Timestamp: 40}, Score: 0.9},
			{Moment: model.Moment{Timestamp: 10}, Score: 0.15},
			{Moment: model.Moment{Timestamp: 30}, Score: 1.2},
			{Moment: model.Moment{Timestamp: 20}, Score: 0.9},
			{Moment: model.Moment{Timestamp: 50}, Score: 0.2},
		}

		Convey("When filtering at the default threshold", func() {
			kept := scoring.Filter(scored, 0.2)

			Convey("Then only scores below 0.2 are dropped", func() {
				So(len(kept), ShouldEqual, 4)
				for _, sm := range kept {
					So(sm.Score, ShouldBeGreaterThanOrEqualTo, 0.2)
				}
			})
		})

		Convey("When ranking without swaps", func() {
			ranked := scoring.Rank(scoring.Filter(scored, 0.2), policy.Default().Deterministic(), nil)

			Convey("Then ties go to the earlier timestamp", func() {
				So(ranked[0].Timestamp, ShouldEqual, 30)
				So(ranked[1].Timestamp, ShouldEqual, 20)
				So(ranked[2].Timestamp, ShouldEqual, 40)
				So(ranked[3].Timestamp, ShouldEqual, 50)
				for i, sm := range ranked {
					So(sm.Rank, ShouldEqual, i+1)
				}
			})

			Convey("And the input is left untouched", func() {
				So(scored[0].Timestamp, ShouldEqual, 40)
				So(scored[0].Rank, ShouldEqual, 0)
			})
		})

		Convey("When the swap fires", func() {
			ranked := scoring.Rank(scoring.Filter(scored, 0.2), policy.Default(), &seqRand{vals: []float64{0.1}})

			Convey("Then only ranks 2 and 3 trade places", func() {
				So(ranked[0].Timestamp, ShouldEqual, 30)
				So(ranked[1].Timestamp, ShouldEqual, 40)
				So(ranked[2].Timestamp, ShouldEqual, 20)
				So(ranked[3].Timestamp, ShouldEqual, 50)
				So(ranked[1].Rank, ShouldEqual, 2)
			})
		})

		Convey("When the draw is above the swap probability", func() {
			ranked := scoring.Rank(scored, policy.Default(), &seqRand{vals: []float64{0.5}})

			Convey("Then the order is the plain sort", func() {
				So(ranked[1].Timestamp, ShouldEqual, 20)
				So(ranked[2].Timestamp, ShouldEqual, 40)
			})
		})

		Convey("When fewer than three moments exist", func() {
			rng := &seqRand{vals: []float64{0.0}}
			ranked := scoring.Rank(scored[:2], policy.Default(), rng)

			Convey("Then the swap is a no-op and draws nothing", func() {
				So(ranked[0].Timestamp, ShouldEqual, 40)
				So(ranked[1].Timestamp, ShouldEqual, 10)
				So(rng.i, ShouldEqual, 0)
			})
		})
	})
}
