package planner_test

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/okian/reelplan/internal/domain/model"
	"github.com/okian/reelplan/internal/domain/policy"
	"github.com/okian/reelplan/internal/domain/planner"
	"github.com/okian/reelplan/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

const eps = 1e-9

func assertPlanInvariants(plan model.Plan) {
	for i, s := range plan.Segments {
		So(s.StartTime, ShouldBeGreaterThanOrEqualTo, 0)
		So(s.EndTime, ShouldBeLessThanOrEqualTo, plan.VideoDuration+eps)
		So(s.Duration(), ShouldBeLessThanOrEqualTo, 30+eps)
		if plan.VideoDuration >= 3 {
			So(s.Duration(), ShouldBeGreaterThanOrEqualTo, 3-eps)
		}
		if i > 0 {
			So(plan.Segments[i-1].EndTime, ShouldBeLessThanOrEqualTo, s.StartTime+eps)
		}
	}
	if plan.VideoDuration >= 15 {
		covered := false
		for _, s := range plan.Segments {
			if s.Intersects(plan.VideoDuration-15, plan.VideoDuration) || s.EndTime == plan.VideoDuration {
				covered = true
			}
		}
		So(covered, ShouldBeTrue)
	}
	So(plan.HighlightCount, ShouldEqual, len(plan.Segments))
	So(plan.Ordering, ShouldEqual, model.OrderingChronological)
}

func randomMoments(r *rand.Rand, n int, d float64) []model.Moment {
	sources := model.Sources
	kinds := []string{"", "goal", "missed shot", "dunk", "turnover", "three-point basket made", "blocked shot"}
	out := make([]model.Moment, n)
	for i := range out {
		m := model.Moment{
			Timestamp:     r.Float64() * d,
			Source:        sources[r.Intn(len(sources))],
			Kind:          kinds[r.Intn(len(kinds))],
			Outcome:       model.Outcome(r.Intn(3)),
			PlayerVisible: r.Intn(2) == 0,
			HasAction:     r.Intn(2) == 0,
		}
		if r.Intn(3) > 0 {
			m.CrowdReaction = model.Int(r.Intn(11))
		}
		if r.Intn(3) > 0 {
			m.BaseConfidence = model.Float64(r.Float64())
		}
		if m.Source == model.SourceStructuredPlay {
			m.Span = r.Float64() * 20
		}
		out[i] = m
	}
	return out
}

// fixedRand always returns the same draw.
type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func TestEngine_Scenarios(t *testing.T) {
	Convey("Given an engine with randomness disabled", t, func() {
		engine := planner.NewEngine()
		ctx := context.Background()
		p := policy.Default().Deterministic()

		Convey("When two successful plays are planned on a 100 second video", func() {
			plan, err := engine.Plan(ctx, planner.Request{
				Moments: []model.Moment{
					{Timestamp: 10, Outcome: model.OutcomeSuccessful, CrowdReaction: model.Int(8)},
					{Timestamp: 95, Outcome: model.OutcomeSuccessful, CrowdReaction: model.Int(3)},
				},
				VideoDuration: 100,
				Policy:        p,
			})

			Convey("Then the first gets a long lead-in and the second covers the ending", func() {
				So(err, ShouldBeNil)
				So(len(plan.Segments), ShouldEqual, 2)
				So(10-plan.Segments[0].StartTime, ShouldBeGreaterThanOrEqualTo, 5)
				So(plan.Segments[0].StartTime, ShouldBeBetweenOrEqual, 3, 5)
				So(plan.Segments[1].Intersects(85, 100), ShouldBeTrue)
				So(plan.Fallback, ShouldEqual, model.FallbackNone)
				assertPlanInvariants(plan)
			})
		})

		Convey("When two moments are 1.5 seconds apart", func() {
			plan, err := engine.Plan(ctx, planner.Request{
				Moments: []model.Moment{
					{Timestamp: 10, BaseConfidence: model.Float64(0.5)},
					{Timestamp: 11.5, BaseConfidence: model.Float64(0.9)},
				},
				VideoDuration: 60,
				Policy:        p,
			})

			Convey("Then only the higher-scored one yields a segment", func() {
				So(err, ShouldBeNil)
				So(plan.Segments[0].EventStart, ShouldEqual, 11.5)
				So(plan.HighlightCount, ShouldEqual, 2) // plus the closing segment
				So(plan.Segments[1].Description, ShouldEqual, "closing moments")
			})
		})

		Convey("When there are no moments and the video is 42 seconds", func() {
			plan, err := engine.Plan(ctx, planner.Request{VideoDuration: 42, Policy: p})

			Convey("Then exactly one segment covers [0, 30]", func() {
				So(err, ShouldBeNil)
				So(len(plan.Segments), ShouldEqual, 1)
				So(plan.Segments[0].StartTime, ShouldEqual, 0)
				So(plan.Segments[0].EndTime, ShouldEqual, 30)
				So(plan.Fallback, ShouldEqual, model.FallbackDefaultSegment)
				So(plan.TotalDuration, ShouldEqual, 30)
			})
		})

		Convey("When every moment scores below the threshold", func() {
			plan, err := engine.Plan(ctx, planner.Request{
				Moments: []model.Moment{
					{Timestamp: 20, Source: model.SourceShotChange, BaseConfidence: model.Float64(0.1)},
				},
				VideoDuration: 120,
				Policy:        p,
			})

			Convey("Then the shot-change fallback is used and the ending is added", func() {
				So(err, ShouldBeNil)
				So(plan.Fallback, ShouldEqual, model.FallbackShotChanges)
				So(len(plan.Segments), ShouldEqual, 2)
				So(plan.Segments[0].Importance, ShouldEqual, 0.5)
				assertPlanInvariants(plan)
			})
		})

		Convey("When the video has no length", func() {
			plan, err := engine.Plan(ctx, planner.Request{
				Moments:       []model.Moment{{Timestamp: 0}},
				VideoDuration: 0,
				Policy:        p,
			})

			Convey("Then the plan is empty", func() {
				So(err, ShouldBeNil)
				So(plan.HighlightCount, ShouldEqual, 0)
				So(plan.Segments, ShouldBeEmpty)
				So(plan.MomentsConsidered, ShouldEqual, 1)
			})
		})

		Convey("When moments fall outside the video or carry garbage", func() {
			plan, err := engine.Plan(ctx, planner.Request{
				Moments: []model.Moment{
					{Timestamp: -1},
					{Timestamp: math.NaN()},
					{Timestamp: 500},
					{Timestamp: 30, BaseConfidence: model.Float64(math.Inf(1)), CrowdReaction: model.Int(99)},
				},
				VideoDuration: 100,
				Policy:        p,
			})

			Convey("Then invalid moments are dropped and counted", func() {
				So(err, ShouldBeNil)
				So(plan.MomentsDropped, ShouldEqual, 3)
				So(plan.MomentsConsidered, ShouldEqual, 1)
				So(plan.Segments[0].EventStart, ShouldEqual, 30)
			})
		})
	})
}

func TestEngine_Validation(t *testing.T) {
	Convey("Given an engine", t, func() {
		engine := planner.NewEngine()

		Convey("When the duration is invalid", func() {
			for _, d := range []float64{-1, math.NaN(), math.Inf(1)} {
				_, err := engine.Plan(context.Background(), planner.Request{VideoDuration: d, Policy: policy.Default()})

				So(err, ShouldNotBeNil)
				So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
				var iie *model.InvalidInputError
				So(errors.As(err, &iie), ShouldBeTrue)
				So(iie.Field, ShouldEqual, "video_duration")
			}
		})

		Convey("When the policy is impossible", func() {
			bad := policy.Default()
			bad.MinDuration = 40
			_, err := engine.Plan(context.Background(), planner.Request{VideoDuration: 60, Policy: bad})

			Convey("Then a policy error is returned", func() {
				So(errors.Is(err, policy.ErrInvalidPolicy), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := engine.Plan(ctx, planner.Request{VideoDuration: 60, Policy: policy.Default()})

			Convey("Then the context error is returned", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestEngine_Randomness(t *testing.T) {
	Convey("Given a fixed set of moments", t, func() {
		moments := randomMoments(rand.New(rand.NewSource(3)), 40, 300)
		ctx := context.Background()

		Convey("When planned twice with randomness disabled", func() {
			engine := planner.NewEngine()
			req := planner.Request{Moments: moments, VideoDuration: 300, Policy: policy.Default().Deterministic()}
			a, errA := engine.Plan(ctx, req)
			b, errB := engine.Plan(ctx, req)

			Convey("Then the plans are identical", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(a, ShouldResemble, b)
			})
		})

		Convey("When planned twice with a pinned seed", func() {
			engine := planner.NewEngine()
			p := policy.Default()
			p.Seed = 42
			req := planner.Request{Moments: moments, VideoDuration: 300, Policy: p}
			a, _ := engine.Plan(ctx, req)
			b, _ := engine.Plan(ctx, req)

			Convey("Then the plans are identical", func() {
				So(a, ShouldResemble, b)
			})
		})

		Convey("When the policy pins a seed", func() {
			var seeds []int64
			engine := planner.NewEngine(planner.WithRandFactory(func(seed int64) scoring.Rand {
				seeds = append(seeds, seed)
				return fixedRand(0.5)
			}))
			p := policy.Default()
			p.Seed = 7
			_, err := engine.Plan(ctx, planner.Request{Moments: moments, VideoDuration: 300, Policy: p})

			Convey("Then the factory receives it", func() {
				So(err, ShouldBeNil)
				So(seeds, ShouldResemble, []int64{7})
			})
		})

		Convey("When randomness is disabled", func() {
			calls := 0
			engine := planner.NewEngine(planner.WithRandFactory(func(int64) scoring.Rand {
				calls++
				return fixedRand(0)
			}))
			_, _ = engine.Plan(ctx, planner.Request{Moments: moments, VideoDuration: 300, Policy: policy.Default().Deterministic()})

			Convey("Then no random source is created", func() {
				So(calls, ShouldEqual, 0)
			})
		})

		Convey("When no seed is pinned", func() {
			var seeds []int64
			engine := planner.NewEngine(
				planner.WithSeedSource(func() int64 { return 99 }),
				planner.WithRandFactory(func(seed int64) scoring.Rand {
					seeds = append(seeds, seed)
					return fixedRand(0.9)
				}),
			)
			_, _ = engine.Plan(ctx, planner.Request{Moments: moments, VideoDuration: 300, Policy: policy.Default()})

			Convey("Then the seed source is used", func() {
				So(seeds, ShouldResemble, []int64{99})
			})
		})
	})
}

func TestEngine_Properties(t *testing.T) {
	Convey("Given randomly generated detector output", t, func() {
		r := rand.New(rand.NewSource(11))
		engine := planner.NewEngine()

		Convey("When many videos are planned with the stock policy", func() {
			for i := 0; i < 150; i++ {
				d := 3 + r.Float64()*900
				moments := randomMoments(r, r.Intn(60), d)
				p := policy.Default()
				p.Seed = int64(i + 1)

				plan, err := engine.Plan(context.Background(), planner.Request{Moments: moments, VideoDuration: d, Policy: p})

				So(err, ShouldBeNil)
				So(len(plan.Segments), ShouldBeGreaterThan, 0)
				assertPlanInvariants(plan)
			}
		})

		Convey("When the input slice is planned", func() {
			moments := []model.Moment{{Timestamp: 12, CrowdReaction: model.Int(40)}}
			_, err := engine.Plan(context.Background(), planner.Request{Moments: moments, VideoDuration: 60, Policy: policy.Default()})

			Convey("Then the caller's moments are not modified", func() {
				So(err, ShouldBeNil)
				So(*moments[0].CrowdReaction, ShouldEqual, 40)
			})
		})
	})
}
