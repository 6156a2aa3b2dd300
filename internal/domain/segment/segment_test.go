package segment_test

import (
	"testing"

	"github.com/okian/reelplan/internal/domain/model"
	"github.com/okian/reelplan/internal/domain/policy"
	"github.com/okian/reelplan/internal/domain/segment"
	. "github.com/smartystreets/goconvey/convey"
)

func scored(m model.Moment, score float64) model.ScoredMoment {
	return model.ScoredMoment{Moment: m, Score: score}
}

func TestBuilder_Buffers(t *testing.T) {
	Convey("Given the default builder on a 120 second video", t, func() {
		b := segment.NewBuilder()
		c := segment.Context{VideoDuration: 120, Policy: policy.Default()}

		Convey("When a plain moment is built", func() {
			seg, ok := b.Build(scored(model.Moment{Timestamp: 50, Kind: "rebound"}, 0.6), c)

			Convey("Then it gets 2 seconds before and 5 after", func() {
				So(ok, ShouldBeTrue)
				So(seg.StartTime, ShouldEqual, 48)
				So(seg.EndTime, ShouldEqual, 55)
				So(seg.EventStart, ShouldEqual, 50)
				So(seg.EventEnd, ShouldEqual, 50)
				So(seg.Description, ShouldEqual, "rebound")
				So(seg.Importance, ShouldEqual, 0.6)
			})
		})

		Convey("When a successful play is built", func() {
			seg, _ := b.Build(scored(model.Moment{Timestamp: 50, Outcome: model.OutcomeSuccessful}, 1), c)

			Convey("Then the pre-buffer is 6 seconds", func() {
				So(seg.StartTime, ShouldEqual, 44)
			})
		})

		Convey("When a scoring play shows the player", func() {
			seg, _ := b.Build(scored(model.Moment{Timestamp: 50, Kind: "goal", PlayerVisible: true}, 1), c)

			Convey("Then the pre-buffer is 8 seconds", func() {
				So(seg.StartTime, ShouldEqual, 42)
				So(seg.Duration(), ShouldBeGreaterThanOrEqualTo, 5)
			})
		})

		Convey("When a visible player is not in a scoring play", func() {
			seg, _ := b.Build(scored(model.Moment{Timestamp: 50, Kind: "missed goal", PlayerVisible: true}, 1), c)

			Convey("Then the plain pre-buffer applies", func() {
				So(seg.StartTime, ShouldEqual, 48)
			})
		})

		Convey("When the moment spans an interval", func() {
			seg, _ := b.Build(scored(model.Moment{Timestamp: 20, Span: 10, Source: model.SourceStructuredPlay}, 0.5), c)

			Convey("Then the post-buffer counts from the event end", func() {
				So(seg.StartTime, ShouldEqual, 18)
				So(seg.EndTime, ShouldEqual, 35)
				So(seg.EventEnd, ShouldEqual, 30)
				So(seg.Description, ShouldEqual, "play")
			})
		})

		Convey("When the interval is longer than the maximum", func() {
			seg, _ := b.Build(scored(model.Moment{Timestamp: 20, Span: 60}, 0.5), c)

			Convey("Then the end is truncated", func() {
				So(seg.StartTime, ShouldEqual, 18)
				So(seg.EndTime, ShouldEqual, 48)
				So(seg.EventEnd, ShouldEqual, 48)
			})
		})

		Convey("When the score is negative", func() {
			seg, _ := b.Build(scored(model.Moment{Timestamp: 50}, -0.2), c)

			Convey("Then importance is floored at zero", func() {
				So(seg.Importance, ShouldEqual, 0)
				So(seg.Description, ShouldEqual, "highlight")
			})
		})
	})
}

func TestBuilder_Clamping(t *testing.T) {
	Convey("Given the default builder", t, func() {
		b := segment.NewBuilder()
		p := policy.Default()

		Convey("When a moment sits at the very end of the video", func() {
			seg, ok := b.Build(scored(model.Moment{Timestamp: 60}, 0.5), segment.Context{VideoDuration: 60, Policy: p})

			Convey("Then the segment is clipped to the video and still meets the minimum", func() {
				So(ok, ShouldBeTrue)
				So(seg.EndTime, ShouldEqual, 60)
				So(seg.StartTime, ShouldEqual, 57)
				So(seg.Duration(), ShouldBeGreaterThanOrEqualTo, p.MinDuration)
			})
		})

		Convey("When the policy buffers are smaller than the minimum", func() {
			tight := p
			tight.PreBuffer = 0
			tight.PostBuffer = 1
			seg, _ := b.Build(scored(model.Moment{Timestamp: 59.5}, 0.5), segment.Context{VideoDuration: 60, Policy: tight})

			Convey("Then the start is pulled back to reach the minimum", func() {
				So(seg.EndTime, ShouldEqual, 60)
				So(seg.StartTime, ShouldEqual, 57)
			})
		})

		Convey("When the moment is at zero", func() {
			tight := p
			tight.PostBuffer = 0
			seg, _ := b.Build(scored(model.Moment{Timestamp: 0}, 0.5), segment.Context{VideoDuration: 60, Policy: tight})

			Convey("Then the end is extended to reach the minimum", func() {
				So(seg.StartTime, ShouldEqual, 0)
				So(seg.EndTime, ShouldEqual, 3)
			})
		})

		Convey("When the video is shorter than the minimum", func() {
			seg, ok := b.Build(scored(model.Moment{Timestamp: 1}, 0.5), segment.Context{VideoDuration: 2, Policy: p})

			Convey("Then the segment covers the whole video", func() {
				So(ok, ShouldBeTrue)
				So(seg.StartTime, ShouldEqual, 0)
				So(seg.EndTime, ShouldEqual, 2)
			})
		})

		Convey("When the video has no length", func() {
			_, ok := b.Build(scored(model.Moment{Timestamp: 0}, 0.5), segment.Context{VideoDuration: 0, Policy: p})

			Convey("Then nothing is built", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}
