package ingest_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/okian/reelplan/internal/domain/ingest"
	"github.com/okian/reelplan/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const samplePayload = `{
  "video_duration": 120,
  "events": [
    {"timestamp": 12.5, "analysis": "three-point basket made", "is_successful": true, "crowd_reaction": 8, "player_visible": true},
    {"timestamp": 40, "has_action": true},
    {"timestamp": 70, "confidence": 0.9}
  ],
  "plays": [{"start_time": 50, "end_time": 62, "label": "fast break", "confidence": 0.6}],
  "key_frames": [{"start_time": 90, "end_time": 88}]
}`

func TestDecode(t *testing.T) {
	Convey("Given a detector payload", t, func() {
		p, err := ingest.Decode(strings.NewReader(samplePayload))

		Convey("When it is decoded and flattened", func() {
			So(err, ShouldBeNil)
			moments := p.Moments()

			Convey("Then every observation becomes a moment in source order", func() {
				So(p.VideoDuration, ShouldEqual, 120)
				So(len(moments), ShouldEqual, 5)
				So(moments[0].Source, ShouldEqual, model.SourceVisionEvent)
				So(moments[3].Source, ShouldEqual, model.SourceStructuredPlay)
				So(moments[4].Source, ShouldEqual, model.SourceShotChange)
			})

			Convey("Then vision fields carry over", func() {
				m := moments[0]
				So(m.Kind, ShouldEqual, "three-point basket made")
				So(m.Outcome, ShouldEqual, model.OutcomeSuccessful)
				So(m.PlayerVisible, ShouldBeTrue)
				So(*m.CrowdReaction, ShouldEqual, 8)
				So(*m.BaseConfidence, ShouldAlmostEqual, 0.8)
			})

			Convey("Then missing confidence is derived only from known hints", func() {
				So(*moments[1].BaseConfidence, ShouldEqual, 0.4)
				So(moments[1].CrowdReaction, ShouldBeNil)
				So(*moments[2].BaseConfidence, ShouldEqual, 0.9)
				So(moments[2].Outcome, ShouldEqual, model.OutcomeUnknown)
			})

			Convey("Then intervals keep their span", func() {
				So(moments[3].Timestamp, ShouldEqual, 50)
				So(moments[3].Span, ShouldEqual, 12)
				So(moments[3].Kind, ShouldEqual, "fast break")
				So(moments[4].Span, ShouldEqual, 0)
				So(moments[4].BaseConfidence, ShouldBeNil)
			})
		})
	})

	Convey("Given malformed JSON", t, func() {
		_, err := ingest.Decode(strings.NewReader(`{"events": [`))

		Convey("Then the payload error is returned", func() {
			So(errors.Is(err, ingest.ErrInvalidPayload), ShouldBeTrue)
		})
	})
}

func TestDeriveConfidence(t *testing.T) {
	Convey("Given crowd and action hints", t, func() {
		So(ingest.DeriveConfidence(nil, false), ShouldEqual, 0.3)
		So(ingest.DeriveConfidence(nil, true), ShouldEqual, 0.4)
		So(ingest.DeriveConfidence(model.Int(2), true), ShouldEqual, 0.4)
		So(ingest.DeriveConfidence(model.Int(7), false), ShouldAlmostEqual, 0.7)
		So(ingest.DeriveConfidence(model.Int(15), false), ShouldEqual, 1)
	})
}
