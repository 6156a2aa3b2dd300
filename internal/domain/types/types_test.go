package types_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/reelplan/internal/domain/model"
	types "github.com/okian/reelplan/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestJob(t *testing.T) {
	Convey("Given jobs in each state", t, func() {
		Convey("Then only done and failed are finished", func() {
			So(types.Job{Status: types.JobPending}.Finished(), ShouldBeFalse)
			So(types.Job{Status: types.JobRunning}.Finished(), ShouldBeFalse)
			So(types.Job{Status: types.JobDone}.Finished(), ShouldBeTrue)
			So(types.Job{Status: types.JobFailed}.Finished(), ShouldBeTrue)
		})
	})

	Convey("Given a pending job", t, func() {
		job := types.Job{ID: "j-1", Status: types.JobPending, VideoDuration: 60, SubmittedAt: time.Unix(0, 0).UTC()}

		Convey("When it is encoded", func() {
			raw, err := json.Marshal(job)

			Convey("Then the empty plan and error are omitted", func() {
				So(err, ShouldBeNil)
				So(string(raw), ShouldNotContainSubstring, "plan")
				So(string(raw), ShouldNotContainSubstring, "error")
				So(string(raw), ShouldContainSubstring, `"status":"pending"`)
			})
		})

		Convey("When it finishes with a plan", func() {
			plan := model.NewPlan([]model.Segment{{StartTime: 0, EndTime: 30}}, 60)
			job.Status = types.JobDone
			job.Plan = &plan
			raw, _ := json.Marshal(job)

			Convey("Then the plan is embedded", func() {
				So(string(raw), ShouldContainSubstring, `"highlight_count":1`)
			})
		})
	})
}

func TestPlanInput(t *testing.T) {
	Convey("Given a request body with a policy block", t, func() {
		raw := `{"video_duration": 30, "events": [{"timestamp": 4, "kind": "goal"}], "policy": {"jitter_enabled": false, "score_threshold": 0.2}}`

		Convey("When it is decoded", func() {
			var in types.PlanInput
			err := json.Unmarshal([]byte(raw), &in)

			Convey("Then the payload fields are inlined and the overrides kept", func() {
				So(err, ShouldBeNil)
				So(in.VideoDuration, ShouldEqual, 30)
				So(len(in.Moments()), ShouldEqual, 1)
				So(*in.Policy.JitterEnabled, ShouldBeFalse)
				So(*in.Policy.ScoreThreshold, ShouldEqual, 0.2)
				So(in.Policy.SwapEnabled, ShouldBeNil)
			})
		})
	})
}
