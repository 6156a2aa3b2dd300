package repository_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/okian/reelplan/internal/adapters/repository"
	"github.com/okian/reelplan/internal/domain/model"
	"github.com/okian/reelplan/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// Runs against a real server when REELPLAN_TEST_REDIS_ADDR is set.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REELPLAN_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("REELPLAN_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	rdb, err := repository.DialRedis(ctx, addr, "", 0)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer rdb.Close()

	Convey("Given a redis store with its own prefix", t, func() {
		prefix := "reelplan-test:" + uuid.NewString() + ":"
		store := repository.NewRedisStore(rdb,
			repository.WithRedisPrefix(prefix),
			repository.WithRedisTTL(time.Minute),
			repository.WithRedisMaxJobs(2),
		)

		Convey("When a job goes through its lifecycle", func() {
			job, err := store.Create(ctx, 60)
			So(err, ShouldBeNil)
			So(store.MarkRunning(ctx, job.ID), ShouldBeNil)
			So(store.Complete(ctx, job.ID, model.NewPlan([]model.Segment{{StartTime: 45, EndTime: 60}}, 60)), ShouldBeNil)

			got, err := store.Get(ctx, job.ID)

			Convey("Then the stored document reflects it", func() {
				So(err, ShouldBeNil)
				So(got.Status, ShouldEqual, types.JobDone)
				So(got.Plan.Segments[0].StartTime, ShouldEqual, 45)
				So(errors.Is(store.Fail(ctx, job.ID, "x"), repository.ErrJobFinished), ShouldBeTrue)
			})
		})

		Convey("When more jobs than the bound are created", func() {
			first, _ := store.Create(ctx, 10)
			time.Sleep(time.Millisecond)
			_, _ = store.Create(ctx, 10)
			time.Sleep(time.Millisecond)
			_, _ = store.Create(ctx, 10)

			Convey("Then the oldest one is evicted", func() {
				So(store.Count(ctx), ShouldEqual, 2)
				_, err := store.Get(ctx, first.ID)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When an unknown job is deleted", func() {
			So(errors.Is(store.Delete(ctx, "missing"), repository.ErrNotFound), ShouldBeTrue)
		})
	})
}
