package planload

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/reelplan/internal/domain/model"
	"github.com/okian/reelplan/pkg/logger"
)

// VerifyPlan returns every structural rule the plan breaks for a video of
// the given duration. An empty result means the plan is well formed.
func VerifyPlan(plan model.Plan, videoDuration, coverage float64) []string {
	var violations []string
	add := func(format string, args ...any) {
		violations = append(violations, fmt.Sprintf(format, args...))
	}

	if plan.HighlightCount != len(plan.Segments) {
		add("highlight_count %d does not match %d segments", plan.HighlightCount, len(plan.Segments))
	}
	if plan.VideoDuration != videoDuration {
		add("video_duration %.2f does not match submitted %.2f", plan.VideoDuration, videoDuration)
	}

	total := 0.0
	for i, s := range plan.Segments {
		total += s.EndTime - s.StartTime
		if s.StartTime < -boundsEpsilon || s.EndTime > videoDuration+boundsEpsilon {
			add("segment %d [%.2f, %.2f] is outside [0, %.2f]", i, s.StartTime, s.EndTime, videoDuration)
		}
		if s.EndTime <= s.StartTime {
			add("segment %d has non-positive length", i)
		}
		if i == 0 {
			continue
		}
		prev := plan.Segments[i-1]
		if s.StartTime < prev.StartTime {
			add("segment %d starts before segment %d", i, i-1)
		}
		if s.StartTime < prev.EndTime-boundsEpsilon {
			add("segment %d overlaps segment %d", i, i-1)
		}
	}
	if math.Abs(total-plan.TotalDuration) > boundsEpsilon*float64(len(plan.Segments)+1) {
		add("total_duration %.2f does not match segment sum %.2f", plan.TotalDuration, total)
	}

	if videoDuration > 0 && coverage > 0 {
		windowStart := math.Max(0, videoDuration-coverage)
		covered := false
		for _, s := range plan.Segments {
			if s.Intersects(windowStart, videoDuration) {
				covered = true
				break
			}
		}
		if !covered {
			add("no segment reaches the closing window [%.2f, %.2f]", windowStart, videoDuration)
		}
	}

	return violations
}

// verifyResults checks every finished plan and counts the invalid ones.
func verifyResults(ctx context.Context, config *Config, outcomes []Outcome, stats *Stats) error {
	log := logger.Get()
	log.Info(ctx, "verifying plans")

	invalid := 0
	for i := range outcomes {
		o := &outcomes[i]
		if o.Plan == nil {
			continue
		}
		o.Violations = VerifyPlan(*o.Plan, o.VideoDuration, config.Coverage)
		if len(o.Violations) == 0 {
			continue
		}
		invalid++
		if config.Verbose {
			log.Warn(ctx, "plan violates invariants",
				logger.String("videoID", o.VideoID),
				logger.Any("violations", o.Violations))
		}
	}
	stats.PlansInvalid = invalid

	if invalid > 0 {
		return fmt.Errorf("%d of %d plans violate invariants", invalid, stats.JobsDone)
	}
	log.Info(ctx, "all plans verified", logger.Int("plans", stats.JobsDone))
	return nil
}
