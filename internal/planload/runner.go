package planload

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/reelplan/pkg/logger"
)

// Run executes a complete load run: generate, submit, poll, verify, report.
func Run(ctx context.Context, config *Config) error {
	applyDefaults(config)
	if config.MaxDuration < config.MinDuration || config.MinDuration <= 0 {
		return fmt.Errorf("invalid duration range [%.2f, %.2f]", config.MinDuration, config.MaxDuration)
	}

	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting reelplan load run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("videos", config.NumVideos),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("format", config.Format),
		logger.Bool("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate payloads
	videos, err := generateVideos(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("video generation failed: %w", err)
	}

	outcomes := make([]Outcome, len(videos))
	for i, v := range videos {
		outcomes[i] = Outcome{VideoID: v.VideoID, VideoDuration: v.Input.VideoDuration}
	}

	// Step 3: Submit jobs concurrently
	submitJobs(ctx, config, videos, outcomes, stats)

	// Step 4: Poll until every job finished
	pollJobs(ctx, config, outcomes, stats)

	// Step 5: Verify plans
	verifyErr := verifyResults(ctx, config, outcomes, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	// Step 6: Save report
	report := Report{BaseURL: config.BaseURL, Stats: *stats, Outcomes: outcomes}
	if err := saveReport(ctx, config, report); err != nil {
		logger.Get().Warn(ctx, "failed to save report", logger.Error(err))
	}

	displayFinalStats(stats)

	if verifyErr != nil {
		return fmt.Errorf("result verification failed: %w", verifyErr)
	}
	if stats.JobsRejected+stats.JobsFailed+stats.JobsTimedOut > 0 {
		return fmt.Errorf("%d rejected, %d failed, %d timed out",
			stats.JobsRejected, stats.JobsFailed, stats.JobsTimedOut)
	}

	logger.Get().Info(ctx, "load run completed successfully")
	return nil
}

func applyDefaults(config *Config) {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.PollTimeout <= 0 {
		config.PollTimeout = DefaultPollTimeout
	}
	if config.Coverage <= 0 {
		config.Coverage = DefaultCoverage
	}
	if config.Format == "" {
		config.Format = FormatJSON
	}
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return fmt.Errorf("failed to read health response: %w", err)
	}

	// The service answers with its Prometheus metrics.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(stats *Stats) {
	var successRate, plansPerSecond float64

	if stats.JobsSubmitted > 0 {
		successRate = float64(stats.JobsDone) / float64(stats.JobsSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		plansPerSecond = float64(stats.JobsDone) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("videosGenerated", stats.VideosGenerated),
		logger.Int("jobsSubmitted", stats.JobsSubmitted),
		logger.Int("jobsAccepted", stats.JobsAccepted),
		logger.Int("jobsRejected", stats.JobsRejected),
		logger.Int("jobsDone", stats.JobsDone),
		logger.Int("jobsFailed", stats.JobsFailed),
		logger.Int("jobsTimedOut", stats.JobsTimedOut),
		logger.Int("plansInvalid", stats.PlansInvalid),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("plansPerSecond", plansPerSecond))
}
