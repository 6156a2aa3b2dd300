package planload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/reelplan/internal/domain/types"
	"github.com/okian/reelplan/pkg/logger"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// submitJobs posts every video as an async job. outcomes[i] tracks videos[i].
func submitJobs(ctx context.Context, config *Config, videos []Video, outcomes []Outcome, stats *Stats) {
	log := logger.Get()
	log.Info(ctx, "submitting jobs", logger.Int("videos", len(videos)), logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/jobs"

	var submitted, accepted, rejected int64

	indexes := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for w := 0; w < config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				ack, err := submitSingleJob(ctx, client, url, videos[i].Input)
				atomic.AddInt64(&submitted, 1)
				if err != nil {
					atomic.AddInt64(&rejected, 1)
					outcomes[i].Status = StatusRejected
					outcomes[i].Error = err.Error()
					if config.Verbose {
						log.Warn(ctx, "job rejected", logger.String("videoID", videos[i].VideoID), logger.Error(err))
					}
					continue
				}
				atomic.AddInt64(&accepted, 1)
				outcomes[i].JobID = ack.ID
				outcomes[i].Status = ack.Status
			}
		}()
	}

	go func() {
		defer close(indexes)
		for i := range videos {
			select {
			case <-ctx.Done():
				return
			case indexes <- i:
			}
		}
	}()

	wg.Wait()

	stats.JobsSubmitted = int(submitted)
	stats.JobsAccepted = int(accepted)
	stats.JobsRejected = int(rejected)

	log.Info(ctx, "job submission completed",
		logger.Int("accepted", stats.JobsAccepted),
		logger.Int("rejected", stats.JobsRejected))
}

// submitSingleJob posts one payload and decodes the acknowledgement.
func submitSingleJob(ctx context.Context, client *HTTPClient, url string, in types.PlanInput) (JobAck, error) {
	resp, err := client.Post(ctx, url, in)
	if err != nil {
		return JobAck{}, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return JobAck{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusAccepted {
		return JobAck{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	var ack JobAck
	if err := json.Unmarshal(body, &ack); err != nil {
		return JobAck{}, fmt.Errorf("failed to decode acknowledgement: %w", err)
	}
	return ack, nil
}

// pollJobs waits for every accepted job to finish and records its plan.
func pollJobs(ctx context.Context, config *Config, outcomes []Outcome, stats *Stats) {
	log := logger.Get()
	log.Info(ctx, "polling jobs", logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)

	var done, failed, timedOut int64

	indexes := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for w := 0; w < config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				job, err := pollSingleJob(ctx, client, config, outcomes[i].JobID)
				switch {
				case err != nil:
					atomic.AddInt64(&timedOut, 1)
					outcomes[i].Status = StatusTimedOut
					outcomes[i].Error = err.Error()
				case job.Status == types.JobDone:
					atomic.AddInt64(&done, 1)
					outcomes[i].Status = StatusDone
					outcomes[i].Plan = job.Plan
				default:
					atomic.AddInt64(&failed, 1)
					outcomes[i].Status = StatusFailed
					outcomes[i].Error = job.Error
				}
			}
		}()
	}

	go func() {
		defer close(indexes)
		for i := range outcomes {
			if outcomes[i].JobID == "" {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case indexes <- i:
			}
		}
	}()

	wg.Wait()

	stats.JobsDone = int(done)
	stats.JobsFailed = int(failed)
	stats.JobsTimedOut = int(timedOut)

	log.Info(ctx, "polling completed",
		logger.Int("done", stats.JobsDone),
		logger.Int("failed", stats.JobsFailed),
		logger.Int("timedOut", stats.JobsTimedOut))
}

// pollSingleJob fetches a job until it is finished or the poll timeout passes.
func pollSingleJob(ctx context.Context, client *HTTPClient, config *Config, id string) (types.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, config.PollTimeout)
	defer cancel()

	url := config.BaseURL + "/jobs/" + id
	ticker := time.NewTicker(config.PollInterval)
	defer ticker.Stop()

	for {
		resp, err := client.Get(ctx, url)
		if err == nil {
			body, readErr := readResponseBody(resp)
			if readErr == nil && resp.StatusCode == http.StatusOK {
				var job types.Job
				if err := json.Unmarshal(body, &job); err == nil && job.Finished() {
					return job, nil
				}
			}
		}

		select {
		case <-ctx.Done():
			return types.Job{}, fmt.Errorf("job %s did not finish: %w", id, ctx.Err())
		case <-ticker.C:
		}
	}
}
