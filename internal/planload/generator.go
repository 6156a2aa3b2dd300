package planload

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"

	"github.com/google/uuid"

	"github.com/okian/reelplan/internal/domain/ingest"
	"github.com/okian/reelplan/internal/domain/types"
	"github.com/okian/reelplan/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	eventsPerMinute    = 6
	playsPerMinute     = 2
	shotEverySeconds   = 20
	maxCrowdReaction   = 10
	maxPlayLength      = 12.0
	minPlayLength      = 2.0
)

// Kinds and labels mixed into generated payloads.
var (
	eventKinds = []string{"goal", "dunk", "shot", "save", "tackle", "pass", "celebration", "replay", "timeout"}
	playLabels = []string{"three pointer made", "layup", "missed shot", "fast break", "free throw", "turnover", "touchdown"}
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random int in [0, n).
func getRandomInt(n int) int {
	if n <= 1 {
		return 0
	}
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

func pick(values []string) string {
	return values[getRandomInt(len(values))]
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}

// generateVideos creates config.NumVideos payloads using a pool of generators.
func generateVideos(ctx context.Context, config *Config, stats *Stats) ([]Video, error) {
	logger.Get().Info(ctx, "generating synthetic videos", logger.Int("numVideos", config.NumVideos))

	videos := make([]Video, config.NumVideos)
	if config.NumVideos == 0 {
		return videos, nil
	}

	type videoResult struct {
		index int
		video Video
		err   error
	}

	resultChan := make(chan videoResult, config.NumVideos)

	workerCount := max(1, min(config.Workers, config.NumVideos))
	videosPerWorker := config.NumVideos / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * videosPerWorker
		end := start + videosPerWorker
		if worker == workerCount-1 {
			end = config.NumVideos
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- videoResult{index: i, err: ctx.Err()}
					return
				default:
					duration := config.MinDuration + getRandomFloat()*(config.MaxDuration-config.MinDuration)
					resultChan <- videoResult{index: i, video: generateVideo(round(duration))}
				}
			}
		}(start, end)
	}

	for i := 0; i < config.NumVideos; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during video generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate video %d: %w", result.index, result.err)
			}
			videos[result.index] = result.video
		}
	}

	stats.VideosGenerated = len(videos)
	logger.Get().Info(ctx, "generated videos successfully", logger.Int("count", len(videos)))

	return videos, nil
}

// generateVideo builds one payload for a video of the given duration.
// Some fields are left out on purpose so the service sees sparse input.
func generateVideo(duration float64) Video {
	minutes := duration / 60
	payload := ingest.Payload{VideoDuration: duration}

	for i := 0; i < int(math.Ceil(minutes*eventsPerMinute)); i++ {
		e := ingest.VisionEvent{
			Timestamp: round(getRandomFloat() * duration),
			Kind:      pick(eventKinds),
		}
		if getRandomInt(2) == 0 {
			e.IsSuccessful = boolPtr(getRandomInt(3) > 0)
		}
		if getRandomInt(3) > 0 {
			crowd := getRandomInt(maxCrowdReaction + 1)
			e.CrowdReaction = &crowd
		}
		if getRandomInt(2) == 0 {
			e.HasAction = boolPtr(true)
		}
		if getRandomInt(4) == 0 {
			conf := round(getRandomFloat())
			e.Confidence = &conf
		}
		payload.Events = append(payload.Events, e)
	}

	for i := 0; i < int(math.Ceil(minutes*playsPerMinute)); i++ {
		start := round(getRandomFloat() * duration)
		length := minPlayLength + getRandomFloat()*(maxPlayLength-minPlayLength)
		conf := round(0.3 + getRandomFloat()*0.7)
		payload.Plays = append(payload.Plays, ingest.Play{
			StartTime:  start,
			EndTime:    round(math.Min(duration, start+length)),
			Label:      pick(playLabels),
			Confidence: &conf,
		})
	}

	for t := float64(shotEverySeconds); t < duration; t += shotEverySeconds {
		if getRandomInt(2) == 0 {
			continue
		}
		payload.KeyFrames = append(payload.KeyFrames, ingest.KeyFrame{
			StartTime: t,
			EndTime:   round(math.Min(duration, t+1+getRandomFloat()*3)),
		})
	}

	return Video{
		VideoID: uuid.New().String(),
		Input:   types.PlanInput{Payload: payload},
	}
}

func boolPtr(v bool) *bool { return &v }
