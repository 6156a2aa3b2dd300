package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/reelplan/internal/planload"
)

// Default configuration constants.
const (
	defaultNumVideos   = 1000
	defaultMinDuration = 10.0
	defaultMaxDuration = 600.0
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultRunTimeout  = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numVideos   = flag.Int("videos", defaultNumVideos, "Number of videos to generate and plan")
		minDuration = flag.Float64("min-duration", defaultMinDuration, "Shortest generated video in seconds")
		maxDuration = flag.Float64("max-duration", defaultMaxDuration, "Longest generated video in seconds")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		pollTimeout = flag.Duration("poll-timeout", planload.DefaultPollTimeout, "Give up on a job after this long")
		outputFile  = flag.String("output", "", "Report file (default: planload_report_TIMESTAMP.<format>)")
		format      = flag.String("format", planload.FormatJSON, "Report format: json or yaml")
		logFile     = flag.String("log", "", "Log file for run output (default: planload_log_TIMESTAMP.log)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		planload.ShowHelp()
		return
	}

	if err := planload.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &planload.Config{
		BaseURL:     *baseURL,
		NumVideos:   *numVideos,
		MinDuration: *minDuration,
		MaxDuration: *maxDuration,
		Workers:     *workers,
		Timeout:     *timeout,
		PollTimeout: *pollTimeout,
		OutputFile:  *outputFile,
		Format:      *format,
		LogFile:     *logFile,
		Verbose:     *verbose,
	}

	if err := planload.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Load run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
