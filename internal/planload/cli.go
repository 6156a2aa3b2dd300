package planload

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/reelplan/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging sends structured logs to both stdout and a file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "planload_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithOutput(io.MultiWriter(os.Stdout, file))); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the load tool.
func ShowHelp() {
	os.Stdout.WriteString(`Reelplan Load Tool
==================

Generates synthetic detector payloads, submits them to a running reelplan
service as async jobs, waits for the plans and checks that every plan is
chronological, non-overlapping, inside the video and covers its ending.

Usage:
  go run ./cmd/planload [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -videos int
        Number of videos to generate and plan (default 1000)
  -min-duration float
        Shortest generated video in seconds (default 10)
  -max-duration float
        Longest generated video in seconds (default 600)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -poll-timeout duration
        Give up on a job after this long (default 30s)
  -output string
        Report file (default: planload_report_TIMESTAMP.<format>)
  -format string
        Report format, json or yaml (default "json")
  -log string
        Log file for run output (default: planload_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Plan 5000 videos against a local service
  go run ./cmd/planload -videos 5000 -workers 16

  # Write a YAML report
  go run ./cmd/planload -format yaml -output reports/run.yaml
`)
}
