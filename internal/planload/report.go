package planload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/reelplan/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	reportPermission    = 0600
)

// WriteReport encodes the report in the given format.
func WriteReport(w io.Writer, format string, report Report) error {
	switch strings.ToLower(format) {
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode yaml report: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode json report: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// reportFilename returns the configured file or a timestamped default.
func reportFilename(config *Config) string {
	if config.OutputFile != "" {
		return config.OutputFile
	}
	ext := FormatJSON
	if strings.EqualFold(config.Format, FormatYAML) {
		ext = FormatYAML
	}
	return "planload_report_" + time.Now().Format("20060102_150405") + "." + ext
}

// saveReport writes the report to disk.
func saveReport(ctx context.Context, config *Config, report Report) error {
	filename := reportFilename(config)

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, reportPermission)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	if err := WriteReport(file, config.Format, report); err != nil {
		return err
	}

	logger.Get().Info(ctx, "report saved to file", logger.String("filename", filename))
	return nil
}
