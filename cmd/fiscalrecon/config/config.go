// Package config builds component configurations from CLI flags.
package config

import (
	"fiscal-reconstruction-service/internal/reporter"
	"fiscal-reconstruction-service/pkg/logger"
)

// CreateLoggerConfig creates a logger configuration for CLI usage.
// Logs go to stderr so report output on stdout stays clean.
func CreateLoggerConfig(verbose bool) *logger.Config {
	config := logger.DefaultConfig()
	config.Output = logger.StderrOutput
	config.Format = logger.TextFormat

	if verbose {
		config.Level = logger.DebugLevel
	} else {
		config.Level = logger.WarnLevel
	}

	return config
}

// CreateReportConfig creates a report configuration from the output format flag
func CreateReportConfig(format string) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()

	switch format {
	case "console":
		config.Format = reporter.FormatConsole
	case "json":
		config.Format = reporter.FormatJSON
	case "csv":
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
	}

	return config
}
