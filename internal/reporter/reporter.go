// Package reporter renders reconstruction results for human and
// programmatic consumption.
//
// Supported output formats:
//   - Console: human-readable summary for terminal display
//   - JSON: structured data for programmatic consumption
//   - CSV: row-per-metric format for spreadsheet applications
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"fiscal-reconstruction-service/internal/reconstructor"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// Detail options
	IncludeErrors bool `json:"include_errors"`
	MaxErrors     int  `json:"max_errors"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:        FormatConsole,
		IncludeErrors: true,
		MaxErrors:     50,
		CSVDelimiter:  ',',
		CSVHeaders:    true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}

	if c.MaxErrors < 0 {
		return fmt.Errorf("max errors cannot be negative, got %d", c.MaxErrors)
	}

	return nil
}

// ReportGenerator renders ProcessingResult reports in various formats
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{config: config}, nil
}

// GenerateReport writes a report of the reconstruction result to the writer
func (rg *ReportGenerator) GenerateReport(result *reconstructor.ProcessingResult, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("processing result cannot be nil")
	}

	switch rg.config.Format {
	case FormatJSON:
		return rg.generateJSON(result, writer)
	case FormatCSV:
		return rg.generateCSV(result, writer)
	default:
		return rg.generateConsole(result, writer)
	}
}

func (rg *ReportGenerator) generateConsole(result *reconstructor.ProcessingResult, writer io.Writer) error {
	var b strings.Builder

	b.WriteString("Historical Fiscal Reconstruction Report\n")
	b.WriteString(strings.Repeat("=", 40) + "\n\n")

	status := "SUCCESS"
	if !result.Success {
		status = "PARTIAL FAILURE"
		if result.ContractsProcessed == 0 && result.DocumentsProcessed == 0 &&
			result.FiscalSummariesUpdated == 0 && result.CarryForwardsRecalculated == 0 {
			status = "FAILURE"
		}
	}
	b.WriteString(fmt.Sprintf("Status:                     %s\n", status))
	b.WriteString(fmt.Sprintf("Contracts processed:        %d\n", result.ContractsProcessed))
	b.WriteString(fmt.Sprintf("Documents processed:        %d\n", result.DocumentsProcessed))
	b.WriteString(fmt.Sprintf("Fiscal summaries updated:   %d\n", result.FiscalSummariesUpdated))
	b.WriteString(fmt.Sprintf("Carryforward recalculations: %d\n", result.CarryForwardsRecalculated))
	b.WriteString(fmt.Sprintf("Elapsed:                    %s\n", (time.Duration(result.ProcessingTimeMs) * time.Millisecond).String()))

	if rg.config.IncludeErrors && len(result.Errors) > 0 {
		b.WriteString(fmt.Sprintf("\nErrors (%d):\n", len(result.Errors)))
		shown := result.Errors
		if rg.config.MaxErrors > 0 && len(shown) > rg.config.MaxErrors {
			shown = shown[:rg.config.MaxErrors]
		}
		for i, e := range shown {
			b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, e))
		}
		if len(result.Errors) > len(shown) {
			b.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Errors)-len(shown)))
		}
	}

	_, err := io.WriteString(writer, b.String())
	return err
}

func (rg *ReportGenerator) generateJSON(result *reconstructor.ProcessingResult, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func (rg *ReportGenerator) generateCSV(result *reconstructor.ProcessingResult, writer io.Writer) error {
	w := csv.NewWriter(writer)
	w.Comma = rg.config.CSVDelimiter

	if rg.config.CSVHeaders {
		if err := w.Write([]string{"metric", "value"}); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	rows := [][]string{
		{"success", strconv.FormatBool(result.Success)},
		{"contracts_processed", strconv.Itoa(result.ContractsProcessed)},
		{"documents_processed", strconv.Itoa(result.DocumentsProcessed)},
		{"fiscal_summaries_updated", strconv.Itoa(result.FiscalSummariesUpdated)},
		{"carry_forwards_recalculated", strconv.Itoa(result.CarryForwardsRecalculated)},
		{"errors", strconv.Itoa(len(result.Errors))},
		{"processing_time_ms", strconv.FormatInt(result.ProcessingTimeMs, 10)},
	}

	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	if rg.config.IncludeErrors {
		for i, e := range result.Errors {
			if err := w.Write([]string{fmt.Sprintf("error_%d", i+1), e}); err != nil {
				return fmt.Errorf("failed to write CSV error row: %w", err)
			}
		}
	}

	w.Flush()
	return w.Error()
}
