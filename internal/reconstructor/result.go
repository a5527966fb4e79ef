package reconstructor

import (
	"fmt"
	"time"
)

// ProcessingResult is the outcome of one reconstruction run, for a
// single property or an entire batch. Success holds exactly when the
// error list is empty; partial counters stay meaningful on failure.
type ProcessingResult struct {
	Success                   bool     `json:"success"`
	ContractsProcessed        int      `json:"contractsProcessed"`
	DocumentsProcessed        int      `json:"documentsProcessed"`
	FiscalSummariesUpdated    int      `json:"fiscalSummariesUpdated"`
	CarryForwardsRecalculated int      `json:"carryForwardsRecalculated"`
	Errors                    []string `json:"errors"`
	ProcessingTimeMs          int64    `json:"processingTimeMs"`
}

// NewProcessingResult creates an empty result
func NewProcessingResult() *ProcessingResult {
	return &ProcessingResult{Errors: []string{}}
}

// AddError appends an error message to the result
func (r *ProcessingResult) AddError(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// finalize derives Success from the error list and records elapsed time
func (r *ProcessingResult) finalize(start time.Time) *ProcessingResult {
	r.Success = len(r.Errors) == 0
	r.ProcessingTimeMs = time.Since(start).Milliseconds()
	return r
}

// Merge folds another result into this one: counters are summed and
// error lists concatenated. Success is recomputed from the merged list;
// the caller owns elapsed-time accounting.
func (r *ProcessingResult) Merge(other *ProcessingResult) {
	if other == nil {
		return
	}

	r.ContractsProcessed += other.ContractsProcessed
	r.DocumentsProcessed += other.DocumentsProcessed
	r.FiscalSummariesUpdated += other.FiscalSummariesUpdated
	r.CarryForwardsRecalculated += other.CarryForwardsRecalculated
	r.Errors = append(r.Errors, other.Errors...)
	r.Success = len(r.Errors) == 0
}

// MergeTagged folds another result in like Merge, prefixing each merged
// error with the originating property so batch errors stay attributable.
func (r *ProcessingResult) MergeTagged(propertyID string, other *ProcessingResult) {
	if other == nil {
		return
	}

	r.ContractsProcessed += other.ContractsProcessed
	r.DocumentsProcessed += other.DocumentsProcessed
	r.FiscalSummariesUpdated += other.FiscalSummariesUpdated
	r.CarryForwardsRecalculated += other.CarryForwardsRecalculated
	for _, e := range other.Errors {
		r.Errors = append(r.Errors, fmt.Sprintf("property %s: %s", propertyID, e))
	}
	r.Success = len(r.Errors) == 0
}

// String returns a human-readable summary of the result
func (r *ProcessingResult) String() string {
	status := "ok"
	if !r.Success {
		status = fmt.Sprintf("failed (%d errors)", len(r.Errors))
	}
	return fmt.Sprintf("ProcessingResult{%s, contracts: %d, documents: %d, summaries: %d, carryforwards: %d, %dms}",
		status, r.ContractsProcessed, r.DocumentsProcessed,
		r.FiscalSummariesUpdated, r.CarryForwardsRecalculated, r.ProcessingTimeMs)
}
