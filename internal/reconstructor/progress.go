package reconstructor

import "fmt"

// ProcessingProgress is a point-in-time snapshot of a reconstruction
// run, emitted at phase boundaries. It has no identity beyond the
// callback invocation and is never persisted.
type ProcessingProgress struct {
	Phase      string  `json:"phase"`
	Current    int     `json:"current"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Details    string  `json:"details,omitempty"`
}

// String returns a human-readable representation of the progress
func (p ProcessingProgress) String() string {
	if p.Details != "" {
		return fmt.Sprintf("[%d/%d] %s (%.0f%%) - %s", p.Current, p.Total, p.Phase, p.Percentage, p.Details)
	}
	return fmt.Sprintf("[%d/%d] %s (%.0f%%)", p.Current, p.Total, p.Phase, p.Percentage)
}

// ProgressFunc receives progress snapshots synchronously at phase
// boundaries. Implementations are expected to use it purely for UI
// feedback or logging and must not block.
type ProgressFunc func(ProcessingProgress)

// emit invokes the callback, tolerating nil callbacks and recovering
// from panicking ones so a misbehaving UI hook cannot break a run.
func emit(onProgress ProgressFunc, progress ProcessingProgress) {
	if onProgress == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	onProgress(progress)
}
