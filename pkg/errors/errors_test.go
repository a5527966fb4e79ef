package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestNewError(t *testing.T) {
	err := New(CategoryStorage, CodeLoadFailed, "failed to load contracts")

	if err.Category != CategoryStorage {
		t.Errorf("Category = %s, want %s", err.Category, CategoryStorage)
	}
	if err.Code != CodeLoadFailed {
		t.Errorf("Code = %s, want %s", err.Code, CodeLoadFailed)
	}
	if err.Error() != "failed to load contracts" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.StackTrace == nil {
		t.Error("expected a stack trace")
	}
}

func TestErrorWithSuggestion(t *testing.T) {
	err := New(CategoryValidation, CodeMissingField, "amount is missing").
		WithSuggestion("extract the amount from the document")

	msg := err.Error()
	if !strings.Contains(msg, "amount is missing") {
		t.Errorf("message lost: %q", msg)
	}
	if !strings.Contains(msg, "suggestion: extract the amount") {
		t.Errorf("suggestion missing: %q", msg)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk on fire")
	err := Wrap(cause, CategoryStorage, CodeSaveFailed, "failed to save summary")

	if !errors.Is(err, cause) {
		t.Error("wrapped error should match its cause with errors.Is")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, CategoryStorage, CodeSaveFailed, "x"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		want     int
	}{
		{CategoryStorage, 2},
		{CategoryValidation, 3},
		{CategoryConfiguration, 4},
		{CategoryFiscal, 5},
		{CategoryReconstruction, 5},
		{CategoryInternal, 5},
		{ErrorCategory("weird"), 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			err := New(tt.category, CodeUnexpectedError, "test")
			if got := err.GetExitCode(); got != tt.want {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStorageError(t *testing.T) {
	err := StorageError(CodeEntityNotFound, "property", nil)

	if err.Category != CategoryStorage {
		t.Errorf("Category = %s, want storage", err.Category)
	}
	if !strings.Contains(err.Message, "property not found") {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Context["entity"] != "property" {
		t.Errorf("entity context = %v", err.Context["entity"])
	}
	if err.Suggestion == "" {
		t.Error("expected a suggestion")
	}
}

func TestFiscalError(t *testing.T) {
	t.Run("summary failure carries year", func(t *testing.T) {
		err := FiscalError(CodeSummaryFailed, "p1", 2023, nil)
		if !strings.Contains(err.Message, "property p1") || !strings.Contains(err.Message, "2023") {
			t.Errorf("Message = %q", err.Message)
		}
		if err.Context["year"] != 2023 {
			t.Errorf("year context = %v", err.Context["year"])
		}
	})

	t.Run("carryforward failure omits zero year", func(t *testing.T) {
		err := FiscalError(CodeCarryForwardFailed, "p1", 0, nil)
		if _, ok := err.Context["year"]; ok {
			t.Error("zero year should not appear in context")
		}
	})
}

func TestValidationError(t *testing.T) {
	err := ValidationError(CodeInvalidAmount, "amount", "-50", nil)

	if err.Category != CategoryValidation {
		t.Errorf("Category = %s, want validation", err.Category)
	}
	if err.Context["field"] != "amount" || err.Context["value"] != "-50" {
		t.Errorf("context = %v", err.Context)
	}
}

func TestAsReconstructionError(t *testing.T) {
	inner := FiscalError(CodeSummaryFailed, "p1", 2023, nil)

	t.Run("direct", func(t *testing.T) {
		got, ok := AsReconstructionError(inner)
		if !ok || got != inner {
			t.Error("failed to extract direct ReconstructionError")
		}
	})

	t.Run("plain error", func(t *testing.T) {
		if _, ok := AsReconstructionError(errors.New("plain")); ok {
			t.Error("plain error should not extract")
		}
	})

	t.Run("nil", func(t *testing.T) {
		if _, ok := AsReconstructionError(nil); ok {
			t.Error("nil should not extract")
		}
	})
}

func TestWrapIfNeeded(t *testing.T) {
	original := StorageError(CodeLoadFailed, "contracts", nil)
	if got := WrapIfNeeded(original, CategoryInternal, CodeUnexpectedError, "x"); got != original {
		t.Error("existing ReconstructionError should pass through unchanged")
	}

	plain := errors.New("plain")
	wrapped := WrapIfNeeded(plain, CategoryInternal, CodeUnexpectedError, "wrapped")
	if wrapped.Category != CategoryInternal || wrapped.Cause != plain {
		t.Errorf("unexpected wrap: %+v", wrapped)
	}

	if WrapIfNeeded(nil, CategoryInternal, CodeUnexpectedError, "x") != nil {
		t.Error("nil should stay nil")
	}
}

func TestErrorSummary(t *testing.T) {
	errs := []*ReconstructionError{
		StorageError(CodeLoadFailed, "contracts", nil),
		ValidationError(CodeMissingField, "amount", nil, nil),
		FiscalError(CodeSummaryFailed, "p1", 2023, nil),
	}

	summary := NewErrorSummary(errs)

	if summary.Total != 3 {
		t.Errorf("Total = %d, want 3", summary.Total)
	}
	if !summary.HasCategory(CategoryStorage) || !summary.HasCategory(CategoryFiscal) {
		t.Error("missing expected categories")
	}
	if summary.HasCategory(CategoryConfiguration) {
		t.Error("unexpected configuration category")
	}
	// Fiscal carries the highest exit code of the three
	if got := summary.GetExitCode(); got != 5 {
		t.Errorf("GetExitCode() = %d, want 5", got)
	}

	msg := summary.Error()
	if !strings.Contains(msg, "3 errors occurred") {
		t.Errorf("summary message = %q", msg)
	}
}

func TestErrorSummaryEmpty(t *testing.T) {
	summary := NewErrorSummary(nil)

	if summary.Total != 0 {
		t.Errorf("Total = %d, want 0", summary.Total)
	}
	if summary.Error() != "no errors" {
		t.Errorf("Error() = %q", summary.Error())
	}
	if summary.GetExitCode() != 0 {
		t.Errorf("GetExitCode() = %d, want 0", summary.GetExitCode())
	}
}

func TestErrorSummarySingle(t *testing.T) {
	err := StorageError(CodeLoadFailed, "documents", nil)
	summary := NewErrorSummary([]*ReconstructionError{err})

	if summary.Error() != err.Error() {
		t.Errorf("single-error summary should pass through the message, got %q", summary.Error())
	}
	if summary.GetExitCode() != 2 {
		t.Errorf("GetExitCode() = %d, want 2", summary.GetExitCode())
	}
}
