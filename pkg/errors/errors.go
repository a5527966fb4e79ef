package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryStorage        ErrorCategory = "storage"
	CategoryValidation     ErrorCategory = "validation"
	CategoryFiscal         ErrorCategory = "fiscal"
	CategoryReconstruction ErrorCategory = "reconstruction"
	CategoryConfiguration  ErrorCategory = "configuration"
	CategoryInternal       ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// Storage errors
	CodeEntityNotFound ErrorCode = "entity_not_found"
	CodeLoadFailed     ErrorCode = "load_failed"
	CodeSaveFailed     ErrorCode = "save_failed"
	CodeStoreCorrupted ErrorCode = "store_corrupted"

	// Validation errors
	CodeOutsideWindow ErrorCode = "outside_window"
	CodeMissingField  ErrorCode = "missing_field"
	CodeInvalidAmount ErrorCode = "invalid_amount"
	CodeOutOfRange    ErrorCode = "out_of_range"

	// Fiscal errors
	CodeSummaryFailed      ErrorCode = "summary_failed"
	CodeCarryForwardFailed ErrorCode = "carry_forward_failed"
	CodeInconsistentData   ErrorCode = "inconsistent_data"

	// Reconstruction errors
	CodePhaseFailed  ErrorCode = "phase_failed"
	CodeRunCancelled ErrorCode = "run_cancelled"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// ReconstructionError is the base error type for all application errors
type ReconstructionError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *ReconstructionError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *ReconstructionError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *ReconstructionError) GetExitCode() int {
	switch e.Category {
	case CategoryStorage:
		return 2
	case CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryFiscal, CategoryReconstruction, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *ReconstructionError) WithContext(key string, value interface{}) *ReconstructionError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *ReconstructionError) WithSuggestion(suggestion string) *ReconstructionError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ReconstructionError
func New(category ErrorCategory, code ErrorCode, message string) *ReconstructionError {
	return &ReconstructionError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with ReconstructionError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *ReconstructionError {
	if err == nil {
		return nil
	}

	return &ReconstructionError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Specific error constructors

// StorageError creates a store-related error
func StorageError(code ErrorCode, entity string, err error) *ReconstructionError {
	var message string
	var suggestion string

	switch code {
	case CodeEntityNotFound:
		message = fmt.Sprintf("%s not found", entity)
		suggestion = "check that the identifier is correct and the entity exists"
	case CodeLoadFailed:
		message = fmt.Sprintf("failed to load %s", entity)
		suggestion = "verify the data store is reachable and readable"
	case CodeSaveFailed:
		message = fmt.Sprintf("failed to save %s", entity)
		suggestion = "verify the data store is writable and retry"
	case CodeStoreCorrupted:
		message = fmt.Sprintf("stored data for %s appears corrupted", entity)
		suggestion = "inspect the underlying store and restore from a backup if needed"
	default:
		message = fmt.Sprintf("storage error for %s", entity)
		suggestion = "check the data store and try again"
	}

	var result *ReconstructionError
	if err != nil {
		result = Wrap(err, CategoryStorage, code, message)
	} else {
		result = New(CategoryStorage, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("entity", entity)
}

// ValidationError creates a validation-related error
func ValidationError(code ErrorCode, field string, value interface{}, err error) *ReconstructionError {
	var message string
	var suggestion string

	switch code {
	case CodeOutsideWindow:
		message = fmt.Sprintf("date in field '%s' is outside the reconstruction window: %v", field, value)
		suggestion = "only dates between ten years back and one year forward are eligible"
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
		suggestion = "provide a value for this required field"
	case CodeInvalidAmount:
		message = fmt.Sprintf("invalid amount in field '%s': %v", field, value)
		suggestion = "amounts must be positive decimal numbers (e.g. '850.00')"
	case CodeOutOfRange:
		message = fmt.Sprintf("value out of range in field '%s': %v", field, value)
		suggestion = "ensure the value is within the acceptable range"
	default:
		message = fmt.Sprintf("validation error in field '%s': %v", field, value)
		suggestion = "check the field value and format"
	}

	var result *ReconstructionError
	if err != nil {
		result = Wrap(err, CategoryValidation, code, message)
	} else {
		result = New(CategoryValidation, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// FiscalError creates an error from the fiscal computation services
func FiscalError(code ErrorCode, propertyID string, year int, err error) *ReconstructionError {
	var message string
	var suggestion string

	switch code {
	case CodeSummaryFailed:
		message = fmt.Sprintf("fiscal summary recomputation failed for property %s, year %d", propertyID, year)
		suggestion = "check the property's contracts and documents for that year"
	case CodeCarryForwardFailed:
		message = fmt.Sprintf("carryforward recomputation failed for property %s", propertyID)
		suggestion = "ensure the property's fiscal summaries exist and are well formed"
	case CodeInconsistentData:
		message = fmt.Sprintf("inconsistent fiscal data for property %s", propertyID)
		suggestion = "rerun the reconstruction to rebuild summaries from current data"
	default:
		message = fmt.Sprintf("fiscal computation error for property %s", propertyID)
		suggestion = "review the property's financial data"
	}

	var result *ReconstructionError
	if err != nil {
		result = Wrap(err, CategoryFiscal, code, message)
	} else {
		result = New(CategoryFiscal, code, message)
	}

	result = result.
		WithSuggestion(suggestion).
		WithContext("property_id", propertyID)
	if year != 0 {
		result = result.WithContext("year", year)
	}
	return result
}

// ReconstructionOpError creates an error from the reconstruction pipeline itself
func ReconstructionOpError(code ErrorCode, phase string, err error) *ReconstructionError {
	var message string
	var suggestion string

	switch code {
	case CodePhaseFailed:
		message = fmt.Sprintf("reconstruction phase '%s' failed", phase)
		suggestion = "check the error details and rerun; completed phases are idempotent"
	case CodeRunCancelled:
		message = fmt.Sprintf("reconstruction cancelled during phase '%s'", phase)
		suggestion = "already-written fiscal summaries remain valid; rerun to finish"
	default:
		message = fmt.Sprintf("reconstruction error during phase '%s'", phase)
		suggestion = "review the run's error list"
	}

	var result *ReconstructionError
	if err != nil {
		result = Wrap(err, CategoryReconstruction, code, message)
	} else {
		result = New(CategoryReconstruction, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("phase", phase)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *ReconstructionError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the configuration documentation for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this configuration setting or use a config file"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	var result *ReconstructionError
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	} else {
		result = New(CategoryConfiguration, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// InternalError creates an internal error
func InternalError(code ErrorCode, operation string, err error) *ReconstructionError {
	message := fmt.Sprintf("unexpected error during %s", operation)
	suggestion := "this is likely a bug - please report it with the error details"

	var result *ReconstructionError
	if err != nil {
		result = Wrap(err, CategoryInternal, code, message)
	} else {
		result = New(CategoryInternal, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// ErrorSummary provides a summary of multiple errors
type ErrorSummary struct {
	Total      int                    `json:"total"`
	ByCategory map[ErrorCategory]int  `json:"by_category"`
	ByCode     map[ErrorCode]int      `json:"by_code"`
	Errors     []*ReconstructionError `json:"errors"`
}

// NewErrorSummary creates a new error summary
func NewErrorSummary(errs []*ReconstructionError) *ErrorSummary {
	summary := &ErrorSummary{
		Total:      len(errs),
		ByCategory: make(map[ErrorCategory]int),
		ByCode:     make(map[ErrorCode]int),
		Errors:     errs,
	}
	if errs == nil {
		summary.Errors = []*ReconstructionError{}
	}

	for _, err := range errs {
		summary.ByCategory[err.Category]++
		summary.ByCode[err.Code]++
	}

	return summary
}

// Error returns a formatted error message for the summary
func (es *ErrorSummary) Error() string {
	if es.Total == 0 {
		return "no errors"
	}

	if es.Total == 1 {
		return es.Errors[0].Error()
	}

	var categories []string
	for category, count := range es.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %d", category, count))
	}

	return fmt.Sprintf("%d errors occurred (%s)", es.Total, strings.Join(categories, ", "))
}

// HasCategory checks if the summary contains errors of the given category
func (es *ErrorSummary) HasCategory(category ErrorCategory) bool {
	return es.ByCategory[category] > 0
}

// GetExitCode returns the highest priority exit code from all errors
func (es *ErrorSummary) GetExitCode() int {
	if es.Total == 0 {
		return 0
	}

	maxCode := 1
	for _, err := range es.Errors {
		if code := err.GetExitCode(); code > maxCode {
			maxCode = code
		}
	}

	return maxCode
}

// Utility functions

// IsReconstructionError checks if an error is a ReconstructionError
func IsReconstructionError(err error) bool {
	_, ok := err.(*ReconstructionError)
	return ok
}

// AsReconstructionError extracts a ReconstructionError from an error chain
func AsReconstructionError(err error) (*ReconstructionError, bool) {
	var reconstructionErr *ReconstructionError
	if errors.As(err, &reconstructionErr) {
		return reconstructionErr, true
	}
	return nil, false
}

// WrapIfNeeded wraps an error if it's not already a ReconstructionError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *ReconstructionError {
	if err == nil {
		return nil
	}

	if reconstructionErr, ok := AsReconstructionError(err); ok {
		return reconstructionErr
	}

	return Wrap(err, category, code, message)
}
