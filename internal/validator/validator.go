// Package validator checks documents and contracts against the historical
// window policy and basic structural invariants before they are eligible
// for reconstruction.
//
// Validation is pure: every violated rule produces one error string and
// nothing is ever raised. Callers decide whether to skip, log, or abort;
// the reconstructor's policy is to log and skip the offending entity.
package validator

import (
	"fmt"
	"strings"

	"fiscal-reconstruction-service/internal/models"
	"fiscal-reconstruction-service/internal/window"
)

// Result carries the outcome of validating a single entity
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

func newResult(errs []string) Result {
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// EntityValidator validates documents and contracts against the window
// policy. It holds no mutable state and is safe for concurrent use.
type EntityValidator struct {
	policy *window.Policy
}

// NewEntityValidator creates an EntityValidator backed by the given
// window policy.
func NewEntityValidator(policy *window.Policy) *EntityValidator {
	return &EntityValidator{policy: policy}
}

// ValidateDocument checks a document for reconstruction eligibility.
// One error per violated rule; never panics.
func (v *EntityValidator) ValidateDocument(doc *models.Document) Result {
	var errs []string

	if doc == nil {
		return newResult([]string{"document is nil"})
	}

	if doc.FinancialData == nil || doc.FinancialData.IssueDate == nil {
		errs = append(errs, "issue date is missing")
	} else if !v.policy.InWindow(*doc.FinancialData.IssueDate) {
		errs = append(errs, fmt.Sprintf("issue date %s is outside the reconstruction window (earliest %s)",
			doc.FinancialData.IssueDate.Format("2006-01-02"),
			v.policy.MinimumDate().Format("2006-01-02")))
	}

	if doc.FinancialData == nil || doc.FinancialData.Amount == nil {
		errs = append(errs, "amount is missing")
	} else if !doc.FinancialData.Amount.IsPositive() {
		errs = append(errs, fmt.Sprintf("amount must be positive, got %s", doc.FinancialData.Amount.String()))
	}

	if strings.TrimSpace(doc.Metadata.EntityType) == "" || strings.TrimSpace(doc.Metadata.EntityID) == "" {
		errs = append(errs, "document is not attributable to a property (entity type or entity ID missing)")
	}

	if doc.AEATClassification != nil && doc.AEATClassification.ExerciseYear != nil {
		if year := *doc.AEATClassification.ExerciseYear; !v.policy.ExerciseYearInRange(year) {
			errs = append(errs, fmt.Sprintf("exercise year %d is outside the allowed range [%d, %d]",
				year, v.policy.CurrentYear()-window.RetroactiveYears, v.policy.CurrentYear()+window.ForwardYears))
		}
	}

	return newResult(errs)
}

// ValidateContract checks a contract for reconstruction eligibility.
// One error per violated rule; never panics.
func (v *EntityValidator) ValidateContract(contract *models.Contract) Result {
	var errs []string

	if contract == nil {
		return newResult([]string{"contract is nil"})
	}

	if contract.StartDate.IsZero() {
		errs = append(errs, "start date is missing")
	} else if !v.policy.InWindow(contract.StartDate) {
		errs = append(errs, fmt.Sprintf("start date %s is outside the reconstruction window (earliest %s)",
			contract.StartDate.Format("2006-01-02"),
			v.policy.MinimumDate().Format("2006-01-02")))
	}

	if contract.EndDate != nil && !v.policy.InWindow(*contract.EndDate) {
		errs = append(errs, fmt.Sprintf("end date %s is outside the reconstruction window",
			contract.EndDate.Format("2006-01-02")))
	}

	if !contract.MonthlyRent.IsPositive() {
		errs = append(errs, fmt.Sprintf("monthly rent must be positive, got %s", contract.MonthlyRent.String()))
	}

	if strings.TrimSpace(contract.PropertyID) == "" {
		errs = append(errs, "property ID is missing")
	}

	if contract.PaymentDay < 1 || contract.PaymentDay > 31 {
		errs = append(errs, fmt.Sprintf("payment day must be between 1 and 31, got %d", contract.PaymentDay))
	}

	return newResult(errs)
}
