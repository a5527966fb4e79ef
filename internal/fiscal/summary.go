// Package fiscal implements the tax computation collaborators of the
// reconstruction engine: per-year fiscal summary recomputation and
// multi-year loss carryforward chain recomputation under the AEAT
// regulatory model.
//
// Both services recompute from current store data and overwrite whatever
// was persisted before, so a reconstruction run can be repeated over the
// same historical window without accumulating state.
package fiscal

import (
	"context"

	"fiscal-reconstruction-service/internal/models"
	"fiscal-reconstruction-service/internal/store"
	"fiscal-reconstruction-service/internal/validator"
	"fiscal-reconstruction-service/internal/window"
	"fiscal-reconstruction-service/pkg/errors"
	"fiscal-reconstruction-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// SummaryService recomputes the fiscal summary of one property for one
// exercise year from the property's current contracts and documents.
type SummaryService struct {
	store     store.Store
	validator *validator.EntityValidator
	logger    logger.Logger
}

// NewSummaryService creates a SummaryService
func NewSummaryService(st store.Store, policy *window.Policy) *SummaryService {
	return &SummaryService{
		store:     st,
		validator: validator.NewEntityValidator(policy),
		logger:    logger.GetGlobalLogger().WithComponent("fiscal_summary"),
	}
}

// Recompute rebuilds and persists the summary for (propertyID, year).
// Income is the rent accrued by the property's valid contracts over the
// months they cover in that year; expenses are the amounts of valid
// documents attributed to that year. The persisted summary is a full
// overwrite of any previous one.
func (s *SummaryService) Recompute(ctx context.Context, propertyID string, year int) (*models.FiscalSummary, error) {
	contracts, err := s.store.GetAllContracts(ctx)
	if err != nil {
		return nil, errors.FiscalError(errors.CodeSummaryFailed, propertyID, year,
			errors.StorageError(errors.CodeLoadFailed, "contracts", err))
	}

	documents, err := s.store.GetAllDocuments(ctx)
	if err != nil {
		return nil, errors.FiscalError(errors.CodeSummaryFailed, propertyID, year,
			errors.StorageError(errors.CodeLoadFailed, "documents", err))
	}

	income := decimal.Zero
	for _, c := range contracts {
		if c.PropertyID != propertyID {
			continue
		}
		if result := s.validator.ValidateContract(c); !result.Valid {
			continue
		}
		months := c.ActiveMonthsInYear(year)
		if months > 0 {
			income = income.Add(c.MonthlyRent.Mul(decimal.NewFromInt(int64(months))))
		}
	}

	expenses := decimal.Zero
	for _, d := range documents {
		if !d.BelongsToProperty(propertyID) {
			continue
		}
		if result := s.validator.ValidateDocument(d); !result.Valid {
			continue
		}
		docYear, ok := d.AttributedYear()
		if !ok || docYear != year {
			continue
		}
		expenses = expenses.Add(*d.FinancialData.Amount)
	}

	summary := models.NewFiscalSummary(propertyID, year, income, expenses)
	if err := s.store.SaveFiscalSummary(ctx, summary); err != nil {
		return nil, errors.FiscalError(errors.CodeSummaryFailed, propertyID, year,
			errors.StorageError(errors.CodeSaveFailed, "fiscal summary", err))
	}

	s.logger.WithFields(logger.Fields{
		"property_id": propertyID,
		"year":        year,
		"income":      summary.Income.String(),
		"expenses":    summary.Expenses.String(),
		"result":      summary.Result.String(),
	}).Debug("Fiscal summary recomputed")

	return summary, nil
}
