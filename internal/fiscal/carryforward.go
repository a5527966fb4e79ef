package fiscal

import (
	"context"

	"fiscal-reconstruction-service/internal/models"
	"fiscal-reconstruction-service/internal/store"
	"fiscal-reconstruction-service/pkg/errors"
	"fiscal-reconstruction-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// CompensationYears is the AEAT limit on how many subsequent exercise
// years a rental loss can be compensated against.
const CompensationYears = 4

// CarryForwardService rebuilds a property's loss carryforward chain from
// its ordered fiscal summaries. It must run only after every summary in
// the window has been refreshed, because the chain depends on the
// complete, updated sequence.
type CarryForwardService struct {
	store  store.Store
	logger logger.Logger
}

// NewCarryForwardService creates a CarryForwardService
func NewCarryForwardService(st store.Store) *CarryForwardService {
	return &CarryForwardService{
		store:  st,
		logger: logger.GetGlobalLogger().WithComponent("carry_forward"),
	}
}

// Recompute walks the property's fiscal summaries in ascending year order
// and rebuilds the carryforward chain: each loss year opens a carryforward
// expiring CompensationYears later; each profitable year compensates open
// losses oldest-first. The persisted chain fully replaces the previous one.
func (s *CarryForwardService) Recompute(ctx context.Context, propertyID string) error {
	summaries, err := s.store.GetFiscalSummaries(ctx, propertyID)
	if err != nil {
		return errors.FiscalError(errors.CodeCarryForwardFailed, propertyID, 0,
			errors.StorageError(errors.CodeLoadFailed, "fiscal summaries", err))
	}

	if len(summaries) == 0 {
		return errors.FiscalError(errors.CodeCarryForwardFailed, propertyID, 0, nil).
			WithSuggestion("recompute the property's fiscal summaries first")
	}

	var chain []*models.CarryForward

	// GetFiscalSummaries returns ascending year order; the walk relies on it.
	for _, fs := range summaries {
		if fs.IsLoss() {
			loss := fs.Result.Neg()
			chain = append(chain, &models.CarryForward{
				PropertyID: propertyID,
				OriginYear: fs.ExerciseYear,
				Amount:     loss,
				Remaining:  loss,
				ExpiryYear: fs.ExerciseYear + CompensationYears,
			})
			continue
		}

		available := fs.Result
		for _, cf := range chain {
			if !available.IsPositive() {
				break
			}
			if cf.IsExhausted() || cf.ExpiryYear < fs.ExerciseYear {
				continue
			}

			applied := decimal.Min(cf.Remaining, available)
			cf.Remaining = cf.Remaining.Sub(applied)
			available = available.Sub(applied)
		}
	}

	if err := s.store.ReplaceCarryForwards(ctx, propertyID, chain); err != nil {
		return errors.FiscalError(errors.CodeCarryForwardFailed, propertyID, 0,
			errors.StorageError(errors.CodeSaveFailed, "carry forwards", err))
	}

	s.logger.WithFields(logger.Fields{
		"property_id": propertyID,
		"chain_size":  len(chain),
	}).Debug("Carryforward chain recomputed")

	return nil
}
