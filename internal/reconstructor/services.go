package reconstructor

import (
	"context"

	"fiscal-reconstruction-service/internal/models"
)

// FiscalSummaryService recomputes one (property, year) summary from
// current data. Failures are domain errors; the reconstructor treats
// them as recoverable and skips to the next year.
type FiscalSummaryService interface {
	Recompute(ctx context.Context, propertyID string, year int) (*models.FiscalSummary, error)
}

// CarryForwardService recomputes a property's loss carryforward chain
// from its fiscal summaries. Failures are recoverable at the property
// level and do not affect other properties.
type CarryForwardService interface {
	Recompute(ctx context.Context, propertyID string) error
}
