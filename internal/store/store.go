// Package store defines the persistence boundary of the reconstruction
// engine: per-entity collections for properties, contracts, documents,
// fiscal summaries and carryforward chains.
//
// The reconstruction pipeline only reads entity collections; all writes
// go through the fiscal services, which upsert summaries and replace
// carryforward chains wholesale. Two implementations exist: a
// mutex-guarded in-memory store (this package) and a SQLite-backed store
// (store/sqlite).
package store

import (
	"context"
	"errors"

	"fiscal-reconstruction-service/internal/models"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("entity not found")

// Store is the persistence contract used by the reconstruction engine
// and the fiscal services.
type Store interface {
	// Entity collections, read-only from the reconstructor's perspective.
	// GetProperty returns ErrNotFound for unknown IDs.
	GetProperty(ctx context.Context, id string) (*models.Property, error)
	GetAllProperties(ctx context.Context) ([]*models.Property, error)
	GetAllContracts(ctx context.Context) ([]*models.Contract, error)
	GetAllDocuments(ctx context.Context) ([]*models.Document, error)

	// Fiscal summaries, written exclusively by the fiscal summary service.
	// SaveFiscalSummary is an upsert keyed on (property, exercise year).
	GetFiscalSummaries(ctx context.Context, propertyID string) ([]*models.FiscalSummary, error)
	SaveFiscalSummary(ctx context.Context, summary *models.FiscalSummary) error

	// Carryforward chains, replaced wholesale by the carryforward service
	GetCarryForwards(ctx context.Context, propertyID string) ([]*models.CarryForward, error)
	ReplaceCarryForwards(ctx context.Context, propertyID string, chain []*models.CarryForward) error
}
