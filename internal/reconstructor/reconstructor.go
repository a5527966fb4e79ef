// Package reconstructor implements the historical fiscal reconstruction
// engine: retroactive reprocessing of up to ten years of property
// contracts and financial documents to rebuild per-year fiscal summaries
// and multi-year loss carryforwards.
//
// The engine runs a five-phase pipeline per property, strictly in order:
//
//  1. Load contracts and documents from the store
//  2. Process contracts in ascending start-date order
//  3. Process documents in ascending issue-date order
//  4. Recompute fiscal summaries for every year of the window, ascending
//  5. Recompute the carryforward chain
//
// Heterogeneous errors are accumulated without aborting the run: invalid
// entities are skipped, failed years do not block other years, and only
// total inability to load the initial data short-circuits a run - and
// even that is reported inside the returned result, never thrown.
// Recomputation is a full overwrite, so runs are idempotent over
// unchanged data.
//
// Example usage:
//
//	engine := reconstructor.NewPropertyReconstructor(st, summarySvc, carrySvc, policy)
//	result := engine.Reconstruct(ctx, propertyID, func(p reconstructor.ProcessingProgress) {
//		fmt.Printf("%s\n", p)
//	})
//	if !result.Success {
//		// inspect result.Errors; counters remain meaningful
//	}
package reconstructor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fiscal-reconstruction-service/internal/models"
	"fiscal-reconstruction-service/internal/store"
	"fiscal-reconstruction-service/internal/validator"
	"fiscal-reconstruction-service/internal/window"
	"fiscal-reconstruction-service/pkg/logger"
)

// Number of pipeline phases; progress totals derive from it.
const totalPhases = 5

// PropertyReconstructor orchestrates the five-phase reconstruction
// pipeline for a single property. Safe for concurrent use; runs for the
// same property are serialized by a per-property lock so that the phase
// ordering invariants hold even under concurrent callers.
type PropertyReconstructor struct {
	store        store.Store
	summaries    FiscalSummaryService
	carryForward CarryForwardService
	policy       *window.Policy
	validator    *validator.EntityValidator
	logger       logger.Logger

	mu       sync.Mutex
	runLocks map[string]*sync.Mutex
}

// NewPropertyReconstructor creates a PropertyReconstructor. A nil policy
// falls back to the system clock.
func NewPropertyReconstructor(
	st store.Store,
	summaries FiscalSummaryService,
	carryForward CarryForwardService,
	policy *window.Policy,
) *PropertyReconstructor {
	if policy == nil {
		policy = window.NewPolicy(nil)
	}

	return &PropertyReconstructor{
		store:        st,
		summaries:    summaries,
		carryForward: carryForward,
		policy:       policy,
		validator:    validator.NewEntityValidator(policy),
		logger:       logger.GetGlobalLogger().WithComponent("property_reconstructor"),
		runLocks:     make(map[string]*sync.Mutex),
	}
}

// lockProperty returns the run lock for a property, creating it on first use
func (pr *PropertyReconstructor) lockProperty(propertyID string) *sync.Mutex {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	lock, ok := pr.runLocks[propertyID]
	if !ok {
		lock = &sync.Mutex{}
		pr.runLocks[propertyID] = lock
	}
	return lock
}

// Reconstruct runs the full pipeline for one property and returns the
// accumulated result. It never returns an error and never panics: any
// unexpected failure is caught and recorded as a critical error entry in
// the (failed) result. Cancellation is honored between phases and
// between entities, never mid-entity.
func (pr *PropertyReconstructor) Reconstruct(ctx context.Context, propertyID string, onProgress ProgressFunc) (result *ProcessingResult) {
	start := time.Now()
	result = NewProcessingResult()

	defer func() {
		if r := recover(); r != nil {
			pr.logger.WithField("property_id", propertyID).Errorf("Reconstruction panicked: %v", r)
			result.AddError("critical error: %v", r)
			result.finalize(start)
		}
	}()

	lock := pr.lockProperty(propertyID)
	lock.Lock()
	defer lock.Unlock()

	run := logger.NewRunLogger("property "+propertyID, pr.logger)

	// Phase 1: load
	run.Phase("load", 1, totalPhases)
	contracts, documents, ok := pr.load(ctx, propertyID, result)
	if !ok {
		run.Failure(len(result.Errors), "Reconstruction aborted during load")
		return result.finalize(start)
	}
	emit(onProgress, ProcessingProgress{
		Phase:      "Loading historical data",
		Current:    1,
		Total:      totalPhases,
		Percentage: 20,
		Details:    "Contracts and documents loaded",
	})

	// Phase 2: contracts, chronological by start date
	if cancelled := pr.processContracts(ctx, contracts, result, run); cancelled {
		return result.finalize(start)
	}
	emit(onProgress, ProcessingProgress{
		Phase:      "Processing contracts",
		Current:    2,
		Total:      totalPhases,
		Percentage: 40,
		Details:    pluralize(result.ContractsProcessed, "contract processed", "contracts processed"),
	})

	// Phase 3: documents, chronological by issue date
	if cancelled := pr.processDocuments(ctx, documents, result, run); cancelled {
		return result.finalize(start)
	}
	emit(onProgress, ProcessingProgress{
		Phase:      "Processing documents",
		Current:    3,
		Total:      totalPhases,
		Percentage: 60,
		Details:    pluralize(result.DocumentsProcessed, "document processed", "documents processed"),
	})

	// Phase 4: fiscal summaries for the whole window, ascending years
	if cancelled := pr.recomputeSummaries(ctx, propertyID, result, run); cancelled {
		return result.finalize(start)
	}
	emit(onProgress, ProcessingProgress{
		Phase:      "Recomputing fiscal summaries",
		Current:    4,
		Total:      totalPhases,
		Percentage: 80,
		Details:    pluralize(result.FiscalSummariesUpdated, "fiscal summary updated", "fiscal summaries updated"),
	})

	// Phase 5: carryforwards, strictly after all year attempts
	pr.recomputeCarryForwards(ctx, propertyID, result, run)
	emit(onProgress, ProcessingProgress{
		Phase:      "Recomputing carryforwards",
		Current:    5,
		Total:      totalPhases,
		Percentage: 100,
		Details:    "Reconstruction complete",
	})

	result.finalize(start)
	if result.Success {
		run.Success("Reconstruction completed")
	} else {
		run.Failure(len(result.Errors), "Reconstruction completed with errors")
	}
	return result
}

// load fetches the property's contracts and documents. A load failure is
// the one condition that short-circuits the run; it is recorded as a
// critical error rather than propagated.
func (pr *PropertyReconstructor) load(ctx context.Context, propertyID string, result *ProcessingResult) ([]*models.Contract, []*models.Document, bool) {
	allContracts, err := pr.store.GetAllContracts(ctx)
	if err != nil {
		result.AddError("critical error: failed to load contracts: %v", err)
		return nil, nil, false
	}

	allDocuments, err := pr.store.GetAllDocuments(ctx)
	if err != nil {
		result.AddError("critical error: failed to load documents: %v", err)
		return nil, nil, false
	}

	var contracts []*models.Contract
	for _, c := range allContracts {
		if c.PropertyID == propertyID {
			contracts = append(contracts, c)
		}
	}

	var documents []*models.Document
	for _, d := range allDocuments {
		if d.BelongsToProperty(propertyID) {
			documents = append(documents, d)
		}
	}

	return contracts, documents, true
}

// processContracts validates the property's contracts in ascending
// start-date order. Later derived state can depend on earlier contracts,
// so the chronological order is load-bearing even though each contract is
// handled independently here. Invalid contracts are recorded and skipped.
func (pr *PropertyReconstructor) processContracts(ctx context.Context, contracts []*models.Contract, result *ProcessingResult, run *logger.RunLogger) bool {
	sort.SliceStable(contracts, func(i, j int) bool {
		return contracts[i].StartDate.Before(contracts[j].StartDate)
	})

	for _, c := range contracts {
		if err := ctx.Err(); err != nil {
			result.AddError("reconstruction cancelled while processing contracts: %v", err)
			return true
		}

		if vr := pr.validator.ValidateContract(c); !vr.Valid {
			for _, msg := range vr.Errors {
				result.AddError("contract %s: %s", c.ID, msg)
			}
			run.Skipped("contract", c.ID, vr.Errors[0])
			continue
		}

		result.ContractsProcessed++
	}

	return false
}

// processDocuments validates the property's dated documents in ascending
// issue-date order. Documents without an issue date are not part of this
// phase at all; invalid documents are recorded under their filename and
// skipped without counting as processed.
func (pr *PropertyReconstructor) processDocuments(ctx context.Context, documents []*models.Document, result *ProcessingResult, run *logger.RunLogger) bool {
	var dated []*models.Document
	for _, d := range documents {
		if d.HasIssueDate() {
			dated = append(dated, d)
		}
	}

	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].FinancialData.IssueDate.Before(*dated[j].FinancialData.IssueDate)
	})

	for _, d := range dated {
		if err := ctx.Err(); err != nil {
			result.AddError("reconstruction cancelled while processing documents: %v", err)
			return true
		}

		if vr := pr.validator.ValidateDocument(d); !vr.Valid {
			for _, msg := range vr.Errors {
				result.AddError("%s: %s", d.Filename, msg)
			}
			run.Skipped("document", d.Filename, vr.Errors[0])
			continue
		}

		result.DocumentsProcessed++
	}

	return false
}

// recomputeSummaries calls the fiscal summary service for every year of
// the fixed window in ascending order. A failed year is recorded and must
// not block recomputation of the remaining years.
func (pr *PropertyReconstructor) recomputeSummaries(ctx context.Context, propertyID string, result *ProcessingResult, run *logger.RunLogger) bool {
	for _, year := range pr.policy.FiscalYears() {
		if err := ctx.Err(); err != nil {
			result.AddError("reconstruction cancelled while recomputing fiscal summaries: %v", err)
			return true
		}

		if _, err := pr.summaries.Recompute(ctx, propertyID, year); err != nil {
			result.AddError("fiscal summary for year %d: %v", year, err)
			continue
		}
		result.FiscalSummariesUpdated++
	}

	return false
}

// recomputeCarryForwards runs the carryforward service once, after every
// year has been attempted. Whatever summaries did get updated are used
// even when some years failed.
func (pr *PropertyReconstructor) recomputeCarryForwards(ctx context.Context, propertyID string, result *ProcessingResult, run *logger.RunLogger) {
	if err := pr.carryForward.Recompute(ctx, propertyID); err != nil {
		result.AddError("carryforward recalculation: %v", err)
		return
	}
	result.CarryForwardsRecalculated = 1
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return fmt.Sprintf("%d %s", n, plural)
}
