package reconstructor

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"fiscal-reconstruction-service/internal/models"
	"fiscal-reconstruction-service/internal/store"
	"fiscal-reconstruction-service/pkg/logger"
)

// BatchReconstructor fans the per-property reconstruction out over every
// active property, one at a time, and aggregates the results.
type BatchReconstructor struct {
	store  store.Store
	engine *PropertyReconstructor
	logger logger.Logger
}

// NewBatchReconstructor creates a BatchReconstructor that delegates
// per-property runs to the given PropertyReconstructor.
func NewBatchReconstructor(st store.Store, pr *PropertyReconstructor) *BatchReconstructor {
	return &BatchReconstructor{
		store:  st,
		engine: pr,
		logger: logger.GetGlobalLogger().WithComponent("batch_reconstructor"),
	}
}

// ReconstructAll reconstructs every active property sequentially and
// returns the field-wise aggregate of the per-property results, with
// each error tagged by its originating property.
//
// Progress granularity: the callback receives both batch-level ticks
// (one before each property, phase "Processing <label>") and the
// per-property phase ticks, interleaved. Callers wanting only the
// coarse stream can filter on Total == property count.
//
// Like Reconstruct, this never returns an error: a failure to load the
// property list itself is reported as a single critical error entry with
// zero counts.
func (br *BatchReconstructor) ReconstructAll(ctx context.Context, onProgress ProgressFunc) (result *ProcessingResult) {
	start := time.Now()
	result = NewProcessingResult()

	defer func() {
		if r := recover(); r != nil {
			br.logger.Errorf("Batch reconstruction panicked: %v", r)
			result.AddError("critical error: %v", r)
			result.finalize(start)
		}
	}()

	properties, err := br.store.GetAllProperties(ctx)
	if err != nil {
		result.AddError("critical error: failed to load properties: %v", err)
		return result.finalize(start)
	}

	active := filterActive(properties)
	// Deterministic iteration keeps batch runs reproducible.
	sort.SliceStable(active, func(i, j int) bool { return active[i].ID < active[j].ID })

	br.logger.WithFields(logger.Fields{
		"total_properties":  len(properties),
		"active_properties": len(active),
	}).Info("Starting batch reconstruction")

	total := len(active)
	for i, property := range active {
		if err := ctx.Err(); err != nil {
			result.AddError("batch reconstruction cancelled: %v", err)
			break
		}

		emit(onProgress, ProcessingProgress{
			Phase:      fmt.Sprintf("Processing %s", property.Label),
			Current:    i + 1,
			Total:      total,
			Percentage: math.Round(100 * float64(i+1) / float64(total)),
			Details:    fmt.Sprintf("Property %d of %d", i+1, total),
		})

		propertyResult := br.engine.Reconstruct(ctx, property.ID, onProgress)
		result.MergeTagged(property.ID, propertyResult)
	}

	result.finalize(start)
	br.logger.WithFields(logger.Fields{
		"properties": total,
		"errors":     len(result.Errors),
		"elapsed_ms": result.ProcessingTimeMs,
	}).Info("Batch reconstruction finished")

	return result
}

func filterActive(properties []*models.Property) []*models.Property {
	var active []*models.Property
	for _, p := range properties {
		if p.IsActive() {
			active = append(active, p)
		}
	}
	return active
}
