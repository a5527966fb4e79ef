package logger

import (
	"fmt"
	"time"
)

// RunLogger provides structured logging for a reconstruction run with
// timing. One RunLogger covers one run (a single property or a batch);
// phases and skipped entities are logged through it so every line
// carries the run context.
type RunLogger struct {
	logger    Logger
	run       string
	fields    Fields
	startTime time.Time
}

// NewRunLogger creates a RunLogger and logs the start of the run
func NewRunLogger(run string, logger Logger) *RunLogger {
	if logger == nil {
		logger = GetGlobalLogger()
	}

	rl := &RunLogger{
		logger:    logger.WithComponent("reconstruction"),
		run:       run,
		fields:    make(Fields),
		startTime: time.Now(),
	}

	rl.logger.WithField("run", run).Info("Starting reconstruction run")
	return rl
}

// WithField adds a field to the run context
func (rl *RunLogger) WithField(key string, value interface{}) *RunLogger {
	rl.fields[key] = value
	return rl
}

// Phase logs entry into a pipeline phase
func (rl *RunLogger) Phase(phase string, current, total int) {
	fields := Fields{
		"run":   rl.run,
		"phase": phase,
	}
	if total > 0 {
		fields["step"] = fmt.Sprintf("%d/%d", current, total)
	}
	for k, v := range rl.fields {
		fields[k] = v
	}

	rl.logger.WithFields(fields).Info("Reconstruction phase")
}

// Skipped logs an entity that failed validation and was skipped
func (rl *RunLogger) Skipped(entity, id, reason string) {
	fields := Fields{
		"run":    rl.run,
		"entity": entity,
		"id":     id,
		"reason": reason,
	}
	for k, v := range rl.fields {
		fields[k] = v
	}

	rl.logger.WithFields(fields).Warn("Entity skipped")
}

// Success completes the run successfully
func (rl *RunLogger) Success(message string) {
	rl.complete("success", nil, message)
}

// Failure completes the run with accumulated errors
func (rl *RunLogger) Failure(errorCount int, message string) {
	fields := Fields{
		"run":      rl.run,
		"duration": time.Since(rl.startTime).String(),
		"status":   "failed",
		"errors":   errorCount,
	}
	for k, v := range rl.fields {
		fields[k] = v
	}

	rl.logger.WithFields(fields).Error(message)
}

func (rl *RunLogger) complete(status string, err error, message string) {
	fields := Fields{
		"run":      rl.run,
		"duration": time.Since(rl.startTime).String(),
		"status":   status,
	}
	for k, v := range rl.fields {
		fields[k] = v
	}

	log := rl.logger.WithFields(fields)
	if err != nil {
		log = log.WithError(err)
	}
	log.Info(message)
}
