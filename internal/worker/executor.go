// Package worker drives the bounded-retry loop around one file conversion.
package worker

import (
	"context"
	"time"

	"pdf2md/internal/metrics"
	"pdf2md/internal/pipeline"
	"pdf2md/internal/records"

	"go.uber.org/zap"
)

// Processor performs one conversion attempt for one file.
type Processor interface {
	Process(ctx context.Context, relPath string) (*pipeline.Result, error)
}

// state is the retry loop's position for the current file.
type state int

const (
	statePending state = iota
	stateAttempting
	stateAttemptFailed
	stateSuccess
	stateExhausted
)

// Outcome is the terminal result for one file. Attempt-level errors never
// escape the executor; they end up in the record store and the log.
type Outcome struct {
	Succeeded bool
	Attempts  int
}

// Config contains retry loop configuration
type Config struct {
	// MaxAttempts bounds the retry loop.
	MaxAttempts int
	// Backoff is the delay before the second attempt; it doubles after every
	// failure. No delay follows the final attempt.
	Backoff time.Duration
	// SuccessPause is slept after a successful file as a rate limiter for
	// the next one.
	SuccessPause time.Duration
}

// Executor resolves one file at a time: pending -> attempting ->
// {success, attempt-failed -> attempting, exhausted}. A record is upserted
// after every attempt, so an interrupt at any point leaves the store
// consistent with the last attempt.
type Executor struct {
	cfg       Config
	processor Processor
	store     records.Store
	metrics   *metrics.Collector
	logger    *zap.Logger
	sleep     func(time.Duration)
}

// NewExecutor creates an executor.
func NewExecutor(cfg Config, processor Processor, store records.Store, collector *metrics.Collector, logger *zap.Logger) *Executor {
	return &Executor{
		cfg:       cfg,
		processor: processor,
		store:     store,
		metrics:   collector,
		logger:    logger,
		sleep:     time.Sleep,
	}
}

// SetSleep replaces the blocking sleep, for tests.
func (e *Executor) SetSleep(sleep func(time.Duration)) {
	e.sleep = sleep
}

// Run resolves file to a terminal state.
func (e *Executor) Run(ctx context.Context, file string) Outcome {
	startTime := time.Now()
	st := statePending
	attempts := 0
	backoff := e.cfg.Backoff

	var lastErr error
	var result *pipeline.Result

	for {
		switch st {
		case statePending:
			st = stateAttempting

		case stateAttempting:
			attempts++
			e.metrics.IncAttempt()
			result, lastErr = e.processor.Process(ctx, file)
			if lastErr == nil {
				st = stateSuccess
			} else {
				st = stateAttemptFailed
			}

		case stateAttemptFailed:
			e.saveRecord(file, records.StatusError, attempts, lastErr.Error())
			e.logger.Warn("Attempt failed",
				zap.String("file", file),
				zap.Int("attempt", attempts),
				zap.String("step", string(pipeline.KindOf(lastErr))),
				zap.Error(lastErr),
			)

			if attempts >= e.cfg.MaxAttempts {
				st = stateExhausted
				continue
			}

			e.sleep(backoff)
			backoff *= 2
			st = stateAttempting

		case stateSuccess:
			e.saveRecord(file, records.StatusSuccess, attempts, "")
			e.metrics.IncSuccess()
			e.metrics.AddPages(result.Pages)
			e.metrics.ObserveDuration(time.Since(startTime))
			e.logger.Info("File converted",
				zap.String("file", file),
				zap.String("output", result.PrimaryPath),
				zap.Int("pages", result.Pages),
				zap.Int("attempt", attempts),
			)

			e.sleep(e.cfg.SuccessPause)
			return Outcome{Succeeded: true, Attempts: attempts}

		case stateExhausted:
			e.metrics.IncFailed()
			e.metrics.ObserveDuration(time.Since(startTime))
			e.logger.Error("File failed after all retries",
				zap.String("file", file),
				zap.Int("attempts", attempts),
				zap.Error(lastErr),
			)
			return Outcome{Succeeded: false, Attempts: attempts}
		}
	}
}

func (e *Executor) saveRecord(file string, status records.Status, attempts int, errText string) {
	record := records.FileRecord{
		Filename: file,
		Status:   status,
		Attempts: attempts,
		Error:    errText,
	}

	if err := e.store.Upsert(record); err != nil {
		e.logger.Error("Failed to save record",
			zap.String("file", file),
			zap.Error(err),
		)
	}
}
