// Package app orchestrates a conversion run over the work set.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"pdf2md/internal/config"
	"pdf2md/internal/converter"
	"pdf2md/internal/discovery"
	"pdf2md/internal/metrics"
	"pdf2md/internal/ocr"
	"pdf2md/internal/pipeline"
	"pdf2md/internal/progress"
	"pdf2md/internal/records"
	"pdf2md/internal/worker"

	"go.uber.org/zap"
)

// Runner represents the batch conversion application
type Runner struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    records.Store
	metrics  *metrics.Collector
	tracker  *progress.Tracker
	executor *worker.Executor
	out      io.Writer
}

// New creates a runner wired to the real extraction service and pandoc.
func New(cfg *config.Config, logger *zap.Logger) (*Runner, error) {
	client, err := ocr.NewMistralClient(ocr.Config{
		Endpoint: cfg.OCR.Endpoint,
		APIKey:   cfg.OCR.APIKey,
		Timeout:  cfg.OCR.Timeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create OCR client: %w", err)
	}

	var conv converter.Converter
	if cfg.Converter.Enabled {
		conv = converter.NewPandocConverter(cfg.Converter.Pandoc)
	}

	return newRunner(cfg, logger, client, conv)
}

func newRunner(cfg *config.Config, logger *zap.Logger, client ocr.Client, conv converter.Converter) (*Runner, error) {
	store, err := records.Open(cfg.Records)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}

	collector := metrics.New()

	pipe := pipeline.New(pipeline.Config{
		InputDir:  cfg.InputDir,
		OutputDir: cfg.OutputDir,
		Model:     cfg.OCR.Model,
		Secondary: cfg.Converter.Enabled,
	}, client, conv, logger)

	executor := worker.NewExecutor(worker.Config{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		Backoff:      cfg.Retry.Backoff(),
		SuccessPause: cfg.Retry.SuccessPause(),
	}, pipe, store, collector, logger)

	return &Runner{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		metrics:  collector,
		tracker:  progress.NewTracker(),
		executor: executor,
		out:      os.Stdout,
	}, nil
}

// Run executes one conversion pass over the work set. Files already recorded
// as successful are never re-attempted; everything else is resolved
// sequentially to success or exhausted failure.
func (r *Runner) Run(ctx context.Context) error {
	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files, err := discovery.Find(r.cfg.InputDir)
	if err != nil {
		return err
	}

	processed, err := r.store.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to load record store: %w", err)
	}

	toDo := make([]string, 0, len(files))
	succeeded := 0
	for _, f := range files {
		if rec, ok := processed[f]; ok && rec.Status == records.StatusSuccess {
			succeeded++
			r.tracker.AddSkipped()
			r.metrics.IncSkipped()
			continue
		}
		toDo = append(toDo, f)
	}

	r.tracker.SetTotal(len(toDo))

	fmt.Fprintf(r.out, "Found %d PDF files in '%s'. %d already converted. %d remaining.\n",
		len(files), r.cfg.InputDir, succeeded, len(toDo))
	fmt.Fprintf(r.out, "Output will be saved to '%s'.\n", r.cfg.OutputDir)

	if r.cfg.MetricsAddr != "" {
		go func() {
			if err := r.metrics.StartServer(r.cfg.MetricsAddr); err != nil {
				r.logger.Error("Failed to start metrics server", zap.Error(err))
			}
		}()
	}

	// One file is fully resolved before the next begins. The record store's
	// read-modify-rewrite upsert is only safe with a single writer.
	for i, f := range toDo {
		if ctx.Err() != nil {
			r.logger.Info("Run cancelled", zap.Int("remaining", len(toDo)-i))
			return ctx.Err()
		}

		fmt.Fprintf(r.out, "[%d/%d] Processing: %s\n", i+1, len(toDo), f)

		outcome := r.executor.Run(ctx, f)
		if outcome.Succeeded {
			r.tracker.AddSuccess()
			fmt.Fprintf(r.out, "Success: %s (attempt %d)\n", f, outcome.Attempts)
		} else {
			r.tracker.AddFailed()
			fmt.Fprintf(r.out, "Failed: %s after %d attempts.\n", f, outcome.Attempts)
		}
	}

	fmt.Fprintf(r.out, "\n%s\n", r.tracker.Summary())
	r.logger.Info("Run completed",
		zap.Int("succeeded", r.tracker.GetStatus().SucceededFiles),
		zap.Int("work_set", len(toDo)),
	)

	return nil
}

// Close cleans up resources
func (r *Runner) Close() error {
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}
