package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pdf2md/internal/app"
	"pdf2md/internal/config"
	"pdf2md/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "pdf2md",
	Short: "Batch-convert a directory tree of PDFs to Markdown via OCR",
	Long: `A resumable batch converter that OCRs every PDF under an input directory
into Markdown (with best-effort DOCX siblings), tracking per-file outcomes in a
persistent record store so interrupted runs pick up where they left off.`,
	SilenceUsage: true,
	RunE:         runConversion,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (optional)")

	rootCmd.Flags().String("input-dir", "docs_import", "Directory scanned recursively for PDF files")
	rootCmd.Flags().String("output-dir", "docs_exports", "Directory receiving converted output")
	rootCmd.Flags().String("records", "processed_files.csv", "Record store path (.csv ledger, or .db for sqlite)")
	rootCmd.Flags().String("log-file", "conversion.log", "Diagnostic log file")
	rootCmd.Flags().String("log-level", "info", "Log level (debug/info/warn/error)")
	rootCmd.Flags().String("endpoint", "https://api.mistral.ai", "OCR service endpoint")
	rootCmd.Flags().String("model", "mistral-ocr-latest", "OCR model identifier")
	rootCmd.Flags().Int("ocr-timeout-sec", 300, "OCR request timeout in seconds")
	rootCmd.Flags().Int("retries", 5, "Maximum attempts per file")
	rootCmd.Flags().Int("retry-backoff-ms", 1000, "Initial retry backoff in milliseconds (doubles per failure)")
	rootCmd.Flags().Int("success-pause-ms", 3000, "Pause after each successful file in milliseconds")
	rootCmd.Flags().Bool("docx", true, "Also convert Markdown output to DOCX via pandoc")
	rootCmd.Flags().String("pandoc", "pandoc", "Pandoc binary")
	rootCmd.Flags().String("metrics-addr", "", "Address for the /metrics endpoint (disabled when empty)")
}

func runConversion(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			// Distinguished exit before any work begins
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	runner, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("Received shutdown signal, stopping after the current file...")
		cancel()
	}()

	err = runner.Run(ctx)

	if closeErr := runner.Close(); closeErr != nil {
		log.Error("Error closing runner", zap.Error(closeErr))
	}

	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
