package app

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pdf2md/internal/config"
	"pdf2md/internal/ocr"
	"pdf2md/internal/records"

	"go.uber.org/zap"
)

// scriptedClient succeeds or fails per document, keyed on the decoded
// payload contents.
type scriptedClient struct {
	failPayloads map[string]bool
	calls        int
}

func (c *scriptedClient) Process(_ context.Context, req ocr.Request) (*ocr.Response, error) {
	c.calls++

	const prefix = "data:application/pdf;base64,"
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(req.DocumentURL, prefix))
	if err != nil {
		return nil, err
	}
	if c.failPayloads[string(raw)] {
		return nil, errors.New("service unavailable")
	}
	return &ocr.Response{Pages: []ocr.Page{{Index: 0, Markdown: "hello"}}}, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		InputDir:  filepath.Join(dir, "docs_import"),
		OutputDir: filepath.Join(dir, "docs_exports"),
		Records:   filepath.Join(dir, "processed_files.csv"),
		OCR:       config.OCR{Model: "mistral-ocr-latest"},
		Retry: config.Retry{
			MaxAttempts:    5,
			BackoffMs:      1000,
			SuccessPauseMs: 3000,
		},
	}
}

func writeSource(t *testing.T, cfg *config.Config, rel, content string) {
	t.Helper()
	path := filepath.Join(cfg.InputDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
}

func newTestRunner(t *testing.T, cfg *config.Config, client ocr.Client) *Runner {
	t.Helper()
	r, err := newRunner(cfg, zap.NewNop(), client, nil)
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	r.out = io.Discard
	r.executor.SetSleep(func(time.Duration) {})
	return r
}

func TestRunScenario(t *testing.T) {
	cfg := testConfig(t)
	writeSource(t, cfg, "a.pdf", "AAA")
	writeSource(t, cfg, "b.pdf", "BBB")

	client := &scriptedClient{failPayloads: map[string]bool{"BBB": true}}
	r := newTestRunner(t, cfg, client)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "a.md"))
	if err != nil {
		t.Fatalf("read primary artifact: %v", err)
	}
	if string(data) != "## Page 1\n\nhello\n\n" {
		t.Fatalf("unexpected artifact %q", string(data))
	}

	store := records.NewCSVStore(cfg.Records)
	processed, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	a := processed["a.pdf"]
	if a.Status != records.StatusSuccess || a.Attempts != 1 || a.Error != "" {
		t.Fatalf("unexpected record for a.pdf: %+v", a)
	}
	b := processed["b.pdf"]
	if b.Status != records.StatusError || b.Attempts != 5 || b.Error == "" {
		t.Fatalf("unexpected record for b.pdf: %+v", b)
	}

	status := r.tracker.GetStatus()
	if status.SucceededFiles != 1 || status.TotalFiles != 2 {
		t.Fatalf("expected 1 success out of 2, got %+v", status)
	}

	// 1 call for a.pdf plus 5 exhausted attempts for b.pdf
	if client.calls != 6 {
		t.Fatalf("expected 6 service calls, got %d", client.calls)
	}
}

func TestRunIdempotentResume(t *testing.T) {
	cfg := testConfig(t)
	writeSource(t, cfg, "a.pdf", "AAA")
	writeSource(t, cfg, filepath.Join("sub", "c.pdf"), "CCC")

	first := &scriptedClient{}
	r1 := newTestRunner(t, cfg, first)
	if err := r1.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.calls != 2 {
		t.Fatalf("expected 2 calls on first run, got %d", first.calls)
	}

	// All files recorded as success: a second run performs zero attempts.
	second := &scriptedClient{}
	r2 := newTestRunner(t, cfg, second)
	if err := r2.Run(context.Background()); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.calls != 0 {
		t.Fatalf("expected 0 calls on resume, got %d", second.calls)
	}
	if got := r2.tracker.GetStatus().SkippedFiles; got != 2 {
		t.Fatalf("expected 2 skipped files, got %d", got)
	}
}

func TestRunRetriesPreviouslyFailedFiles(t *testing.T) {
	cfg := testConfig(t)
	writeSource(t, cfg, "b.pdf", "BBB")

	failing := &scriptedClient{failPayloads: map[string]bool{"BBB": true}}
	r1 := newTestRunner(t, cfg, failing)
	if err := r1.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	// An error record does not shrink the work set; the file is attempted
	// again and its record is overwritten on success.
	recovering := &scriptedClient{}
	r2 := newTestRunner(t, cfg, recovering)
	if err := r2.Run(context.Background()); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if recovering.calls != 1 {
		t.Fatalf("expected 1 call on retry run, got %d", recovering.calls)
	}

	processed, err := records.NewCSVStore(cfg.Records).LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	b := processed["b.pdf"]
	if b.Status != records.StatusSuccess || b.Attempts != 1 || b.Error != "" {
		t.Fatalf("record not refreshed after recovery: %+v", b)
	}
	if len(processed) != 1 {
		t.Fatalf("expected a single record, got %d", len(processed))
	}
}

func TestRunCreatesMissingInputRoot(t *testing.T) {
	cfg := testConfig(t)

	r := newTestRunner(t, cfg, &scriptedClient{})
	err := r.Run(context.Background())
	if err == nil {
		t.Fatal("expected fatal error for missing input root")
	}

	if _, statErr := os.Stat(cfg.InputDir); statErr != nil {
		t.Fatalf("input root was not created: %v", statErr)
	}
}

func TestRunCancelledContext(t *testing.T) {
	cfg := testConfig(t)
	writeSource(t, cfg, "a.pdf", "AAA")

	client := &scriptedClient{}
	r := newTestRunner(t, cfg, client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("expected no calls after cancellation, got %d", client.calls)
	}
}
