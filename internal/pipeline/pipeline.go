// Package pipeline performs one end-to-end conversion of a single file.
package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pdf2md/internal/converter"
	"pdf2md/internal/ocr"

	"go.uber.org/zap"
)

// Output artifact extensions
const (
	primaryExt   = ".md"
	secondaryExt = ".docx"
)

// Config contains pipeline configuration
type Config struct {
	InputDir  string
	OutputDir string
	Model     string
	Secondary bool
}

// Result describes a successful conversion.
type Result struct {
	Pages       int
	PrimaryPath string
}

// Pipeline converts one source file: encode, extract, write the markdown
// artifact, then attempt the best-effort secondary conversion.
type Pipeline struct {
	cfg       Config
	client    ocr.Client
	converter converter.Converter
	logger    *zap.Logger
}

// New creates a pipeline. converter may be nil when the secondary conversion
// is disabled.
func New(cfg Config, client ocr.Client, conv converter.Converter, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		client:    client,
		converter: conv,
		logger:    logger,
	}
}

// Process converts the file at relPath (relative to the input root). Every
// step but the secondary conversion is a failure point that fails the
// attempt; the secondary conversion is logged and swallowed.
func (p *Pipeline) Process(ctx context.Context, relPath string) (*Result, error) {
	documentURL, err := p.encode(filepath.Join(p.cfg.InputDir, relPath))
	if err != nil {
		p.logger.Error("Failed to encode source file",
			zap.String("file", relPath),
			zap.Error(err),
		)
		return nil, encodingErr(err)
	}

	resp, err := p.client.Process(ctx, ocr.Request{
		Model:       p.cfg.Model,
		DocumentURL: documentURL,
	})
	if err != nil {
		return nil, serviceErr(err)
	}

	primaryPath, err := p.writePrimary(relPath, resp)
	if err != nil {
		p.logger.Error("Failed to write primary output",
			zap.String("file", relPath),
			zap.Error(err),
		)
		return nil, writeErr(err)
	}

	// Best-effort secondary conversion. Primary-format success is the sole
	// success criterion: a failure here never fails the attempt.
	p.convertSecondary(ctx, relPath, primaryPath)

	return &Result{
		Pages:       len(resp.Pages),
		PrimaryPath: primaryPath,
	}, nil
}

// encode reads the source file and returns it as a base64 data URL.
func (p *Pipeline) encode(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// writePrimary emits one page-number heading per page followed by its text,
// mirroring the input's relative location under the output root.
func (p *Pipeline) writePrimary(relPath string, resp *ocr.Response) (string, error) {
	outPath := filepath.Join(p.cfg.OutputDir, replaceExt(relPath, primaryExt))
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}

	var buf strings.Builder
	for _, page := range resp.Pages {
		fmt.Fprintf(&buf, "## Page %d\n\n", page.Index+1)
		buf.WriteString(page.Markdown + "\n\n")
	}

	if err := os.WriteFile(outPath, []byte(buf.String()), 0o644); err != nil {
		return "", err
	}
	return outPath, nil
}

func (p *Pipeline) convertSecondary(ctx context.Context, relPath, primaryPath string) {
	if !p.cfg.Secondary || p.converter == nil {
		return
	}

	secondaryPath := filepath.Join(p.cfg.OutputDir, replaceExt(relPath, secondaryExt))
	if err := p.converter.Convert(ctx, primaryPath, secondaryPath); err != nil {
		p.logger.Error("Secondary conversion failed",
			zap.String("file", relPath),
			zap.Error(err),
		)
		return
	}

	p.logger.Info("Secondary conversion completed",
		zap.String("file", relPath),
		zap.String("output", secondaryPath),
	)
}

// replaceExt swaps the path's extension, preserving any subdirectory prefix.
func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
