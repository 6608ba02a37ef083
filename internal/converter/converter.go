// Package converter produces the secondary document format from the primary
// markdown artifact.
package converter

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Converter turns a markdown artifact into a secondary document at dst.
type Converter interface {
	Convert(ctx context.Context, src, dst string) error
}

// PandocConverter shells out to the pandoc binary.
type PandocConverter struct {
	binary string
}

// NewPandocConverter creates a converter using the given pandoc binary name
// or path.
func NewPandocConverter(binary string) *PandocConverter {
	if binary == "" {
		binary = "pandoc"
	}
	return &PandocConverter{binary: binary}
}

// Convert runs pandoc on src, writing dst. The output format is inferred by
// pandoc from the dst extension.
func (p *PandocConverter) Convert(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, p.binary, src, "-o", dst)
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("pandoc failed: %v: %s", err, msg)
		}
		return fmt.Errorf("pandoc failed: %w", err)
	}
	return nil
}
