package converter

import (
	"context"
	"testing"
)

func TestNewPandocConverterDefaultsBinary(t *testing.T) {
	c := NewPandocConverter("")
	if c.binary != "pandoc" {
		t.Fatalf("unexpected binary %q", c.binary)
	}
}

func TestConvertReportsCommandFailure(t *testing.T) {
	c := NewPandocConverter("false")
	if err := c.Convert(context.Background(), "in.md", "out.docx"); err == nil {
		t.Fatal("expected error from failing command")
	}
}

func TestConvertMissingBinary(t *testing.T) {
	c := NewPandocConverter("definitely-not-a-real-binary")
	if err := c.Convert(context.Background(), "in.md", "out.docx"); err == nil {
		t.Fatal("expected error for missing binary")
	}
}
