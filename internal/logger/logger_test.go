package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New("verbose", ""); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversion.log")

	log, err := New("info", path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Error("encode failed")
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "encode failed") {
		t.Fatalf("message missing from log file: %q", string(data))
	}
}

func TestNewConsoleOnly(t *testing.T) {
	log, err := New("debug", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Debug("console only")
}
