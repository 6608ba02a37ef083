package progress

import (
	"strings"
	"testing"
)

func TestTrackerCounts(t *testing.T) {
	tr := NewTracker()
	tr.SetTotal(3)
	tr.AddSuccess()
	tr.AddSuccess()
	tr.AddFailed()
	tr.AddSkipped()

	s := tr.GetStatus()
	if s.TotalFiles != 3 {
		t.Fatalf("total: got %d", s.TotalFiles)
	}
	if s.SucceededFiles != 2 || s.FailedFiles != 1 || s.SkippedFiles != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.ProcessedFiles != 3 {
		t.Fatalf("processed: got %d", s.ProcessedFiles)
	}
}

func TestSummary(t *testing.T) {
	tr := NewTracker()
	tr.SetTotal(2)
	tr.AddSuccess()
	tr.AddFailed()

	got := tr.Summary()
	if !strings.Contains(got, "1 out of 2") {
		t.Fatalf("unexpected summary %q", got)
	}
}
