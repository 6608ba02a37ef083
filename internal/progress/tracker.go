package progress

import (
	"fmt"
	"sync"
	"time"
)

// Status is a snapshot of the run so far.
type Status struct {
	TotalFiles     int
	ProcessedFiles int
	SucceededFiles int
	FailedFiles    int
	SkippedFiles   int
	StartTime      time.Time
}

// Tracker tracks run progress
type Tracker struct {
	mu     sync.RWMutex
	status Status
}

// NewTracker creates a new progress tracker
func NewTracker() *Tracker {
	return &Tracker{
		status: Status{StartTime: time.Now()},
	}
}

// SetTotal sets the size of the work set
func (t *Tracker) SetTotal(files int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.TotalFiles = files
}

// AddSuccess increments the succeeded file count
func (t *Tracker) AddSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.SucceededFiles++
	t.status.ProcessedFiles++
}

// AddFailed increments the exhausted-failure file count
func (t *Tracker) AddFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.FailedFiles++
	t.status.ProcessedFiles++
}

// AddSkipped increments the count of files already converted in a prior run
func (t *Tracker) AddSkipped() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.SkippedFiles++
}

// GetStatus returns a snapshot of the current status
func (t *Tracker) GetStatus() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.status
}

// Summary renders the end-of-run summary line.
func (t *Tracker) Summary() string {
	s := t.GetStatus()
	elapsed := time.Since(s.StartTime).Round(time.Second)
	return fmt.Sprintf("Conversion complete. Total successful conversions: %d out of %d (elapsed %s)",
		s.SucceededFiles, s.TotalFiles, elapsed)
}
