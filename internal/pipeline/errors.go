package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies a failed pipeline step.
type Kind string

const (
	// KindEncoding covers failures reading or encoding the source file.
	KindEncoding Kind = "encoding"
	// KindService covers transport and service failures from the extraction
	// call. This is the dominant transient failure the retry loop exists for.
	KindService Kind = "service"
	// KindWrite covers failures persisting the primary output.
	KindWrite Kind = "write"
)

// StepError is an attempt-level pipeline failure.
type StepError struct {
	Kind Kind
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// KindOf returns the step kind of err, or "" when err is not a StepError.
func KindOf(err error) Kind {
	var step *StepError
	if errors.As(err, &step) {
		return step.Kind
	}
	return ""
}

func encodingErr(err error) error { return &StepError{Kind: KindEncoding, Err: err} }
func serviceErr(err error) error  { return &StepError{Kind: KindService, Err: err} }
func writeErr(err error) error    { return &StepError{Kind: KindWrite, Err: err} }
