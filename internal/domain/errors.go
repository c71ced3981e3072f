package domain

import (
	"errors"
	"fmt"
)

// ErrUnsupported is reported once at startup when a speech capability
// (capture or playback) is not available on this platform. The rest of
// the application keeps working without that capability.
var ErrUnsupported = errors.New("speech capability not available")

// RecognitionError is a runtime failure reported by the recognition
// engine (permission denied, no speech detected, stream dropped).
// Terminal for the current utterance, never retried.
type RecognitionError struct {
	Reason string
	Err    error
}

func (e *RecognitionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("recognition failed: %s: %v", e.Reason, e.Err)
	}
	return "recognition failed: " + e.Reason
}

func (e *RecognitionError) Unwrap() error { return e.Err }

// BackendError means the query backend could not produce a reply:
// transport failure or a non-2xx status. Terminal for the turn.
type BackendError struct {
	Status int
	Err    error
}

func (e *BackendError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend unavailable: status %d", e.Status)
	}
	return fmt.Sprintf("backend unavailable: %v", e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
