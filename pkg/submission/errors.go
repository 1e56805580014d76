package submission

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport reports a request that never produced a response.
	ErrTransport = errors.New("submission: transport failed")
	// ErrPrintBlocked reports that the opened document could not be printed.
	// It is logged and never surfaced as a failed submission.
	ErrPrintBlocked = errors.New("submission: print blocked")
	// ErrInvalid is returned when the source fails its own validation before
	// anything is sent.
	ErrInvalid = errors.New("submission: form invalid")
)

// RejectedError is returned when the endpoint answers with a non-success
// status. Body holds the response text, usually a user-correctable message
// such as "missing field client_name[]".
type RejectedError struct {
	StatusCode int
	Body       string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("submission: rejected with status %d: %s", e.StatusCode, e.Body)
}
