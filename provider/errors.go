package provider

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrStreamInitiation matches errors that ended a stream before its first chunk.
	ErrStreamInitiation = errors.New("stream initiation failed")

	// ErrStreamInterrupted matches errors that ended a stream after it started.
	ErrStreamInterrupted = errors.New("stream interrupted")

	// ErrEmptyConversation is returned for a CreateMessage call without messages.
	ErrEmptyConversation = errors.New("conversation has no messages")

	// ErrUnknownProvider is returned by New for a name nothing registered.
	ErrUnknownProvider = errors.New("unknown provider")
)

// APIError is an error response from a backend.
type APIError struct {
	Provider   string
	StatusCode int
	Type       string
	Message    string
	RequestID  string

	// RetryAfterDelay is the parsed Retry-After header, zero when absent.
	RetryAfterDelay time.Duration

	Cause error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Type != "" {
		msg = e.Type + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s error (status %d): %s: %v", e.Provider, e.StatusCode, msg, e.Cause)
	}
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, msg)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// RetryAfter returns the server requested delay, if any.
func (e *APIError) RetryAfter() (time.Duration, bool) {
	return e.RetryAfterDelay, e.RetryAfterDelay > 0
}

// InitiationError reports that the initiating request never produced a stream.
// Attempts is the number of requests sent, zero when the call was rejected
// locally.
type InitiationError struct {
	Provider string
	Model    string
	Attempts int
	Err      error
}

func (e *InitiationError) Error() string {
	return fmt.Sprintf("%s %s: %v after %d attempt(s): %v",
		e.Provider, e.Model, ErrStreamInitiation, e.Attempts, e.Err)
}

func (e *InitiationError) Unwrap() []error {
	return []error{ErrStreamInitiation, e.Err}
}

// InterruptedError reports a failure after the stream had started. Emitted is
// the number of chunks delivered before the failure.
type InterruptedError struct {
	Provider string
	Model    string
	Emitted  int
	Err      error
}

func (e *InterruptedError) Error() string {
	return fmt.Sprintf("%s %s: %v after %d chunk(s): %v",
		e.Provider, e.Model, ErrStreamInterrupted, e.Emitted, e.Err)
}

func (e *InterruptedError) Unwrap() []error {
	return []error{ErrStreamInterrupted, e.Err}
}

// IsRateLimit reports whether err wraps a 429 response.
func IsRateLimit(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}
