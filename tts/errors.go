package tts

import (
	"errors"
	"fmt"
)

// Common errors for the speech system.
var (
	// Startup errors
	ErrEngineUnavailable      = errors.New("speech engine is not available")
	ErrVoiceEnumerationFailed = errors.New("voice enumeration failed")

	// Per-utterance errors
	ErrSynthesisFailed    = errors.New("speech synthesis failed")
	ErrPlaybackCallFailed = errors.New("playback engine call failed")
	ErrNothingToPlay      = errors.New("nothing to play")
	ErrInvalidVoice       = errors.New("invalid voice selection")

	// Configuration errors
	ErrConfigLoadFailed = errors.New("configuration load failed")
	ErrConfigSaveFailed = errors.New("configuration save failed")

	// Dispatcher errors
	ErrDispatcherClosed = errors.New("command dispatcher is closed")
)

// IsRecoverableError reports whether err can be absorbed without halting the
// process. Only engine and voice catalog unavailability are fatal.
func IsRecoverableError(err error) bool {
	if err == nil {
		return true
	}

	switch {
	case errors.Is(err, ErrEngineUnavailable),
		errors.Is(err, ErrVoiceEnumerationFailed),
		errors.Is(err, ErrDispatcherClosed):
		return false
	}

	return true
}

// TTSError provides detailed error information.
type TTSError struct {
	Err       error  // The sentinel error
	Cause     error  // The underlying failure, if any
	Component string // Component that generated the error
	Action    string // Action being performed when error occurred
	Context   map[string]any
}

// Error implements the error interface.
func (e *TTSError) Error() string {
	msg := "unknown speech error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Component != "" {
		msg = fmt.Sprintf("%s: %s %s", msg, e.Component, e.Action)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns both the sentinel and the cause so errors.Is matches either.
func (e *TTSError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// IsRecoverable checks if the error is recoverable.
func (e *TTSError) IsRecoverable() bool {
	return IsRecoverableError(e.Err)
}

// NewTTSError creates a new error with context.
func NewTTSError(err error, component, action string) *TTSError {
	return &TTSError{
		Err:       err,
		Component: component,
		Action:    action,
		Context:   make(map[string]any),
	}
}

// WithCause records the underlying failure.
func (e *TTSError) WithCause(cause error) *TTSError {
	e.Cause = cause
	return e
}

// WithContext adds context to the error.
func (e *TTSError) WithContext(key string, value any) *TTSError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
