package tts

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestIsRecoverableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, true},
		{ErrSynthesisFailed, true},
		{ErrPlaybackCallFailed, true},
		{ErrConfigLoadFailed, true},
		{ErrConfigSaveFailed, true},
		{ErrEngineUnavailable, false},
		{ErrVoiceEnumerationFailed, false},
		{fmt.Errorf("startup: %w", ErrEngineUnavailable), false},
		{NewTTSError(ErrVoiceEnumerationFailed, "catalog", "list"), false},
	}

	for _, tt := range tests {
		if got := IsRecoverableError(tt.err); got != tt.want {
			t.Errorf("IsRecoverableError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestTTSErrorUnwrap(t *testing.T) {
	cause := errors.New("exit status 1")
	err := NewTTSError(ErrSynthesisFailed, "espeak", "synthesize").
		WithCause(cause).
		WithContext("voice", "en")

	if !errors.Is(err, ErrSynthesisFailed) {
		t.Error("expected sentinel to match")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to match")
	}
	if errors.Is(err, ErrPlaybackCallFailed) {
		t.Error("unexpected match for unrelated sentinel")
	}
	if !err.IsRecoverable() {
		t.Error("synthesis failures are recoverable")
	}

	msg := err.Error()
	for _, part := range []string{"speech synthesis failed", "espeak", "exit status 1"} {
		if !strings.Contains(msg, part) {
			t.Errorf("error message %q missing %q", msg, part)
		}
	}
	if err.Context["voice"] != "en" {
		t.Error("expected context to be recorded")
	}

	var target *TTSError
	if !errors.As(fmt.Errorf("wrapped: %w", err), &target) || target.Component != "espeak" {
		t.Error("expected errors.As to find TTSError")
	}
}

func TestTTSErrorEmpty(t *testing.T) {
	err := &TTSError{}
	if err.Error() != "unknown speech error" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if len(err.Unwrap()) != 0 {
		t.Error("expected nothing to unwrap")
	}
}
