package engines

import (
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/hark/internal/cache"
	"github.com/charmbracelet/hark/tts"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		engine  string
		opts    Options
		wantErr error
	}{
		{name: "mock", engine: MockName},
		{name: "unknown", engine: "festival", wantErr: tts.ErrEngineUnavailable},
		{name: "espeak missing", engine: EspeakName, opts: Options{Espeak: EspeakConfig{Binary: "hark-no-such-binary"}}, wantErr: tts.ErrEngineUnavailable},
		{name: "elevenlabs without key", engine: ElevenLabsName, wantErr: tts.ErrEngineUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(context.Background(), tt.engine, tt.opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("New() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if e.Name() != tt.engine {
				t.Errorf("Name() = %q, want %q", e.Name(), tt.engine)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	store, err := cache.Open(cache.Config{MemoryCapacity: 1 << 20})
	if err != nil {
		t.Fatal(err)
	}

	e, err := Build(context.Background(), MockName, "", Options{}, store)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*Cached); !ok {
		t.Errorf("expected cached engine, got %T", e)
	}

	if _, err := Build(context.Background(), MockName, "nope", Options{}, nil); err == nil {
		t.Error("expected unknown fallback to fail")
	}

	plain, err := Build(context.Background(), MockName, MockName, Options{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := plain.(*Mock); !ok {
		t.Errorf("same primary and fallback should not wrap, got %T", plain)
	}
}
