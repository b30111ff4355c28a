package engines

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/hark/internal/cache"
	"github.com/charmbracelet/hark/tts"
)

// Options selects and configures engines. Field tags are read by
// caarlos0/env in the main package.
type Options struct {
	Espeak     EspeakConfig     `envPrefix:"ESPEAK_"`
	Piper      PiperConfig      `envPrefix:"PIPER_"`
	Google     GoogleConfig     `envPrefix:"GOOGLE_"`
	ElevenLabs ElevenLabsConfig `envPrefix:"ELEVENLABS_"`
}

// Names lists the engines New accepts.
func Names() []string {
	return []string{EspeakName, PiperName, GoogleName, ElevenLabsName, MockName}
}

// New constructs the engine called name. A missing binary or credential is
// reported as tts.ErrEngineUnavailable.
func New(ctx context.Context, name string, opts Options) (tts.Engine, error) {
	switch name {
	case EspeakName:
		return NewEspeak(opts.Espeak)
	case PiperName:
		return NewPiper(opts.Piper)
	case GoogleName:
		return NewGoogle(ctx, opts.Google)
	case ElevenLabsName:
		return NewElevenLabs(opts.ElevenLabs)
	case MockName:
		return NewMock(MockName), nil
	}
	return nil, tts.NewTTSError(tts.ErrEngineUnavailable, "engines", "select").
		WithCause(fmt.Errorf("unknown engine %q, want one of %v", name, Names())).
		WithContext("engine", name)
}

// Build constructs the primary engine and, when fallback is set, wraps it
// with a Fallback. A non-nil store adds the synthesis cache on top.
func Build(ctx context.Context, primary, fallback string, opts Options, store *cache.Store) (tts.Engine, error) {
	if fallback != "" && !slices.Contains(Names(), fallback) {
		return nil, fmt.Errorf("unknown fallback engine %q", fallback)
	}

	engine, err := New(ctx, primary, opts)
	if err != nil {
		return nil, err
	}
	if fallback != "" && fallback != primary {
		second, err := New(ctx, fallback, opts)
		if err != nil {
			_ = engine.Close()
			return nil, err
		}
		engine = NewFallback(engine, second)
	}
	if store != nil {
		engine = NewCached(engine, store)
	}
	return engine, nil
}
