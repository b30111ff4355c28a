package engines

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/hark/tts"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Fallback wraps a primary engine with a secondary one. Voices from both
// are offered; synthesis goes to the engine that owns the voice and, when
// that fails, to the other engine with a voice of the same language.
type Fallback struct {
	primary   tts.Engine
	secondary tts.Engine

	mu     sync.Mutex
	voices map[string][]tts.Voice // engine name -> voices
}

var _ tts.Engine = (*Fallback)(nil)

// NewFallback pairs primary with secondary.
func NewFallback(primary, secondary tts.Engine) *Fallback {
	return &Fallback{
		primary:   primary,
		secondary: secondary,
		voices:    make(map[string][]tts.Voice),
	}
}

// Name implements tts.Engine.
func (f *Fallback) Name() string {
	return f.primary.Name() + "+" + f.secondary.Name()
}

// Voices enumerates both engines in parallel. The errgroup only fans out:
// each engine's error is collected rather than returned, so one failing
// engine never cancels the other. One failure is logged; both failing is
// an error.
func (f *Fallback) Voices(ctx context.Context) ([]tts.Voice, error) {
	engines := []tts.Engine{f.primary, f.secondary}
	results := make([][]tts.Voice, len(engines))
	errs := make([]error, len(engines))

	g, gctx := errgroup.WithContext(ctx)
	for i, e := range engines {
		g.Go(func() error {
			results[i], errs[i] = e.Voices(gctx)
			return nil
		})
	}
	_ = g.Wait()

	var all []tts.Voice
	f.mu.Lock()
	for i, e := range engines {
		if errs[i] != nil {
			log.Warn("Voice enumeration failed", "engine", e.Name(), "err", errs[i])
			continue
		}
		f.voices[e.Name()] = results[i]
		all = append(all, results[i]...)
	}
	f.mu.Unlock()

	if errs[0] != nil && errs[1] != nil {
		return nil, errors.Join(errs...)
	}
	return all, nil
}

// Synthesize implements tts.Synthesizer.
func (f *Fallback) Synthesize(ctx context.Context, text string, voice tts.Voice) (*tts.Utterance, error) {
	first, second := f.primary, f.secondary
	if voice.Engine == f.secondary.Name() {
		first, second = f.secondary, f.primary
	}

	utt, err := first.Synthesize(ctx, text, voice)
	if err == nil || ctx.Err() != nil {
		return utt, err
	}

	alt, ok := f.match(ctx, second, voice)
	if !ok {
		return nil, fmt.Errorf("%s failed and %s has no %s voice: %w", first.Name(), second.Name(), voice.Language, err)
	}
	log.Warn("Synthesis failed, using fallback engine",
		"engine", first.Name(), "fallback", second.Name(), "voice", alt.Name, "err", err)

	utt, ferr := second.Synthesize(ctx, text, alt)
	if ferr != nil {
		return nil, fmt.Errorf("both engines failed: %w", errors.Join(err, ferr))
	}
	return utt, nil
}

// match finds a voice of e speaking voice's language, comparing the base
// language when no exact tag matches.
func (f *Fallback) match(ctx context.Context, e tts.Engine, voice tts.Voice) (tts.Voice, bool) {
	f.mu.Lock()
	voices, ok := f.voices[e.Name()]
	f.mu.Unlock()
	if !ok {
		var err error
		if voices, err = e.Voices(ctx); err != nil {
			return tts.Voice{}, false
		}
		f.mu.Lock()
		f.voices[e.Name()] = voices
		f.mu.Unlock()
	}
	if len(voices) == 0 {
		return tts.Voice{}, false
	}

	for _, v := range voices {
		if strings.EqualFold(v.Language, voice.Language) {
			return v, true
		}
	}
	base := baseLanguage(voice.Language)
	for _, v := range voices {
		if baseLanguage(v.Language) == base {
			return v, true
		}
	}
	return tts.Voice{}, false
}

func baseLanguage(tag string) string {
	tag = strings.ToLower(tag)
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		return tag[:i]
	}
	return tag
}

// Close closes both engines.
func (f *Fallback) Close() error {
	return errors.Join(f.primary.Close(), f.secondary.Close())
}
