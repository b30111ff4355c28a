package engines

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/hark/tts"
)

func TestFallbackVoicesMerges(t *testing.T) {
	primary := NewMock("primary", tts.Voice{Name: "A", Language: "en-US"})
	secondary := NewMock("secondary", tts.Voice{Name: "B", Language: "de-DE"})
	f := NewFallback(primary, secondary)

	voices, err := f.Voices(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(voices) != 2 || voices[0].Engine != "primary" || voices[1].Engine != "secondary" {
		t.Errorf("Voices() = %+v", voices)
	}
	if f.Name() != "primary+secondary" {
		t.Errorf("Name() = %q", f.Name())
	}
}

func TestFallbackVoicesOneFails(t *testing.T) {
	primary := NewMock("primary")
	primary.SetVoicesError(errors.New("offline"))
	secondary := NewMock("secondary")
	f := NewFallback(primary, secondary)

	voices, err := f.Voices(context.Background())
	if err != nil || len(voices) != 1 {
		t.Errorf("expected secondary voices only, got %+v, %v", voices, err)
	}

	secondary.SetVoicesError(errors.New("also offline"))
	if _, err := f.Voices(context.Background()); err == nil {
		t.Error("expected error when both engines fail")
	}
}

// slowLister answers after a delay unless its context is cancelled first.
type slowLister struct {
	*Mock
	delay time.Duration
}

func (s slowLister) Voices(ctx context.Context) ([]tts.Voice, error) {
	select {
	case <-time.After(s.delay):
		return s.Mock.Voices(ctx)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestFallbackVoicesFailureDoesNotCancelOther(t *testing.T) {
	primary := NewMock("primary")
	primary.SetVoicesError(errors.New("offline"))
	secondary := slowLister{Mock: NewMock("secondary"), delay: 20 * time.Millisecond}
	f := NewFallback(primary, secondary)

	voices, err := f.Voices(context.Background())
	if err != nil {
		t.Fatalf("slow engine was cancelled by the failing one: %v", err)
	}
	if len(voices) != 1 || voices[0].Engine != "secondary" {
		t.Errorf("Voices() = %+v", voices)
	}
}

func TestFallbackSynthesize(t *testing.T) {
	tests := []struct {
		name        string
		primaryErr  error
		secondLangs []string
		wantErr     bool
		wantVoice   string
	}{
		{name: "primary succeeds", wantVoice: ""},
		{name: "exact language", primaryErr: errors.New("crash"), secondLangs: []string{"de-DE", "en-US"}, wantVoice: "v1"},
		{name: "base language", primaryErr: errors.New("crash"), secondLangs: []string{"en-GB"}, wantVoice: "v0"},
		{name: "no matching voice", primaryErr: errors.New("crash"), secondLangs: []string{"fr-FR"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := NewMock("primary", tts.Voice{Name: "A", Language: "en-US"})
			primary.SetFailure(tt.primaryErr)

			var voices []tts.Voice
			for i, lang := range tt.secondLangs {
				voices = append(voices, tts.Voice{Name: "v" + string(rune('0'+i)), Language: lang})
			}
			secondary := NewMock("secondary", voices...)
			if len(voices) == 0 {
				secondary = NewMock("secondary", tts.Voice{Name: "x", Language: "xx"})
			}

			f := NewFallback(primary, secondary)
			voice := tts.Voice{Name: "A", Language: "en-US", Engine: "primary"}
			utt, err := f.Synthesize(context.Background(), "hello world", voice)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Synthesize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if utt == nil || len(utt.Cues) != 2 {
				t.Fatalf("unexpected utterance %+v", utt)
			}

			n, last := secondary.Calls()
			if tt.wantVoice == "" {
				if n != 0 {
					t.Error("secondary should not be used when primary succeeds")
				}
				return
			}
			if last.Name != tt.wantVoice {
				t.Errorf("fallback voice = %q, want %q", last.Name, tt.wantVoice)
			}
		})
	}
}

func TestFallbackRoutesByVoiceEngine(t *testing.T) {
	primary := NewMock("primary")
	secondary := NewMock("secondary")
	f := NewFallback(primary, secondary)

	if _, err := f.Synthesize(context.Background(), "hi", tts.Voice{Engine: "secondary"}); err != nil {
		t.Fatal(err)
	}
	if n, _ := primary.Calls(); n != 0 {
		t.Error("voice owned by secondary should not go to primary")
	}
}

func TestFallbackCancelledContext(t *testing.T) {
	primary := NewMock("primary")
	primary.SetFailure(context.Canceled)
	secondary := NewMock("secondary")
	f := NewFallback(primary, secondary)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Synthesize(ctx, "hi", tts.Voice{Language: "en-US"}); err == nil {
		t.Error("expected cancellation error")
	}
	if n, _ := secondary.Calls(); n != 0 {
		t.Error("cancelled synthesis should not fall back")
	}
}
