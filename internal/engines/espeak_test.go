package engines

import (
	"context"
	"errors"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/hark/tts"
)

const espeakVoicesOutput = `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 5  en-gb           --/M      English_(Great_Britain) gmw/en            (en 2)
 5  en-us           --/M      English_(America)  gmw/en-US            (en 3)
`

func TestParseEspeakVoices(t *testing.T) {
	voices := parseEspeakVoices([]byte(espeakVoicesOutput))
	if len(voices) != 3 {
		t.Fatalf("expected 3 voices, got %d", len(voices))
	}
	want := tts.Voice{Name: "English (America)", Language: "en-us", Engine: EspeakName, Handle: "en-us"}
	if voices[2] != want {
		t.Errorf("voices[2] = %+v, want %+v", voices[2], want)
	}
}

func TestEspeakSynthesize(t *testing.T) {
	wav := wavBytes(t, 22050, 22050)
	fr := &fakeRunner{fn: func(args []string) ([]byte, error) {
		i := slices.Index(args, "-w")
		if i < 0 {
			return nil, errors.New("no -w")
		}
		return nil, os.WriteFile(args[i+1], wav, 0o600)
	}}
	e := &Espeak{binary: "espeak-ng", tempDir: t.TempDir(), run: fr.run}

	utt, err := e.Synthesize(context.Background(), "Hello there world", tts.Voice{Handle: "en-us"})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if len(utt.Cues) != 3 || utt.Cues[0].Text != "Hello" {
		t.Errorf("unexpected cues %+v", utt.Cues)
	}
	if len(fr.calls) != 1 {
		t.Fatalf("expected one espeak run, got %d", len(fr.calls))
	}
	c := fr.calls[0]
	if c.stdin != "Hello there world" {
		t.Errorf("stdin = %q", c.stdin)
	}
	if !slices.Contains(c.args, "en-us") || !slices.Contains(c.args, "--stdin") {
		t.Errorf("unexpected args %v", c.args)
	}
}

func TestEspeakSynthesizeEmpty(t *testing.T) {
	fr := &fakeRunner{fn: func([]string) ([]byte, error) { return nil, nil }}
	e := &Espeak{binary: "espeak-ng", run: fr.run}

	utt, err := e.Synthesize(context.Background(), " ,; ", tts.Voice{})
	if err != nil || utt.Audio != nil {
		t.Errorf("expected empty utterance, got %+v, %v", utt, err)
	}
	if len(fr.calls) != 0 {
		t.Error("espeak should not run for text without words")
	}
}

func TestEspeakFailure(t *testing.T) {
	fr := &fakeRunner{fn: func([]string) ([]byte, error) { return nil, errors.New("boom") }}
	e := &Espeak{binary: "espeak-ng", tempDir: t.TempDir(), run: fr.run}

	if _, err := e.Synthesize(context.Background(), "hi", tts.Voice{}); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected runner error, got %v", err)
	}
}

func TestNewEspeakMissingBinary(t *testing.T) {
	_, err := NewEspeak(EspeakConfig{Binary: "hark-no-such-binary"})
	if !errors.Is(err, tts.ErrEngineUnavailable) {
		t.Errorf("expected ErrEngineUnavailable, got %v", err)
	}
}
