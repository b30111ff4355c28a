package engines

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/charmbracelet/hark/tts"
)

func writeModel(t *testing.T, dir, name, config string) string {
	t.Helper()
	model := filepath.Join(dir, name+".onnx")
	if err := os.WriteFile(model, []byte("model"), 0o600); err != nil {
		t.Fatal(err)
	}
	if config != "" {
		if err := os.WriteFile(model+".json", []byte(config), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return model
}

func TestPiperVoices(t *testing.T) {
	dir := t.TempDir()
	writeModel(t, dir, "en_US-lessac-medium", `{"audio":{"sample_rate":22050},"language":{"code":"en_US"}}`)
	writeModel(t, dir, "de_DE-thorsten-low", `{"audio":{"sample_rate":16000},"language":{"code":"de_DE"}}`)
	writeModel(t, dir, "broken", "")

	p := &Piper{modelDir: dir, rates: make(map[string]int)}
	voices, err := p.Voices(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(voices) != 2 {
		t.Fatalf("expected 2 voices, got %+v", voices)
	}
	if voices[0].Name != "de_DE-thorsten-low" || voices[0].Language != "de_DE" {
		t.Errorf("voices[0] = %+v", voices[0])
	}
	if p.sampleRate(voices[0].Handle) != 16000 {
		t.Errorf("sample rate not taken from model config")
	}
}

func TestPiperSynthesize(t *testing.T) {
	dir := t.TempDir()
	model := writeModel(t, dir, "en", `{"audio":{"sample_rate":16000},"language":{"code":"en"}}`)

	fr := &fakeRunner{fn: func([]string) ([]byte, error) {
		return make([]byte, 16000*2), nil
	}}
	p := &Piper{binary: "piper", modelDir: dir, run: fr.run, rates: make(map[string]int)}

	utt, err := p.Synthesize(context.Background(), "one two", tts.Voice{Name: "en", Handle: model})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if got := utt.Audio.Duration(); got != time.Second {
		t.Errorf("Duration() = %v, want 1s", got)
	}
	if len(utt.Cues) != 2 {
		t.Errorf("expected 2 cues, got %d", len(utt.Cues))
	}
	c := fr.calls[0]
	if !slices.Contains(c.args, "--output-raw") || !slices.Contains(c.args, model) {
		t.Errorf("unexpected args %v", c.args)
	}
	if c.stdin != "one two\n" {
		t.Errorf("stdin = %q", c.stdin)
	}
}

func TestPiperDefaultSampleRate(t *testing.T) {
	p := &Piper{rates: make(map[string]int)}
	if r := p.sampleRate(filepath.Join(t.TempDir(), "missing.onnx")); r != piperDefaultSampleRate {
		t.Errorf("sampleRate() = %d, want %d", r, piperDefaultSampleRate)
	}
}
