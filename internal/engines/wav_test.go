package engines

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/hark/tts"
)

func TestDecodeWAV(t *testing.T) {
	audio, err := decodeWAV(bytes.NewReader(wavBytes(t, 2205, 22050)))
	if err != nil {
		t.Fatalf("decodeWAV failed: %v", err)
	}
	if audio.SampleRate != 22050 || audio.Channels != 1 || audio.Format != tts.FormatPCM16 {
		t.Errorf("unexpected format %+v", audio)
	}
	if got := audio.Duration(); got != 100*time.Millisecond {
		t.Errorf("Duration() = %v, want 100ms", got)
	}
}

func TestDecodeWAVGarbage(t *testing.T) {
	if _, err := decodeWAV(bytes.NewReader([]byte("not a wav file"))); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestRawPCM(t *testing.T) {
	if _, err := rawPCM([]byte{1}, 22050); !errors.Is(err, ErrNoAudio) {
		t.Errorf("expected ErrNoAudio, got %v", err)
	}
	audio, err := rawPCM([]byte{1, 2, 3}, 16000)
	if err != nil {
		t.Fatal(err)
	}
	if len(audio.Data) != 2 {
		t.Errorf("odd trailing byte should be dropped, got %d bytes", len(audio.Data))
	}
}

func TestConcatAudio(t *testing.T) {
	a := &tts.Audio{Data: []byte{1, 2}, SampleRate: 8000, Channels: 1}
	b := &tts.Audio{Data: []byte{3, 4}, SampleRate: 8000, Channels: 1}
	got, err := concatAudio([]*tts.Audio{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Data, []byte{1, 2, 3, 4}) {
		t.Errorf("Data = %v", got.Data)
	}

	c := &tts.Audio{Data: []byte{5, 6}, SampleRate: 16000, Channels: 1}
	if _, err := concatAudio([]*tts.Audio{a, c}); err == nil {
		t.Error("expected mismatched rates to fail")
	}
}
