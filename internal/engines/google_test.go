package engines

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/hark/tts"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"
)

type fakeGoogle struct {
	mu       sync.Mutex
	requests []*texttospeechpb.SynthesizeSpeechRequest
	audio    []byte
	err      error
	closed   bool
}

func (f *fakeGoogle) SynthesizeSpeech(_ context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &texttospeechpb.SynthesizeSpeechResponse{AudioContent: f.audio}, nil
}

func (f *fakeGoogle) ListVoices(context.Context, *texttospeechpb.ListVoicesRequest) (*texttospeechpb.ListVoicesResponse, error) {
	return &texttospeechpb.ListVoicesResponse{
		Voices: []*texttospeechpb.Voice{
			{Name: "en-US-Standard-A", LanguageCodes: []string{"en-US"}},
			{Name: "fr-FR-Standard-B", LanguageCodes: []string{"fr-FR"}},
		},
	}, nil
}

func (f *fakeGoogle) Close() error {
	f.closed = true
	return nil
}

func TestGoogleVoices(t *testing.T) {
	g := newGoogle(&fakeGoogle{}, 0)
	voices, err := g.Voices(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := tts.Voice{Name: "fr-FR-Standard-B", Language: "fr-FR", Engine: GoogleName, Handle: "fr-FR-Standard-B"}
	if len(voices) != 2 || voices[1] != want {
		t.Errorf("Voices() = %+v", voices)
	}
}

func TestGoogleSynthesizeChunks(t *testing.T) {
	api := &fakeGoogle{audio: wavBytes(t, googleSampleRate/2, googleSampleRate)}
	g := newGoogle(api, 60000)

	text := strings.Repeat("word ", googleChunkLimit/5+10)
	utt, err := g.Synthesize(context.Background(), text, tts.Voice{Name: "A", Language: "en-US", Handle: "en-US-Standard-A"})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if len(api.requests) != 2 {
		t.Fatalf("expected 2 chunked requests, got %d", len(api.requests))
	}
	if got := utt.Audio.Duration(); got != time.Second {
		t.Errorf("joined duration = %v, want 1s", got)
	}
	if len(utt.Cues) != len(SplitWords(text)) {
		t.Errorf("expected a cue per word, got %d", len(utt.Cues))
	}
	if utt.Cues[len(utt.Cues)-1].Offset < 500*time.Millisecond {
		t.Error("second chunk cues should be offset by the first chunk")
	}

	req := api.requests[0]
	if req.GetVoice().GetName() != "en-US-Standard-A" || req.GetAudioConfig().GetAudioEncoding() != texttospeechpb.AudioEncoding_LINEAR16 {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestGoogleSynthesizeError(t *testing.T) {
	api := &fakeGoogle{err: errors.New("quota")}
	g := newGoogle(api, 60000)

	if _, err := g.Synthesize(context.Background(), "hello", tts.Voice{}); err == nil {
		t.Error("expected error")
	}
	if err := g.Close(); err != nil || !api.closed {
		t.Error("Close should close the client")
	}
}
