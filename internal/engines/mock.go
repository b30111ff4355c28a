package engines

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/hark/tts"
)

// MockName is the registry name of the silent engine.
const MockName = "mock"

const (
	mockSampleRate = 22050
	mockWordLength = 250 * time.Millisecond
)

// Mock produces silence of a plausible length. It is used by tests and by
// --engine mock when no speech engine is installed.
type Mock struct {
	mu        sync.Mutex
	name      string
	voices    []tts.Voice
	delay     time.Duration
	failWith  error
	listErr   error
	callCount int
	lastVoice tts.Voice
}

var _ tts.Engine = (*Mock)(nil)

// NewMock creates a mock engine named name with the given voices. With no
// voices it offers a single English one.
func NewMock(name string, voices ...tts.Voice) *Mock {
	if name == "" {
		name = MockName
	}
	if len(voices) == 0 {
		voices = []tts.Voice{{Name: "Silence", Language: "en-US", Handle: "silence"}}
	}
	for i := range voices {
		voices[i].Engine = name
	}
	return &Mock{name: name, voices: voices}
}

// SetDelay simulates synthesis latency.
func (m *Mock) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// SetFailure makes every Synthesize call return err. nil clears it.
func (m *Mock) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// SetVoicesError makes Voices return err.
func (m *Mock) SetVoicesError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

// Calls returns how many times Synthesize ran and the last voice used.
func (m *Mock) Calls() (int, tts.Voice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount, m.lastVoice
}

// Name implements tts.Engine.
func (m *Mock) Name() string { return m.name }

// Close implements tts.Engine.
func (m *Mock) Close() error { return nil }

// Voices implements tts.VoiceLister.
func (m *Mock) Voices(context.Context) ([]tts.Voice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]tts.Voice(nil), m.voices...), nil
}

// Synthesize implements tts.Synthesizer.
func (m *Mock) Synthesize(ctx context.Context, text string, voice tts.Voice) (*tts.Utterance, error) {
	m.mu.Lock()
	m.callCount++
	m.lastVoice = voice
	delay, fail := m.delay, m.failWith
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail != nil {
		return nil, fail
	}

	words := SplitWords(text)
	if len(words) == 0 {
		return &tts.Utterance{}, nil
	}
	d := time.Duration(len(words)) * mockWordLength
	frames := int(d * mockSampleRate / time.Second)
	audio := &tts.Audio{
		Data:       make([]byte, frames*2),
		Format:     tts.FormatPCM16,
		SampleRate: mockSampleRate,
		Channels:   1,
	}
	return &tts.Utterance{Audio: audio, Cues: EstimateCues(words, audio.Duration())}, nil
}
