// Package tts implements speech playback control: the controller that turns
// text into audio with word cues and reconciles engine events with user
// commands.
package tts

import (
	"context"
	"fmt"
	"time"
)

// AudioFormat describes how Audio.Data is encoded.
type AudioFormat int

const (
	// FormatPCM16 is signed 16-bit little-endian interleaved PCM.
	FormatPCM16 AudioFormat = iota
)

// Audio is a synthesized audio buffer.
type Audio struct {
	Data       []byte
	Format     AudioFormat
	SampleRate int
	Channels   int
}

// Duration returns the playback length at rate 1.0.
func (a *Audio) Duration() time.Duration {
	if a == nil || a.SampleRate <= 0 || a.Channels <= 0 {
		return 0
	}
	frames := len(a.Data) / (2 * a.Channels)
	return time.Duration(frames) * time.Second / time.Duration(a.SampleRate)
}

// WordCue marks where a word starts in the audio. Offsets are measured at
// rate 1.0.
type WordCue struct {
	Text     string
	Offset   time.Duration
	Duration time.Duration
}

// Utterance is the result of synthesizing one block of text.
type Utterance struct {
	Audio *Audio
	Cues  []WordCue
}

// Voice describes a synthesis voice. Handle is engine specific and opaque to
// everything outside the engine that produced it.
type Voice struct {
	Name     string
	Language string
	Engine   string
	Handle   string
}

// Label returns the display label used by voice pickers.
func (v Voice) Label() string {
	return fmt.Sprintf("%s (%s)", v.Name, v.Language)
}

// Synthesizer turns text into audio plus word cues.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice Voice) (*Utterance, error)
}

// VoiceLister enumerates the voices an engine offers.
type VoiceLister interface {
	Voices(ctx context.Context) ([]Voice, error)
}

// Engine is a complete synthesis backend.
type Engine interface {
	Synthesizer
	VoiceLister
	Name() string
	Close() error
}

// Playback plays one loaded source at a time. Callbacks fire on engine owned
// goroutines and carry the generation passed to Load.
type Playback interface {
	Load(audio *Audio, cues []WordCue, generation uint64) error
	Play() error
	Pause() error
	Stop() error
	SetVolume(volume float64) error
	SetRate(rate float64) error
	OnEnded(fn func(generation uint64))
	OnWordCueEntered(fn func(generation uint64))
}
