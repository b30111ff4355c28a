package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/hark/tts"
)

// ErrInvalidAudio is returned when a buffer cannot be played.
var ErrInvalidAudio = errors.New("invalid audio")

// pcmStreamer streams signed 16-bit little-endian PCM as beep samples.
type pcmStreamer struct {
	data     []byte
	channels int
	frames   int
	pos      int
}

func newPCMStreamer(a *tts.Audio) (*pcmStreamer, error) {
	if err := validateAudio(a); err != nil {
		return nil, err
	}
	return &pcmStreamer{
		data:     a.Data,
		channels: a.Channels,
		frames:   len(a.Data) / (2 * a.Channels),
	}, nil
}

func validateAudio(a *tts.Audio) error {
	switch {
	case a == nil:
		return fmt.Errorf("%w: nil buffer", ErrInvalidAudio)
	case a.Format != tts.FormatPCM16:
		return fmt.Errorf("%w: unsupported format %d", ErrInvalidAudio, a.Format)
	case a.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidAudio, a.SampleRate)
	case a.Channels != 1 && a.Channels != 2:
		return fmt.Errorf("%w: %d channels", ErrInvalidAudio, a.Channels)
	case len(a.Data) < 2*a.Channels:
		return fmt.Errorf("%w: empty buffer", ErrInvalidAudio)
	}
	return nil
}

// Stream implements beep.Streamer.
func (s *pcmStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= s.frames {
		return 0, false
	}
	for n < len(samples) && s.pos < s.frames {
		off := s.pos * 2 * s.channels
		left := sampleAt(s.data, off)
		right := left
		if s.channels == 2 {
			right = sampleAt(s.data, off+2)
		}
		samples[n] = [2]float64{left, right}
		n++
		s.pos++
	}
	return n, true
}

// Err implements beep.Streamer.
func (s *pcmStreamer) Err() error { return nil }

// Len implements beep.StreamSeeker.
func (s *pcmStreamer) Len() int { return s.frames }

// Position implements beep.StreamSeeker.
func (s *pcmStreamer) Position() int { return s.pos }

// Seek implements beep.StreamSeeker.
func (s *pcmStreamer) Seek(p int) error {
	if p < 0 || p > s.frames {
		return fmt.Errorf("seek position %d out of range [0, %d]", p, s.frames)
	}
	s.pos = p
	return nil
}

func sampleAt(data []byte, off int) float64 {
	v := int16(binary.LittleEndian.Uint16(data[off:]))
	return float64(v) / 32768
}

// putSample writes v as a clipped signed 16-bit little-endian sample.
func putSample(dst []byte, v float64) {
	v = math.Max(-1, math.Min(1, v))
	var s int16
	if v >= 0 {
		s = int16(v * 32767)
	} else {
		s = int16(v * 32768)
	}
	binary.LittleEndian.PutUint16(dst, uint16(s))
}

// volumeToPower maps a linear volume in [0, 1] to the exponent used by a
// base-2 effects.Volume.
func volumeToPower(v float64) (power float64, silent bool) {
	if v <= 0 {
		return 0, true
	}
	return math.Log2(math.Min(v, 1)), false
}
