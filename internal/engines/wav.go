package engines

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/hark/tts"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

// ErrNoAudio is returned when an engine produced an empty stream.
var ErrNoAudio = errors.New("engine produced no audio")

// decodeWAV reads a WAV stream into PCM16.
func decodeWAV(r io.Reader) (*tts.Audio, error) {
	s, format, err := wav.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	defer s.Close() //nolint:errcheck

	channels := format.NumChannels
	if channels > 2 {
		channels = 2
	}
	out := beep.Format{SampleRate: format.SampleRate, NumChannels: channels, Precision: 2}
	frame := out.Width()

	var data bytes.Buffer
	if n := s.Len(); n > 0 {
		data.Grow(n * frame)
	}
	buf := make([][2]float64, 1024)
	enc := make([]byte, frame)
	for {
		n, ok := s.Stream(buf)
		for _, sample := range buf[:n] {
			out.EncodeSigned(enc, sample)
			data.Write(enc)
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	if data.Len() == 0 {
		return nil, ErrNoAudio
	}

	return &tts.Audio{
		Data:       data.Bytes(),
		Format:     tts.FormatPCM16,
		SampleRate: int(format.SampleRate),
		Channels:   channels,
	}, nil
}

// rawPCM wraps mono PCM16 from an engine that writes raw samples.
func rawPCM(data []byte, sampleRate int) (*tts.Audio, error) {
	if len(data) < 2 {
		return nil, ErrNoAudio
	}
	return &tts.Audio{
		Data:       data[:len(data)&^1],
		Format:     tts.FormatPCM16,
		SampleRate: sampleRate,
		Channels:   1,
	}, nil
}

// concatAudio joins buffers that share a format.
func concatAudio(parts []*tts.Audio) (*tts.Audio, error) {
	if len(parts) == 0 {
		return nil, ErrNoAudio
	}
	first := parts[0]
	var data []byte
	for _, p := range parts {
		if p.SampleRate != first.SampleRate || p.Channels != first.Channels {
			return nil, fmt.Errorf("mismatched audio chunks: %d Hz/%d ch vs %d Hz/%d ch",
				p.SampleRate, p.Channels, first.SampleRate, first.Channels)
		}
		data = append(data, p.Data...)
	}
	return &tts.Audio{Data: data, Format: tts.FormatPCM16, SampleRate: first.SampleRate, Channels: first.Channels}, nil
}
