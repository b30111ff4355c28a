package audio

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/hark/tts"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
)

const resampleQuality = 4

// source adapts one utterance to the io.Reader oto pulls from. Output is
// interleaved signed 16-bit little-endian at the context rate and channel
// count.
type source struct {
	mu        sync.Mutex
	pcm       *pcmStreamer
	resampler *beep.Resampler
	volume    *effects.Volume
	stream    beep.Streamer
	buf       [][2]float64
	srcRate   int
	outRate   int
	channels  int
	duration  time.Duration
	drained   bool
}

func newSource(a *tts.Audio, outRate, channels int, rate, volume float64) (*source, error) {
	pcm, err := newPCMStreamer(a)
	if err != nil {
		return nil, err
	}

	s := &source{
		pcm:      pcm,
		srcRate:  a.SampleRate,
		outRate:  outRate,
		channels: channels,
		duration: a.Duration(),
	}
	s.resampler = beep.ResampleRatio(resampleQuality, s.ratio(rate), pcm)
	power, silent := volumeToPower(volume)
	s.volume = &effects.Volume{
		Streamer: s.resampler,
		Base:     2,
		Volume:   power,
		Silent:   silent,
	}
	s.stream = beep.Seq(s.volume, beep.Callback(func() {
		s.drained = true
	}))
	return s, nil
}

func (s *source) ratio(rate float64) float64 {
	return float64(s.srcRate) / float64(s.outRate) * rate
}

// Read implements io.Reader.
func (s *source) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.drained {
		return 0, io.EOF
	}

	size := s.frameSize()
	frames := len(p) / size
	if frames == 0 {
		return 0, nil
	}
	if cap(s.buf) < frames {
		s.buf = make([][2]float64, frames)
	}
	buf := s.buf[:frames]

	n, ok := s.stream.Stream(buf)
	for i := 0; i < n; i++ {
		if s.channels == 1 {
			putSample(p[i*size:], (buf[i][0]+buf[i][1])/2)
			continue
		}
		putSample(p[i*size:], buf[i][0])
		putSample(p[i*size+2:], buf[i][1])
	}
	if !ok || (n == 0 && s.drained) {
		s.drained = true
		if n == 0 {
			return 0, io.EOF
		}
	}
	return n * size, nil
}

func (s *source) frameSize() int {
	return 2 * s.channels
}

// setRate changes the playback speed without moving the read position.
func (s *source) setRate(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resampler.SetRatio(s.ratio(rate))
}

func (s *source) setVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume.Volume, s.volume.Silent = volumeToPower(v)
}

// position returns how far into the utterance the reader has consumed,
// in source time.
func (s *source) position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.pcm.Position()) * time.Second / time.Duration(s.srcRate)
}

func (s *source) done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drained
}
