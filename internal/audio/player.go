package audio

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/hark/tts"
	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// trackInterval is how often the cue tracker samples the play position.
const trackInterval = 15 * time.Millisecond

var (
	// ErrNotLoaded is returned by Play when no source is loaded.
	ErrNotLoaded = errors.New("no audio loaded")
	// ErrNotPlaying is returned by Pause when nothing is playing.
	ErrNotPlaying = errors.New("not playing")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("player closed")
)

// PlayerConfig contains configuration for the audio output.
type PlayerConfig struct {
	SampleRate int           // 44100 or 48000 Hz only
	Channels   int           // 1 = mono, 2 = stereo
	BitDepth   int           // 16 bits per sample
	BufferSize time.Duration // device buffer
}

// DefaultPlayerConfig returns the default output configuration.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		SampleRate: 44100,
		Channels:   2,
		BitDepth:   16,
		BufferSize: 80 * time.Millisecond,
	}
}

func validateConfig(config PlayerConfig) error {
	// oto only supports these rates reliably
	if config.SampleRate != 44100 && config.SampleRate != 48000 {
		return fmt.Errorf("sample rate must be 44100 or 48000 Hz, got %d", config.SampleRate)
	}
	if config.Channels != 1 && config.Channels != 2 {
		return fmt.Errorf("channels must be 1 (mono) or 2 (stereo), got %d", config.Channels)
	}
	if config.BitDepth != 16 {
		return fmt.Errorf("bit depth must be 16, got %d", config.BitDepth)
	}
	if config.BufferSize <= 0 {
		return errors.New("buffer size must be positive")
	}
	return nil
}

// output is the device side of the player.
type output interface {
	NewPlayer(r io.Reader) outputPlayer
}

type outputPlayer interface {
	Play()
	Pause()
	IsPlaying() bool
	BufferedSize() int
	Close() error
}

type otoOutput struct {
	ctx *oto.Context
}

func (o otoOutput) NewPlayer(r io.Reader) outputPlayer {
	return o.ctx.NewPlayer(r)
}

type playerState int

const (
	stateEmpty playerState = iota
	stateLoaded
	statePlaying
	statePaused
)

// utterance is one loaded source and its tracker.
type utterance struct {
	gen    uint64
	src    *source
	out    outputPlayer
	cues   *cueTracker
	stop   chan struct{}
	once   sync.Once
	frameB int
}

func (u *utterance) halt() {
	u.once.Do(func() {
		close(u.stop)
		u.out.Pause()
		if err := u.out.Close(); err != nil {
			log.Debug("Closing output player", "err", err)
		}
	})
}

// Player implements tts.Playback on top of oto. One utterance is loaded at
// a time; loading a new one discards the previous.
type Player struct {
	out      output
	outRate  int
	channels int

	mu      sync.Mutex
	cur     *utterance
	state   playerState
	volume  float64
	rate    float64
	closed  bool
	onEnded func(uint64)
	onCue   func(uint64)

	logger *log.Logger
}

var _ tts.Playback = (*Player)(nil)

// NewPlayer opens the audio device. oto allows a single context per
// process, so NewPlayer must only be called once.
func NewPlayer(config PlayerConfig) (*Player, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   config.SampleRate,
		ChannelCount: config.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   config.BufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	return newPlayer(otoOutput{ctx: ctx}, config.SampleRate, config.Channels), nil
}

func newPlayer(out output, outRate, channels int) *Player {
	return &Player{
		out:      out,
		outRate:  outRate,
		channels: channels,
		volume:   tts.MaxVolume,
		rate:     1,
		onEnded:  func(uint64) {},
		onCue:    func(uint64) {},
		logger:   log.WithPrefix("audio"),
	}
}

// OnEnded registers the natural end callback.
func (p *Player) OnEnded(fn func(generation uint64)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onEnded = fn
}

// OnWordCueEntered registers the cue callback.
func (p *Player) OnWordCueEntered(fn func(generation uint64)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onCue = fn
}

// Load replaces the current source. Playback does not start until Play.
func (p *Player) Load(audio *tts.Audio, cues []tts.WordCue, generation uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	src, err := newSource(audio, p.outRate, p.channels, p.rate, p.volume)
	if err != nil {
		return err
	}

	p.stopLocked()
	p.cur = &utterance{
		gen:    generation,
		src:    src,
		out:    p.out.NewPlayer(src),
		cues:   newCueTracker(cues),
		stop:   make(chan struct{}),
		frameB: src.frameSize(),
	}
	p.state = stateLoaded
	p.logger.Debug("Loaded", "gen", generation, "duration", src.duration, "cues", len(cues))
	return nil
}

// Play starts a loaded source or resumes a paused one.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.closed:
		return ErrClosed
	case p.cur == nil:
		return ErrNotLoaded
	}

	switch p.state {
	case stateLoaded:
		p.cur.out.Play()
		p.state = statePlaying
		go p.track(p.cur)
	case statePaused:
		p.cur.out.Play()
		p.state = statePlaying
	}
	return nil
}

// Pause suspends the current source in place.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != statePlaying {
		return ErrNotPlaying
	}
	p.cur.out.Pause()
	p.state = statePaused
	return nil
}

// Stop discards the current source. Stopping with nothing loaded is not an
// error.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

func (p *Player) stopLocked() {
	if p.cur != nil {
		p.cur.halt()
		p.cur = nil
	}
	p.state = stateEmpty
}

// SetVolume sets the linear volume in [0, 1].
func (p *Player) SetVolume(volume float64) error {
	if volume < tts.MinVolume || volume > tts.MaxVolume {
		return fmt.Errorf("volume must be between %.1f and %.1f, got %f", tts.MinVolume, tts.MaxVolume, volume)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
	if p.cur != nil {
		p.cur.src.setVolume(volume)
	}
	return nil
}

// SetRate sets the speed multiplier. It applies to the current source
// immediately and to every later one.
func (p *Player) SetRate(rate float64) error {
	if rate < tts.MinRate || rate > tts.MaxRate {
		return fmt.Errorf("rate must be between %.1f and %.1f, got %f", tts.MinRate, tts.MaxRate, rate)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.rate = rate
	if p.cur != nil {
		p.cur.src.setRate(rate)
	}
	return nil
}

// Close stops playback. Later calls return ErrClosed.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.closed = true
	return nil
}

// track reports cues and the natural end for u. It exits when u is halted.
func (p *Player) track(u *utterance) {
	ticker := time.NewTicker(trackInterval)
	defer ticker.Stop()

	for {
		select {
		case <-u.stop:
			return
		case <-ticker.C:
		}

		p.mu.Lock()
		if p.cur != u {
			p.mu.Unlock()
			return
		}
		playing := p.state == statePlaying
		rate := p.rate
		onCue, onEnded := p.onCue, p.onEnded
		p.mu.Unlock()

		if !playing {
			continue
		}

		heard := u.src.position() - p.latency(u, rate)
		drained := u.src.done() && !u.out.IsPlaying()
		if drained {
			heard = u.src.duration
		}
		for n := u.cues.advance(heard); n > 0; n-- {
			onCue(u.gen)
		}
		if drained {
			onEnded(u.gen)
			return
		}
	}
}

// latency converts audio still queued in the device into source time.
func (p *Player) latency(u *utterance, rate float64) time.Duration {
	frames := u.out.BufferedSize() / u.frameB
	return time.Duration(float64(frames) * rate * float64(time.Second) / float64(p.outRate))
}
