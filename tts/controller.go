package tts

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// DefaultSynthesisTimeout bounds a single Synthesize call.
const DefaultSynthesisTimeout = 60 * time.Second

// View is a snapshot of controller state published after every command.
type View struct {
	State      StateType
	Word       string // word currently displayed
	Cursor     int    // number of cues entered so far
	Words      int    // number of words in the utterance
	Text       string // text of the current utterance
	Generation uint64
	Handled    uint64 // commands processed so far
	Spoken     uint64 // utterances that started playing

	// Cues of the current utterance. Shared with the controller; read only.
	Cues []WordCue

	VoiceIndex int
	Voice      Voice
	Volume     float64
	Rate       float64 // committed rate
	RateInput  float64 // latest requested rate, possibly not committed yet

	Playing         bool // play toggle position
	Synthesizing    bool
	VoiceSelectable bool
	StopEnabled     bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithRateDebounce sets how long rate input must settle before it commits.
func WithRateDebounce(d time.Duration) Option {
	return func(c *Controller) {
		c.debounce = NewDebouncer(d)
	}
}

// WithSynthesisTimeout bounds each synthesis call.
func WithSynthesisTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.synthTimeout = d
	}
}

// WithLogger replaces the controller logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// Controller owns playback state. All mutation happens on the goroutine
// running Run; everything else talks to it through commands.
type Controller struct {
	// Collaborators
	synth      Synthesizer
	player     Playback
	catalog    *Catalog
	dispatcher *Dispatcher
	machine    *StateMachine
	debounce   *Debouncer
	logger     *log.Logger

	// Persisted settings
	config     Config
	voiceIndex int
	rateInput  float64

	// Current utterance
	words       []WordCue
	cursor      int
	word        string
	text        string
	generation  uint64
	utteranceID string
	playing     bool
	busy        bool

	synthTimeout time.Duration
	handled      uint64
	spoken       uint64

	// Published snapshots
	updates chan View
	viewMu  sync.RWMutex
	view    View
}

// NewController wires a controller to its collaborators. The persisted voice
// name in cfg is reconciled against catalog.
func NewController(synth Synthesizer, player Playback, catalog *Catalog, cfg Config, opts ...Option) (*Controller, error) {
	if synth == nil {
		return nil, NewTTSError(ErrEngineUnavailable, "controller", "create").
			WithCause(errors.New("synthesizer is nil"))
	}
	if player == nil {
		return nil, NewTTSError(ErrEngineUnavailable, "controller", "create").
			WithCause(errors.New("playback engine is nil"))
	}
	if catalog == nil || catalog.Len() == 0 {
		return nil, NewTTSError(ErrVoiceEnumerationFailed, "controller", "create").
			WithCause(errors.New("voice catalog is empty"))
	}

	cfg.Normalize()

	c := &Controller{
		synth:        synth,
		player:       player,
		catalog:      catalog,
		dispatcher:   NewDispatcher(),
		machine:      NewStateMachine(),
		debounce:     NewDebouncer(DefaultRateDebounce),
		logger:       log.WithPrefix("controller"),
		config:       cfg,
		rateInput:    cfg.Rate,
		synthTimeout: DefaultSynthesisTimeout,
		updates:      make(chan View, 1),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.voiceIndex = catalog.Reconcile(cfg.Voice)
	if v, ok := catalog.Voice(c.voiceIndex); ok {
		c.config.SetVoice(v.Name)
	}

	c.machine.OnEnter(StateIdle, func() { c.logger.Debug("State changed", "state", StateIdle) })
	c.machine.OnEnter(StateSpeaking, func() { c.logger.Debug("State changed", "state", StateSpeaking) })
	c.machine.OnEnter(StatePaused, func() { c.logger.Debug("State changed", "state", StatePaused) })

	player.OnEnded(func(gen uint64) {
		_ = c.dispatcher.Send(EngineEndedEvent{Generation: gen})
	})
	player.OnWordCueEntered(func(gen uint64) {
		_ = c.dispatcher.Send(WordCueEnteredEvent{Generation: gen})
	})

	if err := player.SetVolume(c.config.Volume); err != nil {
		c.absorb(NewTTSError(ErrPlaybackCallFailed, "player", "set volume").WithCause(err))
	}

	c.snapshot()
	return c, nil
}

// Send enqueues a command for the consumer loop.
func (c *Controller) Send(cmd Command) error {
	return c.dispatcher.Send(cmd)
}

// Updates delivers the latest View after each command. Intermediate views
// may be skipped; the channel is closed when Run returns.
func (c *Controller) Updates() <-chan View {
	return c.updates
}

// View returns the most recent snapshot.
func (c *Controller) View() View {
	c.viewMu.RLock()
	defer c.viewMu.RUnlock()
	return c.view
}

// Catalog returns the voice catalog.
func (c *Controller) Catalog() *Catalog {
	return c.catalog
}

// Run consumes commands until ShutdownRequested arrives or ctx is done. It
// stops any loaded source and returns the configuration to persist.
func (c *Controller) Run(ctx context.Context) Config {
	defer close(c.updates)
	defer c.dispatcher.Close()
	c.publish()

	for {
		cmd, err := c.dispatcher.Next(ctx)
		if err != nil {
			break
		}
		if !c.handle(ctx, cmd) {
			break
		}
		c.handled++
		c.publish()
	}

	c.debounce.Stop()
	if c.machine.Current().Active() {
		c.stop()
	}
	c.publish()
	return c.config
}

// handle runs one command to completion. It returns false on shutdown.
func (c *Controller) handle(ctx context.Context, cmd Command) bool {
	if cmd.Kind() != KindWordCueEnteredEvent {
		c.logger.Debug("Handling command", "cmd", cmd.Kind(), "state", c.machine.Current())
	}

	switch cmd := cmd.(type) {
	case PlayRequested:
		c.play(ctx, cmd.Text)
	case DraggedTextReceived:
		c.play(ctx, cmd.Text)
	case TogglePlayRequested:
		switch c.machine.Current() {
		case StateIdle:
			c.play(ctx, cmd.Text)
		case StateSpeaking:
			c.pause()
		case StatePaused:
			c.resume()
		}
	case PauseRequested:
		c.pause()
	case ResumeRequested:
		c.resume()
	case StopRequested:
		if c.machine.Current().Active() {
			c.stop()
		}
	case EngineEndedEvent:
		if cmd.Generation != c.generation || !c.machine.Current().Active() {
			c.logger.Debug("Discarding stale end event", "gen", cmd.Generation, "current", c.generation)
			return true
		}
		c.logger.Debug("Utterance finished", "utterance", c.utteranceID)
		c.stop()
	case WordCueEnteredEvent:
		c.cue(cmd.Generation)
	case VoiceChangeRequested:
		c.selectVoice(cmd.Index)
	case VolumeChangeRequested:
		c.setVolume(cmd.Volume)
	case RateChangeRequested:
		c.rateInput = cmd.Rate
		c.debounce.Schedule(func(gen uint64) {
			_ = c.dispatcher.Send(RateCommitTimerFired{Generation: gen})
		})
	case RateCommitTimerFired:
		c.commitRate(cmd.Generation)
	case ShutdownRequested:
		return false
	default:
		c.logger.Warn("Unknown command", "cmd", cmd.Kind())
	}
	return true
}

// play synthesizes text and replaces the current utterance with it. A
// failed synthesis leaves any running utterance untouched.
func (c *Controller) play(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		c.logger.Debug("Ignoring play request", "err", ErrNothingToPlay)
		return
	}

	voice, ok := c.catalog.Voice(c.voiceIndex)
	if !ok {
		c.absorb(NewTTSError(ErrInvalidVoice, "controller", "play").WithContext("index", c.voiceIndex))
		return
	}

	c.busy = true
	c.publish()

	sctx, cancel := context.WithTimeout(ctx, c.synthTimeout)
	start := time.Now()
	utt, err := c.synth.Synthesize(sctx, text, voice)
	cancel()
	c.busy = false
	if err != nil {
		c.absorb(NewTTSError(ErrSynthesisFailed, "synthesizer", "synthesize").
			WithCause(err).
			WithContext("voice", voice.Name))
		return
	}
	if utt == nil || utt.Audio == nil || len(utt.Cues) == 0 {
		c.logger.Debug("Synthesis produced no words", "err", ErrNothingToPlay)
		return
	}

	// Never overlap two loaded sources.
	if err := c.player.Stop(); err != nil {
		c.absorb(NewTTSError(ErrPlaybackCallFailed, "player", "stop").WithCause(err))
	}
	c.generation++

	if err := c.player.Load(utt.Audio, utt.Cues, c.generation); err != nil {
		c.absorb(NewTTSError(ErrPlaybackCallFailed, "player", "load").WithCause(err))
		c.reset()
		return
	}
	if err := c.player.SetRate(c.config.Rate); err != nil {
		c.absorb(NewTTSError(ErrPlaybackCallFailed, "player", "set rate").WithCause(err))
	}
	if err := c.player.SetVolume(c.config.Volume); err != nil {
		c.absorb(NewTTSError(ErrPlaybackCallFailed, "player", "set volume").WithCause(err))
	}
	if err := c.player.Play(); err != nil {
		c.absorb(NewTTSError(ErrPlaybackCallFailed, "player", "play").WithCause(err))
		_ = c.player.Stop()
		c.reset()
		return
	}

	c.words = utt.Cues
	c.cursor = 0
	c.word = c.words[0].Text
	c.text = text
	c.utteranceID = uuid.NewString()
	c.playing = true
	c.spoken++
	c.machine.Transition(StateSpeaking)

	c.logger.Info("Speaking",
		"utterance", c.utteranceID,
		"voice", voice.Name,
		"words", len(c.words),
		"duration", utt.Audio.Duration(),
		"synthesis", time.Since(start).Round(time.Millisecond),
	)
}

func (c *Controller) pause() {
	if c.machine.Current() != StateSpeaking {
		return
	}
	if err := c.player.Pause(); err != nil {
		c.absorb(NewTTSError(ErrPlaybackCallFailed, "player", "pause").WithCause(err))
		return
	}
	c.playing = false
	c.machine.Transition(StatePaused)
}

func (c *Controller) resume() {
	if c.machine.Current() != StatePaused {
		return
	}
	if err := c.player.Play(); err != nil {
		c.absorb(NewTTSError(ErrPlaybackCallFailed, "player", "resume").WithCause(err))
		return
	}
	c.playing = true
	c.spoken++
	c.machine.Transition(StateSpeaking)
}

// stop always ends in StateIdle, even when the engine reports a failure.
func (c *Controller) stop() {
	if err := c.player.Stop(); err != nil {
		c.absorb(NewTTSError(ErrPlaybackCallFailed, "player", "stop").WithCause(err))
	}
	c.reset()
}

// reset clears the utterance and invalidates callbacks registered for it.
func (c *Controller) reset() {
	c.words = nil
	c.cursor = 0
	c.word = ""
	c.text = ""
	c.utteranceID = ""
	c.playing = false
	c.generation++
	c.machine.Reset()
}

func (c *Controller) cue(gen uint64) {
	if gen != c.generation || !c.machine.Current().Active() {
		return
	}
	if c.cursor >= len(c.words) {
		return
	}
	c.word = c.words[c.cursor].Text
	c.cursor++
}

func (c *Controller) selectVoice(index int) {
	v, ok := c.catalog.Voice(index)
	if !ok {
		c.absorb(NewTTSError(ErrInvalidVoice, "controller", "select voice").WithContext("index", index))
		return
	}
	c.voiceIndex = index
	c.config.SetVoice(v.Name)
	c.logger.Debug("Voice selected", "voice", v.Label())
}

func (c *Controller) setVolume(v float64) {
	v = ClampVolume(v)
	if err := c.player.SetVolume(v); err != nil {
		c.absorb(NewTTSError(ErrPlaybackCallFailed, "player", "set volume").WithCause(err))
		return
	}
	c.config.SetVolume(v)
}

func (c *Controller) commitRate(gen uint64) {
	if !c.debounce.Current(gen) {
		c.logger.Debug("Discarding stale rate commit", "gen", gen)
		return
	}
	c.debounce.Done(gen)

	rate := ClampRate(c.rateInput)
	if err := c.player.SetRate(rate); err != nil {
		c.absorb(NewTTSError(ErrPlaybackCallFailed, "player", "set rate").WithCause(err))
		return
	}
	c.config.SetRate(rate)
	c.rateInput = rate
	c.logger.Debug("Rate committed", "rate", rate)
}

func (c *Controller) absorb(err *TTSError) {
	kv := []any{"err", err}
	for k, v := range err.Context {
		kv = append(kv, k, v)
	}
	c.logger.Warn("Command failed", kv...)
}

// snapshot records the current state without publishing it.
func (c *Controller) snapshot() View {
	voice, _ := c.catalog.Voice(c.voiceIndex)
	state := c.machine.Current()
	v := View{
		State:           state,
		Word:            c.word,
		Cursor:          c.cursor,
		Words:           len(c.words),
		Text:            c.text,
		Generation:      c.generation,
		Handled:         c.handled,
		Spoken:          c.spoken,
		Cues:            c.words,
		VoiceIndex:      c.voiceIndex,
		Voice:           voice,
		Volume:          c.config.Volume,
		Rate:            c.config.Rate,
		RateInput:       c.rateInput,
		Playing:         c.playing,
		Synthesizing:    c.busy,
		VoiceSelectable: !state.Active(),
		StopEnabled:     state.Active(),
	}

	c.viewMu.Lock()
	c.view = v
	c.viewMu.Unlock()
	return v
}

// publish replaces any unread view with the latest one.
func (c *Controller) publish() {
	v := c.snapshot()
	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- v:
	default:
	}
}
