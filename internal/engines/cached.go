package engines

import (
	"bytes"
	"context"
	"encoding/gob"

	"github.com/charmbracelet/hark/internal/cache"
	"github.com/charmbracelet/hark/tts"
	"github.com/charmbracelet/log"
)

// Cached serves repeated text from a cache.Store before asking the engine.
type Cached struct {
	tts.Engine
	store *cache.Store
}

// NewCached wraps e with store.
func NewCached(e tts.Engine, store *cache.Store) *Cached {
	return &Cached{Engine: e, store: store}
}

// Synthesize implements tts.Synthesizer.
func (c *Cached) Synthesize(ctx context.Context, text string, voice tts.Voice) (*tts.Utterance, error) {
	key := cache.Key(voice.Engine, voice.Handle, text)
	if data, level, ok := c.store.Get(key); ok {
		var utt tts.Utterance
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&utt); err == nil {
			log.Debug("Synthesis cache hit", "level", level, "voice", voice.Name)
			return &utt, nil
		}
		log.Debug("Discarding undecodable cache entry", "err", cache.ErrCacheCorrupted)
		c.store.Invalidate(key)
	}

	utt, err := c.Engine.Synthesize(ctx, text, voice)
	if err != nil || utt == nil || utt.Audio == nil {
		return utt, err
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(utt); err != nil {
		log.Debug("Encoding utterance for cache", "err", err)
		return utt, nil
	}
	if err := c.store.Put(key, buf.Bytes()); err != nil {
		log.Debug("Writing synthesis cache", "err", err)
	}
	return utt, nil
}

// Close closes the engine and flushes the cache.
func (c *Cached) Close() error {
	err := c.Engine.Close()
	if cerr := c.store.Close(); err == nil {
		err = cerr
	}
	return err
}
