package tts

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
)

// Catalog is an immutable list of voices ordered by language, keeping the
// engine's enumeration order within a language.
type Catalog struct {
	voices []Voice
}

// NewCatalog sorts a copy of voices into catalog order.
func NewCatalog(voices []Voice) *Catalog {
	sorted := slices.Clone(voices)
	slices.SortStableFunc(sorted, func(a, b Voice) int {
		return strings.Compare(a.Language, b.Language)
	})
	return &Catalog{voices: sorted}
}

// LoadCatalog enumerates voices from lister. An error or an empty list is
// reported as ErrVoiceEnumerationFailed.
func LoadCatalog(ctx context.Context, lister VoiceLister) (*Catalog, error) {
	voices, err := lister.Voices(ctx)
	if err != nil {
		return nil, NewTTSError(ErrVoiceEnumerationFailed, "catalog", "list").WithCause(err)
	}
	if len(voices) == 0 {
		return nil, NewTTSError(ErrVoiceEnumerationFailed, "catalog", "list").
			WithCause(errors.New("no voices installed"))
	}
	return NewCatalog(voices), nil
}

// Len returns the number of voices.
func (c *Catalog) Len() int {
	return len(c.voices)
}

// Voice returns the voice at index i.
func (c *Catalog) Voice(i int) (Voice, bool) {
	if i < 0 || i >= len(c.voices) {
		return Voice{}, false
	}
	return c.voices[i], true
}

// Voices returns a copy of the catalog.
func (c *Catalog) Voices() []Voice {
	return slices.Clone(c.voices)
}

// Labels returns display labels in catalog order.
func (c *Catalog) Labels() []string {
	labels := make([]string, len(c.voices))
	for i, v := range c.voices {
		labels[i] = v.Label()
	}
	return labels
}

// Index returns the position of the first voice named name.
func (c *Catalog) Index(name string) (int, bool) {
	i := slices.IndexFunc(c.voices, func(v Voice) bool { return v.Name == name })
	return i, i >= 0
}

// Reconcile maps a persisted voice name to a catalog index, falling back to
// the first voice when the name is unknown.
func (c *Catalog) Reconcile(name string) int {
	if i, ok := c.Index(name); ok {
		return i
	}
	if name != DefaultVoice {
		log.Info("Saved voice not installed, using first voice", "voice", name)
	}
	return 0
}
