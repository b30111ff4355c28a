package engines

import (
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/hark/tts"
	"github.com/rivo/uniseg"
)

// SplitWords returns the words of text using Unicode word boundaries.
// Whitespace and punctuation-only segments are dropped.
func SplitWords(text string) []string {
	var words []string
	state := -1
	for len(text) > 0 {
		var word string
		word, text, state = uniseg.FirstWordInString(text, state)
		if isWord(word) {
			words = append(words, word)
		}
	}
	return words
}

func isWord(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// EstimateCues spreads words over total in proportion to their length,
// for engines that report no timing.
func EstimateCues(words []string, total time.Duration) []tts.WordCue {
	if len(words) == 0 {
		return nil
	}

	// one extra unit per word stands in for the gap after it
	weights := make([]int, len(words))
	sum := 0
	for i, w := range words {
		weights[i] = utf8.RuneCountInString(w) + 1
		sum += weights[i]
	}

	cues := make([]tts.WordCue, len(words))
	at := 0
	for i, w := range words {
		cues[i] = tts.WordCue{
			Text:     w,
			Offset:   scale(total, at, sum),
			Duration: scale(total, weights[i], sum),
		}
		at += weights[i]
	}
	return cues
}

func scale(total time.Duration, n, of int) time.Duration {
	return time.Duration(int64(total) * int64(n) / int64(of))
}

// shiftCues returns cues moved later by offset.
func shiftCues(cues []tts.WordCue, offset time.Duration) []tts.WordCue {
	out := make([]tts.WordCue, len(cues))
	for i, c := range cues {
		c.Offset += offset
		out[i] = c
	}
	return out
}
