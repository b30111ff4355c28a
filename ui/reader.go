package ui

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/hark/tts"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

// contextBytes bounds how much text around the spoken word is laid out.
const contextBytes = 4096

// reader follows the spoken word through the utterance text.
type reader struct {
	generation uint64
	text       string
	cursor     int

	// Byte range of the highlighted word; start == end means none.
	start, end int
	from       int
}

// sync moves the highlight to the word in v. Views can be skipped, so the
// word is searched for from the previous highlight onwards.
func (r *reader) sync(v tts.View) {
	if v.Generation != r.generation || v.Text != r.text {
		*r = reader{generation: v.Generation, text: v.Text}
	}
	if v.Cursor == r.cursor {
		return
	}
	r.cursor = v.Cursor
	if v.Cursor == 0 || v.Word == "" {
		r.start, r.end, r.from = 0, 0, 0
		return
	}
	if i := strings.Index(r.text[r.from:], v.Word); i >= 0 {
		r.start = r.from + i
		r.end = r.start + len(v.Word)
		r.from = r.end
	}
}

// highlighted reports the current highlight, if any.
func (r reader) highlighted() (string, bool) {
	if r.start == r.end {
		return "", false
	}
	return r.text[r.start:r.end], true
}

// wordView renders word centred in width.
func wordView(word string, width int) string {
	if word == "" {
		return ""
	}
	word = runewidth.Truncate(word, max(1, width), ellipsis)
	pad := max(0, (width-runewidth.StringWidth(word))/2)
	return strings.Repeat(" ", pad) + currentWordStyle.Render(word)
}

// textView lays out the text around the highlight, keeping the highlighted
// line near the middle of height lines.
func (r reader) textView(width, height int) string {
	if r.text == "" || width <= 0 || height <= 0 {
		return ""
	}

	lo, hi := 0, len(r.text)
	if hi > 2*contextBytes {
		lo = runeStart(r.text, max(0, r.start-contextBytes))
		hi = runeStart(r.text, min(len(r.text), r.end+contextBytes))
	}

	var (
		styled string
		line   int
	)
	if word, ok := r.highlighted(); ok {
		before := r.text[lo:r.start]
		styled = before + highlightStyle(word) + r.text[r.end:hi]
		line = strings.Count(wordwrap.String(before+word, width), "\n")
	} else {
		styled = r.text[lo:hi]
	}

	lines := strings.Split(wordwrap.String(styled, width), "\n")
	first := max(0, min(line-height/2, len(lines)-height))
	last := min(len(lines), first+height)

	out := make([]string, 0, last-first)
	for _, l := range lines[first:last] {
		out = append(out, truncate.StringWithTail(l, uint(width), ellipsis)) //nolint:gosec
	}
	return strings.Join(out, "\n")
}

func runeStart(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
