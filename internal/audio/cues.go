package audio

import (
	"time"

	"github.com/charmbracelet/hark/tts"
)

// cueTracker reports cues as playback crosses their offsets. Offsets are
// measured in source time, so rate changes do not move them.
type cueTracker struct {
	offsets []time.Duration
	next    int
}

func newCueTracker(cues []tts.WordCue) *cueTracker {
	offsets := make([]time.Duration, len(cues))
	for i, c := range cues {
		offsets[i] = c.Offset
	}
	return &cueTracker{offsets: offsets}
}

// advance returns how many cues were crossed since the last call.
func (t *cueTracker) advance(pos time.Duration) int {
	n := 0
	for t.next < len(t.offsets) && t.offsets[t.next] <= pos {
		t.next++
		n++
	}
	return n
}
