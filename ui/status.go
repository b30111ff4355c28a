package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/hark/tts"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

func stateIcon(v tts.View) string {
	switch {
	case v.Synthesizing:
		return "…"
	case v.State == tts.StateSpeaking:
		return "▶"
	case v.State == tts.StatePaused:
		return "⏸"
	default:
		return "■"
	}
}

func (m model) statusBarView(b *strings.Builder) {
	showStatusMessage := m.statusMessage != ""

	logo := logoView()

	state := fmt.Sprintf(" %s %s ", stateIcon(m.view), m.view.State)
	if m.view.Synthesizing {
		state = " " + m.spinner.View() + " synthesizing "
	}
	state = statusBarStateStyle(state)

	helpNote := statusBarHelpStyle(" ? Help ")

	var note string
	switch {
	case showStatusMessage:
		note = m.statusMessage
	case m.view.State.Active():
		note = fmt.Sprintf("%d/%d words", m.view.Cursor, m.view.Words)
	case m.inbox != nil:
		note = "Drop files here or into the inbox"
	default:
		note = "Press space to read the clipboard"
	}
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(state)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)

	style := statusBarNoteStyle
	switch {
	case showStatusMessage && m.statusIsError:
		style = errorMessageStyle
	case showStatusMessage:
		style = statusBarMessageStyle
	}
	note = style(note)

	padding := max(0,
		m.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(state)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := style(strings.Repeat(" ", padding))

	fmt.Fprintf(b, "%s%s%s%s%s", logo, state, note, emptySpace, helpNote)
}

// controlsView shows the voice, volume and rate.
func (m model) controlsView() string {
	voice := m.view.Voice.Label()
	if !m.view.VoiceSelectable {
		voice = disabledStyle(voice)
	}

	rate := fmt.Sprintf("%.1f×", m.rate)
	if m.rate != m.view.Rate {
		rate = dimStyle(rate)
	}

	return strings.Join([]string{
		labelStyle("Voice") + voice,
		labelStyle("Volume") + m.volumeBar.ViewAs(m.volume) + fmt.Sprintf(" %3.0f%%", m.volume*100),
		labelStyle("Rate") + m.rateBar.ViewAs(rateFraction(m.rate)) + " " + rate,
	}, "\n")
}

// rateFraction maps a rate onto [0,1] for the rate bar.
func rateFraction(rate float64) float64 {
	return (rate - tts.MinRate) / (tts.MaxRate - tts.MinRate)
}
