package ui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/hark/internal/source"
	"github.com/charmbracelet/hark/tts"
	"github.com/charmbracelet/log"
)

type (
	// viewMsg carries a controller snapshot.
	viewMsg tts.View

	// controllerDoneMsg is sent once the controller stops publishing.
	controllerDoneMsg struct{}

	// textMsg is text to speak, from the clipboard or a paste.
	textMsg struct{ text string }

	droppedMsg struct {
		text    string
		skipped []source.Skipped
	}

	inboxMsg         struct{ path string }
	inboxClosedMsg   struct{}
	statusTimeoutMsg struct{ id int }

	previewMsg struct {
		text     string
		width    int
		rendered string
	}

	errMsg struct{ err error }
)

func (e errMsg) Error() string { return e.err.Error() }

var errEmptyClipboard = errors.New("clipboard is empty")

// waitForView blocks until the controller publishes.
func waitForView(ch <-chan tts.View) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return controllerDoneMsg{}
		}
		return viewMsg(v)
	}
}

// send hands cmd to the controller from Update itself, so commands reach the
// dispatcher in key order. Controller.Send does not block.
func send(c Controller, cmd tts.Command) tea.Cmd {
	if err := c.Send(cmd); err != nil {
		log.Debug("Dropping command", "cmd", cmd.Kind(), "err", err)
		return func() tea.Msg { return errMsg{err} }
	}
	return nil
}

// toggleWithClipboard reads the clipboard only when the toggle would start a
// new utterance.
func toggleWithClipboard(c Controller, idle bool) tea.Cmd {
	return func() tea.Msg {
		var text string
		if idle {
			text, _ = readClipboard()
		}
		if err := c.Send(tts.TogglePlayRequested{Text: text}); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func clipboardCmd() tea.Msg {
	text, ok := readClipboard()
	if !ok {
		return errMsg{errEmptyClipboard}
	}
	return textMsg{text: text}
}

// readClipboard is replaced in tests.
var readClipboard = source.Clipboard

func readDropped(payload string) tea.Cmd {
	return func() tea.Msg {
		text, skipped := source.ReadDropped(payload)
		return droppedMsg{text: text, skipped: skipped}
	}
}

// handlePaste treats pasted file paths as a drop and anything else as text.
func handlePaste(paste string) tea.Cmd {
	if source.LooksLikeDrop(paste) {
		return readDropped(paste)
	}
	return func() tea.Msg {
		return textMsg{text: paste}
	}
}

func waitForInbox(ch <-chan string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		path, ok := <-ch
		if !ok {
			return inboxClosedMsg{}
		}
		return inboxMsg{path: path}
	}
}

func skippedNote(skipped []source.Skipped) string {
	if len(skipped) == 0 {
		return ""
	}
	notes := make([]string, len(skipped))
	for i, s := range skipped {
		notes[i] = s.String()
	}
	return "Skipped " + strings.Join(notes, ", ")
}
