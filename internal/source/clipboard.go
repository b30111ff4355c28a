package source

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
)

// readClipboard is replaced in tests.
var readClipboard = clipboard.ReadAll

// Clipboard returns the clipboard text. ok is false when the clipboard is
// unreadable or holds only whitespace.
func Clipboard() (text string, ok bool) {
	text, err := readClipboard()
	if err != nil {
		log.Debug("Reading clipboard", "err", err)
		return "", false
	}
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}
