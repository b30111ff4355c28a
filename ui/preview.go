package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/log"
)

// preview shows the whole utterance rendered as markdown.
type preview struct {
	viewport viewport.Model
	source   string
	width    int
}

func newPreview() preview {
	vp := viewport.New(0, 0)
	vp.YPosition = 0
	return preview{viewport: vp}
}

func (p *preview) setSize(width, height int) {
	p.viewport.Width = width
	p.viewport.Height = height
}

// stale reports whether the rendered content no longer matches text.
func (p preview) stale(text string, width int) bool {
	return text != p.source || width != p.width
}

func (p *preview) setContent(text string, width int, rendered string) {
	p.source = text
	p.width = width
	p.viewport.SetContent(rendered)
	p.viewport.GotoTop()
}

// renderPreview renders text with glamour. Without glamour the text is shown
// as-is.
func renderPreview(cfg Config, text string, width int) tea.Cmd {
	return func() tea.Msg {
		if !cfg.GlamourEnabled || text == "" {
			return previewMsg{text: text, width: width, rendered: text}
		}

		r, err := glamour.NewTermRenderer(
			glamour.WithStylePath(cfg.GlamourStyle),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			log.Error("Creating renderer", "err", err)
			return errMsg{fmt.Errorf("unable to create renderer: %w", err)}
		}
		out, err := r.Render(text)
		if err != nil {
			log.Error("Rendering preview", "err", err)
			return previewMsg{text: text, width: width, rendered: text}
		}
		return previewMsg{text: text, width: width, rendered: out}
	}
}
