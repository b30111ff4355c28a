package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/hark/tts"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// voicePicker lists the catalog and lets the user filter and choose a voice.
type voicePicker struct {
	voices    []tts.Voice
	languages []string // display names, parallel to voices
	targets   []string // fuzzy filter targets, parallel to voices

	matches   []int // indexes into voices in display order
	cursor    int   // position in matches
	filter    textinput.Model
	filtering bool
	keys      pickerKeyMap
}

func newVoicePicker(catalog *tts.Catalog) voicePicker {
	voices := catalog.Voices()
	p := voicePicker{
		voices:    voices,
		languages: make([]string, len(voices)),
		targets:   make([]string, len(voices)),
		keys:      newPickerKeyMap(),
	}
	for i, v := range voices {
		p.languages[i] = languageName(v.Language)
		p.targets[i] = strings.Join([]string{v.Name, v.Language, p.languages[i], v.Engine}, " ")
	}

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter voices"
	ti.CharLimit = 64
	p.filter = ti

	p.resetFilter()
	return p
}

// languageName turns a BCP 47 tag into an English display name, falling back
// to the tag itself.
func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}

// open shows the full list with the cursor on the selected voice.
func (p *voicePicker) open(selected int) {
	p.resetFilter()
	p.cursor = max(0, min(selected, len(p.matches)-1))
}

func (p *voicePicker) resetFilter() {
	p.filtering = false
	p.filter.Blur()
	p.filter.SetValue("")
	p.applyFilter()
}

func (p *voicePicker) applyFilter() {
	pattern := strings.TrimSpace(p.filter.Value())
	p.matches = p.matches[:0]
	if pattern == "" {
		for i := range p.voices {
			p.matches = append(p.matches, i)
		}
	} else {
		for _, m := range fuzzy.Find(pattern, p.targets) {
			p.matches = append(p.matches, m.Index)
		}
	}
	p.cursor = 0
}

// selected returns the catalog index under the cursor.
func (p voicePicker) selected() (int, bool) {
	if p.cursor < 0 || p.cursor >= len(p.matches) {
		return 0, false
	}
	return p.matches[p.cursor], true
}

type pickerResult int

const (
	pickerOpen pickerResult = iota
	pickerChosen
	pickerCancelled
)

func (p voicePicker) update(msg tea.KeyMsg) (voicePicker, pickerResult, tea.Cmd) {
	if p.filtering {
		switch {
		case key.Matches(msg, p.keys.Cancel):
			p.resetFilter()
			return p, pickerOpen, nil
		case key.Matches(msg, p.keys.Choose):
			p.filtering = false
			p.filter.Blur()
			return p, pickerOpen, nil
		}
		var cmd tea.Cmd
		p.filter, cmd = p.filter.Update(msg)
		p.applyFilter()
		return p, pickerOpen, cmd
	}

	switch {
	case key.Matches(msg, p.keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, p.keys.Down):
		if p.cursor < len(p.matches)-1 {
			p.cursor++
		}
	case key.Matches(msg, p.keys.Filter):
		p.filtering = true
		return p, pickerOpen, p.filter.Focus()
	case key.Matches(msg, p.keys.Choose):
		if _, ok := p.selected(); ok {
			return p, pickerChosen, nil
		}
	case key.Matches(msg, p.keys.Cancel):
		return p, pickerCancelled, nil
	}
	return p, pickerOpen, nil
}

func (p voicePicker) view(width, height int, current int) string {
	var b strings.Builder

	if p.filtering || p.filter.Value() != "" {
		b.WriteString(p.filter.View() + "\n")
		height--
	}

	if len(p.matches) == 0 {
		b.WriteString(dimStyle("  No voices match.") + "\n")
		return b.String()
	}

	height = max(1, height)
	start := 0
	if p.cursor >= height {
		start = p.cursor - height + 1
	}
	end := min(len(p.matches), start+height)

	nameWidth := max(10, width/3)
	langWidth := max(10, width/3)

	for i := start; i < end; i++ {
		idx := p.matches[i]
		v := p.voices[idx]

		cursor := "  "
		if i == p.cursor {
			cursor = "> "
		}
		name := runewidth.FillRight(runewidth.Truncate(v.Name, nameWidth, ellipsis), nameWidth)
		lang := runewidth.FillRight(runewidth.Truncate(p.languages[idx], langWidth, ellipsis), langWidth)
		row := fmt.Sprintf("%s%s  %s  %s", cursor, name, lang, v.Engine)
		row = runewidth.Truncate(row, max(0, width), ellipsis)

		switch {
		case i == p.cursor:
			row = selectedStyle(row)
		case idx == current:
			row = currentWordStyle.Render(row)
		default:
			row = dimStyle(row)
		}
		b.WriteString(row + "\n")
	}
	return b.String()
}
