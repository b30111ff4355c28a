// Package ui provides the terminal interface for hark.
package ui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/hark/tts"
	"github.com/charmbracelet/log"
	te "github.com/muesli/termenv"
)

const (
	statusMessageTimeout = time.Second * 4 // how long to show notes like skipped files
	ellipsis             = "…"
	barWidth             = 24
)

// Controller is the part of tts.Controller the UI drives.
type Controller interface {
	Send(cmd tts.Command) error
	Updates() <-chan tts.View
	View() tts.View
	Catalog() *tts.Catalog
}

// NewProgram returns a new Tea program. Files arriving on inbox are read as
// dropped files; inbox may be nil.
func NewProgram(cfg Config, ctrl Controller, inbox <-chan string) *tea.Program {
	log.Debug("Starting hark", "glamour", cfg.GlamourEnabled, "inbox", inbox != nil)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(cfg, ctrl, inbox), opts...)
}

type mode int

const (
	modeReader mode = iota
	modePicker
	modePreview
)

func (m mode) String() string {
	return map[mode]string{
		modeReader:  "reader",
		modePicker:  "voice picker",
		modePreview: "preview",
	}[m]
}

type model struct {
	cfg   Config
	ctrl  Controller
	inbox <-chan string

	view    tts.View
	reader  reader
	picker  voicePicker
	preview preview
	mode    mode

	keys      keyMap
	help      help.Model
	spinner   spinner.Model
	volumeBar progress.Model
	rateBar   progress.Model

	// Local copies so repeated key presses build on each other before the
	// controller catches up.
	volume float64
	rate   float64

	statusMessage string
	statusIsError bool
	statusID      int

	width  int
	height int
}

func newModel(cfg Config, ctrl Controller, inbox <-chan string) model {
	if cfg.GlamourStyle == "" || cfg.GlamourStyle == styles.AutoStyle {
		if te.HasDarkBackground() {
			cfg.GlamourStyle = styles.DarkStyle
		} else {
			cfg.GlamourStyle = styles.LightStyle
		}
	}
	if cfg.VolumeStep <= 0 {
		cfg.VolumeStep = 0.05
	}
	if cfg.RateStep <= 0 {
		cfg.RateStep = 0.1
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = currentWordStyle

	v := ctrl.View()
	m := model{
		cfg:       cfg,
		ctrl:      ctrl,
		inbox:     inbox,
		view:      v,
		picker:    newVoicePicker(ctrl.Catalog()),
		preview:   newPreview(),
		keys:      newKeyMap(),
		help:      help.New(),
		spinner:   sp,
		volumeBar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth), progress.WithoutPercentage()),
		rateBar:   progress.New(progress.WithSolidFill(string(fuchsia)), progress.WithWidth(barWidth), progress.WithoutPercentage()),
		volume:    v.Volume,
		rate:      v.RateInput,
	}
	m.keys.syncEnabled(v.VoiceSelectable, v.StopEnabled)
	return m
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitForView(m.ctrl.Updates()),
		m.spinner.Tick,
	}
	if m.inbox != nil {
		cmds = append(cmds, waitForInbox(m.inbox))
	}
	if strings.TrimSpace(m.cfg.InitialText) != "" {
		cmds = append(cmds, send(m.ctrl, tts.PlayRequested{Text: m.cfg.InitialText}))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.preview.setSize(msg.Width, m.mainHeight())
		if m.mode == modePreview && m.preview.stale(m.view.Text, m.width) {
			cmds = append(cmds, renderPreview(m.cfg, m.view.Text, m.width))
		}

	case viewMsg:
		m.view = tts.View(msg)
		m.reader.sync(m.view)
		m.keys.syncEnabled(m.view.VoiceSelectable, m.view.StopEnabled)
		if m.mode == modePicker && !m.view.VoiceSelectable {
			m.mode = modeReader
		}
		if m.mode == modePreview && m.preview.stale(m.view.Text, m.width) {
			cmds = append(cmds, renderPreview(m.cfg, m.view.Text, m.width))
		}
		cmds = append(cmds, waitForView(m.ctrl.Updates()))

	case controllerDoneMsg:
		return m, tea.Quit

	case textMsg:
		cmds = append(cmds, send(m.ctrl, tts.PlayRequested{Text: msg.text}))

	case droppedMsg:
		if note := skippedNote(msg.skipped); note != "" {
			cmds = append(cmds, m.showStatus(note, false))
		}
		if strings.TrimSpace(msg.text) != "" {
			cmds = append(cmds, send(m.ctrl, tts.DraggedTextReceived{Text: msg.text}))
		}

	case inboxMsg:
		cmds = append(cmds, readDropped(msg.path), waitForInbox(m.inbox))

	case inboxClosedMsg:
		m.inbox = nil

	case previewMsg:
		if msg.text == m.view.Text {
			m.preview.setContent(msg.text, msg.width, msg.rendered)
		}

	case statusTimeoutMsg:
		if msg.id == m.statusID {
			m.statusMessage = ""
			m.statusIsError = false
		}

	case errMsg:
		if !errors.Is(msg.err, tts.ErrDispatcherClosed) {
			cmds = append(cmds, m.showStatus(msg.Error(), true))
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		cmds = append(cmds, cmd)

	case tea.MouseMsg:
		if m.mode == modePreview {
			var cmd tea.Cmd
			m.preview.viewport, cmd = m.preview.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if msg.Paste {
		return m, handlePaste(string(msg.Runes))
	}

	if m.mode == modePicker {
		var (
			result pickerResult
			cmd    tea.Cmd
		)
		m.picker, result, cmd = m.picker.update(msg)
		switch result {
		case pickerChosen:
			m.mode = modeReader
			if idx, ok := m.picker.selected(); ok {
				return m, send(m.ctrl, tts.VoiceChangeRequested{Index: idx})
			}
		case pickerCancelled:
			m.mode = modeReader
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Batch(send(m.ctrl, tts.ShutdownRequested{}), tea.Quit)

	case key.Matches(msg, m.keys.Toggle):
		return m, toggleWithClipboard(m.ctrl, m.view.State == tts.StateIdle)

	case key.Matches(msg, m.keys.Stop):
		return m, send(m.ctrl, tts.StopRequested{})

	case key.Matches(msg, m.keys.Clipboard):
		return m, clipboardCmd

	case key.Matches(msg, m.keys.Voices):
		m.picker.open(m.view.VoiceIndex)
		m.mode = modePicker
		return m, nil

	case key.Matches(msg, m.keys.VolumeUp), key.Matches(msg, m.keys.VolumeDown):
		step := m.cfg.VolumeStep
		if key.Matches(msg, m.keys.VolumeDown) {
			step = -step
		}
		m.volume = tts.ClampVolume(m.volume + step)
		return m, send(m.ctrl, tts.VolumeChangeRequested{Volume: m.volume})

	case key.Matches(msg, m.keys.Faster), key.Matches(msg, m.keys.Slower):
		step := m.cfg.RateStep
		if key.Matches(msg, m.keys.Slower) {
			step = -step
		}
		m.rate = tts.ClampRate(m.rate + step)
		return m, send(m.ctrl, tts.RateChangeRequested{Rate: m.rate})

	case key.Matches(msg, m.keys.Preview):
		if m.mode == modePreview {
			m.mode = modeReader
			return m, nil
		}
		m.mode = modePreview
		if m.preview.stale(m.view.Text, m.width) {
			return m, renderPreview(m.cfg, m.view.Text, m.width)
		}
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.preview.setSize(m.width, m.mainHeight())
		return m, nil
	}

	if m.mode == modePreview {
		var cmd tea.Cmd
		m.preview.viewport, cmd = m.preview.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) showStatus(note string, isError bool) tea.Cmd {
	m.statusID++
	m.statusMessage = note
	m.statusIsError = isError
	id := m.statusID
	return tea.Tick(statusMessageTimeout, func(time.Time) tea.Msg {
		return statusTimeoutMsg{id: id}
	})
}

// mainHeight is what is left for the reader, picker or preview.
func (m model) mainHeight() int {
	const (
		wordHeight      = 2
		controlsHeight  = 4
		statusBarHeight = 1
	)
	helpHeight := 1
	if m.help.ShowAll {
		helpHeight = 4
	}
	return max(1, m.height-wordHeight-controlsHeight-statusBarHeight-helpHeight)
}

func (m model) View() string {
	if m.width == 0 {
		return ""
	}

	var b strings.Builder

	b.WriteString(wordView(m.view.Word, m.width) + "\n\n")

	main := m.mainHeight()
	var body string
	switch m.mode {
	case modePicker:
		body = m.picker.view(m.width, main, m.view.VoiceIndex)
	case modePreview:
		body = m.preview.viewport.View()
	default:
		body = m.reader.textView(m.width, main)
	}
	body = strings.TrimRight(body, "\n")
	b.WriteString(body)
	b.WriteString(strings.Repeat("\n", max(1, main-strings.Count(body, "\n"))))

	b.WriteString(m.controlsView() + "\n\n")

	var helpView string
	if m.mode == modePicker {
		helpView = m.help.View(m.picker.keys)
	} else {
		helpView = m.help.View(m.keys)
	}
	b.WriteString(helpViewStyle(helpView) + "\n")

	m.statusBarView(&b)
	return b.String()
}
