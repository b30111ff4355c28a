package ui

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/hark/tts"
)

type fakeController struct {
	mu      sync.Mutex
	sent    []tts.Command
	updates chan tts.View
	view    tts.View
	catalog *tts.Catalog
}

func newFakeController() *fakeController {
	catalog := tts.NewCatalog([]tts.Voice{
		{Name: "Amy", Language: "en-GB", Engine: "mock"},
		{Name: "Hans", Language: "de-DE", Engine: "mock"},
		{Name: "Joe", Language: "en-US", Engine: "mock"},
	})
	v, _ := catalog.Voice(1)
	return &fakeController{
		updates: make(chan tts.View, 1),
		catalog: catalog,
		view: tts.View{
			State:           tts.StateIdle,
			VoiceIndex:      1,
			Voice:           v,
			Volume:          0.5,
			Rate:            1.0,
			RateInput:       1.0,
			VoiceSelectable: true,
		},
	}
}

func (f *fakeController) Send(cmd tts.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, cmd)
	return nil
}

func (f *fakeController) Updates() <-chan tts.View { return f.updates }
func (f *fakeController) View() tts.View           { return f.view }
func (f *fakeController) Catalog() *tts.Catalog    { return f.catalog }

func (f *fakeController) Sent() []tts.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tts.Command(nil), f.sent...)
}

// run executes cmd and any batched commands, returning the produced
// messages. Only use it on commands that do not block.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, run(c)...)
		}
		return msgs
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) (model, *fakeController) {
	t.Helper()
	f := newFakeController()
	m := newModel(Config{GlamourStyle: "dark"}, f, nil)
	m.width, m.height = 80, 24
	return m, f
}

func press(t *testing.T, m model, keys ...string) (model, []tea.Msg) {
	t.Helper()
	var msgs []tea.Msg
	for _, k := range keys {
		next, cmd := m.Update(keyPress(k))
		m = next.(model)
		msgs = append(msgs, run(cmd)...)
	}
	return m, msgs
}

func TestVolumeKeysAccumulate(t *testing.T) {
	m, f := newTestModel(t)

	m, _ = press(t, m, "+", "+", "-", "+")

	sent := f.Sent()
	want := []float64{0.55, 0.6, 0.55, 0.6}
	if len(sent) != len(want) {
		t.Fatalf("sent %d commands, want %d: %v", len(sent), len(want), sent)
	}
	for i, cmd := range sent {
		vc, ok := cmd.(tts.VolumeChangeRequested)
		if !ok {
			t.Fatalf("command %d = %T, want VolumeChangeRequested", i, cmd)
		}
		if math.Abs(vc.Volume-want[i]) > 1e-9 {
			t.Errorf("command %d volume = %v, want %v", i, vc.Volume, want[i])
		}
	}
	if math.Abs(m.volume-0.6) > 1e-9 {
		t.Errorf("local volume = %v", m.volume)
	}
}

func TestRateKeysRoundAndClamp(t *testing.T) {
	m, f := newTestModel(t)
	m.rate = 1.9

	_, _ = press(t, m, "]", "]", "]", "[")

	var got []float64
	for _, cmd := range f.Sent() {
		got = append(got, cmd.(tts.RateChangeRequested).Rate)
	}
	want := []float64{2.0, 2.0, 2.0, 1.9}
	if len(got) != len(want) {
		t.Fatalf("rates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rates = %v, want %v", got, want)
			break
		}
	}
}

func TestCommandsSentInKeyOrder(t *testing.T) {
	m, f := newTestModel(t)

	// Commands returned by Update are never run, so anything sent reached
	// the controller while the key was handled.
	keys := []string{"+", "]", "-", "[", "+", "]"}
	for _, k := range keys {
		next, _ := m.Update(keyPress(k))
		m = next.(model)
	}

	var kinds []tts.CommandKind
	for _, cmd := range f.Sent() {
		kinds = append(kinds, cmd.Kind())
	}
	want := []tts.CommandKind{
		tts.KindVolumeChangeRequested, tts.KindRateChangeRequested,
		tts.KindVolumeChangeRequested, tts.KindRateChangeRequested,
		tts.KindVolumeChangeRequested, tts.KindRateChangeRequested,
	}
	if len(kinds) != len(want) {
		t.Fatalf("sent %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("sent %v, want %v", kinds, want)
		}
	}
}

func TestToggleReadsClipboardOnlyWhenIdle(t *testing.T) {
	orig := readClipboard
	t.Cleanup(func() { readClipboard = orig })

	reads := 0
	readClipboard = func() (string, bool) {
		reads++
		return "Hello world", true
	}

	m, f := newTestModel(t)
	m, _ = press(t, m, " ")

	m.view.State = tts.StateSpeaking
	_, _ = press(t, m, " ")

	sent := f.Sent()
	if len(sent) != 2 {
		t.Fatalf("sent %v", sent)
	}
	if got := sent[0].(tts.TogglePlayRequested).Text; got != "Hello world" {
		t.Errorf("first toggle text = %q", got)
	}
	if got := sent[1].(tts.TogglePlayRequested).Text; got != "" {
		t.Errorf("second toggle text = %q, want empty", got)
	}
	if reads != 1 {
		t.Errorf("clipboard read %d times, want 1", reads)
	}
}

func TestPasteOfFilesIsADrop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.txt")
	if err := os.WriteFile(path, []byte("Once upon a time."), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		paste string
		want  tts.Command
	}{
		{"file path", path, tts.DraggedTextReceived{Text: "Once upon a time."}},
		{"plain text", "Read this instead.", tts.PlayRequested{Text: "Read this instead."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, f := newTestModel(t)

			next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(tt.paste), Paste: true})
			m = next.(model)
			for _, msg := range run(cmd) {
				_, cmd := m.Update(msg)
				run(cmd)
			}

			sent := f.Sent()
			if len(sent) != 1 || sent[0] != tt.want {
				t.Errorf("sent %v, want [%v]", sent, tt.want)
			}
		})
	}
}

func TestDropWithSkippedFilesShowsNote(t *testing.T) {
	m, f := newTestModel(t)

	next, _ := m.Update(droppedMsg{text: "", skipped: nil})
	m = next.(model)
	if m.statusMessage != "" || len(f.Sent()) != 0 {
		t.Fatalf("empty drop should do nothing")
	}

	path := filepath.Join(t.TempDir(), "missing.txt")
	next, cmd := m.Update(readDropped(path)())
	m = next.(model)
	if m.statusMessage == "" {
		t.Error("expected a skipped-file note")
	}
	if cmd == nil {
		t.Error("expected a status timeout command")
	}
	if len(f.Sent()) != 0 {
		t.Errorf("nothing readable was dropped, sent %v", f.Sent())
	}
}

func TestVoicePicker(t *testing.T) {
	m, f := newTestModel(t)

	m, _ = press(t, m, "v")
	if m.mode != modePicker {
		t.Fatalf("mode = %v, want picker", m.mode)
	}
	if idx, _ := m.picker.selected(); idx != 1 {
		t.Errorf("picker opened on %d, want current voice 1", idx)
	}

	m, _ = press(t, m, "j", "enter")
	if m.mode != modeReader {
		t.Errorf("mode = %v after choosing", m.mode)
	}
	sent := f.Sent()
	if len(sent) != 1 || sent[0] != (tts.VoiceChangeRequested{Index: 2}) {
		t.Errorf("sent %v", sent)
	}
}

func TestVoicePickerFilter(t *testing.T) {
	m, f := newTestModel(t)

	m, _ = press(t, m, "v", "/", "g", "e", "r", "m")
	if len(m.picker.matches) != 1 {
		t.Fatalf("matches = %v, want only the German voice", m.picker.matches)
	}

	m, _ = press(t, m, "enter", "enter")
	sent := f.Sent()
	if len(sent) != 1 || sent[0] != (tts.VoiceChangeRequested{Index: 0}) {
		t.Errorf("sent %v", sent)
	}
	if m.mode != modeReader {
		t.Errorf("mode = %v", m.mode)
	}
}

func TestVoicePickerUnavailableWhileSpeaking(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, "v")

	next, _ := m.Update(viewMsg(tts.View{State: tts.StateSpeaking, StopEnabled: true}))
	m = next.(model)
	if m.mode != modeReader {
		t.Fatalf("picker should close when voice selection is disabled")
	}

	m, _ = press(t, m, "v")
	if m.mode != modeReader {
		t.Error("voice key should be disabled while speaking")
	}
}

func TestStopDisabledWhileIdle(t *testing.T) {
	m, f := newTestModel(t)
	_, _ = press(t, m, "s")
	if len(f.Sent()) != 0 {
		t.Errorf("stop while idle sent %v", f.Sent())
	}
}

func TestQuit(t *testing.T) {
	m, f := newTestModel(t)

	_, msgs := press(t, m, "q")

	sent := f.Sent()
	if len(sent) != 1 || sent[0].Kind() != tts.KindShutdownRequested {
		t.Errorf("sent %v, want ShutdownRequested", sent)
	}
	quit := false
	for _, msg := range msgs {
		if _, ok := msg.(tea.QuitMsg); ok {
			quit = true
		}
	}
	if !quit {
		t.Error("expected tea.Quit")
	}

	_, cmd := m.Update(controllerDoneMsg{})
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("controller shutdown should quit the program")
	}
}

func TestInitialTextIsSpoken(t *testing.T) {
	f := newFakeController()
	m := newModel(Config{GlamourStyle: "dark", InitialText: "From a pipe."}, f, nil)

	// The first command waits for controller views; publish one so it
	// returns.
	f.updates <- f.view
	run(m.Init())

	sent := f.Sent()
	if len(sent) != 1 || sent[0] != (tts.PlayRequested{Text: "From a pipe."}) {
		t.Errorf("sent %v", sent)
	}
}

func TestViewRenders(t *testing.T) {
	m, _ := newTestModel(t)
	next, _ := m.Update(viewMsg(tts.View{
		State:       tts.StateSpeaking,
		Text:        "Hello brave new world",
		Word:        "brave",
		Cursor:      2,
		Words:       4,
		Volume:      0.5,
		Rate:        1.0,
		RateInput:   1.0,
		StopEnabled: true,
	}))
	m = next.(model)

	out := m.View()
	if out == "" {
		t.Fatal("empty view")
	}
	for _, want := range []string{"brave", "2/4 words", "Volume", "Rate"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
