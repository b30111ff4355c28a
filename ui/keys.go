package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle     key.Binding
	Stop       key.Binding
	Clipboard  key.Binding
	Voices     key.Binding
	VolumeUp   key.Binding
	VolumeDown key.Binding
	Faster     key.Binding
	Slower     key.Binding
	Preview    key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space", "play/pause"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop"),
		),
		Clipboard: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "read clipboard"),
		),
		Voices: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "voices"),
		),
		VolumeUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "louder"),
		),
		VolumeDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "quieter"),
		),
		Faster: key.NewBinding(
			key.WithKeys("]", "right", "l"),
			key.WithHelp("]", "faster"),
		),
		Slower: key.NewBinding(
			key.WithKeys("[", "left", "h"),
			key.WithHelp("[", "slower"),
		),
		Preview: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "preview"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Stop, k.Clipboard, k.Voices, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Stop, k.Clipboard},
		{k.VolumeUp, k.VolumeDown, k.Faster, k.Slower},
		{k.Voices, k.Preview, k.Help, k.Quit},
	}
}

// syncEnabled greys out bindings the controller would ignore.
func (k *keyMap) syncEnabled(voiceSelectable, stopEnabled bool) {
	k.Voices.SetEnabled(voiceSelectable)
	k.Stop.SetEnabled(stopEnabled)
}

type pickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Filter key.Binding
	Choose key.Binding
	Cancel key.Binding
}

func newPickerKeyMap() pickerKeyMap {
	return pickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k", "ctrl+p"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "ctrl+n"),
			key.WithHelp("↓/j", "down"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Choose: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "choose"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
	}
}

func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Filter, k.Choose, k.Cancel}
}

func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
