package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Play          key.Binding
	Check         key.Binding
	Direction     key.Binding
	Mode          key.Binding
	LocalAudio    key.Binding
	ShowSystem    key.Binding
	ClientSpacing key.Binding
	IgnoreSpacing key.Binding
	ClearRx       key.Binding
	Slower        key.Binding
	Faster        key.Binding
	ToneDown      key.Binding
	ToneUp        key.Binding
	SpacingDown   key.Binding
	SpacingUp     key.Binding
	VolumeDown    key.Binding
	VolumeUp      key.Binding
	Help          key.Binding
	Quit          key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Play:          key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "play")),
		Check:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "check")),
		Direction:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "rx/tx")),
		Mode:          key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "words/groups")),
		LocalAudio:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "local audio")),
		ShowSystem:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "system lines")),
		ClientSpacing: key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "client spacing")),
		IgnoreSpacing: key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "ignore spacing")),
		ClearRx:       key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "clear rx")),
		Slower:        key.NewBinding(key.WithKeys("f2"), key.WithHelp("f2/f3", "wpm")),
		Faster:        key.NewBinding(key.WithKeys("f3")),
		ToneDown:      key.NewBinding(key.WithKeys("f4"), key.WithHelp("f4/f5", "tone")),
		ToneUp:        key.NewBinding(key.WithKeys("f5")),
		SpacingDown:   key.NewBinding(key.WithKeys("f6"), key.WithHelp("f6/f7", "spacing")),
		SpacingUp:     key.NewBinding(key.WithKeys("f7")),
		VolumeDown:    key.NewBinding(key.WithKeys("f8"), key.WithHelp("f8/f9", "volume")),
		VolumeUp:      key.NewBinding(key.WithKeys("f9")),
		Help:          key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
		Quit:          key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Check, k.Direction, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Check, k.Direction, k.Mode},
		{k.LocalAudio, k.ShowSystem, k.ClientSpacing, k.IgnoreSpacing},
		{k.Slower, k.ToneDown, k.SpacingDown, k.VolumeDown},
		{k.ClearRx, k.Help, k.Quit},
	}
}
