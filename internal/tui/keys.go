package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Pause    key.Binding
	Reseed   key.Binding
	Theme    key.Binding
	Snapshot key.Binding
	Record   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Pause:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
	Reseed:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reseed")),
	Theme:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "light/dark")),
	Snapshot: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "svg + snapshot")),
	Record:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "start/stop gif")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Reseed, k.Theme, k.Snapshot, k.Record, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Reseed, k.Theme},
		{k.Snapshot, k.Record},
		{k.Help, k.Quit},
	}
}
