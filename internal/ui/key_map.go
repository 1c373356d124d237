package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	playAll  key.Binding
	back     key.Binding
	nextView key.Binding
	prevView key.Binding
	nextPage key.Binding
	prevPage key.Binding
	filter   key.Binding
	toggle   key.Binding
	nextTr   key.Binding
	prevTr   key.Binding
	forward  key.Binding
	rewind   key.Binding
	volUp    key.Binding
	volDown  key.Binding
	like     key.Binding
	download key.Binding
	bulk     key.Binding
	yes      key.Binding
	no       key.Binding
	retry    key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		playAll:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "play artist")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		nextView: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		prevView: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev view")),
		nextPage: key.NewBinding(key.WithKeys("]", "pgdown"), key.WithHelp("]", "next page")),
		prevPage: key.NewBinding(key.WithKeys("[", "pgup"), key.WithHelp("[", "prev page")),
		filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		nextTr:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		prevTr:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev")),
		forward:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "+10s")),
		rewind:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "-10s")),
		volUp:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "vol up")),
		volDown:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "vol down")),
		like:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "like")),
		download: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "download")),
		bulk:     key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "download all")),
		yes:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		retry:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.enter, k.toggle, k.nextView, k.filter, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.playAll, k.back},
		{k.nextView, k.prevView, k.nextPage, k.prevPage, k.filter},
		{k.toggle, k.nextTr, k.prevTr, k.forward, k.rewind, k.volUp, k.volDown},
		{k.like, k.download, k.bulk, k.quit},
	}
}
