package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap is the graph view's key bindings.
type KeyMap struct {
	Fit     key.Binding
	Layout  key.Binding
	Reheat  key.Binding
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Next    key.Binding
	Prev    key.Binding
	Focus   key.Binding
	Clear   key.Binding
	Copy    key.Binding
	Variant key.Binding
	Labels  key.Binding
	Filter  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Fit:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fit view")),
		Layout:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto layout")),
		Reheat:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reheat")),
		ZoomIn:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "pan up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "pan down")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pan left")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "pan right")),
		Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next node")),
		Prev:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous node")),
		Focus:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "center selection")),
		Clear:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear selection")),
		Copy:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy id")),
		Variant: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "switch skin")),
		Labels:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle labels")),
		Filter:  key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "0"), key.WithHelp("1-5/0", "filter kind/all")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Fit, k.Layout, k.ZoomIn, k.ZoomOut, k.Next, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Fit, k.Layout, k.Reheat, k.ZoomIn, k.ZoomOut},
		{k.Up, k.Down, k.Left, k.Right},
		{k.Next, k.Prev, k.Focus, k.Clear, k.Copy},
		{k.Variant, k.Labels, k.Filter, k.Help, k.Quit},
	}
}
