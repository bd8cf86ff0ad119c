package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings for the TUI application.
// It implements the help.KeyMap interface for bubbles/help integration.
type keyMap struct {
	Quit       key.Binding
	Focus      key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	GoTop      key.Binding
	GoBottom   key.Binding
	Clear      key.Binding
	Open       key.Binding
	Help       key.Binding
	// Cancel closes the file picker. The picker view lists it, so it is
	// not part of the footer help.
	Cancel key.Binding
}

// ShortHelp returns the compact set of keybindings shown by default in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Focus, k.ScrollDown, k.Open, k.Clear, k.Quit}
}

// FullHelp returns the expanded keybinding groups shown when help is toggled.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ScrollUp, k.ScrollDown, k.PageUp, k.PageDown, k.GoTop, k.GoBottom},
		{k.Focus, k.Open, k.Clear, k.Help, k.Quit},
	}
}

// keys holds the default key bindings used by the application. Scrolling
// itself is done by the viewport's own key map; these bindings document it
// and gate it on viewer focus.
var keys = keyMap{
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Focus:      key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch pane")),
	ScrollUp:   key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/up", "scroll up")),
	ScrollDown: key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/dn", "scroll down")),
	PageUp:     key.NewBinding(key.WithKeys("pgup", "b"), key.WithHelp("pgup", "page up")),
	PageDown:   key.NewBinding(key.WithKeys("pgdown", "f", " "), key.WithHelp("pgdn", "page down")),
	GoTop:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	GoBottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
	Clear:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear text")),
	Open:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open file")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Cancel:     key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "close picker")),
}

// Binding is one documented key binding.
type Binding struct {
	Keys string
	Desc string
}

// Bindings lists the dashboard key bindings in full help order.
func Bindings() []Binding {
	var out []Binding
	for _, group := range keys.FullHelp() {
		for _, b := range group {
			h := b.Help()
			out = append(out, Binding{Keys: h.Key, Desc: h.Desc})
		}
	}
	return out
}
