package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the form's key bindings
type keyMap struct {
	nextField key.Binding
	prevField key.Binding
	nextAlgo  key.Binding
	prevAlgo  key.Binding
	submit    key.Binding
	help      key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		nextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		prevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev field"),
		),
		nextAlgo: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next algorithm"),
		),
		prevAlgo: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev algorithm"),
		),
		submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "get recommendations"),
		),
		help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.nextField, k.submit, k.help, k.quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.nextField, k.prevField},
		{k.prevAlgo, k.nextAlgo},
		{k.submit, k.help, k.quit},
	}
}
