package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next        key.Binding
	Prev        key.Binding
	NextSection key.Binding
	PrevSection key.Binding
	Option      key.Binding
	Clear       key.Binding
	Mark        key.Binding
	MarkNext    key.Binding
	Jump        key.Binding
	Locale      key.Binding
	Fullscreen  key.Binding
	Submit      key.Binding
	Confirm     key.Binding
	Cancel      key.Binding
	Retry       key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("right", "l", "n"),
			key.WithHelp("→/n", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "h", "p"),
			key.WithHelp("←/p", "previous"),
		),
		NextSection: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next section"),
		),
		PrevSection: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev section"),
		),
		Option: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "answer"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c", "backspace"),
			key.WithHelp("c", "clear"),
		),
		Mark: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mark"),
		),
		MarkNext: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "mark & next"),
		),
		Jump: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "go to"),
		),
		Locale: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "language"),
		),
		Fullscreen: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fullscreen"),
		),
		Submit: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "submit"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "N"),
			key.WithHelp("esc", "cancel"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "abandon"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Option, k.Mark, k.Submit, k.Help}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.PrevSection, k.NextSection, k.Jump},
		{k.Option, k.Clear, k.Mark, k.MarkNext},
		{k.Locale, k.Fullscreen, k.Submit, k.Quit},
	}
}
