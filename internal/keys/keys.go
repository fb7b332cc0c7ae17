package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// Date range dialog
	DateRange key.Binding

	// Session
	Logout key.Binding

	// Disposition actions
	Deliver   key.Binding
	Delete    key.Binding
	Whitelist key.Binding
	Blacklist key.Binding

	// Open the message body in the external viewer
	OpenContent key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "preview"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		DateRange: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "date range"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "logout"),
		),
		Deliver: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "deliver"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Whitelist: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "whitelist"),
		),
		Blacklist: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "blacklist"),
		),
		OpenContent: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open body"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Quit, k.Refresh, k.DateRange,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.Refresh, k.DateRange, k.Logout, k.Help},
		{k.Deliver, k.Delete, k.Whitelist, k.Blacklist, k.OpenContent},
	}
}
