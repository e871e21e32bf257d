package preview

import "github.com/charmbracelet/bubbles/key"

// keyMap defines key bindings for the preview
type keyMap struct {
	Next   key.Binding
	Back   key.Binding
	Close  key.Binding
	Down   key.Binding
	Up     key.Binding
	Size   key.Binding
	Rotate key.Binding
	Replay key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Back, k.Close, k.Down, k.Up, k.Size, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Back, k.Close},
		{k.Down, k.Up},
		{k.Size, k.Rotate, k.Replay, k.Quit},
	}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("right", "l", "n", "enter"),
			key.WithHelp("→/n", "next"),
		),
		Back: key.NewBinding(
			key.WithKeys("left", "h", "p"),
			key.WithHelp("←/p", "back"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc", "x"),
			key.WithHelp("esc", "close"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("j", "scroll down"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("k", "scroll up"),
		),
		Size: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "next size"),
		),
		Rotate: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "rotate"),
		),
		Replay: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "replay"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
