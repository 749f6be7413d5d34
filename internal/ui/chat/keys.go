// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keyboard bindings for the chat interface. Submit and
// newline handling go through session.ClassifyKey instead of bindings so the
// TUI and the headless controller agree on them.
type KeyMap struct {
	Quit        key.Binding
	Dismiss     key.Binding
	ToggleTheme key.Binding
	Configure   key.Binding
	Status      key.Binding
	Explain     key.Binding
	Summarize   key.Binding
	Debug       key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "close"),
		),
		ToggleTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "theme"),
		),
		Configure: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "model"),
		),
		Status: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "status"),
		),
		Explain: key.NewBinding(
			key.WithKeys("alt+e"),
			key.WithHelp("M-e", "explain"),
		),
		Summarize: key.NewBinding(
			key.WithKeys("alt+s"),
			key.WithHelp("M-s", "summarize"),
		),
		Debug: key.NewBinding(
			key.WithKeys("alt+d"),
			key.WithHelp("M-d", "debug"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),
	}
}

// ShortHelp returns the bindings shown in the help line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Configure, k.Status, k.ToggleTheme, k.Explain, k.Summarize, k.Debug, k.Quit}
}

// templateFor returns the template name bound to a key, if any.
func (k KeyMap) templateFor(msg tea.KeyMsg) (string, bool) {
	switch {
	case key.Matches(msg, k.Explain):
		return "explain", true
	case key.Matches(msg, k.Summarize):
		return "summarize", true
	case key.Matches(msg, k.Debug):
		return "debug", true
	}
	return "", false
}
