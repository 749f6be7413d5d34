// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// KeyAction is what a key press in the chat input does.
type KeyAction int

const (
	KeyPassthrough KeyAction = iota
	KeySubmit
	KeyNewline
)

// ClassifyKey maps a key name (as reported by Bubble Tea) to an input
// action. Enter submits. Shift+Enter inserts a newline; Alt+Enter and
// Ctrl+J do the same for terminals that cannot report Shift with Enter.
func ClassifyKey(key string) KeyAction {
	switch key {
	case "enter":
		return KeySubmit
	case "shift+enter", "alt+enter", "ctrl+j":
		return KeyNewline
	default:
		return KeyPassthrough
	}
}

// GrowHeight returns the number of rows the input needs to show text at
// the given width, clamped to [minRows, maxRows]. Long lines count the rows
// they wrap onto. width <= 0 disables wrapping.
func GrowHeight(text string, width, minRows, maxRows int) int {
	if minRows < 1 {
		minRows = 1
	}
	if maxRows < minRows {
		maxRows = minRows
	}

	rows := 0
	for _, line := range strings.Split(text, "\n") {
		w := runewidth.StringWidth(line)
		if width <= 0 || w <= width {
			rows++
			continue
		}
		rows += (w + width - 1) / width
	}

	if rows < minRows {
		return minRows
	}
	if rows > maxRows {
		return maxRows
	}
	return rows
}
