// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the luna TUI.

# Color System (colors.go)

Every color is a Lip Gloss AdaptiveColor with a Light and a Dark value. The
active value is chosen by the theme flag persisted under the darkMode key, not
by terminal detection, so toggling the theme swaps every color at once.

	Accent        - Header brand, focus rings, prompt
	Emerald       - Ready status
	Amber         - Not configured status, warnings
	Rose          - Errors, not loaded status
	TextPrimary   - Body text
	TextMuted     - Hints, timestamps, tooltips

# Theme (theme.go)

A Theme holds pre-built lipgloss styles for the header, transcript bubbles,
input area, status indicator, configuration panel and notices:

	theme := styles.NewTheme(dark)
	header := theme.Header.Render("luna")
	badge := theme.StatusStyle(report.Indicator().Class).Render("Ready")

NewTheme switches the default renderer's background mode, so styles built
earlier resolve to the new palette on their next render. GlamourStyle returns
the matching glamour style name for markdown rendering of assistant replies.
*/
package styles
