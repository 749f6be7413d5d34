// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/luna-tui/internal/session"
	"github.com/jeranaias/luna-tui/internal/ui/styles"
)

// init configures the lipgloss color profile from terminal capabilities,
// honoring NO_COLOR and FORCE_COLOR.
func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES FOR CLI COMMANDS
// =============================================================================

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Accent)

	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Accent).
			Bold(true)

	userLabelStyle = lipgloss.NewStyle().
			Foreground(styles.UserBubbleBorder).
			Bold(true)

	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(styles.AssistantBubbleBorder).
				Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)
)

// noticeStyle returns the style for a notice level.
func noticeStyle(l session.Level) lipgloss.Style {
	switch l {
	case session.LevelWarning:
		return warningStyle
	case session.LevelError:
		return errorStyle
	default:
		return infoStyle
	}
}
