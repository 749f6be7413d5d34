// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/luna-tui/internal/model"
)

// Glamour style names used for assistant markdown.
const (
	GlamourDark  = "dark"
	GlamourLight = "light"
)

// Theme contains all the lip gloss styles for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Dimensions (updated on resize)
	Width  int
	Height int

	// ==========================================================================
	// HEADER
	// ==========================================================================

	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	HeaderHint  lipgloss.Style

	// ==========================================================================
	// TRANSCRIPT
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	ErrorBubble     lipgloss.Style
	RoleLabel       lipgloss.Style
	Timestamp       lipgloss.Style
	Placeholder     lipgloss.Style
	EmptyState      lipgloss.Style

	// ==========================================================================
	// INPUT
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style
	InputDisabled    lipgloss.Style

	// ==========================================================================
	// STATUS INDICATOR
	// ==========================================================================

	StatusReady         lipgloss.Style
	StatusNotConfigured lipgloss.Style
	StatusNotLoaded     lipgloss.Style
	StatusError         lipgloss.Style
	StatusPending       lipgloss.Style
	Tooltip             lipgloss.Style

	// ==========================================================================
	// CONFIGURATION PANEL
	// ==========================================================================

	Panel      lipgloss.Style
	PanelTitle lipgloss.Style
	PanelLabel lipgloss.Style
	PanelHint  lipgloss.Style

	// ==========================================================================
	// NOTICES AND HELP
	// ==========================================================================

	NoticeInfo    lipgloss.Style
	NoticeWarning lipgloss.Style
	NoticeError   lipgloss.Style
	HelpKey       lipgloss.Style
	HelpDesc      lipgloss.Style
}

// NewTheme creates a theme for the given background mode and switches the
// default lipgloss renderer to match, so AdaptiveColors resolve accordingly.
func NewTheme(dark bool) *Theme {
	colorProfile := termenv.ColorProfile()
	lipgloss.SetHasDarkBackground(dark)

	t := &Theme{
		IsDark:       dark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// TerminalIsDark reports whether the terminal background looks dark. Used
// only to suggest a theme; the persisted preference always wins.
func TerminalIsDark() bool {
	return termenv.HasDarkBackground()
}

func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Accent)

	t.HeaderHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1).
		MarginRight(4)

	t.ErrorBubble = lipgloss.NewStyle().
		Foreground(ErrorBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ErrorBubbleBorder).
		BorderLeft(true).
		PaddingLeft(1)

	t.RoleLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Placeholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.EmptyState = lipgloss.NewStyle().
		Foreground(TextMuted).
		Align(lipgloss.Center)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.InputDisabled = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Status indicator
	t.StatusReady = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.StatusNotConfigured = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.StatusNotLoaded = lipgloss.NewStyle().Foreground(Rose)
	t.StatusError = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.StatusPending = lipgloss.NewStyle().Foreground(TextMuted)

	t.Tooltip = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Configuration panel
	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AccentDeep).
		Padding(1, 2)

	t.PanelTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Accent).
		MarginBottom(1)

	t.PanelLabel = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.PanelHint = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Notices
	t.NoticeInfo = lipgloss.NewStyle().Foreground(Emerald)
	t.NoticeWarning = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.NoticeError = lipgloss.NewStyle().Foreground(Rose).Bold(true)

	t.HelpKey = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.HelpDesc = lipgloss.NewStyle().
		Foreground(TextMuted)
}

// StatusStyle returns the indicator style for a model status.
func (t *Theme) StatusStyle(s model.Status) lipgloss.Style {
	switch s {
	case model.StatusReady:
		return t.StatusReady
	case model.StatusNotConfigured:
		return t.StatusNotConfigured
	case model.StatusNotLoaded:
		return t.StatusNotLoaded
	default:
		return t.StatusError
	}
}

// StatusShape returns the ASCII shape shown before a status label.
func StatusShape(s model.Status) string {
	switch s {
	case model.StatusReady:
		return StatusIndicators.Ready
	case model.StatusNotConfigured:
		return StatusIndicators.NotConfigured
	case model.StatusNotLoaded:
		return StatusIndicators.NotLoaded
	default:
		return StatusIndicators.Error
	}
}

// RenderIndicator renders a status indicator as "<shape> <label>".
func (t *Theme) RenderIndicator(ind model.Indicator) string {
	return t.StatusStyle(ind.Status).Render(StatusShape(ind.Status) + " " + ind.Label)
}

// GlamourStyle returns the glamour standard style matching the theme.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return GlamourDark
	}
	return GlamourLight
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// BubbleWidth returns the content width for a transcript bubble,
// leaving room for borders, padding and the side margin.
func (t *Theme) BubbleWidth() int {
	w := t.Width - 10
	if w < 20 {
		return 20
	}
	return w
}
