// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/luna-tui/internal/model"
	"github.com/jeranaias/luna-tui/internal/session"
	"github.com/jeranaias/luna-tui/internal/ui/styles"
	"github.com/jeranaias/luna-tui/internal/util"
)

const emptyTranscript = "No messages yet. Type below to start chatting."

// View renders the chat screen.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	body := m.viewport.View()
	if m.snap.Panel.Visible {
		body = lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Center, m.renderPanel())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderNotice(),
		m.renderInput(),
		m.renderHelp(),
	)
}

// =============================================================================
// HEADER
// =============================================================================

func (m *Model) renderHeader() string {
	t := m.theme
	brand := t.HeaderBrand.Render("luna")

	var status, tooltip string
	if m.snap.StatusKnown {
		status = t.RenderIndicator(m.snap.Indicator)
		tooltip = m.snap.Indicator.Tooltip
	} else {
		status = t.StatusPending.Render(styles.StatusIndicators.Pending + " Checking")
	}

	left := brand + "  " + status
	room := m.width - lipgloss.Width(left) - 4
	if tooltip != "" && room > 3 {
		left += "  " + t.Tooltip.Render(util.TruncateWidth(tooltip, room))
	}
	return t.Header.Width(m.width).Render(left)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshViewport rebuilds the transcript content, keeping the scroll
// position pinned to the bottom when it was already there.
func (m *Model) refreshViewport() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderTranscript())
	if atBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderTranscript() string {
	t := m.theme
	if len(m.snap.Messages) == 0 && !m.snap.InFlight {
		if !m.started {
			return t.Placeholder.Render(m.spinner.View() + " Loading history...")
		}
		return t.EmptyState.Width(m.width).Render(emptyTranscript)
	}

	var b strings.Builder
	for _, msg := range m.snap.Messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	if m.snap.InFlight {
		b.WriteString(t.Placeholder.Render(m.spinner.View() + " Thinking..."))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderMessage(msg model.Message) string {
	t := m.theme
	label := t.RoleLabel.Render(msg.Role.DisplayName())
	if !msg.Timestamp.IsZero() {
		label += " " + t.Timestamp.Render(msg.Timestamp.Local().Format("15:04"))
	}

	width := t.BubbleWidth()
	var bubble string
	switch msg.Role {
	case model.RoleUser:
		bubble = t.UserBubble.Width(width).Render(msg.Content)
	case model.RoleAssistant:
		bubble = t.AssistantBubble.Width(width).Render(m.markdown(msg))
	default:
		bubble = t.ErrorBubble.Width(width).Render(msg.Content)
	}
	return label + "\n" + bubble
}

// markdown renders an assistant message with glamour, caching by message
// ID. Falls back to the raw text when rendering fails.
func (m *Model) markdown(msg model.Message) string {
	if out, ok := m.rendered[msg.ID]; ok && msg.ID != "" {
		return out
	}
	if m.renderer == nil {
		return msg.Content
	}
	out, err := m.renderer.Render(msg.Content)
	if err != nil {
		return msg.Content
	}
	out = strings.Trim(out, "\n")
	if msg.ID != "" {
		m.rendered[msg.ID] = out
	}
	return out
}

// =============================================================================
// CONFIGURATION PANEL
// =============================================================================

func (m *Model) renderPanel() string {
	t := m.theme
	p := m.snap.Panel

	hint := "Enter to save, Esc to cancel"
	if p.Saving {
		hint = m.spinner.View() + " Configuring model..."
	}

	lines := []string{
		t.PanelTitle.Render("Model Configuration"),
		m.pathInput.View(),
		"",
		t.PanelHint.Render(hint),
	}
	if m.snap.StatusKnown && m.snap.Indicator.Status != model.StatusReady {
		lines = append(lines, t.PanelHint.Render("Status: "+m.snap.Indicator.Label+" ("+m.snap.Indicator.Tooltip+")"))
	}

	w := m.width - 8
	if w < 30 {
		w = 30
	}
	return t.Panel.Width(w).Render(strings.Join(lines, "\n"))
}

// =============================================================================
// FOOTER
// =============================================================================

func (m *Model) renderNotice() string {
	if m.notice == nil {
		return ""
	}
	t := m.theme
	style := t.NoticeInfo
	switch m.notice.Level {
	case session.LevelWarning:
		style = t.NoticeWarning
	case session.LevelError:
		style = t.NoticeError
	}
	text := m.notice.Message
	if m.notice.Title != "" {
		text = m.notice.Title + ": " + text
	}
	return style.Render(util.TruncateWidth(text, m.width))
}

func (m *Model) renderInput() string {
	t := m.theme
	if m.snap.InFlight {
		return t.InputContainer.Width(m.width).Render(t.InputDisabled.Render("Waiting for response..."))
	}
	return t.InputContainer.Width(m.width).Render(m.input.View())
}

func (m *Model) renderHelp() string {
	t := m.theme
	line := ""
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		part := t.HelpKey.Render(h.Key) + " " + t.HelpDesc.Render(h.Desc)
		if line != "" {
			part = "  " + part
		}
		if lipgloss.Width(line+part) > m.width {
			break
		}
		line += part
	}
	return line
}
