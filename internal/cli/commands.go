// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/luna-tui/internal/model"
	"github.com/jeranaias/luna-tui/internal/session"
	"github.com/jeranaias/luna-tui/internal/storage"
	"github.com/jeranaias/luna-tui/internal/ui/styles"
)

// ErrNoMessage is returned by ask when there is nothing to send.
var ErrNoMessage = errors.New("no message given (usage: luna ask \"message\")")

// =============================================================================
// ASK
// =============================================================================

// Ask sends one message using the persisted history and prints the reply.
// With no query and a piped stdin, the message is read from stdin.
func (a *App) Ask(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" && !IsTTY() {
		b, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		query = string(b)
	}
	return a.ask(ctx, query)
}

func (a *App) ask(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return ErrNoMessage
	}

	a.printNotice(a.Ctrl.Reload())

	res := a.Ctrl.Submit(ctx, query)
	if res.Err != nil && !errors.Is(res.Err, session.ErrEmptyMessage) {
		msgs := a.Ctrl.Messages()
		if n := len(msgs); n > 0 && msgs[n-1].IsError() {
			return errors.New(msgs[n-1].Content)
		}
		return res.Err
	}
	a.printNotice(res)

	msgs := a.Ctrl.Messages()
	if n := len(msgs); n > 0 && msgs[n-1].Role == model.RoleAssistant {
		fmt.Fprintln(a.Out, a.renderReply(msgs[n-1].Content))
	}
	return nil
}

// renderReply renders markdown when writing to a terminal and returns the
// text unchanged otherwise, so piped output stays clean.
func (a *App) renderReply(content string) string {
	if !IsStdoutTTY() {
		return content
	}

	style := styles.GlamourLight
	if a.Ctrl.DarkMode() {
		style = styles.GlamourDark
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(GetTerminalWidth()-4),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

// =============================================================================
// STATUS
// =============================================================================

// Status checks the model status and prints the indicator.
func (a *App) Status(ctx context.Context) error {
	res := a.Ctrl.CheckStatus(ctx)
	a.printStatus()
	a.printNotice(res)
	return nil
}

func (a *App) printStatus() {
	snap := a.Ctrl.Snapshot()
	if !snap.StatusKnown {
		return
	}
	ind := snap.Indicator
	theme := styles.NewTheme(snap.DarkMode)
	fmt.Fprintf(a.Out, "%s %s\n", theme.RenderIndicator(ind), dimStyle.Render(ind.Tooltip))
	if snap.Status.NeedsConfiguration() && !a.Quiet {
		fmt.Fprintln(a.Out, dimStyle.Render("Run 'luna configure <path>' to point the server at a model file."))
	}
}

// =============================================================================
// CONFIGURE
// =============================================================================

// Configure points the server at a model file. An empty path falls back to
// the configured default, as the TUI panel does.
func (a *App) Configure(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		path = a.Config.Model.DefaultPath
	}

	res := a.Ctrl.SaveConfig(ctx, path)
	a.printNotice(res)
	if res.Notice != nil && res.Notice.Level != session.LevelInfo {
		if res.Err != nil {
			return res.Err
		}
		return errors.New(res.Notice.Message)
	}
	a.printStatus()
	return nil
}

// =============================================================================
// HISTORY
// =============================================================================

// History prints the persisted chat history, optionally only the last
// limit messages, as text or JSON.
func (a *App) History(limit int, asJSON bool) error {
	msgs, err := storage.LoadHistory(a.Store)
	if err != nil {
		return err
	}
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	if asJSON {
		enc := json.NewEncoder(a.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(msgs)
	}

	if len(msgs) == 0 {
		if !a.Quiet {
			fmt.Fprintln(a.Out, dimStyle.Render("No chat history."))
		}
		return nil
	}
	for _, m := range msgs {
		printMessage(a.Out, m)
	}
	return nil
}

func printMessage(w io.Writer, m model.Message) {
	label := m.Role.DisplayName()
	switch m.Role {
	case model.RoleUser:
		label = userLabelStyle.Render(label)
	case model.RoleAssistant:
		label = assistantLabelStyle.Render(label)
	default:
		label = errorStyle.Render(label)
	}

	ts := ""
	if !m.Timestamp.IsZero() {
		ts = dimStyle.Render(m.Timestamp.Local().Format("2006-01-02 15:04")) + " "
	}
	fmt.Fprintf(w, "%s%s: %s\n", ts, label, m.Content)
}

// =============================================================================
// THEME
// =============================================================================

// Theme shows the dark mode flag, or changes it: "toggle" flips it, "dark"
// and "light" set it.
func (a *App) Theme(action string) error {
	dark := a.Ctrl.DarkMode()

	want := dark
	switch action {
	case "":
	case "toggle":
		want = !dark
	case "dark":
		want = true
	case "light":
		want = false
	default:
		return fmt.Errorf("unknown theme action %q", action)
	}

	if want != dark {
		var res session.Result
		dark, res = a.Ctrl.ToggleTheme()
		a.printNotice(res)
	}

	name := "light"
	if dark {
		name = "dark"
	}
	fmt.Fprintln(a.Out, name)
	return nil
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

func (a *App) printNotice(res session.Result) {
	n := res.Notice
	if n == nil {
		return
	}
	if a.Quiet && n.Level == session.LevelInfo {
		return
	}
	text := n.Message
	if n.Title != "" {
		text = n.Title + ": " + text
	}
	fmt.Fprintln(a.Err, noticeStyle(n.Level).Render(text))
}
