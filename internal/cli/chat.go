// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/luna-tui/internal/session"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for the line-mode chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor whose input history is kept in dataDir.
func NewChatCLI(dataDir string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completeSlash)

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(dataDir, "input_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line. Non-empty lines are added to the history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

var slashCommands = []string{
	"/config", "/status", "/theme", "/explain", "/summarize", "/debug",
	"/history", "/reload", "/help", "/quit",
}

func completeSlash(line string) []string {
	if !strings.HasPrefix(line, "/") || strings.Contains(line, " ") {
		return nil
	}
	var out []string
	for _, c := range slashCommands {
		if strings.HasPrefix(c, strings.ToLower(line)) {
			out = append(out, c)
		}
	}
	return out
}

// =============================================================================
// CHAT LOOP
// =============================================================================

// repl holds line-mode chat state between inputs.
type repl struct {
	app *App

	// template is the prompt template applied to the next message.
	template *session.PromptTemplate
}

// RunChat runs the interactive line-mode chat until /quit, Ctrl+C or EOF.
func (a *App) RunChat(ctx context.Context) error {
	r := &repl{app: a}

	a.printNotice(a.Ctrl.Start(ctx))
	if !a.Quiet {
		r.printWelcome()
	}

	in := NewChatCLI(a.DataDir)
	defer in.Close()

	var pending []string
	for {
		prompt := r.prompt()
		if len(pending) > 0 {
			prompt = "...> "
		}

		line, err := in.ReadInput(prompt)
		if err != nil {
			// Ctrl+C (liner.ErrPromptAborted) and EOF both end the session.
			fmt.Fprintln(a.Out)
			return nil
		}

		// A trailing backslash continues the message on the next line.
		if strings.HasSuffix(line, `\`) {
			pending = append(pending, strings.TrimSuffix(line, `\`))
			continue
		}
		if len(pending) > 0 {
			line = strings.Join(append(pending, line), "\n")
			pending = nil
		}

		cont, err := r.handleLine(ctx, line)
		if err != nil {
			fmt.Fprintf(a.Err, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
		if !cont {
			return nil
		}
	}
}

func (r *repl) prompt() string {
	if r.template != nil {
		return r.template.Name + "> "
	}
	if r.app.Ctrl.Panel().Visible {
		return "luna (not ready)> "
	}
	return "luna> "
}

// handleLine processes one complete input. It returns false when the
// session should end.
func (r *repl) handleLine(ctx context.Context, line string) (bool, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true, nil
	}
	if strings.HasPrefix(trimmed, "/") {
		return r.handleSlash(ctx, trimmed)
	}
	if strings.EqualFold(trimmed, "exit") || strings.EqualFold(trimmed, "quit") {
		return false, nil
	}

	text := line
	if r.template != nil {
		text = r.template.Prefix + line
		r.template = nil
	}
	return true, r.send(ctx, text)
}

// send submits text and prints whichever message the exchange produced.
func (r *repl) send(ctx context.Context, text string) error {
	a := r.app
	before := len(a.Ctrl.Messages())
	res := a.Ctrl.Submit(ctx, text)
	if errors.Is(res.Err, session.ErrEmptyMessage) {
		return nil
	}
	a.printNotice(res)

	msgs := a.Ctrl.Messages()
	if n := len(msgs); n > before {
		last := msgs[n-1]
		if last.IsError() {
			fmt.Fprintln(a.Out, errorStyle.Render(last.Content))
			return nil
		}
		fmt.Fprintln(a.Out, a.renderReply(last.Content))
	}
	return nil
}

func (r *repl) handleSlash(ctx context.Context, input string) (bool, error) {
	a := r.app
	parts := strings.Fields(input)
	command := strings.ToLower(parts[0])
	rest := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))

	switch command {
	case "/quit", "/q", "/exit":
		return false, nil

	case "/help", "/h", "/?":
		r.printHelp()

	case "/status", "/s":
		a.printNotice(a.Ctrl.Dispatch(ctx, session.CheckStatus{}))
		a.printStatus()

	case "/config", "/configure":
		path := rest
		if path == "" {
			path = a.Ctrl.Panel().Path
		}
		if path == "" {
			path = a.Config.Model.DefaultPath
		}
		a.printNotice(a.Ctrl.Dispatch(ctx, session.SaveConfig{Path: path}))
		a.printStatus()

	case "/theme":
		res := a.Ctrl.Dispatch(ctx, session.ToggleTheme{})
		a.printNotice(res)
		name := "light"
		if a.Ctrl.DarkMode() {
			name = "dark"
		}
		fmt.Fprintln(a.Out, dimStyle.Render("Theme: "+name))

	case "/explain", "/summarize", "/debug":
		name := strings.TrimPrefix(command, "/")
		res := a.Ctrl.Dispatch(ctx, session.ApplyTemplate{Template: name})
		if res.HasNotice() {
			a.printNotice(res)
			return true, nil
		}
		if rest != "" {
			return true, r.send(ctx, res.Prefill+rest)
		}
		t, _ := session.Template(name)
		r.template = &t

	case "/history":
		msgs := a.Ctrl.Messages()
		if len(msgs) == 0 {
			fmt.Fprintln(a.Out, dimStyle.Render("No messages yet."))
		}
		for _, m := range msgs {
			printMessage(a.Out, m)
		}

	case "/reload":
		a.printNotice(a.Ctrl.Dispatch(ctx, session.Reload{}))
		fmt.Fprintln(a.Out, dimStyle.Render(fmt.Sprintf("Reloaded %d messages.", len(a.Ctrl.Messages()))))

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
	return true, nil
}

// =============================================================================
// OUTPUT
// =============================================================================

func (r *repl) printWelcome() {
	a := r.app
	fmt.Fprintln(a.Out, titleStyle.Render("luna")+" "+dimStyle.Render(Version+" - "+a.Client.BaseURL()))
	a.printStatus()
	if n := len(a.Ctrl.Messages()); n > 0 {
		fmt.Fprintln(a.Out, dimStyle.Render(fmt.Sprintf("%d messages in history (/history to show).", n)))
	}
	fmt.Fprintln(a.Out, dimStyle.Render("Type /help for commands, /quit to exit."))
}

func (r *repl) printHelp() {
	w := r.app.Out
	fmt.Fprintln(w, titleStyle.Render("Commands"))
	rows := [][2]string{
		{"/config [path]", "Configure the model (default path when omitted)"},
		{"/status", "Re-check the model status"},
		{"/theme", "Toggle dark mode"},
		{"/explain [text]", "Ask for an explanation of code"},
		{"/summarize [text]", "Ask for a summary"},
		{"/debug [text]", "Ask for help debugging code"},
		{"/history", "Show the transcript"},
		{"/reload", "Reload the transcript from the store"},
		{"/quit", "Exit"},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %-20s %s\n", promptStyle.Render(row[0]), dimStyle.Render(row[1]))
	}
	fmt.Fprintln(w, dimStyle.Render(`End a line with \ to continue on the next line.`))
}
