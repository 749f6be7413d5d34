// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Argument parsing for the luna command.
package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdAsk
	CmdStatus
	CmdConfigure
	CmdHistory
	CmdTheme
	CmdVersion
	CmdHelp
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdChat:
		return "chat"
	case CmdAsk:
		return "ask"
	case CmdStatus:
		return "status"
	case CmdConfigure:
		return "configure"
	case CmdHistory:
		return "history"
	case CmdTheme:
		return "theme"
	case CmdVersion:
		return "version"
	default:
		return "help"
	}
}

// NeedsApp reports whether the command talks to the store or the server.
func (c Command) NeedsApp() bool {
	return c != CmdVersion && c != CmdHelp
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string
	Server     string
	Variant    string
	Store      string
	Quiet      bool

	// Explicit is false when no command was given and the TUI was chosen
	// by default.
	Explicit bool

	// Command-specific
	Query      string // ask message, configure model path
	Subcommand string // theme: toggle, dark, light
	Limit      int    // history --limit
	JSON       bool   // history --json

	// Raw args (remaining after the command name)
	Raw []string
}

const usageText = `luna - terminal chat client for a local inference server

Usage:
  luna                        Start the TUI (default when run in a terminal)
  luna tui                    Start the TUI
  luna chat                   Interactive line-mode chat
  luna ask "message"          Send one message and print the reply
  luna status                 Show the model status
  luna configure [path]       Point the server at a model file
  luna history [--limit N] [--json]
                              Print the saved chat history
  luna theme [toggle|dark|light]
                              Show or change the theme
  luna version                Show version information
  luna help                   Show this help

Global flags:
  --config FILE               Config file (default ~/.luna/config.toml)
  --server URL                Server base URL (default http://localhost:8000)
  --variant history|session   Chat request format
  --store file|sqlite         Local store backend
  -q, --quiet                 Suppress banners and hints

Chat commands (luna chat):
  /config [path]              Configure the model
  /status                     Re-check the model status
  /theme                      Toggle dark mode
  /explain, /summarize, /debug [text]
                              Prefix the next message with a prompt template
  /history                    Show the transcript
  /reload                     Reload the transcript from the store
  /quit                       Exit
  End a line with \ to continue the message on the next line.

Environment:
  LUNA_SERVER_URL, LUNA_VARIANT, LUNA_SESSION_ID, LUNA_STORE, LUNA_DATA_DIR,
  LUNA_LOG_LEVEL and friends override the config file. A .env file next to
  the config file, or in the working directory, is loaded first.
`

// PrintUsage writes the usage text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "luna %s (commit %s, built %s, %s/%s)\n",
		Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}

// Parse parses command-line arguments (without the program name).
func Parse(argv []string) (Command, Args, error) {
	remaining, args, err := parseGlobalFlags(argv)
	if err != nil {
		return CmdHelp, args, err
	}

	if len(remaining) == 0 {
		return CmdTUI, args, nil
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining
	args.Explicit = true

	switch cmd {
	case "tui":
		return CmdTUI, args, nil

	case "chat", "repl":
		return CmdChat, args, nil

	case "ask":
		p := NewArgParser(remaining)
		args.Query = p.JoinPositional(0)
		return CmdAsk, args, nil

	case "status", "s":
		return CmdStatus, args, nil

	case "configure", "config":
		p := NewArgParser(remaining)
		args.Query = p.JoinPositional(0)
		return CmdConfigure, args, nil

	case "history":
		p := NewArgParser(remaining, "json")
		args.Limit = p.FlagIntOrDefault("limit", 0)
		if args.Limit == 0 {
			args.Limit = p.FlagIntOrDefault("n", 0)
		}
		args.JSON = p.BoolFlag("json")
		return CmdHistory, args, nil

	case "theme":
		p := NewArgParser(remaining)
		args.Subcommand = strings.ToLower(p.Positional(0))
		switch args.Subcommand {
		case "", "toggle", "dark", "light":
		default:
			return CmdHelp, args, fmt.Errorf("unknown theme action %q (want toggle, dark or light)", args.Subcommand)
		}
		return CmdTheme, args, nil

	case "version", "-v", "--version":
		return CmdVersion, args, nil

	case "help", "-h", "--help":
		return CmdHelp, args, nil

	default:
		return CmdHelp, args, fmt.Errorf("unknown command %q (run 'luna help')", cmd)
	}
}

// parseGlobalFlags extracts global flags from args and returns the rest.
// Global flags may appear anywhere on the command line.
func parseGlobalFlags(argv []string) ([]string, Args, error) {
	var remaining []string
	var args Args

	valueFlags := map[string]*string{
		"--config":  &args.ConfigPath,
		"--server":  &args.Server,
		"--variant": &args.Variant,
		"--store":   &args.Store,
	}

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		if arg == "-q" || arg == "--quiet" {
			args.Quiet = true
			continue
		}

		if name, value, ok := strings.Cut(arg, "="); ok {
			if dst, known := valueFlags[name]; known {
				*dst = value
				continue
			}
		}

		if dst, known := valueFlags[arg]; known {
			if i+1 >= len(argv) {
				return nil, args, fmt.Errorf("flag %s requires a value", arg)
			}
			i++
			*dst = argv[i]
			continue
		}

		remaining = append(remaining, arg)
	}
	return remaining, args, nil
}
