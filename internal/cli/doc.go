// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-TUI commands for luna.
//
// # Key Types
//
//   - Command: Enumeration of the available commands
//   - Args: Parsed arguments with global and command-specific flags
//   - App: Config, store, backend client and session controller for one run
//
// # Usage
//
//	cmd, args, err := cli.Parse(os.Args[1:])
//	cfg, err := cli.LoadConfig(args)
//	app, err := cli.NewApp(cfg, os.Stdout, os.Stderr, args.Quiet)
//	defer app.Close()
//	err = app.Run(ctx, cmd, args)
//
// # Commands Overview
//
//   - tui: Full-screen chat (the default in a terminal)
//   - chat: Line-mode chat with slash commands and input history
//   - ask: One exchange; the message may also come from stdin
//   - status, configure: Model status and model file configuration
//   - history, theme: Inspect the local store
package cli
