// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the full-screen chat view for the luna TUI.

The Model is a Bubble Tea front end over a session.Controller. It owns no
conversation state of its own: every key press that changes state becomes a
controller call, and the view is rebuilt from the controller Snapshot.

# Key Components

## Model (model.go)

Holds the widgets (textarea input, viewport transcript, spinner, model path
input) plus the last Snapshot and the notice being shown.

## Update (update.go)

Network work runs in tea.Cmds. A chat send is split so that only the round
trip leaves the UI goroutine:

	Begin (Update)  ->  Exchange.Send (Cmd)  ->  Settle (Update)

Status checks and model configuration run entirely in a Cmd and report back
with their Result. Store changes seen by the watcher trigger a Reload.

## View (view.go)

Header with the status indicator and its tooltip, the transcript (assistant
replies rendered as markdown with glamour), a notice line, the auto-growing
input and a help line. The configuration panel is drawn over the transcript.

# Keyboard Shortcuts

	Enter         Send message
	Alt+Enter     New line (also Shift+Enter, Ctrl+J)
	Ctrl+O        Configure model
	Ctrl+R        Re-check model status
	Ctrl+T        Toggle dark mode
	Alt+E/S/D     Explain / Summarize / Debug templates
	PgUp/PgDn     Scroll transcript
	Esc           Close panel or dismiss notice
	Ctrl+C        Quit
*/
package chat
