// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the headless chat controller shared by the TUI
// and the line-mode REPL.
//
// The Controller owns the transcript, the theme flag, the last model status
// and the model configuration panel. Every UI event is a Command executed
// through Dispatch; failures come back as a Notice in the Result rather
// than as a returned error.
//
// # Chat Exchanges
//
// Submit is split into three phases so an event-loop UI can render the user
// message before the network call returns:
//
//	ex, err := ctrl.Begin(text)       // local: append user message, lock input
//	out := ex.Send(ctx)               // network: one POST /api/chat
//	res := ctrl.Settle(out)           // local: append reply or error, persist
//
// Only one exchange may be in flight at a time.
//
// # Model Configuration
//
// CheckStatus opens the configuration panel whenever the model is not
// ready. SaveConfig validates the path, posts it to the server and, on
// success, closes the panel and reloads or re-polls.
package session
