// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat messages and model status.
//
// This package defines the core domain types shared by the backend client,
// the local store, and the user interfaces.
//
// # Key Types
//
//   - Message: Single message with role, content, ID, and timestamp
//   - Role: Message role enumeration (user, assistant, error)
//   - Transcript: Ordered list of messages currently rendered
//   - Status: Model readiness reported by the inference server
//   - Indicator: Label, style class, and tooltip derived from a StatusReport
//
// # Usage
//
//	t := model.NewTranscript(history)
//	t.Append(model.NewUserMessage("hello"))
//	for _, msg := range model.Conversation(t.Messages()) {
//	    // error-role messages are skipped
//	}
package model
