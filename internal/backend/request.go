// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"fmt"

	"github.com/jeranaias/luna-tui/internal/model"
)

// Chat request variants.
const (
	VariantHistory = "history"
	VariantSession = "session"
)

// RequestBuilder builds the body of a chat request.
type RequestBuilder interface {
	// Variant returns the variant name.
	Variant() string

	// Build returns the request body for sending next after history.
	// history must not already contain next.
	Build(history []model.Message, next model.Message) any
}

// NewRequestBuilder returns the builder for variant. sessionID is only used
// by the session variant; empty means no session.
func NewRequestBuilder(variant, sessionID string) (RequestBuilder, error) {
	switch variant {
	case VariantHistory, "":
		return HistoryBuilder{}, nil
	case VariantSession:
		b := SessionBuilder{}
		if sessionID != "" {
			b.SessionID = &sessionID
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown chat variant %q (want %q or %q)", variant, VariantHistory, VariantSession)
	}
}

// HistoryBuilder sends the whole conversation with stream disabled.
// Error-role messages never reach the server.
type HistoryBuilder struct{}

func (HistoryBuilder) Variant() string { return VariantHistory }

func (HistoryBuilder) Build(history []model.Message, next model.Message) any {
	conv := model.Conversation(history)
	msgs := make([]ChatMessage, 0, len(conv)+1)
	for _, m := range conv {
		msgs = append(msgs, ChatMessage{Role: m.Role.String(), Content: m.Content})
	}
	msgs = append(msgs, ChatMessage{Role: next.Role.String(), Content: next.Content})
	return HistoryChatRequest{Messages: msgs, Stream: false}
}

// SessionBuilder sends only the new message; the server keeps the context.
type SessionBuilder struct {
	SessionID *string
}

func (SessionBuilder) Variant() string { return VariantSession }

func (b SessionBuilder) Build(_ []model.Message, next model.Message) any {
	return SessionChatRequest{Message: next.Content, SessionID: b.SessionID}
}
