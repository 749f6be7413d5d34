// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Transcript is the ordered list of messages currently rendered.
// Insertion order is conversation order. A Transcript is not safe for
// concurrent use; callers guard it.
type Transcript struct {
	messages []Message
}

// NewTranscript creates a transcript holding a copy of msgs.
func NewTranscript(msgs []Message) *Transcript {
	t := &Transcript{}
	t.Replace(msgs)
	return t
}

// Append adds a message to the end of the transcript.
func (t *Transcript) Append(msg Message) {
	t.messages = append(t.messages, msg)
}

// Replace discards the current messages and copies in msgs.
func (t *Transcript) Replace(msgs []Message) {
	t.messages = make([]Message, len(msgs))
	copy(t.messages, msgs)
}

// Messages returns a copy of all messages, error-role messages included.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}
