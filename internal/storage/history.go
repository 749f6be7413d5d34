// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jeranaias/luna-tui/internal/model"
)

// History is the persisted chat history together with the stored value it
// was decoded from. Two reads with the same Raw value saw the same history.
type History struct {
	Messages []model.Message
	Raw      string
}

// ReadHistory reads the chat history and its raw value. A missing key is an
// empty history. Unparseable data returns ErrCorruptHistory along with the
// raw value.
func ReadHistory(s Store) (History, error) {
	raw, ok, err := s.Get(KeyChatHistory)
	if err != nil {
		return History{}, err
	}
	h := History{Messages: []model.Message{}, Raw: raw}
	if !ok || raw == "" {
		return h, nil
	}

	var msgs []model.Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		return History{Raw: raw}, fmt.Errorf("%w: %v", ErrCorruptHistory, err)
	}
	if msgs != nil {
		h.Messages = msgs
	}
	return h, nil
}

// WriteHistory replaces the persisted chat history with msgs and returns
// the raw value written.
func WriteHistory(s Store, msgs []model.Message) (string, error) {
	if msgs == nil {
		msgs = []model.Message{}
	}
	data, err := json.Marshal(msgs)
	if err != nil {
		return "", fmt.Errorf("failed to encode chat history: %w", err)
	}
	if err := s.Set(KeyChatHistory, string(data)); err != nil {
		return "", err
	}
	return string(data), nil
}

// LoadHistory returns the persisted chat history in order.
func LoadHistory(s Store) ([]model.Message, error) {
	h, err := ReadHistory(s)
	if err != nil {
		return nil, err
	}
	return h.Messages, nil
}

// SaveHistory replaces the persisted chat history with msgs.
func SaveHistory(s Store, msgs []model.Message) error {
	_, err := WriteHistory(s, msgs)
	return err
}

// LoadDarkMode returns the persisted theme flag. Only the exact text "true"
// enables dark mode; a missing key means light.
func LoadDarkMode(s Store) (bool, error) {
	raw, _, err := s.Get(KeyDarkMode)
	if err != nil {
		return false, err
	}
	return raw == "true", nil
}

// SaveDarkMode persists the theme flag as "true" or "false".
func SaveDarkMode(s Store, dark bool) error {
	return s.Set(KeyDarkMode, strconv.FormatBool(dark))
}
