// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/luna-tui/internal/model"
)

func TestNewRequestBuilder(t *testing.T) {
	b, err := NewRequestBuilder("", "")
	require.NoError(t, err)
	assert.Equal(t, VariantHistory, b.Variant())

	b, err = NewRequestBuilder(VariantSession, "abc")
	require.NoError(t, err)
	assert.Equal(t, VariantSession, b.Variant())

	_, err = NewRequestBuilder("streaming", "")
	assert.Error(t, err)
}

func TestHistoryBuilder_SkipsErrorMessages(t *testing.T) {
	history := []model.Message{
		model.NewUserMessage("q1"),
		model.NewErrorMessage("Failed to send message. Please try again."),
		model.NewUserMessage("q2"),
		model.NewAssistantMessage("a2"),
	}

	body := HistoryBuilder{}.Build(history, model.NewUserMessage("q3"))
	data, err := json.Marshal(body)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"messages": [
			{"role":"user","content":"q1"},
			{"role":"user","content":"q2"},
			{"role":"assistant","content":"a2"},
			{"role":"user","content":"q3"}
		],
		"stream": false
	}`, string(data))
}

func TestSessionBuilder_IgnoresHistory(t *testing.T) {
	b, err := NewRequestBuilder(VariantSession, "sess-1")
	require.NoError(t, err)

	body := b.Build([]model.Message{model.NewUserMessage("old")}, model.NewUserMessage("hello"))
	data, err := json.Marshal(body)
	require.NoError(t, err)

	assert.JSONEq(t, `{"message":"hello","session_id":"sess-1"}`, string(data))
}

func TestStatusResponse_Report(t *testing.T) {
	loaded := false
	r := StatusResponse{Status: "not_loaded", ModelLoaded: &loaded}.Report()
	assert.Equal(t, model.StatusNotLoaded, r.Status)
	assert.Empty(t, r.Detail)

	r = StatusResponse{Status: "error", Detail: "boom"}.Report()
	assert.Equal(t, model.StatusError, r.Status)
	assert.Equal(t, "boom", r.Detail)

	r = StatusResponse{Status: "error"}.Report()
	assert.Empty(t, r.Detail)
}
