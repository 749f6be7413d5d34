// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewMessage_AssignsIdentity(t *testing.T) {
	a := NewUserMessage("hello")
	b := NewUserMessage("hello")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Timestamp.IsZero())
	assert.Equal(t, RoleUser, a.Role)
	assert.Equal(t, "hello", a.Content)
}

func TestRole_DisplayName(t *testing.T) {
	assert.Equal(t, "You", RoleUser.DisplayName())
	assert.Equal(t, "Assistant", RoleAssistant.DisplayName())
	assert.Equal(t, "Error", RoleError.DisplayName())
	assert.Equal(t, "system", Role("system").DisplayName())
}

func TestMessage_DecodesBareRoleContent(t *testing.T) {
	var msgs []Message
	err := json.Unmarshal([]byte(`[{"role":"user","content":"hello"},{"role":"assistant","content":"hi there"}]`), &msgs)
	require.NoError(t, err)

	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "hi there", msgs[1].Content)
	assert.Empty(t, msgs[0].ID)
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestTranscript_AppendPreservesOrder(t *testing.T) {
	tr := NewTranscript(nil)
	assert.Zero(t, tr.Len())

	tr.Append(NewUserMessage("one"))
	tr.Append(NewAssistantMessage("two"))
	tr.Append(NewErrorMessage("three"))

	msgs := tr.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "one", msgs[0].Content)
	assert.Equal(t, "two", msgs[1].Content)
	assert.Equal(t, "three", msgs[2].Content)
	assert.Equal(t, 3, tr.Len())
}

func TestConversation_SkipsErrors(t *testing.T) {
	msgs := []Message{
		NewUserMessage("q1"),
		NewErrorMessage("Failed to send message. Please try again."),
		NewUserMessage("q2"),
		NewAssistantMessage("a2"),
	}

	conv := Conversation(msgs)
	require.Len(t, conv, 3)
	for _, msg := range conv {
		assert.NotEqual(t, RoleError, msg.Role)
	}
	assert.Len(t, msgs, 4)
}

func TestTranscript_CopiesAreIndependent(t *testing.T) {
	src := []Message{NewUserMessage("a")}
	tr := NewTranscript(src)
	src[0].Content = "mutated"

	out := tr.Messages()
	out[0].Content = "also mutated"

	assert.Equal(t, "a", tr.Messages()[0].Content)
}

// =============================================================================
// STATUS TESTS
// =============================================================================

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"ready", StatusReady},
		{"not_configured", StatusNotConfigured},
		{"not_loaded", StatusNotLoaded},
		{"error", StatusError},
		{"loading", StatusError},
		{"", StatusError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseStatus(tc.in), "ParseStatus(%q)", tc.in)
	}
}

func TestStatusReport_Indicator(t *testing.T) {
	tests := []struct {
		name    string
		report  StatusReport
		label   string
		class   string
		tooltip string
	}{
		{
			name:    "ready with performance",
			report:  StatusReport{Status: StatusReady, AvgSpeed: 12.5},
			label:   "Ready",
			class:   "status-ready",
			tooltip: "Performance: 12.50 tokens/s",
		},
		{
			name:    "ready without performance",
			report:  StatusReport{Status: StatusReady},
			label:   "Ready",
			class:   "status-ready",
			tooltip: "Performance: 0.00 tokens/s",
		},
		{
			name:    "not configured",
			report:  StatusReport{Status: StatusNotConfigured},
			label:   "Not Configured",
			class:   "status-not-configured",
			tooltip: "Press ctrl+o to configure model",
		},
		{
			name:    "not loaded",
			report:  StatusReport{Status: StatusNotLoaded},
			label:   "Not Loaded",
			class:   "status-not-loaded",
			tooltip: "Model configuration error",
		},
		{
			name:    "error with detail",
			report:  StatusReport{Status: StatusError, Detail: "Failed to connect to server"},
			label:   "Error",
			class:   "status-error",
			tooltip: "Failed to connect to server",
		},
		{
			name:    "error without detail",
			report:  StatusReport{Status: StatusError},
			label:   "Error",
			class:   "status-error",
			tooltip: "Unknown error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ind := tc.report.Indicator()
			assert.Equal(t, tc.label, ind.Label)
			assert.Equal(t, tc.class, ind.Class)
			assert.Equal(t, tc.tooltip, ind.Tooltip)
		})
	}
}

func TestStatusReport_NeedsConfiguration(t *testing.T) {
	assert.False(t, StatusReport{Status: StatusReady}.NeedsConfiguration())
	assert.True(t, StatusReport{Status: StatusNotConfigured}.NeedsConfiguration())
	assert.True(t, StatusReport{Status: StatusNotLoaded}.NeedsConfiguration())
	assert.True(t, StatusReport{Status: StatusError}.NeedsConfiguration())
}
