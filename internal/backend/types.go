// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"encoding/json"
	"strings"

	"github.com/jeranaias/luna-tui/internal/model"
)

// =============================================================================
// STATUS
// =============================================================================

// StatusResponse is the body of GET /api/model/status.
type StatusResponse struct {
	Status      string       `json:"status"`
	ModelLoaded *bool        `json:"model_loaded,omitempty"`
	ModelPath   string       `json:"model_path,omitempty"`
	Performance *Performance `json:"performance,omitempty"`
	Detail      string       `json:"detail,omitempty"`
}

// Performance carries the server's average generation speed.
type Performance struct {
	AvgSpeed float64 `json:"avg_speed"`
}

// Report converts the wire response into a StatusReport.
//
// Servers that answer with a free-text status ("Model loaded successfully.")
// are read through model_loaded: loaded is ready, otherwise the model is not
// configured when no path is set and not loaded when one is. A free-text
// status with a detail, or without model_loaded, maps to the error state; the
// raw string becomes the detail when the server gave none.
func (r StatusResponse) Report() model.StatusReport {
	report := model.StatusReport{
		Status: model.ParseStatus(r.Status),
		Detail: r.Detail,
	}
	if r.ModelLoaded != nil {
		report.ModelLoaded = *r.ModelLoaded
	}
	if r.Performance != nil {
		report.AvgSpeed = r.Performance.AvgSpeed
	}

	known := report.Status != model.StatusError || r.Status == string(model.StatusError)
	if known {
		return report
	}

	text := strings.TrimSpace(r.Status)
	switch {
	case r.ModelLoaded != nil && r.Detail == "" && report.ModelLoaded:
		report.Status = model.StatusReady
	case r.ModelLoaded != nil && r.Detail == "" && !hasModelPath(r.ModelPath):
		report.Status = model.StatusNotConfigured
	case r.ModelLoaded != nil && r.Detail == "":
		report.Status = model.StatusNotLoaded
	}
	if report.Detail == "" {
		report.Detail = text
	}
	return report
}

// hasModelPath reports whether the server has a model path configured.
// Some servers send the placeholder "Not Configured" instead of omitting it.
func hasModelPath(p string) bool {
	p = strings.TrimSpace(p)
	return p != "" && !strings.EqualFold(p, "not configured")
}

// =============================================================================
// CONFIGURE
// =============================================================================

// ConfigureRequest is the body of POST /api/model/configure.
type ConfigureRequest struct {
	ModelPath   string       `json:"model_path"`
	ModelConfig *ModelParams `json:"model_config,omitempty"`
}

// ModelParams are the inference parameters sent by the extended variant.
type ModelParams struct {
	NCtx     int `json:"n_ctx"`
	NThreads int `json:"n_threads"`
	NBatch   int `json:"n_batch"`
}

// DefaultModelParams returns the parameters used when none are configured.
func DefaultModelParams() ModelParams {
	return ModelParams{NCtx: 4096, NThreads: 4, NBatch: 512}
}

// ConfigureResponse is the body of a successful configure call.
type ConfigureResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// =============================================================================
// CHAT
// =============================================================================

// ChatMessage is a message as the server sees it.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HistoryChatRequest carries the full conversation.
type HistoryChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

// SessionChatRequest carries a single message. SessionID marshals as null
// when unset.
type SessionChatRequest struct {
	Message   string  `json:"message"`
	SessionID *string `json:"session_id"`
}

// ChatResponse is the body of a successful chat call.
type ChatResponse struct {
	Response    string           `json:"response"`
	Performance *ChatPerformance `json:"performance,omitempty"`
}

// ChatPerformance is the per-request timing some servers return.
type ChatPerformance struct {
	Tokens          int     `json:"tokens"`
	TimeTaken       float64 `json:"time_taken"`
	TokensPerSecond float64 `json:"tokens_per_second"`
}

// errorBody is the shape of non-2xx responses. Detail may be a string or,
// for request validation failures, a structured value.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// parseDetail extracts a human-readable detail from an error response body.
func parseDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		return s
	}
	if string(eb.Detail) == "null" {
		return ""
	}
	return string(eb.Detail)
}
