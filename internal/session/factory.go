// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"github.com/google/uuid"

	"github.com/jeranaias/luna-tui/internal/backend"
	"github.com/jeranaias/luna-tui/internal/config"
	"github.com/jeranaias/luna-tui/internal/storage"
)

// SessionID returns the configured session identifier, a fresh UUID when
// generation is enabled, or "" for none.
func SessionID(cfg config.ChatConfig) string {
	if cfg.SessionID != "" {
		return cfg.SessionID
	}
	if cfg.GenerateSessionID {
		return uuid.NewString()
	}
	return ""
}

// FromConfig builds a controller from the application configuration.
func FromConfig(cfg *config.Config, client Backend, store storage.Store) (*Controller, error) {
	builder, err := backend.NewRequestBuilder(cfg.Chat.Variant, SessionID(cfg.Chat))
	if err != nil {
		return nil, err
	}

	return NewController(client, store, Config{
		Builder:          builder,
		DefaultModelPath: cfg.Model.DefaultPath,
		SendParams:       cfg.Model.SendParams,
		Params: backend.ModelParams{
			NCtx:     cfg.Model.NCtx,
			NThreads: cfg.Model.NThreads,
			NBatch:   cfg.Model.NBatch,
		},
		AfterConfigure: cfg.Model.AfterConfigure,
	}), nil
}
