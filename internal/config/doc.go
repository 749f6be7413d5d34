// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for luna.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ServerConfig: Inference server address and request timeout
//   - ChatConfig: Chat request variant and session identifier
//   - ModelConfig: Model configuration panel defaults
//   - StorageConfig: Local store backend and data directory
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (LUNA_*), including those set by a .env file
//   - ~/.luna/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := backend.NewClient(&backend.ClientConfig{BaseURL: cfg.Server.URL})
package config
