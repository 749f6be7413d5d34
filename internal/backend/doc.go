// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the local inference server.
//
// The server exposes three endpoints:
//
//   - GET  /api/model/status     model readiness and average speed
//   - POST /api/model/configure  point the server at a model file
//   - POST /api/chat             one non-streaming chat exchange
//
// Chat payloads come in two shapes, selected by a RequestBuilder: the
// history variant sends the full accumulated conversation, the session
// variant sends only the new message and a session identifier.
//
// # Usage
//
//	client := backend.NewClient(backend.DefaultConfig())
//	report, err := client.Status(ctx)
//	builder, _ := backend.NewRequestBuilder(backend.VariantHistory, "")
//	resp, err := client.Chat(ctx, builder.Build(history, next))
//
// Errors are returned as *ClientError and can be matched with errors.Is
// against ErrConnection, ErrTimeout, ErrRejected and ErrInvalidResponse.
package backend
