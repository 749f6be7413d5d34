// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "errors"

// Local validation errors. None of these cause a request.
var (
	ErrEmptyMessage    = errors.New("message is empty")
	ErrEmptyModelPath  = errors.New("model path is empty")
	ErrBusy            = errors.New("a request is already in flight")
	ErrUnknownTemplate = errors.New("unknown template")
)
