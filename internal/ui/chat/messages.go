// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "github.com/jeranaias/luna-tui/internal/session"

// =============================================================================
// CONTROLLER MESSAGES
// =============================================================================

// StartedMsg reports that the controller loaded persisted state and ran the
// first status check.
type StartedMsg struct {
	Result session.Result
}

// ExchangeSentMsg carries the outcome of a chat round trip back to the UI
// goroutine, where it is settled.
type ExchangeSentMsg struct {
	Outcome session.Outcome
}

// StatusCheckedMsg reports a finished status check.
type StatusCheckedMsg struct {
	Result session.Result
}

// ConfigSavedMsg reports a finished model configuration request.
type ConfigSavedMsg struct {
	Result session.Result
}

// StoreChangedMsg signals that the local store changed on disk.
type StoreChangedMsg struct{}
