// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"fmt"
)

// Command is a UI event executed by Controller.Dispatch.
type Command interface {
	// Name returns a short identifier for logging.
	Name() string
}

// Submit sends Text as a chat message.
type Submit struct{ Text string }

// ToggleTheme flips the dark mode flag.
type ToggleTheme struct{}

// ApplyTemplate prefills the input with the named template.
type ApplyTemplate struct{ Template string }

// CheckStatus queries the model status.
type CheckStatus struct{}

// OpenConfig shows the model configuration panel.
type OpenConfig struct{}

// CloseConfig hides the model configuration panel.
type CloseConfig struct{}

// SaveConfig configures the server with the model at Path.
type SaveConfig struct{ Path string }

// Reload replaces the transcript with the persisted history.
type Reload struct{}

// SyncHistory reloads the transcript if the persisted history changed.
type SyncHistory struct{}

func (Submit) Name() string        { return "submit" }
func (ToggleTheme) Name() string   { return "toggle_theme" }
func (ApplyTemplate) Name() string { return "apply_template" }
func (CheckStatus) Name() string   { return "check_status" }
func (OpenConfig) Name() string    { return "open_config" }
func (CloseConfig) Name() string   { return "close_config" }
func (SaveConfig) Name() string    { return "save_config" }
func (Reload) Name() string        { return "reload" }
func (SyncHistory) Name() string   { return "sync_history" }

// Dispatch executes cmd. Network commands block; event-loop UIs run them
// off the UI goroutine.
func (c *Controller) Dispatch(ctx context.Context, cmd Command) Result {
	switch cmd := cmd.(type) {
	case Submit:
		return c.Submit(ctx, cmd.Text)
	case ToggleTheme:
		_, r := c.ToggleTheme()
		return r
	case ApplyTemplate:
		return c.ApplyTemplate(cmd.Template)
	case CheckStatus:
		return c.CheckStatus(ctx)
	case OpenConfig:
		return c.OpenConfig()
	case CloseConfig:
		return c.CloseConfig()
	case SaveConfig:
		return c.SaveConfig(ctx, cmd.Path)
	case Reload:
		return c.Reload()
	case SyncHistory:
		return c.SyncHistory()
	default:
		return noticeResult(LevelError, "Command", fmt.Sprintf("Unsupported command %T", cmd), nil)
	}
}
