// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"log/slog"
)

// Level is the severity of a notice.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Notice is a user-facing message produced by a command.
type Notice struct {
	Level   Level
	Title   string
	Message string
	Cause   error
}

// Result is the outcome of a dispatched command.
type Result struct {
	// Notice is set when the user should be told something.
	Notice *Notice

	// Prefill is text to place in the chat input, set by ApplyTemplate.
	Prefill string

	// Err is the underlying error, if any. Commands never fail loudly;
	// Err exists so callers and tests can inspect what happened.
	Err error
}

// HasNotice reports whether the result carries a notice.
func (r Result) HasNotice() bool {
	return r.Notice != nil
}

func noticeResult(level Level, title, message string, cause error) Result {
	n := &Notice{Level: level, Title: title, Message: message, Cause: cause}
	logNotice(n)
	return Result{Notice: n, Err: cause}
}

func logNotice(n *Notice) {
	attrs := []any{"title", n.Title, "message", n.Message}
	if n.Cause != nil {
		attrs = append(attrs, "error", n.Cause)
	}
	slog.Log(context.Background(), n.Level.slogLevel(), "notice", attrs...)
}
