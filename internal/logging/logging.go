// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging sets up the structured log file for luna.
//
// The terminal belongs to the UI, so records go to
// <data_dir>/logs/luna_YYYYMMDD.log instead of stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Logger is an open log file installed as the default slog logger.
type Logger struct {
	*slog.Logger

	path string
	file *os.File
	prev *slog.Logger
}

// FileName returns the log file name for day t.
func FileName(t time.Time) string {
	return "luna_" + t.Format("20060102") + ".log"
}

// ParseLevel maps a config level name onto a slog level. Unknown names
// mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup opens today's log file under dataDir and makes it the slog default.
func Setup(dataDir, level string) (*Logger, error) {
	dir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, FileName(time.Now()))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := &Logger{
		Logger: New(file, level),
		path:   path,
		file:   file,
		prev:   slog.Default(),
	}
	slog.SetDefault(l.Logger)
	return l, nil
}

// New returns a text logger writing to w.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// Discard installs a logger that drops everything. Used when the log file
// cannot be opened and by quiet one-shot commands.
func Discard() {
	slog.SetDefault(New(io.Discard, "error"))
}

// Path returns the log file path.
func (l *Logger) Path() string {
	return l.path
}

// Close restores the previous default logger and closes the file.
func (l *Logger) Close() error {
	if l.prev != nil {
		slog.SetDefault(l.prev)
	}
	return l.file.Close()
}
