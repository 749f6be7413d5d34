// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage keys.
const (
	KeyChatHistory = "chatHistory"
	KeyDarkMode    = "darkMode"
)

// Backend names.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Store is a string key/value store. Implementations are safe for
// concurrent use.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)

	// Set stores value under key.
	Set(key, value string) error

	// Path returns the file backing the store.
	Path() string

	// Close releases resources. Further calls return ErrClosed.
	Close() error
}

// Open opens the store for backend under dir, creating dir if needed.
func Open(backend, dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	switch backend {
	case BackendFile, "":
		return NewFileStore(filepath.Join(dir, "state.json"))
	case BackendSQLite:
		return NewSQLiteStore(filepath.Join(dir, "state.db"))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// Sentinel errors.
var (
	ErrClosed         = &StoreError{Message: "store is closed"}
	ErrUnknownBackend = &StoreError{Message: "unknown storage backend"}
	ErrCorruptHistory = &StoreError{Message: "stored chat history is corrupt"}
)

// StoreError represents a storage error.
// It can be compared using errors.Is.
type StoreError struct {
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing store errors.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}
