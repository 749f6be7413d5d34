// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the local key/value store for luna.
//
// Two keys are used: chatHistory holds the serialized message list and
// darkMode holds the text "true" or "false". The store replaces browser
// local storage and comes in two backends:
//
//   - FileStore: a single JSON object in <data_dir>/state.json
//   - SQLiteStore: a kv table in <data_dir>/state.db
//
// # Usage
//
//	store, err := storage.Open(storage.BackendFile, dataDir)
//	history, err := storage.LoadHistory(store)
//	err = storage.SaveHistory(store, transcript.Messages())
//
// A Watcher reports changes made to the store by other processes so the
// transcript can be reloaded.
package storage
