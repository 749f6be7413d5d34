// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across luna.
//
//   - ReplaceFile: whole-file rewrites through a renamed temp file
//   - TruncateRunes / TruncateWidth: Unicode-safe truncation for display
//
// Usage:
//
//	err := util.ReplaceFile(path, data, 0600)
//	label := util.TruncateWidth(tooltip, 40)
package util
