// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestReplaceFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	require.NoError(t, ReplaceFile(path, []byte("hello, world!"), 0600))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello, world!", string(content))
}

func TestReplaceFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "deep", "state.json")

	require.NoError(t, ReplaceFile(path, []byte("x"), 0600))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestReplaceFile_OverwritesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	require.NoError(t, ReplaceFile(path, []byte("initial"), 0600))
	require.NoError(t, ReplaceFile(path, []byte("updated"), 0600))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "updated", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should be renamed away")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"héllo wörld", 8, "héllo..."},
		{"abc", 2, "ab"},
		{"abc", 0, ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, TruncateRunes(tc.in, tc.max), "TruncateRunes(%q, %d)", tc.in, tc.max)
	}
}

func TestTruncateWidth(t *testing.T) {
	assert.Equal(t, "short", TruncateWidth("short", 10))
	assert.Equal(t, "Perfor...", TruncateWidth("Performance: 12.00 tokens/s", 9))
	// Each CJK rune is two columns wide.
	assert.Equal(t, "日本...", TruncateWidth("日本語のテキスト", 7))
	assert.Equal(t, "", TruncateWidth("anything", 0))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "Please explain this code:", FirstLine("Please explain this code:\n\nfunc main() {}"))
	assert.Equal(t, "single", FirstLine("  single  "))
}
