// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

// PromptTemplate is a canned prefix for the chat input.
type PromptTemplate struct {
	Name   string
	Label  string
	Prefix string
}

// Templates lists the prompt templates in display order.
var Templates = []PromptTemplate{
	{Name: "explain", Label: "Explain Code", Prefix: "Please explain this code:\n\n"},
	{Name: "summarize", Label: "Summarize", Prefix: "Please summarize this:\n\n"},
	{Name: "debug", Label: "Debug Code", Prefix: "Please help me debug this code:\n\n"},
}

// Template returns the template with the given name.
func Template(name string) (PromptTemplate, bool) {
	for _, t := range Templates {
		if t.Name == name {
			return t, true
		}
	}
	return PromptTemplate{}, false
}
