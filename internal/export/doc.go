// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a conversation transcript to a file.
//
// Two formats are supported:
//
//	markdown  a readable document with citation footnotes per reply
//	json      the turns, their sources and statistics, for tooling
//
// Usage:
//
//	conv := export.NewConversation("charlie-munger", machine.Transcript())
//	path, err := export.ToFile(conv, export.NewMarkdownExporter(nil), export.DefaultOptions())
package export
