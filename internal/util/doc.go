// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across ragtalk.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth, StringWidth: terminal-column aware helpers (go-runewidth)
//   - OneLine, Preview: single-line previews for lists and history views
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	display := util.Preview(turn.Content, 60)
//	err := util.AtomicWriteFileWithDir(path, data, 0600, 0700)
package util
