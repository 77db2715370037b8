// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for a persona conversation.
//
// # Key Types
//
//   - Role: who authored a turn (user, assistant)
//   - Turn: one entry in the transcript, optionally carrying citations
//   - Citation: a retrieved source the assistant may reference as "[id]"
//   - Transcript: the ordered list of turns plus the open streaming turn
//   - Statistics: timing and token counts for one streamed reply
//
// # Usage
//
//	t := model.NewTranscript()
//	history := t.History()
//	t.Append(model.NewUserTurn("What is inversion?"))
//	i := t.Append(model.NewAssistantTurn())
//	_ = t.AppendContent(i, "Invert, always invert.")
//	_ = t.Finish(i, stats)
//
// The open turn is addressed by its index. Callers never hold a pointer into
// the transcript; Turns returns copies.
package model
