// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSuchTurn is returned when an index does not address a turn.
	ErrNoSuchTurn = errors.New("no such turn")

	// ErrTurnClosed is returned when mutating a turn that is not the open
	// streaming turn.
	ErrTurnClosed = errors.New("turn is not open for streaming")
)

// HistoryEntry is one prior turn as sent to the service.
type HistoryEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Transcript is the ordered list of turns in a conversation.
//
// Turns are append-only. The one exception is the open assistant turn (the
// last turn, while Streaming), which AppendContent, SetSources and Finish
// mutate in place. Transcript is not safe for concurrent use; the
// conversation machine guards it.
type Transcript struct {
	turns []Turn
}

// NewTranscript returns an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{turns: make([]Turn, 0)}
}

// Append adds a turn and returns its index.
func (t *Transcript) Append(turn Turn) int {
	t.turns = append(t.turns, turn)
	return len(t.turns) - 1
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// IsEmpty reports whether the transcript has no turns.
func (t *Transcript) IsEmpty() bool {
	return len(t.turns) == 0
}

// At returns a copy of the turn at index i.
func (t *Transcript) At(i int) (Turn, bool) {
	if i < 0 || i >= len(t.turns) {
		return Turn{}, false
	}
	return t.turns[i].clone(), true
}

// Last returns a copy of the most recent turn.
func (t *Transcript) Last() (Turn, bool) {
	return t.At(len(t.turns) - 1)
}

// Turns returns a copy of every turn.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	for i, turn := range t.turns {
		out[i] = turn.clone()
	}
	return out
}

// AppendContent appends s to the open turn at index i.
func (t *Transcript) AppendContent(i int, s string) error {
	turn, err := t.open(i)
	if err != nil {
		return err
	}
	turn.Content += s
	return nil
}

// SetSources replaces the citations of the open turn at index i.
func (t *Transcript) SetSources(i int, cs []Citation) error {
	turn, err := t.open(i)
	if err != nil {
		return err
	}
	turn.Sources = append([]Citation(nil), cs...)
	return nil
}

// Finish closes the open turn at index i. Content is kept as-is, even when
// empty. stats may be nil.
func (t *Transcript) Finish(i int, stats *Statistics) error {
	turn, err := t.open(i)
	if err != nil {
		return err
	}
	turn.Streaming = false
	if stats != nil {
		s := *stats
		turn.Stats = &s
	}
	return nil
}

// Clear removes every turn.
func (t *Transcript) Clear() {
	t.turns = make([]Turn, 0)
}

// History returns the wire form of every turn: role and content only.
func (t *Transcript) History() []HistoryEntry {
	out := make([]HistoryEntry, 0, len(t.turns))
	for _, turn := range t.turns {
		out = append(out, HistoryEntry{Role: turn.Role, Content: turn.Content})
	}
	return out
}

func (t *Transcript) open(i int) (*Turn, error) {
	if i < 0 || i >= len(t.turns) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrNoSuchTurn, i, len(t.turns))
	}
	if i != len(t.turns)-1 || !t.turns[i].Streaming {
		return nil, fmt.Errorf("%w: index %d", ErrTurnClosed, i)
	}
	return &t.turns[i], nil
}
