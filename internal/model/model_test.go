// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// ROLE / TURN TESTS
// =============================================================================

func TestRole_DisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "Assistant"},
		{Role("narrator"), "narrator"},
	}

	for _, tc := range tests {
		t.Run(string(tc.role), func(t *testing.T) {
			if got := tc.role.DisplayName(); got != tc.want {
				t.Errorf("DisplayName() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewAssistantTurn_IsPending(t *testing.T) {
	turn := NewAssistantTurn()
	if !turn.IsPending() {
		t.Error("fresh assistant turn should be pending")
	}
	if turn.Content != "" {
		t.Errorf("Content = %q, want empty", turn.Content)
	}
	if !strings.HasPrefix(turn.ID, "turn_") {
		t.Errorf("ID = %q, want turn_ prefix", turn.ID)
	}
	if NewAssistantTurn().ID == turn.ID {
		t.Error("IDs should be unique")
	}
}

func TestCitation_Marker(t *testing.T) {
	if got := (Citation{ID: 3}).Marker(); got != "[3]" {
		t.Errorf("Marker() = %q, want [3]", got)
	}
}

func TestTurn_ReferencedCitations(t *testing.T) {
	turn := Turn{
		Content: "Invert, always invert [1]. See also [10].",
		Sources: []Citation{
			{ID: 1, Source: "Poor Charlie's Almanack"},
			{ID: 2, Source: "Berkshire letter 1996"},
			{ID: 10, Source: "USC commencement"},
		},
	}

	refs := turn.ReferencedCitations()
	if len(refs) != 2 {
		t.Fatalf("got %d refs, want 2", len(refs))
	}
	if refs[0].ID != 1 || refs[1].ID != 10 {
		t.Errorf("refs = %+v", refs)
	}
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestTranscript_StreamingTurnLifecycle(t *testing.T) {
	tr := NewTranscript()
	tr.Append(NewUserTurn("hello"))
	i := tr.Append(NewAssistantTurn())

	if err := tr.AppendContent(i, "Hi"); err != nil {
		t.Fatalf("AppendContent: %v", err)
	}
	if err := tr.AppendContent(i, " there"); err != nil {
		t.Fatalf("AppendContent: %v", err)
	}
	cites := []Citation{{ID: 1, Source: "a"}}
	if err := tr.SetSources(i, cites); err != nil {
		t.Fatalf("SetSources: %v", err)
	}
	stats := NewStatistics()
	stats.RecordToken()
	stats.Finalize()
	if err := tr.Finish(i, stats); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	last, ok := tr.Last()
	if !ok {
		t.Fatal("Last() reported empty transcript")
	}
	if last.Content != "Hi there" {
		t.Errorf("Content = %q, want %q", last.Content, "Hi there")
	}
	if last.Streaming {
		t.Error("turn should be closed")
	}
	if last.Stats == nil || last.Stats.Tokens != 1 {
		t.Errorf("Stats = %+v", last.Stats)
	}

	// Closed turns reject further mutation.
	if err := tr.AppendContent(i, "!"); !errors.Is(err, ErrTurnClosed) {
		t.Errorf("AppendContent after Finish: err = %v, want ErrTurnClosed", err)
	}
}

func TestTranscript_SourcesLastWriteWins(t *testing.T) {
	tr := NewTranscript()
	i := tr.Append(NewAssistantTurn())

	_ = tr.SetSources(i, []Citation{{ID: 1}})
	_ = tr.SetSources(i, []Citation{{ID: 2}, {ID: 3}})

	turn, _ := tr.At(i)
	if len(turn.Sources) != 2 || turn.Sources[0].ID != 2 {
		t.Errorf("Sources = %+v", turn.Sources)
	}
}

func TestTranscript_MutationErrors(t *testing.T) {
	tr := NewTranscript()
	u := tr.Append(NewUserTurn("q"))

	if err := tr.AppendContent(5, "x"); !errors.Is(err, ErrNoSuchTurn) {
		t.Errorf("out of range: err = %v", err)
	}
	if err := tr.AppendContent(-1, "x"); !errors.Is(err, ErrNoSuchTurn) {
		t.Errorf("negative: err = %v", err)
	}
	if err := tr.AppendContent(u, "x"); !errors.Is(err, ErrTurnClosed) {
		t.Errorf("user turn: err = %v", err)
	}

	// An open turn that is no longer last is closed for mutation.
	a := tr.Append(NewAssistantTurn())
	tr.Append(NewUserTurn("another"))
	if err := tr.AppendContent(a, "x"); !errors.Is(err, ErrTurnClosed) {
		t.Errorf("superseded turn: err = %v", err)
	}
}

func TestTranscript_TurnsAreCopies(t *testing.T) {
	tr := NewTranscript()
	i := tr.Append(NewAssistantTurn())
	_ = tr.SetSources(i, []Citation{{ID: 1, Source: "orig"}})

	turns := tr.Turns()
	turns[0].Content = "mutated"
	turns[0].Sources[0].Source = "mutated"

	again, _ := tr.At(i)
	if again.Content != "" || again.Sources[0].Source != "orig" {
		t.Errorf("internal state aliased: %+v", again)
	}
}

func TestTranscript_History(t *testing.T) {
	tr := NewTranscript()
	tr.Append(NewUserTurn("What is a moat?"))
	i := tr.Append(NewAssistantTurn())
	_ = tr.AppendContent(i, "A durable advantage [1].")
	_ = tr.SetSources(i, []Citation{{ID: 1}})
	_ = tr.Finish(i, nil)

	h := tr.History()
	want := []HistoryEntry{
		{Role: RoleUser, Content: "What is a moat?"},
		{Role: RoleAssistant, Content: "A durable advantage [1]."},
	}
	if len(h) != len(want) {
		t.Fatalf("History() len = %d, want %d", len(h), len(want))
	}
	for k := range want {
		if h[k] != want[k] {
			t.Errorf("History()[%d] = %+v, want %+v", k, h[k], want[k])
		}
	}
}

func TestTranscript_Clear(t *testing.T) {
	tr := NewTranscript()
	for k := 0; k < 4; k++ {
		tr.Append(NewUserTurn("x"))
	}
	tr.Clear()
	if !tr.IsEmpty() || tr.Len() != 0 {
		t.Errorf("Len() = %d after Clear", tr.Len())
	}
	if _, ok := tr.Last(); ok {
		t.Error("Last() on empty transcript should report false")
	}
}

// =============================================================================
// STATISTICS TESTS
// =============================================================================

func TestStatistics(t *testing.T) {
	s := &Statistics{StartTime: time.Now().Add(-2 * time.Second)}
	s.RecordToken()
	s.RecordToken()
	first := s.FirstTokenTime
	s.Finalize()

	if s.Tokens != 2 {
		t.Errorf("Tokens = %d, want 2", s.Tokens)
	}
	if s.FirstTokenTime != first {
		t.Error("first token time moved on later tokens")
	}
	if s.TTFT < 2*time.Second {
		t.Errorf("TTFT = %v, want >= 2s", s.TTFT)
	}
	if s.TokensPerSecond <= 0 {
		t.Errorf("TokensPerSecond = %v", s.TokensPerSecond)
	}

	end := s.EndTime
	s.Finalize()
	if s.EndTime != end {
		t.Error("second Finalize changed EndTime")
	}

	out := s.Format()
	for _, want := range []string{"2 tokens", "tok/s", "TTFT"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() = %q, missing %q", out, want)
		}
	}
}

func TestStatistics_FormatWithoutTokens(t *testing.T) {
	s := NewStatistics()
	s.Finalize()
	if strings.Contains(s.Format(), "TTFT") {
		t.Errorf("Format() = %q, should omit TTFT", s.Format())
	}
}
