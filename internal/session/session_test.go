// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	a, b := New(), New()
	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("IDs not unique: %q %q", a.ID(), b.ID())
	}
	if a.Cancelled() || a.Finished() {
		t.Error("new session should be neither cancelled nor finished")
	}
	if a.StartTime().IsZero() {
		t.Error("StartTime not set")
	}
}

func TestCancel_AbortsBoundContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	s.Bind(cancel)

	s.Cancel()

	if !s.Cancelled() {
		t.Error("Cancelled() = false after Cancel")
	}
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("bound context not cancelled")
	}
}

func TestBind_AfterCancel(t *testing.T) {
	s := New()
	s.Cancel()

	ctx, cancel := context.WithCancel(context.Background())
	s.Bind(cancel)

	if ctx.Err() == nil {
		t.Error("binding to a cancelled session should cancel immediately")
	}
}

func TestCancel_Unbound(t *testing.T) {
	s := New()
	s.Cancel()
	s.Cancel()
	if !s.Cancelled() {
		t.Error("Cancelled() = false")
	}
}

func TestCounters(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.RecordToken()
		}()
		go func() {
			defer wg.Done()
			s.RecordMalformed()
		}()
	}
	wg.Wait()

	if got := s.Malformed(); got != 50 {
		t.Errorf("Malformed() = %d, want 50", got)
	}
	if got := s.Stats().Tokens; got != 50 {
		t.Errorf("Tokens = %d, want 50", got)
	}
}

func TestFinish(t *testing.T) {
	s := New()
	s.RecordToken()
	s.Finish()

	stats := s.Stats()
	if !stats.Finalized() {
		t.Fatal("stats not finalized")
	}
	end := stats.EndTime

	s.Finish()
	if s.Stats().EndTime != end {
		t.Error("second Finish changed EndTime")
	}
	if s.Duration() != stats.TotalDuration {
		t.Errorf("Duration() = %v, want %v", s.Duration(), stats.TotalDuration)
	}

	// Snapshots are independent.
	stats.Tokens = 99
	if s.Stats().Tokens != 1 {
		t.Error("Stats() returned shared state")
	}
}
