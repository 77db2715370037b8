// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/yaowubarbara/ragtalk/internal/model"
)

// =============================================================================
// SESSION
// =============================================================================

// Session is the lifetime of one streaming request. All methods are safe
// for concurrent use.
type Session struct {
	id        string
	startTime time.Time

	cancelled atomic.Bool
	finished  atomic.Bool
	malformed atomic.Int64

	mu    sync.Mutex
	abort context.CancelFunc
	stats model.Statistics
}

// New starts a session.
func New() *Session {
	now := time.Now()
	return &Session{
		id:        uuid.NewString(),
		startTime: now,
		stats:     model.Statistics{StartTime: now},
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// StartTime returns when the session was created.
func (s *Session) StartTime() time.Time {
	return s.startTime
}

// Duration returns the time elapsed since the session started, or its total
// length once finished.
func (s *Session) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats.Finalized() {
		return s.stats.TotalDuration
	}
	return time.Since(s.startTime)
}

// =============================================================================
// CANCELLATION
// =============================================================================

// Bind attaches the cancel func of the request context. If the session was
// already cancelled, cancel runs immediately.
func (s *Session) Bind(cancel context.CancelFunc) {
	s.mu.Lock()
	s.abort = cancel
	s.mu.Unlock()

	if s.cancelled.Load() {
		cancel()
	}
}

// Cancel marks the session cancelled and aborts the bound request, if any.
// Tokens arriving afterwards are dropped; the terminal callback still fires.
func (s *Session) Cancel() {
	s.cancelled.Store(true)

	s.mu.Lock()
	abort := s.abort
	s.mu.Unlock()

	if abort != nil {
		abort()
	}
}

// Cancelled reports whether Cancel was called.
func (s *Session) Cancelled() bool {
	return s.cancelled.Load()
}

// =============================================================================
// COUNTERS
// =============================================================================

// RecordToken counts a delivered token.
func (s *Session) RecordToken() {
	s.mu.Lock()
	s.stats.RecordToken()
	s.mu.Unlock()
}

// RecordMalformed counts a discarded frame and returns the new total.
func (s *Session) RecordMalformed() int64 {
	return s.malformed.Add(1)
}

// Malformed returns how many frames were discarded.
func (s *Session) Malformed() int64 {
	return s.malformed.Load()
}

// Finish stamps the end of the session. Only the first call has effect.
func (s *Session) Finish() {
	if !s.finished.CompareAndSwap(false, true) {
		return
	}
	s.mu.Lock()
	s.stats.Finalize()
	s.mu.Unlock()
}

// Finished reports whether Finish was called.
func (s *Session) Finished() bool {
	return s.finished.Load()
}

// Stats returns a snapshot of the session's statistics.
func (s *Session) Stats() *model.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.stats
	return &snapshot
}
