// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"time"
)

// Statistics holds timing and token count information for one streamed reply.
// A token here is one token frame from the service.
type Statistics struct {
	StartTime      time.Time
	FirstTokenTime time.Time
	EndTime        time.Time

	Tokens int

	// Derived metrics (computed on Finalize)
	TTFT            time.Duration
	TotalDuration   time.Duration
	TokensPerSecond float64
}

// NewStatistics creates a new Statistics with the start time set.
func NewStatistics() *Statistics {
	return &Statistics{StartTime: time.Now()}
}

// RecordToken counts a token and stamps the first one.
func (s *Statistics) RecordToken() {
	if s.FirstTokenTime.IsZero() {
		s.FirstTokenTime = time.Now()
		s.TTFT = s.FirstTokenTime.Sub(s.StartTime)
	}
	s.Tokens++
}

// Finalize computes the derived metrics. Calling it again is a no-op.
func (s *Statistics) Finalize() {
	if !s.EndTime.IsZero() {
		return
	}
	s.EndTime = time.Now()
	s.TotalDuration = s.EndTime.Sub(s.StartTime)
	if s.TotalDuration > 0 {
		s.TokensPerSecond = float64(s.Tokens) / s.TotalDuration.Seconds()
	}
}

// Finalized reports whether Finalize has run.
func (s *Statistics) Finalized() bool {
	return !s.EndTime.IsZero()
}

// Format renders e.g. "2.5s | 128 tokens | 51.2 tok/s | TTFT 234ms".
// TTFT is omitted when no token arrived.
func (s *Statistics) Format() string {
	out := fmt.Sprintf("%s | %d tokens | %.1f tok/s",
		formatDuration(s.TotalDuration), s.Tokens, s.TokensPerSecond)
	if !s.FirstTokenTime.IsZero() {
		out += fmt.Sprintf(" | TTFT %dms", s.TTFT.Milliseconds())
	}
	return out
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}
