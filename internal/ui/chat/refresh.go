// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"
)

// RefreshInterval caps redraws at about 30 per second while streaming.
const RefreshInterval = 33 * time.Millisecond

// Refresher turns change notifications from any goroutine into Bubble Tea
// messages. Notifications that arrive while one is pending are folded into
// it, and delivery is paced by a rate limiter.
type Refresher struct {
	changes chan struct{}
	limiter *rate.Limiter
}

// NewRefresher creates a Refresher that delivers at most one message per
// interval.
func NewRefresher(interval time.Duration) *Refresher {
	return &Refresher{
		changes: make(chan struct{}, 1),
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Notify records a change. It never blocks.
func (r *Refresher) Notify() {
	select {
	case r.changes <- struct{}{}:
	default:
	}
}

// Wait returns a command that resolves to a changedMsg on the next change,
// or to nil once ctx is done. The view re-issues it after every delivery.
func (r *Refresher) Wait(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case <-r.changes:
		}
		if err := r.limiter.Wait(ctx); err != nil {
			return nil
		}
		return changedMsg{}
	}
}
