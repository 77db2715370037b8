// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/yaowubarbara/ragtalk/internal/api"
	"github.com/yaowubarbara/ragtalk/internal/model"
	"github.com/yaowubarbara/ragtalk/internal/session"
)

// =============================================================================
// STATE
// =============================================================================

// State is the machine's position in the send cycle.
type State int

const (
	StateIdle State = iota
	StateSending
	StateStreaming
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// =============================================================================
// OPTIONS
// =============================================================================

// Streamer runs one chat stream and reports it through the handlers. It must
// call exactly one of OnDone and OnError before returning.
type Streamer interface {
	StreamChat(ctx context.Context, req api.ChatRequest, h api.Handlers, sess *session.Session)
}

// Options are the machine's dependencies.
type Options struct {
	// PersonaID is sent with every request.
	PersonaID string

	// Streamer runs the requests. Required.
	Streamer Streamer

	// OnChange, if set, is called after every observable change, outside
	// the machine's lock and possibly from the stream goroutine.
	OnChange func()

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// =============================================================================
// MACHINE
// =============================================================================

// Machine is the conversation state machine.
type Machine struct {
	mu sync.Mutex

	personaID  string
	streamer   Streamer
	onChange   func()
	logger     *zap.Logger
	transcript *model.Transcript

	state   State
	lastErr string

	// active is the running session, nil when idle.
	active *session.Session
	// open is the transcript index of the placeholder being filled, -1
	// when none. Clear detaches it while active keeps running.
	open int
	// idle is closed whenever state is Idle.
	idle chan struct{}
}

// New creates an idle machine with an empty transcript.
func New(opts Options) *Machine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	idle := make(chan struct{})
	close(idle)

	return &Machine{
		personaID:  opts.PersonaID,
		streamer:   opts.Streamer,
		onChange:   opts.OnChange,
		logger:     logger.Named("conversation"),
		transcript: model.NewTranscript(),
		open:       -1,
		idle:       idle,
	}
}

// Send starts a new exchange. It returns false without changing anything
// when text is blank or a stream is already running.
func (m *Machine) Send(ctx context.Context, text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}

	m.mu.Lock()
	if m.state != StateIdle {
		m.mu.Unlock()
		m.logger.Debug("send ignored while busy", zap.String("state", m.State().String()))
		return false
	}

	req := api.ChatRequest{
		PersonaID:           m.personaID,
		Message:             trimmed,
		ConversationHistory: m.transcript.History(),
	}
	m.lastErr = ""
	m.transcript.Append(model.NewUserTurn(trimmed))
	m.open = m.transcript.Append(model.NewAssistantTurn())

	sess := session.New()
	m.active = sess
	m.state = StateSending
	m.idle = make(chan struct{})
	m.mu.Unlock()

	m.logger.Debug("send",
		zap.String("session", sess.ID()),
		zap.Int("history", len(req.ConversationHistory)))
	m.notify()

	go m.streamer.StreamChat(ctx, req, m.handlers(sess), sess)
	return true
}

// Cancel stops the running stream, if any. Tokens still in flight are
// dropped; the machine returns to Idle when the stream reports its end.
func (m *Machine) Cancel() {
	m.mu.Lock()
	sess := m.active
	m.mu.Unlock()

	if sess != nil {
		m.logger.Debug("cancel", zap.String("session", sess.ID()))
		sess.Cancel()
	}
}

// Clear empties the transcript and the error. A running stream is cancelled
// and detached.
func (m *Machine) Clear() {
	m.mu.Lock()
	m.transcript.Clear()
	m.lastErr = ""
	m.open = -1
	sess := m.active
	m.mu.Unlock()

	if sess != nil {
		sess.Cancel()
	}
	m.notify()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Transcript returns a copy of the turns.
func (m *Machine) Transcript() []model.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transcript.Turns()
}

// Busy reports whether a stream is running.
func (m *Machine) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state != StateIdle
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Err returns the message of the last failed exchange, or "".
func (m *Machine) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// PersonaID returns the persona this conversation talks to.
func (m *Machine) PersonaID() string {
	return m.personaID
}

// ActiveSession returns the running session, or nil.
func (m *Machine) ActiveSession() *session.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Wait blocks until the machine is idle or ctx is done.
func (m *Machine) Wait(ctx context.Context) error {
	m.mu.Lock()
	idle := m.idle
	m.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// =============================================================================
// STREAM CALLBACKS
// =============================================================================

func (m *Machine) handlers(sess *session.Session) api.Handlers {
	return api.Handlers{
		OnToken: func(text string) {
			m.apply(sess, func(i int) error {
				return m.transcript.AppendContent(i, text)
			})
		},
		OnSources: func(cs []model.Citation) {
			m.apply(sess, func(i int) error {
				return m.transcript.SetSources(i, cs)
			})
		},
		OnDone: func() {
			m.finish(sess, "")
		},
		OnError: func(msg string) {
			m.finish(sess, msg)
		},
	}
}

// apply runs fn against the open turn if sess still owns it.
func (m *Machine) apply(sess *session.Session, fn func(open int) error) {
	m.mu.Lock()
	if m.active != sess || m.open < 0 {
		m.mu.Unlock()
		return
	}
	err := fn(m.open)
	if err == nil {
		m.state = StateStreaming
	}
	m.mu.Unlock()

	if err != nil {
		m.logger.Error("stream update rejected", zap.String("session", sess.ID()), zap.Error(err))
		return
	}
	m.notify()
}

// finish closes the open turn and returns to Idle. msg is the error text,
// "" on success.
func (m *Machine) finish(sess *session.Session, msg string) {
	m.mu.Lock()
	if m.active != sess {
		m.mu.Unlock()
		return
	}
	detached := m.open < 0
	if !detached {
		if err := m.transcript.Finish(m.open, sess.Stats()); err != nil {
			m.logger.Error("finish rejected", zap.String("session", sess.ID()), zap.Error(err))
		}
		if msg != "" {
			m.lastErr = msg
		}
	}
	m.open = -1
	m.active = nil
	m.state = StateIdle
	close(m.idle)
	m.mu.Unlock()

	m.logger.Info("exchange finished",
		zap.String("session", sess.ID()),
		zap.Bool("failed", msg != ""),
		zap.Bool("cleared", detached),
		zap.Bool("cancelled", sess.Cancelled()))
	m.notify()
}

func (m *Machine) notify() {
	if m.onChange != nil {
		m.onChange()
	}
}
