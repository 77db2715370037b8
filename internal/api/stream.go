// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/yaowubarbara/ragtalk/internal/model"
	"github.com/yaowubarbara/ragtalk/internal/session"
	"github.com/yaowubarbara/ragtalk/internal/sse"
)

// =============================================================================
// HANDLERS
// =============================================================================

// Handlers receive the events of one stream, in arrival order, on the
// goroutine that called StreamChat. Nil handlers are skipped.
type Handlers struct {
	OnToken   func(text string)
	OnSources func(citations []model.Citation)
	OnDone    func()
	OnError   func(message string)
}

// terminal fires at most one of OnDone and OnError.
type terminal struct {
	once    sync.Once
	h       Handlers
	sess    *session.Session
	outcome string
}

func (t *terminal) done() {
	t.once.Do(func() {
		t.sess.Finish()
		t.outcome = "done"
		if t.h.OnDone != nil {
			t.h.OnDone()
		}
	})
}

func (t *terminal) fail(message string) {
	t.once.Do(func() {
		t.sess.Finish()
		t.outcome = "error"
		if t.h.OnError != nil {
			t.h.OnError(message)
		}
	})
}

// =============================================================================
// STREAM CHAT
// =============================================================================

// StreamChat sends one chat request and reports the reply through h. It
// blocks until the stream terminates and always ends with exactly one call
// to OnDone or OnError.
//
// sess carries cancellation: after sess.Cancel, tokens are no longer
// delivered, the transport is aborted, and the call ends with OnDone. A
// cancelled ctx ends the same way, before or after the response headers. A
// nil sess gets a fresh session.
func (c *Client) StreamChat(ctx context.Context, req ChatRequest, h Handlers, sess *session.Session) {
	if sess == nil {
		sess = session.New()
	}
	log := c.logger.With(
		zap.String("session", sess.ID()),
		zap.String("persona", req.PersonaID),
	)
	term := &terminal{h: h, sess: sess}

	var cancel context.CancelFunc
	if c.config.RequestTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.config.RequestTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()
	sess.Bind(cancel)

	log.Debug("stream start", zap.Int("history", len(req.ConversationHistory)))

	resp, err := c.openStream(ctx, req)
	if err != nil {
		if sess.Cancelled() || errors.Is(ctx.Err(), context.Canceled) {
			term.done()
		} else {
			log.Warn("stream request failed", zap.Error(err))
			term.fail(userMessage(err))
		}
		c.logOutcome(log, term, sess, 0)
		return
	}
	defer resp.Body.Close()

	dropped := c.consume(ctx, resp.Body, h, sess, term, log)
	c.logOutcome(log, term, sess, dropped)
}

// openStream posts the request and returns the response once a 2xx status
// arrives. Non-2xx bodies are not read.
func (c *Client) openStream(ctx context.Context, req ChatRequest) (*http.Response, error) {
	if req.ConversationHistory == nil {
		req.ConversationHistory = []model.HistoryEntry{}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, statusError(resp.StatusCode)
	}
	return resp, nil
}

// consume drives the frame reader until a terminal event or end of body.
// It returns the number of trailing bytes dropped for lack of a newline.
func (c *Client) consume(ctx context.Context, body io.Reader, h Handlers, sess *session.Session, term *terminal, log *zap.Logger) int {
	frames := sse.NewReader(body)

	for {
		payload, err := frames.Next()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				// No terminator frame: the body ending is success.
				term.done()
			case sess.Cancelled() || errors.Is(ctx.Err(), context.Canceled):
				term.done()
			case errors.Is(ctx.Err(), context.DeadlineExceeded):
				term.fail(ErrTimeout.Message)
			default:
				log.Warn("stream read failed", zap.Error(err))
				term.fail("stream interrupted: " + err.Error())
			}
			return frames.Dropped()
		}

		ev, ok := Interpret(payload)
		if !ok {
			n := sess.RecordMalformed()
			log.Debug("skipping malformed frame",
				zap.Int64("count", n),
				zap.Int("bytes", len(payload)))
			continue
		}

		switch ev.Type {
		case EventToken:
			if !sess.Cancelled() {
				sess.RecordToken()
				if h.OnToken != nil {
					h.OnToken(ev.Text)
				}
			}
			if ev.Sources != nil && h.OnSources != nil {
				h.OnSources(ev.Sources)
			}
		case EventSources:
			if h.OnSources != nil {
				h.OnSources(ev.Sources)
			}
		case EventDone:
			term.done()
			return 0
		case EventError:
			log.Info("service reported error", zap.String("error", ev.Text))
			term.fail(ev.Text)
			return 0
		}
	}
}

func (c *Client) logOutcome(log *zap.Logger, term *terminal, sess *session.Session, dropped int) {
	stats := sess.Stats()
	log.Info("stream end",
		zap.String("outcome", term.outcome),
		zap.Bool("cancelled", sess.Cancelled()),
		zap.Int("tokens", stats.Tokens),
		zap.Duration("ttft", stats.TTFT),
		zap.Duration("duration", stats.TotalDuration),
		zap.Int64("malformed", sess.Malformed()),
		zap.Int("dropped_bytes", dropped),
	)
}
