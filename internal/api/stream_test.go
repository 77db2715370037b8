// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaowubarbara/ragtalk/internal/model"
	"github.com/yaowubarbara/ragtalk/internal/session"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type recorder struct {
	mu      sync.Mutex
	tokens  []string
	sources [][]model.Citation
	done    int
	errors  []string
}

func (r *recorder) handlers() Handlers {
	return Handlers{
		OnToken: func(s string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.tokens = append(r.tokens, s)
		},
		OnSources: func(cs []model.Citation) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.sources = append(r.sources, cs)
		},
		OnDone: func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.done++
		},
		OnError: func(msg string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.errors = append(r.errors, msg)
		},
	}
}

func (r *recorder) terminals() int {
	return r.done + len(r.errors)
}

// streamServer answers /api/chat with the given raw lines, flushing after
// each one.
func streamServer(t *testing.T, lines ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, line := range lines {
			fmt.Fprint(w, line)
			flusher.Flush()
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(baseURL string) *Client {
	return NewClientWithConfig(&ClientConfig{BaseURL: baseURL})
}

func run(t *testing.T, c *Client, sess *session.Session) *recorder {
	t.Helper()
	rec := &recorder{}
	c.StreamChat(context.Background(), ChatRequest{PersonaID: "charlie-munger", Message: "hello"}, rec.handlers(), sess)
	return rec
}

// =============================================================================
// STREAM TESTS
// =============================================================================

func TestStreamChat_TokensThenDone(t *testing.T) {
	srv := streamServer(t,
		"data: {\"token\":\"Hi\"}\n\n",
		"data: {\"token\":\" there\"}\n\n",
		"data: [DONE]\n\n",
	)

	rec := run(t, newTestClient(srv.URL), nil)

	assert.Equal(t, []string{"Hi", " there"}, rec.tokens)
	assert.Equal(t, 1, rec.done)
	assert.Empty(t, rec.errors)
}

func TestStreamChat_RequestShape(t *testing.T) {
	var got map[string]any
	var accept, contentType, path, method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		accept, contentType = r.Header.Get("Accept"), r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	rec := run(t, newTestClient(srv.URL+"/"), nil)
	require.Equal(t, 1, rec.done)

	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/api/chat", path)
	assert.Equal(t, "text/event-stream", accept)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "charlie-munger", got["persona_id"])
	assert.Equal(t, "hello", got["message"])
	// Empty history goes out as [] rather than null.
	assert.Equal(t, []any{}, got["conversation_history"])
}

func TestStreamChat_HistoryIsSent(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	history := []model.HistoryEntry{
		{Role: model.RoleUser, Content: "What is a moat?"},
		{Role: model.RoleAssistant, Content: "A durable advantage."},
	}
	newTestClient(srv.URL).StreamChat(context.Background(),
		ChatRequest{PersonaID: "warren-buffett", Message: "Example?", ConversationHistory: history},
		Handlers{}, nil)

	assert.Equal(t, history, got.ConversationHistory)
}

func TestStreamChat_ServerErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "data: {\"token\":\"should not be read\"}\n\n")
	}))
	defer srv.Close()

	rec := run(t, newTestClient(srv.URL), nil)

	assert.Equal(t, []string{"API error: 500"}, rec.errors)
	assert.Empty(t, rec.tokens)
	assert.Empty(t, rec.sources)
	assert.Zero(t, rec.done)
}

func TestStreamChat_SourcesThenDone(t *testing.T) {
	srv := streamServer(t,
		"data: {\"token\":\"Invert [1].\"}\n\n",
		"data: {\"type\":\"sources\",\"sources\":[{\"id\":1,\"source\":\"Almanack\",\"doc_type\":\"book\",\"text\":\"Invert.\"}]}\n\n",
		"data: [DONE]\n\n",
	)

	rec := run(t, newTestClient(srv.URL), nil)

	require.Len(t, rec.sources, 1)
	assert.Equal(t, []model.Citation{{ID: 1, Source: "Almanack", DocType: "book", Text: "Invert."}}, rec.sources[0])
	assert.Equal(t, 1, rec.done)
	assert.Empty(t, rec.errors)
}

func TestStreamChat_TokenAndSourcesInOneFrame(t *testing.T) {
	srv := streamServer(t,
		"data: {\"token\":\"Invert [1].\",\"type\":\"sources\",\"sources\":[{\"id\":1,\"source\":\"Almanack\",\"doc_type\":\"book\",\"text\":\"Invert.\"}]}\n\n",
		"data: [DONE]\n\n",
	)

	rec := run(t, newTestClient(srv.URL), nil)

	assert.Equal(t, []string{"Invert [1]."}, rec.tokens)
	require.Len(t, rec.sources, 1)
	assert.Equal(t, "Almanack", rec.sources[0][0].Source)
	assert.Equal(t, 1, rec.done)
}

func TestStreamChat_MalformedFrameSkipped(t *testing.T) {
	srv := streamServer(t,
		"data: not json at all\n\n",
		"data: {\"token\":\"ok\"}\n\n",
		"data: [DONE]\n\n",
	)
	sess := session.New()

	rec := run(t, newTestClient(srv.URL), sess)

	assert.Equal(t, []string{"ok"}, rec.tokens)
	assert.Equal(t, 1, rec.done)
	assert.Equal(t, int64(1), sess.Malformed())
	assert.Equal(t, 1, sess.Stats().Tokens)
	assert.True(t, sess.Finished())
}

func TestStreamChat_DoneStopsProcessing(t *testing.T) {
	srv := streamServer(t,
		"data: {\"token\":\"a\"}\n\n",
		"data: [DONE]\n\n",
		"data: {\"token\":\"late\"}\n\n",
		"data: {\"error\":\"late\"}\n\n",
	)

	rec := run(t, newTestClient(srv.URL), nil)

	assert.Equal(t, []string{"a"}, rec.tokens)
	assert.Equal(t, 1, rec.done)
	assert.Empty(t, rec.errors)
}

func TestStreamChat_ErrorFrame(t *testing.T) {
	srv := streamServer(t,
		"data: {\"token\":\"partial\"}\n\n",
		"data: {\"error\":\"Persona 'nobody' not found\"}\n\n",
		"data: [DONE]\n\n",
	)

	rec := run(t, newTestClient(srv.URL), nil)

	assert.Equal(t, []string{"partial"}, rec.tokens)
	assert.Equal(t, []string{"Persona 'nobody' not found"}, rec.errors)
	assert.Zero(t, rec.done)
}

func TestStreamChat_FallbackDone(t *testing.T) {
	srv := streamServer(t,
		"data: {\"token\":\"no terminator\"}\n\n",
		"data: {\"token\":\"partial line",
	)

	rec := run(t, newTestClient(srv.URL), nil)

	assert.Equal(t, []string{"no terminator"}, rec.tokens)
	assert.Equal(t, 1, rec.done)
	assert.Empty(t, rec.errors)
}

func TestStreamChat_EmptyBody(t *testing.T) {
	srv := streamServer(t)

	rec := run(t, newTestClient(srv.URL), nil)

	assert.Equal(t, 1, rec.done)
	assert.Empty(t, rec.tokens)
}

func TestStreamChat_CancelSuppressesTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"token\":\"first\"}\n\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	sess := session.New()
	rec := &recorder{}
	h := rec.handlers()
	onToken := h.OnToken
	h.OnToken = func(s string) {
		onToken(s)
		sess.Cancel()
	}

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		newTestClient(srv.URL).StreamChat(context.Background(), ChatRequest{PersonaID: "p", Message: "m"}, h, sess)
	}()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("StreamChat did not return after Cancel")
	}

	assert.Equal(t, []string{"first"}, rec.tokens)
	assert.Equal(t, 1, rec.done)
	assert.Empty(t, rec.errors)
}

func TestStreamChat_CancelledBeforeStart(t *testing.T) {
	srv := streamServer(t, "data: {\"token\":\"x\"}\n\n", "data: [DONE]\n\n")
	sess := session.New()
	sess.Cancel()

	rec := run(t, newTestClient(srv.URL), sess)

	assert.Empty(t, rec.tokens)
	assert.Equal(t, 1, rec.terminals())
	assert.Equal(t, 1, rec.done)
}

func TestStreamChat_ParentCancelBeforeHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	rec := &recorder{}
	newTestClient(srv.URL).StreamChat(ctx, ChatRequest{PersonaID: "charlie-munger", Message: "hello"}, rec.handlers(), nil)

	assert.Empty(t, rec.errors)
	assert.Equal(t, 1, rec.done)
}

func TestStreamChat_ParentCancelMidBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"token\":\"Hi\"}\n\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	rec := &recorder{}
	newTestClient(srv.URL).StreamChat(ctx, ChatRequest{PersonaID: "charlie-munger", Message: "hello"}, rec.handlers(), nil)

	assert.Equal(t, []string{"Hi"}, rec.tokens)
	assert.Empty(t, rec.errors)
	assert.Equal(t, 1, rec.done)
}

func TestStreamChat_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"token\":\"slow\"}\n\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, RequestTimeout: 100 * time.Millisecond})
	rec := run(t, c, nil)

	assert.Equal(t, []string{"slow"}, rec.tokens)
	assert.Equal(t, []string{"request timed out"}, rec.errors)
	assert.Zero(t, rec.done)
}

func TestStreamChat_TimeoutBeforeHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, RequestTimeout: 100 * time.Millisecond})
	rec := run(t, c, nil)

	assert.Equal(t, []string{"request timed out"}, rec.errors)
	assert.Zero(t, rec.done)
}

func TestStreamChat_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	rec := run(t, newTestClient(url), nil)

	assert.Equal(t, []string{ErrUnreachable.Message}, rec.errors)
	assert.Zero(t, rec.done)
}

func TestStreamChat_Interrupted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, buf, err := w.(http.Hijacker).Hijack()
		if err != nil {
			return
		}
		defer conn.Close()
		chunk := "data: {\"token\":\"cut\"}\n\n"
		fmt.Fprintf(buf, "HTTP/1.1 200 OK\r\nContent-Type: text/event-stream\r\nTransfer-Encoding: chunked\r\n\r\n")
		fmt.Fprintf(buf, "%x\r\n%s\r\n", len(chunk), chunk)
		buf.Flush()
	}))
	defer srv.Close()

	rec := run(t, newTestClient(srv.URL), nil)

	assert.Equal(t, []string{"cut"}, rec.tokens)
	require.Len(t, rec.errors, 1)
	assert.True(t, strings.HasPrefix(rec.errors[0], "stream interrupted: "), rec.errors[0])
	assert.Zero(t, rec.done)
}

func TestStreamChat_NilHandlers(t *testing.T) {
	srv := streamServer(t,
		"data: {\"token\":\"x\"}\n\n",
		"data: {\"type\":\"sources\",\"sources\":[]}\n\n",
		"data: [DONE]\n\n",
	)

	sess := session.New()
	newTestClient(srv.URL).StreamChat(context.Background(), ChatRequest{}, Handlers{}, sess)
	assert.True(t, sess.Finished())
}

// =============================================================================
// ERROR TESTS
// =============================================================================

func TestClientError_Is(t *testing.T) {
	wrapped := fmt.Errorf("listing: %w", &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: context.DeadlineExceeded})
	assert.True(t, IsTimeout(wrapped))
	assert.False(t, IsUnreachable(wrapped))
	assert.ErrorIs(t, wrapped, context.DeadlineExceeded)

	status := statusError(503)
	assert.Equal(t, 503, StatusCode(status))
	assert.Equal(t, "API error: 503", status.Error())
	assert.ErrorIs(t, status, &ClientError{Type: ErrTypeStatus})
	assert.NotErrorIs(t, status, &ClientError{Type: ErrTypeStatus, StatusCode: 500})
	assert.Zero(t, StatusCode(ErrTimeout))
}
