// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personasBody = `{"personas":[
	{"id":"charlie-munger","name":"Charlie Munger","title":"Vice Chairman, Berkshire Hathaway","avatar_url":"/avatars/munger.png","description":"Mental models.","greeting":"Invert, always invert."},
	{"id":"marcus-aurelius","name":"Marcus Aurelius","title":"Roman Emperor","avatar_url":"/avatars/aurelius.png","description":"Stoicism.","greeting":"Waste no more time."}
]}`

func personaServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/personas" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestListPersonas_Cached(t *testing.T) {
	srv, hits := personaServer(t, http.StatusOK, personasBody)
	c := newTestClient(srv.URL)

	first, err := c.ListPersonas(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "charlie-munger", first[0].ID)
	assert.Equal(t, "Invert, always invert.", first[0].Greeting)
	assert.Equal(t, "/avatars/aurelius.png", first[1].AvatarURL)

	// Mutating the result does not poison the cache.
	first[0].Name = "changed"

	second, err := c.ListPersonas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Charlie Munger", second[0].Name)
	assert.Equal(t, int32(1), hits.Load())

	c.InvalidatePersonas()
	_, err = c.ListPersonas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestGetPersona(t *testing.T) {
	srv, _ := personaServer(t, http.StatusOK, personasBody)
	c := newTestClient(srv.URL)

	p, err := c.GetPersona(context.Background(), "marcus-aurelius")
	require.NoError(t, err)
	assert.Equal(t, "Marcus Aurelius", p.Name)

	_, err = c.GetPersona(context.Background(), "nobody")
	assert.True(t, IsNotFound(err))
	assert.ErrorIs(t, err, ErrPersonaNotFound)
	assert.Contains(t, err.Error(), "nobody")
}

func TestListPersonas_Errors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv, _ := personaServer(t, http.StatusBadGateway, "upstream down")
		_, err := newTestClient(srv.URL).ListPersonas(context.Background())
		require.Error(t, err)
		assert.Equal(t, http.StatusBadGateway, StatusCode(err))
	})

	t.Run("bad json", func(t *testing.T) {
		srv, _ := personaServer(t, http.StatusOK, "{")
		_, err := newTestClient(srv.URL).ListPersonas(context.Background())
		var ce *ClientError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, ErrTypeInvalidResponse, ce.Type)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		_, err := newTestClient(url).ListPersonas(context.Background())
		assert.True(t, IsUnreachable(err))
	})

	t.Run("empty directory", func(t *testing.T) {
		srv, _ := personaServer(t, http.StatusOK, `{"personas":null}`)
		list, err := newTestClient(srv.URL).ListPersonas(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})
}

func TestNewClientWithConfig_Defaults(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{BaseURL: "http://example.test///"})
	assert.Equal(t, "http://example.test", c.BaseURL())
	assert.Equal(t, DefaultConfig().Timeout, c.config.Timeout)
	assert.Zero(t, c.config.RequestTimeout)

	assert.Equal(t, DefaultBaseURL, NewClientWithConfig(nil).BaseURL())
}
