// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// DefaultBaseURL is where the chat service listens in development.
const DefaultBaseURL = "http://localhost:8000"

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the client.
type ClientConfig struct {
	// BaseURL is the service root (default: http://localhost:8000)
	BaseURL string

	// Timeout for non-streaming requests (default: 30s)
	Timeout time.Duration

	// RequestTimeout bounds a whole streaming request, headers and body.
	// Zero means no limit.
	RequestTimeout time.Duration

	// PersonaCacheTTL is how long the persona directory is cached (default: 5m)
	PersonaCacheTTL time.Duration

	// Logger receives diagnostics. Nil disables logging.
	Logger *zap.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:         DefaultBaseURL,
		Timeout:         30 * time.Second,
		RequestTimeout:  5 * time.Minute,
		PersonaCacheTTL: 5 * time.Minute,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the persona chat service. It is safe for concurrent use;
// each StreamChat call is independent.
type Client struct {
	config       *ClientConfig
	httpClient   *http.Client
	streamClient *http.Client
	personas     *cache.Cache
	logger       *zap.Logger
}

// NewClient creates a client with the default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client. Zero fields take their defaults,
// except RequestTimeout where zero means unlimited.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PersonaCacheTTL == 0 {
		cfg.PersonaCacheTTL = 5 * time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config:     &cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		// Streams are bounded by their context, not by a client timeout
		// that would cut a long reply mid-body.
		streamClient: &http.Client{},
		personas:     cache.New(cfg.PersonaCacheTTL, 2*cfg.PersonaCacheTTL),
		logger:       logger.Named("api"),
	}
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}
