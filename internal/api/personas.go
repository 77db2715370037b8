// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const personasCacheKey = "personas"

// ListPersonas returns the persona directory. Results are cached for the
// configured TTL.
func (c *Client) ListPersonas(ctx context.Context) ([]Persona, error) {
	if cached, ok := c.personas.Get(personasCacheKey); ok {
		return clonePersonas(cached.([]Persona)), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/personas", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:       ErrTypeStatus,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("failed to fetch personas: %d", resp.StatusCode),
		}
	}

	var result personaListResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode personas", Cause: err}
	}
	if result.Personas == nil {
		result.Personas = []Persona{}
	}

	c.personas.Set(personasCacheKey, result.Personas, cache.DefaultExpiration)
	c.logger.Debug("persona directory fetched", zap.Int("count", len(result.Personas)))
	return clonePersonas(result.Personas), nil
}

// GetPersona looks up one persona by ID. A missing ID yields an error
// matching ErrPersonaNotFound.
func (c *Client) GetPersona(ctx context.Context, id string) (Persona, error) {
	personas, err := c.ListPersonas(ctx)
	if err != nil {
		return Persona{}, err
	}
	for _, p := range personas {
		if p.ID == id {
			return p, nil
		}
	}
	return Persona{}, &ClientError{
		Type:    ErrTypeNotFound,
		Message: fmt.Sprintf("%s: %q", ErrPersonaNotFound.Message, id),
	}
}

// InvalidatePersonas drops the cached directory so the next call refetches.
func (c *Client) InvalidatePersonas() {
	c.personas.Delete(personasCacheKey)
}

func clonePersonas(in []Persona) []Persona {
	out := make([]Persona, len(in))
	copy(out, in)
	return out
}
