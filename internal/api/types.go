// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "github.com/yaowubarbara/ragtalk/internal/model"

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	PersonaID           string               `json:"persona_id"`
	Message             string               `json:"message"`
	ConversationHistory []model.HistoryEntry `json:"conversation_history"`
}

// Persona is one entry of GET /api/personas.
type Persona struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	AvatarURL   string `json:"avatar_url"`
	Description string `json:"description"`
	Greeting    string `json:"greeting"`
}

type personaListResponse struct {
	Personas []Persona `json:"personas"`
}
