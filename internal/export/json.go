// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/yaowubarbara/ragtalk/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports the complete conversation, all sources included.
type JSONExporter struct{}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

type jsonDocument struct {
	PersonaID  string     `json:"persona_id"`
	ExportedAt time.Time  `json:"exported_at"`
	Turns      []jsonTurn `json:"turns"`
}

type jsonTurn struct {
	ID        string           `json:"id"`
	Role      model.Role       `json:"role"`
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
	Sources   []model.Citation `json:"sources,omitempty"`
	Stats     *jsonStats       `json:"stats,omitempty"`
}

type jsonStats struct {
	Tokens          int     `json:"tokens"`
	DurationMs      int64   `json:"duration_ms"`
	TTFTMs          int64   `json:"ttft_ms"`
	TokensPerSecond float64 `json:"tokens_per_second"`
}

// Export converts conv to indented JSON.
func (e *JSONExporter) Export(conv *Conversation) ([]byte, error) {
	if conv == nil || len(conv.Turns) == 0 {
		return nil, ErrEmpty
	}

	doc := jsonDocument{
		PersonaID:  conv.PersonaID,
		ExportedAt: conv.ExportedAt,
		Turns:      make([]jsonTurn, 0, len(conv.Turns)),
	}
	for _, t := range conv.Turns {
		jt := jsonTurn{
			ID:        t.ID,
			Role:      t.Role,
			Content:   t.Content,
			Timestamp: t.Timestamp,
			Sources:   t.Sources,
		}
		if t.Stats != nil {
			jt.Stats = &jsonStats{
				Tokens:          t.Stats.Tokens,
				DurationMs:      t.Stats.TotalDuration.Milliseconds(),
				TTFTMs:          t.Stats.TTFT.Milliseconds(),
				TokensPerSecond: t.Stats.TokensPerSecond,
			}
		}
		doc.Turns = append(doc.Turns, jt)
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}
