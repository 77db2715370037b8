// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yaowubarbara/ragtalk/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the wire form of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// CITATION TYPE
// =============================================================================

// Citation is a retrieved passage the assistant's reply may cite by number.
type Citation struct {
	ID      int    `json:"id"`
	Source  string `json:"source"`
	DocType string `json:"doc_type"`
	Text    string `json:"text"`
}

// Marker returns the inline reference form, e.g. "[3]".
func (c Citation) Marker() string {
	return fmt.Sprintf("[%d]", c.ID)
}

// =============================================================================
// TURN TYPE
// =============================================================================

// Turn is one message in the transcript.
type Turn struct {
	ID        string
	Role      Role
	Content   string
	Sources   []Citation
	Timestamp time.Time

	// Streaming is true only for the open assistant turn.
	Streaming bool

	// Stats is set when a streamed turn finishes.
	Stats *Statistics
}

// NewUserTurn creates a committed user turn.
func NewUserTurn(content string) Turn {
	return Turn{
		ID:        generateID(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantTurn creates the empty placeholder that a stream fills in.
func NewAssistantTurn() Turn {
	return Turn{
		ID:        generateID(),
		Role:      RoleAssistant,
		Timestamp: time.Now(),
		Streaming: true,
	}
}

// IsPending reports a streaming turn that has received nothing yet.
// The UI draws a typing indicator for it.
func (t Turn) IsPending() bool {
	return t.Streaming && t.Content == ""
}

// HasSources reports whether citations were attached.
func (t Turn) HasSources() bool {
	return len(t.Sources) > 0
}

// ReferencedCitations returns the attached citations whose marker appears in
// the content, in citation order.
func (t Turn) ReferencedCitations() []Citation {
	var refs []Citation
	for _, c := range t.Sources {
		if strings.Contains(t.Content, c.Marker()) {
			refs = append(refs, c)
		}
	}
	return refs
}

// Preview returns a one-line preview of the content.
func (t Turn) Preview(maxWidth int) string {
	return util.Preview(t.Content, maxWidth)
}

// clone copies the turn so the copy shares no slices or pointers with t.
func (t Turn) clone() Turn {
	c := t
	if t.Sources != nil {
		c.Sources = append([]Citation(nil), t.Sources...)
	}
	if t.Stats != nil {
		s := *t.Stats
		c.Stats = &s
	}
	return c
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func generateID() string {
	return "turn_" + uuid.NewString()
}
