// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"

	"github.com/yaowubarbara/ragtalk/internal/model"
)

// DoneSentinel is the payload that ends a stream successfully.
const DoneSentinel = "[DONE]"

// EventType is the kind of an interpreted frame.
type EventType int

const (
	EventToken EventType = iota
	EventSources
	EventError
	EventDone
)

// String returns the name of the event type.
func (t EventType) String() string {
	switch t {
	case EventToken:
		return "token"
	case EventSources:
		return "sources"
	case EventError:
		return "error"
	case EventDone:
		return "done"
	default:
		return "unknown"
	}
}

// Event is one protocol event.
type Event struct {
	Type EventType

	// Text is the token for EventToken and the message for EventError.
	Text string

	// Sources is set for EventSources, and for EventToken when the same
	// frame also carries a sources block.
	Sources []model.Citation
}

// Terminal reports whether the event ends the stream.
func (e Event) Terminal() bool {
	return e.Type == EventDone || e.Type == EventError
}

// Interpret classifies a frame payload. ok is false for payloads that are
// not JSON objects or match no known shape; callers skip those.
//
// An error field wins over everything else in the frame. A token frame that
// also carries a sources block yields one EventToken with Sources set. Empty
// tokens and empty error strings count as absent.
func Interpret(payload string) (ev Event, ok bool) {
	if payload == DoneSentinel {
		return Event{Type: EventDone}, true
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil || fields == nil {
		return Event{}, false
	}

	if msg := stringField(fields, "error"); msg != "" {
		return Event{Type: EventError, Text: msg}, true
	}
	sources, hasSources := sourcesField(fields)
	if tok := stringField(fields, "token"); tok != "" {
		ev := Event{Type: EventToken, Text: tok}
		if hasSources {
			ev.Sources = sources
		}
		return ev, true
	}
	if hasSources {
		return Event{Type: EventSources, Sources: sources}, true
	}
	return Event{}, false
}

// sourcesField decodes the citations of a type=sources frame. Elements that
// do not decode as a citation are skipped; the rest of the list is kept.
func sourcesField(fields map[string]json.RawMessage) ([]model.Citation, bool) {
	if stringField(fields, "type") != "sources" {
		return nil, false
	}
	raw := bytes.TrimSpace(fields["sources"])
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, false
	}
	sources := make([]model.Citation, 0, len(elems))
	for _, e := range elems {
		var c model.Citation
		if err := json.Unmarshal(e, &c); err != nil {
			continue
		}
		sources = append(sources, c)
	}
	return sources, true
}

// stringField returns fields[key] when it is a JSON string, else "".
func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
