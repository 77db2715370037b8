// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks one in-flight streaming request.
//
// A Session is created per send. The orchestrator binds the request's
// context cancel func to it, records tokens and malformed frames on it, and
// finishes it when the stream terminates. The conversation layer holds it
// only to cancel.
//
// # Key Types
//
//   - Session: ID, cancellation flag, counters and timing for one stream
//
// # Usage
//
//	sess := session.New()
//	go client.StreamChat(ctx, req, handlers, sess)
//	...
//	sess.Cancel() // suppress further tokens and abort the transport
package session
