// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation holds the state of one persona chat.
//
// A Machine owns the transcript and the busy state. Send appends the user
// turn plus an empty assistant placeholder and starts a stream on its own
// goroutine; the stream's callbacks fill the placeholder in and finally
// return the machine to Idle.
//
//	Idle --Send--> Sending --first token/sources--> Streaming --done/error--> Idle
//	                  \-------------------done/error------------------------/
//
// Only one stream runs at a time. Send while busy is a no-op. Clear while a
// stream runs cancels it and detaches the placeholder, so the late events of
// that stream change nothing; the machine still waits for its terminal
// callback before accepting a new send.
//
// # Key Types
//
//   - Machine: the state machine; safe for concurrent use
//   - Options: its explicit dependencies (persona, streamer, change hook, logger)
//   - Streamer: what runs a stream; *api.Client satisfies it
//
// # Usage
//
//	m := conversation.New(conversation.Options{
//	    PersonaID: "marcus-aurelius",
//	    Streamer:  client,
//	    OnChange:  func() { program.Send(refreshMsg{}) },
//	})
//	m.Send(ctx, "How do I deal with anger?")
//	_ = m.Wait(ctx)
//	turns := m.Transcript()
package conversation
