// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the persona chat service.
//
// It owns the wire protocol: the chat request body, the "data: " event
// stream the service answers with, and the persona directory.
//
// # Key Types
//
//   - Client: HTTP client; StreamChat runs one streaming request
//   - Handlers: callbacks a stream reports into (token, sources, done, error)
//   - Event: one interpreted frame (token, sources, error, done)
//   - Persona: an entry in the persona directory
//   - ClientError: typed failure with an ErrorType category
//
// # Stream Contract
//
// StreamChat never returns an error. Every outcome is reported through the
// handlers, and exactly one of OnDone or OnError fires per call:
//
//   - non-2xx status: OnError("API error: <status>")
//   - "data: [DONE]": OnDone
//   - {"error": msg}: OnError(msg)
//   - body ends without either: OnDone
//   - read failure after Cancel: OnDone
//   - request deadline: OnError("request timed out")
//
// Malformed frames are skipped and counted on the session.
//
// # Usage
//
//	client := api.NewClientWithConfig(&api.ClientConfig{BaseURL: cfg.API.BaseURL})
//	client.StreamChat(ctx, req, api.Handlers{
//	    OnToken: func(s string) { fmt.Print(s) },
//	    OnDone:  func() { fmt.Println() },
//	    OnError: func(msg string) { fmt.Println("error:", msg) },
//	}, session.New())
package api
