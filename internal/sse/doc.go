// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sse turns a raw response body into "data: " framed payloads.
//
// The body arrives in arbitrary chunks. A chunk may end in the middle of a
// line, a JSON document, or a multi-byte UTF-8 character; the Decoder carries
// both the undecoded bytes and the unterminated line over to the next chunk,
// so the same byte stream always yields the same frames however it is split.
//
// # Key Types
//
//   - Decoder: push-style, chunk in, complete lines out
//   - Reader: pull-style iterator over frame payloads of an io.Reader
//
// # Usage
//
//	r := sse.NewReader(resp.Body)
//	for {
//	    payload, err := r.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    handle(payload)
//	}
package sse
