// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sse

import (
	"errors"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DataPrefix marks a protocol line. Everything else on the wire is ignored.
const DataPrefix = "data: "

// Decoder splits an incrementally delivered byte stream into lines.
//
// Invalid UTF-8 becomes U+FFFD. An incomplete multi-byte sequence at the end
// of a chunk is held back until the next Feed. The text after the last '\n'
// is held as the residual and is never emitted on its own.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	utf8     transform.Transformer
	pending  []byte // undecoded tail of the previous chunk
	residual string // decoded text after the last newline
	scratch  []byte
}

// NewDecoder returns an empty Decoder.
func NewDecoder() *Decoder {
	return &Decoder{
		utf8:    unicode.UTF8.NewDecoder(),
		scratch: make([]byte, 4096),
	}
}

// Feed decodes chunk and returns every line it completes, in order, without
// the terminating '\n' (and without a trailing '\r').
func (d *Decoder) Feed(chunk []byte) []string {
	text := d.decode(chunk)
	if text == "" {
		return nil
	}

	buffered := d.residual + text
	parts := strings.Split(buffered, "\n")
	d.residual = parts[len(parts)-1]

	lines := parts[:len(parts)-1]
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Buffered reports how many bytes are held waiting for a newline.
func (d *Decoder) Buffered() int {
	return len(d.residual) + len(d.pending)
}

// Close drops whatever is still buffered and returns its size in bytes.
// A stream that ends without a final newline loses its last line.
func (d *Decoder) Close() int {
	dropped := d.Buffered()
	d.residual = ""
	d.pending = nil
	d.utf8.Reset()
	return dropped
}

func (d *Decoder) decode(chunk []byte) string {
	src := chunk
	if len(d.pending) > 0 {
		src = append(d.pending, chunk...)
		d.pending = nil
	}

	var out strings.Builder
	for len(src) > 0 {
		nDst, nSrc, err := d.utf8.Transform(d.scratch, src, false)
		out.Write(d.scratch[:nDst])
		src = src[nSrc:]

		switch {
		case err == nil:
			return out.String()
		case errors.Is(err, transform.ErrShortDst):
			continue
		case errors.Is(err, transform.ErrShortSrc):
			d.pending = append([]byte(nil), src...)
			return out.String()
		default:
			// The UTF-8 decoder replaces bad input instead of failing.
			return out.String()
		}
	}
	return out.String()
}

// Frame extracts the payload of a protocol line. Surrounding whitespace is
// ignored. Lines without the "data: " prefix (keep-alives, event:, id:,
// comments, a bare [DONE]) report ok=false.
func Frame(line string) (payload string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, DataPrefix) {
		return "", false
	}
	return trimmed[len(DataPrefix):], true
}
