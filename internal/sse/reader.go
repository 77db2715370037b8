// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sse

import (
	"errors"
	"fmt"
	"io"
)

const (
	// ReadChunkSize is the size of each read from the underlying body.
	ReadChunkSize = 32 * 1024

	// MaxLineSize bounds a single unterminated line. Source frames carry
	// document excerpts, so this is generous.
	MaxLineSize = 4 * 1024 * 1024
)

// ErrLineTooLong is returned when a line grows past MaxLineSize without a
// newline.
var ErrLineTooLong = errors.New("sse: line exceeds maximum size")

// Reader yields frame payloads from an io.Reader. It is lazy, finite, and
// cannot be restarted: once Next returns an error, it keeps returning it.
type Reader struct {
	src     io.Reader
	dec     *Decoder
	buf     []byte
	queue   []string
	err     error
	dropped int
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		src: r,
		dec: NewDecoder(),
		buf: make([]byte, ReadChunkSize),
	}
}

// Next returns the next payload. It returns io.EOF once the input is
// exhausted, or the read error that ended it. Payloads decoded before a
// read error are still delivered first.
func (r *Reader) Next() (string, error) {
	for len(r.queue) == 0 {
		if r.err != nil {
			return "", r.err
		}
		r.fill()
	}

	payload := r.queue[0]
	r.queue = r.queue[1:]
	return payload, nil
}

// Dropped reports how many trailing bytes were discarded at end of input
// because no newline followed them.
func (r *Reader) Dropped() int {
	return r.dropped
}

func (r *Reader) fill() {
	n, err := r.src.Read(r.buf)
	if n > 0 {
		for _, line := range r.dec.Feed(r.buf[:n]) {
			if payload, ok := Frame(line); ok {
				r.queue = append(r.queue, payload)
			}
		}
		if r.dec.Buffered() > MaxLineSize {
			r.finish(fmt.Errorf("%w (%d bytes buffered)", ErrLineTooLong, r.dec.Buffered()))
			return
		}
	}
	if err != nil {
		r.finish(err)
	}
}

func (r *Reader) finish(err error) {
	r.dropped = r.dec.Close()
	r.err = err
}
