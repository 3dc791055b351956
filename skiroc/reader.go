// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package skiroc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Reader reads fixed-size frames from an underlying data source.
//
// Frame i occupies bytes [i*FrameSize(), (i+1)*FrameSize()) of the source.
// Every 4-byte block of a frame is one 32-bit word, most significant
// byte first.
type Reader struct {
	r   io.ReaderAt
	n   int // number of words per frame
	buf []byte
}

// NewReader creates a new reader of frames of nwords 32-bit words from r.
func NewReader(r io.ReaderAt, nwords int) *Reader {
	return &Reader{
		r:   r,
		n:   nwords,
		buf: make([]byte, 4*nwords),
	}
}

// FrameSize returns the size in bytes of a frame.
func (r *Reader) FrameSize() int64 { return int64(len(r.buf)) }

// Words returns the number of 32-bit words per frame.
func (r *Reader) Words() int { return r.n }

// Read reads the i-th frame into dst, which is grown as needed,
// and returns it.
// Read returns io.EOF when less than a full frame is left in the source.
func (r *Reader) Read(dst []uint32, i int) ([]uint32, error) {
	if i < 0 {
		return dst, fmt.Errorf("skiroc: invalid frame index %d", i)
	}

	off := int64(i) * r.FrameSize()
	n, err := r.r.ReadAt(r.buf, off)
	switch {
	case n == len(r.buf):
		// a full frame may come with io.EOF.
	case err == nil, errors.Is(err, io.EOF):
		return dst, io.EOF
	default:
		return dst, fmt.Errorf("skiroc: could not read frame %d: %w", i, err)
	}

	if cap(dst) < r.n {
		dst = make([]uint32, r.n)
	}
	dst = dst[:r.n]
	for j := range dst {
		dst[j] = binary.BigEndian.Uint32(r.buf[4*j:])
	}

	return dst, nil
}

// Writer writes fixed-size frames to an underlying data sink,
// in the byte order expected by Reader.
type Writer struct {
	w   io.Writer
	buf []byte
	err error
}

// NewWriter returns a new Writer of frames of nwords 32-bit words to w.
func NewWriter(w io.Writer, nwords int) *Writer {
	return &Writer{
		w:   w,
		buf: make([]byte, 4*nwords),
	}
}

// Write writes one frame. The number of words must match the frame size.
func (w *Writer) Write(words []uint32) error {
	if w.err != nil {
		return w.err
	}

	if got, want := len(words), len(w.buf)/4; got != want {
		return fmt.Errorf("skiroc: invalid frame size (got=%d words, want=%d)", got, want)
	}

	for i, v := range words {
		binary.BigEndian.PutUint32(w.buf[4*i:], v)
	}

	_, w.err = w.w.Write(w.buf)
	if w.err != nil {
		w.err = fmt.Errorf("skiroc: could not write frame: %w", w.err)
	}
	return w.err
}
