// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rawtodigi

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-lpc/hgcal/emap"
	"github.com/go-lpc/hgcal/skiroc"
)

const evtMarker = 0x48474331 // "HGC1"

// Encoder writes events to an output stream.
//
// Each event is encoded as:
//
//	u32 marker
//	u32 event number
//	u16 number of records
//	per record:
//	  u16 number of channels
//	  u16 samples[skiroc.NumSamples]
//	  u32 detector ids[channels]
//
// All values are big-endian.
type Encoder struct {
	w   io.Writer
	buf []byte
	err error
}

// NewEncoder returns a new Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:   w,
		buf: make([]byte, 2*skiroc.NumSamples),
	}
}

// Encode writes the event to the stream.
func (enc *Encoder) Encode(evt *Event) error {
	if evt == nil {
		return nil
	}
	if len(evt.Records) > 0xffff {
		return fmt.Errorf("rawtodigi: too many records (%d)", len(evt.Records))
	}

	enc.writeU32(evtMarker)
	enc.writeU32(uint32(evt.Number))
	enc.writeU16(uint16(len(evt.Records)))
	for i := range evt.Records {
		rec := &evt.Records[i]
		enc.writeU16(uint16(len(rec.DetIDs)))

		for j, v := range rec.Samples {
			binary.BigEndian.PutUint16(enc.buf[2*j:], v)
		}
		enc.write(enc.buf[:2*skiroc.NumSamples])

		for _, id := range rec.DetIDs {
			enc.writeU32(uint32(id))
		}
	}

	if enc.err != nil {
		return fmt.Errorf("rawtodigi: could not encode event %d: %w", evt.Number, enc.err)
	}
	return nil
}

func (enc *Encoder) write(p []byte) {
	if enc.err != nil {
		return
	}
	_, enc.err = enc.w.Write(p)
}

func (enc *Encoder) writeU16(v uint16) {
	binary.BigEndian.PutUint16(enc.buf[:2], v)
	enc.write(enc.buf[:2])
}

func (enc *Encoder) writeU32(v uint32) {
	binary.BigEndian.PutUint32(enc.buf[:4], v)
	enc.write(enc.buf[:4])
}

// Decoder reads events from an input stream.
type Decoder struct {
	r   io.Reader
	buf []byte
	err error
}

// NewDecoder returns a new Decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:   r,
		buf: make([]byte, 2*skiroc.NumSamples),
	}
}

// Decode reads the next event from the stream.
// Decode returns io.EOF when the stream holds no more event.
func (dec *Decoder) Decode(evt *Event) error {
	dec.err = nil

	marker := dec.readU32()
	if dec.err != nil {
		if errors.Is(dec.err, io.EOF) {
			return io.EOF
		}
		return fmt.Errorf("rawtodigi: could not read event marker: %w", dec.err)
	}
	if marker != evtMarker {
		return fmt.Errorf("rawtodigi: invalid event marker (got=0x%08x, want=0x%08x)", marker, evtMarker)
	}

	evt.Number = int(dec.readU32())
	n := int(dec.readU16())
	if dec.err != nil {
		return fmt.Errorf("rawtodigi: could not read event header: %w", dec.unexpected())
	}

	evt.Records = make([]skiroc.Record, n)
	for i := range evt.Records {
		rec := &evt.Records[i]
		nchans := int(dec.readU16())

		dec.read(dec.buf[:2*skiroc.NumSamples])
		if dec.err != nil {
			return fmt.Errorf("rawtodigi: could not read record %d of event %d: %w", i, evt.Number, dec.unexpected())
		}
		for j := range rec.Samples {
			rec.Samples[j] = binary.BigEndian.Uint16(dec.buf[2*j:])
		}

		rec.DetIDs = make([]emap.DetID, nchans)
		for j := range rec.DetIDs {
			rec.DetIDs[j] = emap.DetID(dec.readU32())
		}
		if dec.err != nil {
			return fmt.Errorf("rawtodigi: could not read detector ids of record %d of event %d: %w", i, evt.Number, dec.unexpected())
		}
	}

	return nil
}

func (dec *Decoder) unexpected() error {
	if errors.Is(dec.err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return dec.err
}

func (dec *Decoder) read(p []byte) {
	if dec.err != nil {
		return
	}
	_, dec.err = io.ReadFull(dec.r, p)
}

func (dec *Decoder) readU16() uint16 {
	dec.read(dec.buf[:2])
	return binary.BigEndian.Uint16(dec.buf[:2])
}

func (dec *Decoder) readU32() uint32 {
	dec.read(dec.buf[:4])
	return binary.BigEndian.Uint32(dec.buf[:4])
}
