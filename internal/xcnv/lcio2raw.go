// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xcnv

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/go-lpc/hgcal/emap"
	"github.com/go-lpc/hgcal/rawtodigi"
	"github.com/go-lpc/hgcal/skiroc"
	"go-hep.org/x/hep/lcio"
)

// ReadEvents reads the named collection of every event of the LCIO stream
// and calls fn with the decoded event.
func ReadEvents(r *lcio.Reader, name string, freq int, msg *log.Logger, fn func(evt *rawtodigi.Event) error) error {
	i := 0
	for r.Next() {
		if freq > 0 && i%freq == 0 {
			msg.Printf("processing evt %d...", i)
		}

		evt, err := eventFrom(r.Event(), name)
		if err != nil {
			return err
		}

		err = fn(evt)
		if err != nil {
			return err
		}
		i++
	}

	err := r.Err()
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("xcnv: could not read LCIO stream: %w", err)
	}

	return nil
}

func eventFrom(src lcio.Event, name string) (*rawtodigi.Event, error) {
	raw, ok := src.Get(name).(*lcio.GenericObject)
	if !ok {
		return nil, fmt.Errorf("xcnv: event %d has no %q collection", src.EventNumber, name)
	}
	ids, ok := src.Get(DetIDsName(name)).(*lcio.GenericObject)
	if !ok {
		return nil, fmt.Errorf("xcnv: event %d has no %q collection", src.EventNumber, DetIDsName(name))
	}
	if len(raw.Data) != len(ids.Data) {
		return nil, fmt.Errorf(
			"xcnv: event %d has mismatched collections (samples=%d, ids=%d)",
			src.EventNumber, len(raw.Data), len(ids.Data),
		)
	}

	evt := &rawtodigi.Event{
		Number:  int(src.EventNumber),
		Records: make([]skiroc.Record, len(raw.Data)),
	}
	for i := range evt.Records {
		rec := &evt.Records[i]
		if n := len(raw.Data[i].I32s); n != skiroc.NumSamples {
			return nil, fmt.Errorf(
				"xcnv: event %d, record %d: invalid number of samples (got=%d, want=%d)",
				src.EventNumber, i, n, skiroc.NumSamples,
			)
		}
		for j, v := range raw.Data[i].I32s {
			rec.Samples[j] = uint16(v)
		}
		if n := len(ids.Data[i].I32s); n < 1 || n > skiroc.MaxChannels {
			return nil, fmt.Errorf(
				"xcnv: event %d, record %d: invalid number of detector ids %d (want=[1, %d])",
				src.EventNumber, i, n, skiroc.MaxChannels,
			)
		}
		rec.DetIDs = make([]emap.DetID, len(ids.Data[i].I32s))
		for j, v := range ids.Data[i].I32s {
			rec.DetIDs[j] = emap.DetID(uint32(v))
		}
	}

	return evt, nil
}
