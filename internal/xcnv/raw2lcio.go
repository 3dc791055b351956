// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xcnv

import (
	"fmt"

	"github.com/go-lpc/hgcal"
	"github.com/go-lpc/hgcal/rawtodigi"
	"github.com/go-lpc/hgcal/skiroc"
	"go-hep.org/x/hep/lcio"
)

// Writer puts raw-to-digi events into an LCIO stream.
type Writer struct {
	w    *lcio.Writer
	run  int32
	cfg  rawtodigi.Config
	init bool

	raw lcio.GenericObject
	ids lcio.GenericObject
}

// NewWriter returns a Writer for the provided run, described by cfg.
func NewWriter(w *lcio.Writer, run int32, cfg rawtodigi.Config) *Writer {
	return &Writer{w: w, run: run, cfg: cfg}
}

// Put writes the event to the LCIO stream, under the provided
// collection name.
// The run header is written before the first event.
func (w *Writer) Put(name string, evt *rawtodigi.Event) error {
	if !w.init {
		vers, _ := hgcal.Version()
		err := w.w.WriteRunHeader(&lcio.RunHeader{
			RunNumber: w.run,
			Detector:  detector,
			Descr:     w.cfg.Input,
			Params: lcio.Params{
				Ints: map[string][]int32{
					"Boards":     {int32(w.cfg.Boards)},
					"Hexaboards": {int32(w.cfg.Hexaboards)},
					"Channels":   {int32(w.cfg.Channels)},
					"Words":      {int32(w.cfg.Words)},
				},
				Strings: map[string][]string{
					"ElectronicMap": {w.cfg.ElectronicMap},
					"Version":       {vers},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("xcnv: could not write run header: %w", err)
		}
		w.init = true
	}

	w.raw.Data = resize(w.raw.Data, len(evt.Records))
	w.ids.Data = resize(w.ids.Data, len(evt.Records))
	for i := range evt.Records {
		rec := &evt.Records[i]

		raw := w.raw.Data[i].I32s[:0]
		for _, v := range rec.Samples {
			raw = append(raw, int32(v))
		}
		w.raw.Data[i].I32s = raw

		ids := w.ids.Data[i].I32s[:0]
		for _, id := range rec.DetIDs {
			ids = append(ids, int32(id))
		}
		w.ids.Data[i].I32s = ids
	}

	out := lcio.Event{
		RunNumber:   w.run,
		EventNumber: int32(evt.Number),
		Detector:    detector,
	}
	out.Add(name, &w.raw)
	out.Add(DetIDsName(name), &w.ids)

	err := w.w.WriteEvent(&out)
	if err != nil {
		return fmt.Errorf("xcnv: could not write event %d: %w", evt.Number, err)
	}
	return nil
}

func resize(data []lcio.GenericObjectData, n int) []lcio.GenericObjectData {
	if cap(data) < n {
		data = append(data[:cap(data)], make([]lcio.GenericObjectData, n-cap(data))...)
	}
	data = data[:n]
	for i := range data {
		if data[i].I32s == nil {
			data[i].I32s = make([]int32, 0, skiroc.NumSamples)
		}
	}
	return data
}

var _ rawtodigi.Sink = (*Writer)(nil)
