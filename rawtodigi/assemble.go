// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rawtodigi

import (
	"fmt"

	"github.com/go-lpc/hgcal/emap"
	"github.com/go-lpc/hgcal/skiroc"
)

// Assemble builds and checks the records of the provided chips.
// Channels with no entry in m are given the emap.Unmapped identifier.
func Assemble(chips []skiroc.Samples, m Lookup, nchans int) ([]skiroc.Record, error) {
	recs := make([]skiroc.Record, len(chips))
	for i := range chips {
		rec := &recs[i]
		rec.Samples = chips[i]
		rec.DetIDs = make([]emap.DetID, nchans)
		for ch := range rec.DetIDs {
			eid := emap.NewElecID(i, ch)
			if !m.Exists(eid) {
				rec.DetIDs[ch] = emap.Unmapped
				continue
			}
			rec.DetIDs[ch] = m.Resolve(eid)
		}

		err := rec.Check(nchans)
		if err != nil {
			return nil, fmt.Errorf("rawtodigi: chip %d: %w", i, err)
		}
	}
	return recs, nil
}
