// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emap

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"go-hep.org/x/hep/csvutil"
)

const header = "# CHIP CHANNEL LAYER SENSOR_U SENSOR_V CELL_U CELL_V TYPE\n"

// Load loads an electronics map from a text file.
//
// The file holds one entry per line, made of 8 white-space separated
// columns:
//
//	CHIP CHANNEL LAYER SENSOR_U SENSOR_V CELL_U CELL_V TYPE
//
// Lines starting with '#' are ignored, as is a leading non-numeric header line.
func Load(fname string) (*Map, error) {
	tbl, err := csvutil.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("%w: could not open %q: %w", ErrLoad, fname, err)
	}
	defer tbl.Close()

	tbl.Reader.Comma = ' '
	tbl.Reader.Comment = '#'
	tbl.Reader.TrimLeadingSpace = true
	tbl.Reader.FieldsPerRecord = -1

	rows, err := tbl.ReadRows(0, -1)
	if err != nil {
		return nil, fmt.Errorf("%w: could not read rows from %q: %w", ErrLoad, fname, err)
	}
	defer rows.Close()

	var (
		m    = New()
		line = 0
		cols [8]string
	)
	for rows.Next() {
		line++
		err = rows.Scan(
			&cols[0], &cols[1], &cols[2], &cols[3],
			&cols[4], &cols[5], &cols[6], &cols[7],
		)
		if err != nil {
			return nil, fmt.Errorf("%w: could not scan row %d of %q: %w", ErrLoad, line, fname, err)
		}

		var vs [8]int
		for i, col := range cols {
			vs[i], err = strconv.Atoi(col)
			if err != nil {
				break
			}
		}
		if err != nil {
			if line == 1 {
				// column names.
				continue
			}
			return nil, fmt.Errorf("%w: invalid row %d of %q: %w", ErrLoad, line, fname, err)
		}

		did, err := NewDetID(vs[2], vs[3], vs[4], vs[5], vs[6], vs[7])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid row %d of %q: %w", ErrLoad, line, fname, err)
		}

		eid, err := ElecIDFrom(vs[0], vs[1])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid row %d of %q: %w", ErrLoad, line, fname, err)
		}

		err = m.Add(eid, did)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid row %d of %q: %w", ErrLoad, line, fname, err)
		}
	}

	err = rows.Err()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: could not read %q: %w", ErrLoad, fname, err)
	}

	return m, nil
}

// Save writes the electronics map to a text file, in the format
// understood by Load.
func Save(fname string, m *Map) error {
	tbl, err := csvutil.Create(fname)
	if err != nil {
		return fmt.Errorf("emap: could not create %q: %w", fname, err)
	}
	defer tbl.Close()

	tbl.Writer.Comma = ' '

	err = tbl.WriteHeader(header)
	if err != nil {
		return fmt.Errorf("emap: could not write header to %q: %w", fname, err)
	}

	for _, e := range m.Entries() {
		err = tbl.WriteRow(
			e.ElecID.Chip(), e.ElecID.Channel(),
			e.DetID.Layer(), e.DetID.SensorU(), e.DetID.SensorV(),
			e.DetID.CellU(), e.DetID.CellV(), e.DetID.CellType(),
		)
		if err != nil {
			return fmt.Errorf("emap: could not write %v to %q: %w", e.ElecID, fname, err)
		}
	}

	err = tbl.Close()
	if err != nil {
		return fmt.Errorf("emap: could not close %q: %w", fname, err)
	}
	return nil
}
