// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conddb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-lpc/hgcal/rawtodigi"
)

// Run describes the readout setup of a test-beam run.
type Run struct {
	ID         uint32 `db:"run"`
	Boards     int    `db:"boards"`
	Hexaboards int    `db:"hexaboards"`
	Channels   int    `db:"channels"`
	Words      int    `db:"words"`
	EMap       string `db:"emap"`
}

// Apply updates the readout fields of cfg with the run setup.
func (run Run) Apply(cfg *rawtodigi.Config) {
	cfg.Boards = run.Boards
	cfg.Hexaboards = run.Hexaboards
	if run.Channels > 0 {
		cfg.Channels = run.Channels
	}
	if run.Words > 0 {
		cfg.Words = run.Words
	}
}

// RunSetup retrieves the readout setup of the provided run.
func (db *DB) RunSetup(ctx context.Context, id uint32) (Run, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var run Run
	rows, err := db.db.QueryxContext(
		ctx,
		"SELECT run, boards, hexaboards, channels, words, emap FROM runs WHERE run=?",
		id,
	)
	if err != nil {
		return run, fmt.Errorf("conddb: could not run runs query: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		err = rows.StructScan(&run)
		if err != nil {
			return run, fmt.Errorf("conddb: could not scan run %d: %w", id, err)
		}
		n++
	}

	if err := rows.Err(); err != nil {
		return run, fmt.Errorf("conddb: could not scan db for run %d: %w", id, err)
	}

	if err := ctx.Err(); err != nil {
		return run, fmt.Errorf("conddb: context error while retrieving run %d: %w", id, err)
	}

	if n == 0 {
		return run, fmt.Errorf("conddb: no setup for run %d: %w", id, sql.ErrNoRows)
	}

	return run, nil
}
