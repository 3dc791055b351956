// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package conddb holds types to retrieve conditions data and run
// configurations from the HGCal test-beam database.
package conddb // import "github.com/go-lpc/hgcal/conddb"

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/go-lpc/hgcal/emap"
)

var (
	host = "localhost"
	usr  = "username"
	pwd  = "s3cr3t"

	drvName = "mysql"
)

const timeout = 5 * time.Second

// DB exposes convenience methods to easily retrieve conditions data
// and configuration data from the HGCal database.
type DB struct {
	db   *sqlx.DB
	name string // name of the HGCal database
}

// Open opens a connection to the HGCal database dbname.
func Open(dbname string) (*DB, error) {
	db, err := sqlx.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("conddb: could not open %q db: %w", dbname, err)
	}

	err = ping(db, dbname)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &DB{db: db, name: dbname}, nil
}

func dsn(db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true", usr, pwd, host, db)
}

func ping(db *sqlx.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("conddb: could not ping %q db: %w", dbname, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

// LastEMap returns the name of the most recently registered electronics map.
func (db *DB) LastEMap(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	name := ""
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT name FROM emaps ORDER BY datetime DESC LIMIT 1",
	)
	if err != nil {
		return name, fmt.Errorf("conddb: could not query emap name: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		err = rows.Scan(&name)
		if err != nil {
			return name, fmt.Errorf("conddb: could not get emap name: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return name, fmt.Errorf("conddb: could not scan db for emap name: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return name, fmt.Errorf("conddb: context error while retrieving emap name: %w", err)
	}

	return name, nil
}

// Channel is one row of an electronics map.
type Channel struct {
	Chip     int `db:"chip"`
	Channel  int `db:"channel"`
	Layer    int `db:"layer"`
	SensorU  int `db:"sensor_u"`
	SensorV  int `db:"sensor_v"`
	CellU    int `db:"cell_u"`
	CellV    int `db:"cell_v"`
	CellType int `db:"type"`
}

// ElectronicsMap retrieves the named electronics map.
func (db *DB) ElectronicsMap(ctx context.Context, name string) (*emap.Map, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rows, err := db.db.QueryxContext(
		ctx,
		`
SELECT
	emap_channels.chip, emap_channels.channel,
	emap_channels.layer, emap_channels.sensor_u, emap_channels.sensor_v,
	emap_channels.cell_u, emap_channels.cell_v, emap_channels.type
FROM emap_channels
JOIN emaps ON emaps.identifier=emap_channels.emap
WHERE emaps.name=?
`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("conddb: could not run emap query: %w", err)
	}
	defer rows.Close()

	m := emap.New()
	i := 0
	for rows.Next() {
		var ch Channel
		err = rows.StructScan(&ch)
		if err != nil {
			return nil, fmt.Errorf("conddb: could not scan row %d of emap %q: %w", i, name, err)
		}

		did, err := emap.NewDetID(ch.Layer, ch.SensorU, ch.SensorV, ch.CellU, ch.CellV, ch.CellType)
		if err != nil {
			return nil, fmt.Errorf("conddb: invalid row %d of emap %q: %w", i, name, err)
		}

		eid, err := emap.ElecIDFrom(ch.Chip, ch.Channel)
		if err != nil {
			return nil, fmt.Errorf("conddb: invalid row %d of emap %q: %w", i, name, err)
		}

		err = m.Add(eid, did)
		if err != nil {
			return nil, fmt.Errorf("conddb: invalid row %d of emap %q: %w", i, name, err)
		}
		i++
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("conddb: could not scan db for emap %q: %w", name, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("conddb: context error while retrieving emap %q: %w", name, err)
	}

	return m, nil
}
