// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command hgc-emap retrieves an electronics map from the HGCal conditions
// database and saves it as a text file.
package main // import "github.com/go-lpc/hgcal/cmd/hgc-emap"

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-lpc/hgcal/conddb"
	"github.com/go-lpc/hgcal/emap"
)

func main() {
	log.SetPrefix("hgc-emap: ")
	log.SetFlags(0)

	var (
		dbname = flag.String("db", "hgcaltb", "name of the conditions database")
		name   = flag.String("name", "", "name of the electronics map (default: most recent one)")
		oname  = flag.String("o", "emap.txt", "path to the output electronics map file")
	)

	flag.Parse()

	db, err := conddb.Open(*dbname)
	if err != nil {
		log.Fatalf("could not open HGCal db: %+v", err)
	}
	defer db.Close()

	err = process(db, *oname, *name)
	if err != nil {
		log.Fatalf("could not retrieve electronics map: %+v", err)
	}
}

type emapDB interface {
	LastEMap(ctx context.Context) (string, error)
	ElectronicsMap(ctx context.Context, name string) (*emap.Map, error)
}

func process(db emapDB, oname, name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if name == "" {
		v, err := db.LastEMap(ctx)
		if err != nil {
			return fmt.Errorf("could not get last emap name: %w", err)
		}
		name = v
		log.Printf("emap: %q", name)
	}

	m, err := db.ElectronicsMap(ctx, name)
	if err != nil {
		return fmt.Errorf("could not get emap %q: %w", name, err)
	}
	log.Printf("channels: %d", m.Len())

	err = emap.Save(oname, m)
	if err != nil {
		return fmt.Errorf("could not save emap %q: %w", name, err)
	}

	return nil
}

var _ emapDB = (*conddb.DB)(nil)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: hgc-emap [OPTIONS]

ex:
 $> hgc-emap -db=hgcaltb -o ./emap.txt
 $> hgc-emap -name=map_CERN_Hexaboard_28Layers -o ./emap.txt

options:
`)
		flag.PrintDefaults()
	}
}
