// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command hgc-raw2lcio converts HGCal raw data files to LCIO ones.
package main // import "github.com/go-lpc/hgcal/cmd/hgc-raw2lcio"

import (
	"compress/flate"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tlog "github.com/go-daq/tdaq/log"
	"github.com/go-lpc/hgcal"
	"github.com/go-lpc/hgcal/conddb"
	"github.com/go-lpc/hgcal/emap"
	"github.com/go-lpc/hgcal/internal/alert"
	"github.com/go-lpc/hgcal/internal/xcnv"
	"github.com/go-lpc/hgcal/rawtodigi"
	"github.com/sbinet/pmon"
	"go-hep.org/x/hep/lcio"
	"golang.org/x/sync/errgroup"
)

var (
	msg = log.New(os.Stdout, "hgc-raw2lcio: ", 0)
)

func main() {
	log.SetPrefix("hgc-raw2lcio: ")
	log.SetFlags(0)

	err := xmain(os.Args[1:])
	if err != nil {
		if errors.Is(err, rawtodigi.ErrInvalidRecord) {
			alertAbort(err)
		}
		log.Fatalf("%+v", err)
	}
}

type options struct {
	cfg   rawtodigi.Config
	odir  string
	lvl   int
	db    string
	run   uint
	mon   bool
	freq  time.Duration
	debug bool
}

func xmain(args []string) error {
	var (
		fset   = flag.NewFlagSet("hgc-raw2lcio", flag.ContinueOnError)
		cfg    = fset.String("cfg", "", "path to a JSON configuration file")
		odir   = fset.String("o", ".", "output directory for LCIO files")
		compr  = fset.Int("lvl", flate.DefaultCompression, "compression level for output LCIO files")
		emapf  = fset.String("emap", "", "path to the electronics map (overrides configuration)")
		boards = fset.Int("boards", 0, "number of readout boards (overrides configuration)")
		oname  = fset.String("coll", "", "name of the output collection (overrides configuration)")
		xmmap  = fset.Bool("mmap", false, "memory-map raw data files")
		db     = fset.String("db", "", "name of the conditions database to retrieve the electronics map from")
		run    = fset.Uint("run", 0, "run number of the output files, and whose setup is retrieved from the conditions database (default: inferred from file names)")
		mon    = fset.Bool("pmon", false, "enable pmon monitoring")
		freq   = fset.Duration("freq", 1*time.Second, "pmon frequency")
		debug  = fset.Bool("v", false, "enable verbose mode")
		vers   = fset.Bool("version", false, "print version and exit")
	)

	fset.Usage = func() {
		fmt.Printf(`Usage: hgc-raw2lcio [OPTIONS] file1.raw [file2.raw [...]]

ex:
 $> hgc-raw2lcio -o ./out -boards=2 ./HexaData_Run1234.raw
 $> hgc-raw2lcio -cfg tb.json -pmon file:HexaData_Run1234.raw HexaData_Run1235.raw

options:
`)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		return err
	}

	if *vers {
		v, sum := hgcal.Version()
		msg.Printf("version: %s %s", v, sum)
		return nil
	}

	if fset.NArg() == 0 {
		fset.Usage()
		return fmt.Errorf("missing input raw data file")
	}

	opts := options{
		cfg:   rawtodigi.Default(),
		odir:  *odir,
		lvl:   *compr,
		db:    *db,
		run:   *run,
		mon:   *mon,
		freq:  *freq,
		debug: *debug,
	}

	if *cfg != "" {
		opts.cfg, err = rawtodigi.LoadConfig(*cfg)
		if err != nil {
			return fmt.Errorf("could not load configuration: %w", err)
		}
	}

	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "emap":
			opts.cfg.ElectronicMap = *emapf
		case "boards":
			opts.cfg.Boards = *boards
		case "coll":
			opts.cfg.OutputName = *oname
		case "mmap":
			opts.cfg.Mmap = *xmmap
		}
	})

	return process(context.Background(), opts, fset.Args())
}

func process(ctx context.Context, opts options, fnames []string) error {
	err := opts.cfg.Validate()
	if err != nil {
		return err
	}

	m, err := loadEMap(ctx, &opts)
	if err != nil {
		return fmt.Errorf("could not load electronics map: %w", err)
	}

	// the run setup from the conditions db may have changed the configuration.
	err = opts.cfg.Validate()
	if err != nil {
		return err
	}

	err = os.MkdirAll(opts.odir, 0755)
	if err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}

	var grp errgroup.Group
	for _, fname := range fnames {
		fname := fname
		grp.Go(func() error {
			return convert(ctx, opts, m, fname)
		})
	}

	return grp.Wait()
}

func loadEMap(ctx context.Context, opts *options) (*emap.Map, error) {
	if opts.db == "" {
		return emap.Load(opts.cfg.ElectronicMap)
	}

	db, err := conddb.Open(opts.db)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var name string
	switch opts.run {
	case 0:
		name, err = db.LastEMap(ctx)
		if err != nil {
			return nil, err
		}
	default:
		run, err := db.RunSetup(ctx, uint32(opts.run))
		if err != nil {
			return nil, err
		}
		run.Apply(&opts.cfg)
		name = run.EMap
	}
	opts.cfg.ElectronicMap = name
	msg.Printf("using electronics map %q from db %q", name, opts.db)

	return db.ElectronicsMap(ctx, name)
}

func convert(ctx context.Context, opts options, m *emap.Map, fname string) error {
	cfg := opts.cfg
	cfg.Input = fname

	lvl := tlog.LvlInfo
	if opts.debug {
		lvl = tlog.LvlDebug
	}
	name := filepath.Base(strings.TrimPrefix(fname, "file:"))
	src, err := rawtodigi.NewSource(
		cfg, m,
		rawtodigi.WithMsgStream(tlog.NewMsgStream(name, lvl, os.Stdout)),
	)
	if err != nil {
		return fmt.Errorf("could not create raw-to-digi session for %q: %w", fname, err)
	}
	defer src.Close()

	run := int32(opts.run)
	if run == 0 {
		run, err = runNbrFrom(name)
		if err != nil {
			msg.Printf("could not infer run number from %q: %+v", fname, err)
		}
	}

	oname := filepath.Join(opts.odir, strings.TrimSuffix(name, filepath.Ext(name))+".lcio")
	w, err := lcio.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create output LCIO file: %w", err)
	}
	defer w.Close()

	w.SetCompressionLevel(opts.lvl)

	if opts.mon {
		stop, err := monitor(oname+"-pmon.log", opts.freq)
		if err != nil {
			return err
		}
		defer stop()
	}

	n, err := rawtodigi.Run(ctx, src, xcnv.NewWriter(w, run, cfg))
	if err != nil {
		return fmt.Errorf("could not convert %q: %w", fname, err)
	}

	err = w.Close()
	if err != nil {
		return fmt.Errorf("could not close output LCIO file: %w", err)
	}

	msg.Printf("converted %d events from %q to %q", n, fname, oname)
	return nil
}

func monitor(fname string, freq time.Duration) (func(), error) {
	pid := os.Getpid()
	p, err := pmon.Monitor(pid)
	if err != nil {
		return nil, fmt.Errorf("could not start monitoring (pid=%d): %w", pid, err)
	}
	f, err := os.Create(fname)
	if err != nil {
		return nil, fmt.Errorf("could not create pmon log file: %w", err)
	}
	p.W = f
	p.Freq = freq

	go func() {
		err := p.Run()
		if err != nil {
			msg.Printf("could not run pmon: %+v", err)
		}
	}()

	return func() {
		err := p.Kill()
		if err != nil {
			msg.Printf("could not stop monitoring: %+v", err)
		}
		_ = f.Close()
	}, nil
}

func runNbrFrom(fname string) (int32, error) {
	var run int32
	_, err := fmt.Sscanf(filepath.Base(fname), "HexaData_Run%d.raw", &run)
	return run, err
}

func alertAbort(err error) {
	host, _ := os.Hostname()
	aerr := alert.FromEnv().Send(
		"[hgc-raw2lcio] raw-to-digi session aborted",
		fmt.Sprintf("host:  %s\nerror: %+v\n", host, err),
	)
	if aerr != nil {
		log.Printf("could not send mail alert: %+v", aerr)
	}
}
