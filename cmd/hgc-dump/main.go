// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// hgc-dump decodes and displays HGCal raw data files, or LCIO files
// created by hgc-raw2lcio.
//
// Usage: hgc-dump [OPTIONS] FILE
//
// Example:
//
//	$> hgc-dump -boards=1 -n=1 ./HexaData_Run1234.raw
//	=== event 0 ===
//	--- chip 0 (id=0x00) ---
//	roll mask: 0x0000
//	global TS: msb=0x0000 lsb=0x0000
//	  ch=00 det=0x00000000 HG=   0 LG=   0 TOA=   0    0 TOT=   0    0
//	[...]
package main // import "github.com/go-lpc/hgcal/cmd/hgc-dump"

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-lpc/hgcal/emap"
	"github.com/go-lpc/hgcal/internal/mmap"
	"github.com/go-lpc/hgcal/internal/xcnv"
	"github.com/go-lpc/hgcal/rawtodigi"
	"github.com/go-lpc/hgcal/skiroc"
	"github.com/peterh/liner"
	"go-hep.org/x/hep/lcio"
)

func main() {
	log.SetPrefix("hgc-dump: ")
	log.SetFlags(0)

	err := xmain(os.Stdout, os.Args[1:])
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

type options struct {
	cfg   rawtodigi.Config
	lcio  bool
	nevts int
	sca   int
	inter bool
}

func xmain(w io.Writer, args []string) error {
	var (
		fset   = flag.NewFlagSet("hgc-dump", flag.ContinueOnError)
		boards = fset.Int("boards", 1, "number of readout boards")
		words  = fset.Int("words", skiroc.DefaultWords, "number of 32-bit words per frame")
		nchans = fset.Int("chans", skiroc.MaxChannels, "number of channels per chip")
		emapf  = fset.String("emap", "", "path to the electronics map")
		coll   = fset.String("coll", "SKIROC2CMSDATA", "name of the LCIO collection")
		isLCIO = fset.Bool("lcio", false, "input file is an LCIO file")
		nevts  = fset.Int("n", -1, "number of events to display (-1: all)")
		sca    = fset.Int("sca", 0, "SCA cell to display")
		inter  = fset.Bool("i", false, "enable interactive mode")
	)

	fset.Usage = func() {
		fmt.Printf(`hgc-dump decodes and displays HGCal raw data files.

Usage: hgc-dump [OPTIONS] FILE

Example:

 $> hgc-dump -boards=1 -n=1 ./HexaData_Run1234.raw
 $> hgc-dump -lcio ./HexaData_Run1234.lcio
 $> hgc-dump -i -boards=2 ./HexaData_Run1234.raw

`)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		return err
	}

	if fset.NArg() != 1 {
		fset.Usage()
		return fmt.Errorf("missing path to input file")
	}

	if *sca < 0 || *sca >= skiroc.NumSCA {
		return fmt.Errorf("invalid SCA cell %d", *sca)
	}

	opts := options{
		cfg:   rawtodigi.Default(),
		lcio:  *isLCIO,
		nevts: *nevts,
		sca:   *sca,
		inter: *inter,
	}
	opts.cfg.Input = fset.Arg(0)
	opts.cfg.Boards = *boards
	opts.cfg.Words = *words
	opts.cfg.Channels = *nchans
	opts.cfg.ElectronicMap = *emapf
	opts.cfg.OutputName = *coll

	switch {
	case opts.lcio:
		return dumpLCIO(w, opts)
	case opts.inter:
		line := liner.NewLiner()
		defer line.Close()
		line.SetCtrlCAborts(true)
		return browse(w, line, opts)
	default:
		return dumpRaw(w, opts)
	}
}

func loadEMap(fname string) (*emap.Map, error) {
	if fname == "" {
		return emap.New(), nil
	}
	return emap.Load(fname)
}

func dumpRaw(w io.Writer, opts options) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	m, err := loadEMap(opts.cfg.ElectronicMap)
	if err != nil {
		return err
	}

	src, err := rawtodigi.NewSource(opts.cfg, m)
	if err != nil {
		return err
	}
	defer src.Close()

	ctx := context.Background()
	for i := 0; opts.nevts < 0 || i < opts.nevts; i++ {
		evt, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("could not read event %d: %w", i, err)
		}
		display(wbuf, evt, opts.sca)
	}

	return wbuf.Flush()
}

func dumpLCIO(w io.Writer, opts options) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	r, err := lcio.Open(opts.cfg.Input)
	if err != nil {
		return fmt.Errorf("could not open LCIO file: %w", err)
	}
	defer r.Close()

	errDone := errors.New("done")
	n := 0
	err = xcnv.ReadEvents(r, opts.cfg.OutputName, 0, nil, func(evt *rawtodigi.Event) error {
		if opts.nevts >= 0 && n >= opts.nevts {
			return errDone
		}
		display(wbuf, evt, opts.sca)
		n++
		return nil
	})
	if err != nil && !errors.Is(err, errDone) {
		return err
	}

	return wbuf.Flush()
}

func display(w io.Writer, evt *rawtodigi.Event, sca int) {
	fmt.Fprintf(w, "=== event %d ===\n", evt.Number)
	for i := range evt.Records {
		rec := &evt.Records[i]
		msb, lsb := rec.GlobalTS()
		fmt.Fprintf(w, "--- chip %d (id=0x%02x) ---\n", i, rec.ChipID())
		fmt.Fprintf(w, "roll mask: 0x%04x\n", rec.RollMask())
		fmt.Fprintf(w, "global TS: msb=0x%04x lsb=0x%04x\n", msb, lsb)
		for ch, id := range rec.DetIDs {
			fmt.Fprintf(w,
				"  ch=%02d det=0x%08x HG=%4d LG=%4d TOA=%4d %4d TOT=%4d %4d\n",
				ch, uint32(id),
				rec.ADCHigh(ch, sca), rec.ADCLow(ch, sca),
				rec.TOARise(ch), rec.TOAFall(ch),
				rec.TOTSlow(ch), rec.TOTFast(ch),
			)
		}
	}
}

type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// browse displays events of a raw data file, selected by their index.
func browse(w io.Writer, p prompter, opts options) error {
	err := opts.cfg.Validate()
	if err != nil {
		return err
	}

	m, err := loadEMap(opts.cfg.ElectronicMap)
	if err != nil {
		return err
	}

	f, err := mmap.Open(strings.TrimPrefix(opts.cfg.Input, "file:"))
	if err != nil {
		return fmt.Errorf("could not open raw data file: %w", err)
	}
	defer f.Close()

	mask, err := skiroc.MaskFrom(opts.cfg.Boards)
	if err != nil {
		return err
	}

	var (
		rdr   = skiroc.NewReader(f, opts.cfg.Words)
		nevts = int64(f.Len()) / rdr.FrameSize()
		words []uint32
		cur   = -1
	)
	fmt.Fprintf(w, "file %q: %d events (n: next, p: previous, <N>: event N, q: quit)\n", opts.cfg.Input, nevts)

	for {
		cmd, err := p.Prompt("evt> ")
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				return nil
			}
			return fmt.Errorf("could not read command: %w", err)
		}
		cmd = strings.TrimSpace(cmd)
		if cmd == "" {
			continue
		}
		p.AppendHistory(cmd)

		switch cmd {
		case "q", "quit", "exit":
			return nil
		case "n", "next":
			cur++
		case "p", "prev":
			cur--
		default:
			v, err := strconv.Atoi(cmd)
			if err != nil {
				fmt.Fprintf(w, "invalid command %q\n", cmd)
				continue
			}
			cur = v
		}

		if cur < 0 || int64(cur) >= nevts {
			fmt.Fprintf(w, "no event %d\n", cur)
			switch {
			case cur < 0:
				cur = -1
			default:
				cur = int(nevts)
			}
			continue
		}

		words, err = rdr.Read(words, cur)
		if err != nil {
			return fmt.Errorf("could not read event %d: %w", cur, err)
		}
		chips, err := skiroc.Demux(words, mask)
		if err != nil {
			return fmt.Errorf("could not decode event %d: %w", cur, err)
		}
		recs, err := rawtodigi.Assemble(chips, m, opts.cfg.Channels)
		if err != nil {
			fmt.Fprintf(w, "invalid event %d: %+v\n", cur, err)
			continue
		}
		display(w, &rawtodigi.Event{Number: cur, Records: recs}, opts.sca)
	}
}
