// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command hgc-rawsim generates HGCal raw data files with synthetic
// noise frames.
package main // import "github.com/go-lpc/hgcal/cmd/hgc-rawsim"

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-lpc/hgcal/internal/rawsim"
	"github.com/go-lpc/hgcal/skiroc"
)

var (
	msg = log.New(os.Stdout, "hgc-rawsim: ", 0)
)

func main() {
	log.SetPrefix("hgc-rawsim: ")
	log.SetFlags(0)

	err := xmain(os.Args[1:])
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func xmain(args []string) error {
	var (
		fset   = flag.NewFlagSet("hgc-rawsim", flag.ContinueOnError)
		oname  = fset.String("o", "HexaData_Run0000.raw", "path to output raw data file")
		boards = fset.Int("boards", 1, "number of readout boards")
		words  = fset.Int("words", skiroc.DefaultWords, "number of 32-bit words per frame")
		nevts  = fset.Int("n", 100, "number of events to generate")
		seed   = fset.Int64("seed", 1234, "seed for the random number generator")
		ped    = fset.Float64("ped", 200, "pedestal of the generated ADC values")
		noise  = fset.Float64("noise", 5, "noise of the generated ADC values")
	)

	fset.Usage = func() {
		fmt.Printf(`Usage: hgc-rawsim [OPTIONS]

ex:
 $> hgc-rawsim -o HexaData_Run0001.raw -boards=2 -n=1000

options:
`)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		return err
	}

	if *nevts < 0 {
		return fmt.Errorf("invalid number of events %d", *nevts)
	}

	gen, err := rawsim.New(*seed, *boards, *words)
	if err != nil {
		return fmt.Errorf("could not create frame generator: %w", err)
	}
	gen.Pedestal = *ped
	gen.Noise = *noise

	return process(*oname, gen, *words, *nevts)
}

func process(oname string, gen *rawsim.Generator, nwords, nevts int) error {
	f, err := os.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create output raw data file: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	w := skiroc.NewWriter(bw, nwords)
	for i := 0; i < nevts; i++ {
		if i%100 == 0 {
			msg.Printf("generating evt %d...", i)
		}
		err = w.Write(gen.Next())
		if err != nil {
			return fmt.Errorf("could not write event %d: %w", i, err)
		}
	}

	err = bw.Flush()
	if err != nil {
		return fmt.Errorf("could not flush output raw data file: %w", err)
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("could not close output raw data file: %w", err)
	}

	msg.Printf("generated %d events (mask=0x%08x) into %q", nevts, gen.Mask(), oname)
	return nil
}
