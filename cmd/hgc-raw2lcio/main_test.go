// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/go-lpc/hgcal/emap"
	"github.com/go-lpc/hgcal/internal/xcnv"
	"github.com/go-lpc/hgcal/rawtodigi"
	"github.com/go-lpc/hgcal/skiroc"
	"go-hep.org/x/hep/lcio"
)

func TestRunNbrFrom(t *testing.T) {
	for _, tc := range []struct {
		fname string
		run   int32
	}{
		{
			fname: "./HexaData_Run0063.raw",
			run:   63,
		},
		{
			fname: "/some/dir/HexaData_Run1234.raw",
			run:   1234,
		},
		{
			fname: "HexaData_Run9.raw",
			run:   9,
		},
	} {
		t.Run(tc.fname, func(t *testing.T) {
			got, err := runNbrFrom(tc.fname)
			if err != nil {
				t.Fatalf("could not infer run-nbr: %+v", err)
			}
			if got != tc.run {
				t.Fatalf("invalid run: got=%d, want=%d", got, tc.run)
			}
		})
	}
}

func genRaw(t *testing.T, fname string, boards, nevts int) {
	t.Helper()

	mask, err := skiroc.MaskFrom(boards)
	if err != nil {
		t.Fatalf("could not create mask: %+v", err)
	}

	f, err := os.Create(fname)
	if err != nil {
		t.Fatalf("could not create raw file: %+v", err)
	}
	defer f.Close()

	w := skiroc.NewWriter(f, skiroc.DefaultWords)
	for i := 0; i < nevts; i++ {
		chips := make([]skiroc.Samples, skiroc.NumChips(mask))
		for k := range chips {
			chips[k][0] = uint16(i)
			chips[k][skiroc.NumSamples-1] = uint16(k)
		}
		words, err := skiroc.Mux(chips, mask, skiroc.DefaultWords)
		if err != nil {
			t.Fatalf("could not mux event %d: %+v", i, err)
		}
		err = w.Write(words)
		if err != nil {
			t.Fatalf("could not write event %d: %+v", i, err)
		}
	}

	err = f.Close()
	if err != nil {
		t.Fatalf("could not close raw file: %+v", err)
	}
}

func TestConvert(t *testing.T) {
	tmp := t.TempDir()
	const nevts = 5

	var fnames []string
	for _, run := range []int{1, 2} {
		fname := filepath.Join(tmp, "HexaData_Run000"+strconv.Itoa(run)+".raw")
		genRaw(t, fname, 2, nevts)
		fnames = append(fnames, fname)
	}

	odir := filepath.Join(tmp, "out")
	err := xmain([]string{
		"-o", odir, "-boards=2", "-emap", "../../emap/testdata/map.txt",
		"file:" + fnames[0], fnames[1],
	})
	if err != nil {
		t.Fatalf("could not convert raw files: %+v", err)
	}

	m, err := emap.Load("../../emap/testdata/map.txt")
	if err != nil {
		t.Fatalf("could not load electronics map: %+v", err)
	}

	for _, name := range []string{"HexaData_Run0001.lcio", "HexaData_Run0002.lcio"} {
		t.Run(name, func(t *testing.T) {
			r, err := lcio.Open(filepath.Join(odir, name))
			if err != nil {
				t.Fatalf("could not open LCIO file: %+v", err)
			}
			defer r.Close()

			n := 0
			err = xcnv.ReadEvents(r, "SKIROC2CMSDATA", 0, msg, func(evt *rawtodigi.Event) error {
				if got, want := evt.Number, n; got != want {
					t.Fatalf("invalid event number: got=%d, want=%d", got, want)
				}
				if got, want := len(evt.Records), 8; got != want {
					t.Fatalf("invalid number of records: got=%d, want=%d", got, want)
				}
				for k, rec := range evt.Records {
					if got, want := rec.Samples[0], uint16(n); got != want {
						t.Fatalf("evt=%d, chip=%d: invalid first sample: got=%d, want=%d", n, k, got, want)
					}
					if got, want := rec.ChipID(), uint8(k); got != want {
						t.Fatalf("evt=%d, chip=%d: invalid chip id: got=%d, want=%d", n, k, got, want)
					}
				}
				if got, want := evt.Records[3].DetIDs[63], m.Resolve(emap.NewElecID(3, 63)); got != want {
					t.Fatalf("invalid det-id: got=%v, want=%v", got, want)
				}
				n++
				return nil
			})
			if err != nil {
				t.Fatalf("could not read LCIO file: %+v", err)
			}
			if n != nevts {
				t.Fatalf("invalid number of events: got=%d, want=%d", n, nevts)
			}
		})
	}
}

func cfgFile(t *testing.T, dir, data string) string {
	t.Helper()
	fname := filepath.Join(dir, "cfg.json")
	err := os.WriteFile(fname, []byte(data), 0644)
	if err != nil {
		t.Fatalf("could not create configuration file: %+v", err)
	}
	return fname
}

func TestInvalidConfig(t *testing.T) {
	tmp := t.TempDir()
	fname := filepath.Join(tmp, "HexaData_Run0001.raw")
	genRaw(t, fname, 1, 1)

	for _, tc := range []struct {
		name string
		args []string
	}{
		{
			name: "valid-emap",
			args: []string{"-o", tmp, "-boards=9", "-emap", "../../emap/testdata/map.txt", fname},
		},
		{
			name: "missing-emap",
			args: []string{"-o", tmp, "-boards=9", "-emap", "not-there.txt", fname},
		},
		{
			name: "conddb",
			args: []string{"-o", tmp, "-boards=9", "-db", "not-there", "-run=1", fname},
		},
		{
			name: "no-channels",
			args: []string{"-o", tmp, "-cfg", cfgFile(t, tmp, `{"channels": 0}`), "-emap", "not-there.txt", fname},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := xmain(tc.args)
			if !errors.Is(err, rawtodigi.ErrInvalidConfig) {
				t.Fatalf("invalid error: got=%v, want=%v", err, rawtodigi.ErrInvalidConfig)
			}
		})
	}

	_, err := os.Stat(filepath.Join(tmp, "HexaData_Run0001.lcio"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("unexpected output file: %+v", err)
	}
}

func TestMissingInput(t *testing.T) {
	err := xmain([]string{"-version"})
	if err != nil {
		t.Fatalf("could not display version: %+v", err)
	}

	err = xmain([]string{"-emap", "../../emap/testdata/map.txt"})
	if err == nil {
		t.Fatalf("expected an error")
	}

	err = xmain([]string{"-emap", "not-there.txt", "HexaData_Run0001.raw"})
	if !errors.Is(err, emap.ErrLoad) {
		t.Fatalf("invalid error: got=%v, want=%v", err, emap.ErrLoad)
	}
}
