// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rawsim

import (
	"errors"
	"math"
	"testing"

	"github.com/go-lpc/hgcal/emap"
	"github.com/go-lpc/hgcal/skiroc"
)

func TestGenerator(t *testing.T) {
	gen, err := New(1234, 2, skiroc.DefaultWords)
	if err != nil {
		t.Fatalf("could not create generator: %+v", err)
	}
	gen.Noise = 0

	words := gen.Next()
	if got, want := len(words), skiroc.DefaultWords; got != want {
		t.Fatalf("invalid frame size: got=%d, want=%d", got, want)
	}

	chips, err := skiroc.Demux(words, gen.Mask())
	if err != nil {
		t.Fatalf("could not demux frame: %+v", err)
	}
	if got, want := len(chips), 8; got != want {
		t.Fatalf("invalid number of chips: got=%d, want=%d", got, want)
	}

	for k := range chips {
		if chips[k] != gen.Chips()[k] {
			t.Fatalf("chip %d: demux/generator mismatch", k)
		}
		rec := skiroc.Record{Samples: chips[k], DetIDs: make([]emap.DetID, skiroc.MaxChannels)}
		if got, want := rec.ChipID(), uint8(k); got != want {
			t.Fatalf("invalid chip id: got=%d, want=%d", got, want)
		}
		for ch := 0; ch < skiroc.MaxChannels; ch++ {
			if got, want := rec.ADCHigh(ch, 3), uint16(200); got != want {
				t.Fatalf("chip %d, ch %d: invalid HG ADC: got=%d, want=%d", k, ch, got, want)
			}
		}
	}
}

func TestGeneratorNoise(t *testing.T) {
	gen, err := New(42, 1, skiroc.MinWords)
	if err != nil {
		t.Fatalf("could not create generator: %+v", err)
	}

	var (
		sum float64
		n   float64
	)
	for i := 0; i < 10; i++ {
		_ = gen.Next()
		for _, chip := range gen.Chips() {
			rec := skiroc.Record{Samples: chip}
			for ch := 0; ch < skiroc.MaxChannels; ch++ {
				sum += float64(rec.ADCLow(ch, 0))
				n++
			}
		}
	}

	if mean := sum / n; math.Abs(mean-gen.Pedestal) > 1 {
		t.Fatalf("invalid mean ADC: got=%v, want=%v", mean, gen.Pedestal)
	}
}

func TestNewInvalid(t *testing.T) {
	_, err := New(1, 9, skiroc.DefaultWords)
	if !errors.Is(err, skiroc.ErrInvalidBoards) {
		t.Fatalf("invalid error: got=%v, want=%v", err, skiroc.ErrInvalidBoards)
	}

	_, err = New(1, 1, skiroc.MinWords-1)
	if !errors.Is(err, skiroc.ErrShortFrame) {
		t.Fatalf("invalid error: got=%v, want=%v", err, skiroc.ErrShortFrame)
	}
}
