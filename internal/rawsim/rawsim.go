// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rawsim generates synthetic SKIROC2-CMS readout frames.
package rawsim // import "github.com/go-lpc/hgcal/internal/rawsim"

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-lpc/hgcal/skiroc"
)

const (
	adcMask = 0xfff
	idxID   = skiroc.NumSamples - 1
)

// Generator generates frames with gray-coded gaussian noise around a
// pedestal for every data sample of every active chip.
type Generator struct {
	Pedestal float64
	Noise    float64

	rnd    *rand.Rand
	mask   uint32
	nwords int
	chips  []skiroc.Samples
	words  []uint32
}

// New returns a generator of frames of nwords words for the provided
// number of readout boards.
func New(seed int64, boards, nwords int) (*Generator, error) {
	mask, err := skiroc.MaskFrom(boards)
	if err != nil {
		return nil, fmt.Errorf("rawsim: %w", err)
	}
	if nwords < skiroc.MinWords {
		return nil, fmt.Errorf("rawsim: %w (words=%d)", skiroc.ErrShortFrame, nwords)
	}
	return &Generator{
		Pedestal: 200,
		Noise:    5,
		rnd:      rand.New(rand.NewSource(seed)),
		mask:     mask,
		nwords:   nwords,
		chips:    make([]skiroc.Samples, skiroc.NumChips(mask)),
	}, nil
}

// Mask returns the mask of active serial lines.
func (gen *Generator) Mask() uint32 { return gen.mask }

// Chips returns the chip samples of the last generated frame.
func (gen *Generator) Chips() []skiroc.Samples { return gen.chips }

// Next generates the next frame.
// The returned slice is reused by subsequent calls.
func (gen *Generator) Next() []uint32 {
	for k := range gen.chips {
		chip := &gen.chips[k]
		for i := 0; i < idxID; i++ {
			v := gen.Pedestal + gen.Noise*gen.rnd.NormFloat64()
			switch {
			case v < 0:
				v = 0
			case v > adcMask:
				v = adcMask
			}
			chip[i] = gray(uint16(math.Round(v)))
		}
		chip[idxID] = uint16(k)
	}

	var err error
	gen.words, err = skiroc.Mux(gen.chips, gen.mask, gen.nwords)
	if err != nil {
		panic(err)
	}
	return gen.words
}

// gray converts a binary value to its gray code.
func gray(v uint16) uint16 { return v ^ (v >> 1) }
