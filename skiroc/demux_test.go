// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package skiroc

import (
	"errors"
	"math/rand"
	"testing"
)

func TestDemuxZero(t *testing.T) {
	mask, err := MaskFrom(1)
	if err != nil {
		t.Fatal(err)
	}

	words := make([]uint32, DefaultWords)
	words[0] = FrameMarker

	chips, err := Demux(words, mask)
	if err != nil {
		t.Fatalf("could not demux frame: %+v", err)
	}

	if got, want := len(chips), 4; got != want {
		t.Fatalf("invalid number of chips: got=%d, want=%d", got, want)
	}

	var zero Samples
	for i, chip := range chips {
		if chip != zero {
			t.Fatalf("chip %d has non-zero samples", i)
		}
	}
}

func TestDemuxSingleBit(t *testing.T) {
	mask, err := MaskFrom(8)
	if err != nil {
		t.Fatal(err)
	}

	const (
		isample = 5
		iword   = 3
	)
	words := make([]uint32, DefaultWords)
	words[headerWords+isample*WordsPerSample+iword] = 0x00000001

	chips, err := Demux(words, mask)
	if err != nil {
		t.Fatalf("could not demux frame: %+v", err)
	}

	if got, want := len(chips), 32; got != want {
		t.Fatalf("invalid number of chips: got=%d, want=%d", got, want)
	}

	if got, want := chips[0][isample], uint16(1<<(15-iword)); got != want {
		t.Fatalf("invalid sample: got=0x%04x, want=0x%04x", got, want)
	}

	for k, chip := range chips {
		for i, v := range chip {
			if k == 0 && i == isample {
				continue
			}
			if v != 0 {
				t.Fatalf("chip=%d, sample=%d: got=0x%04x, want=0", k, i, v)
			}
		}
	}
}

func TestDemuxBitOrder(t *testing.T) {
	// line 27 is the 4th (and last) chip of a single board.
	const mask = 0x0f000000

	words := make([]uint32, MinWords)
	// sample 0 of chip 3: 0b1000_0000_0000_0001
	words[headerWords+0] = 1 << 27
	words[headerWords+15] = 1 << 27
	// sample NumSamples-1 of chip 0: 0b0100_0000_0000_0000
	words[headerWords+(NumSamples-1)*WordsPerSample+1] = 1 << 24
	// lines outside the mask are ignored.
	words[headerWords+2] = 0x00ffffff

	chips, err := Demux(words, mask)
	if err != nil {
		t.Fatalf("could not demux frame: %+v", err)
	}

	if got, want := chips[3][0], uint16(0x8001); got != want {
		t.Fatalf("invalid first sample: got=0x%04x, want=0x%04x", got, want)
	}
	if got, want := chips[0][NumSamples-1], uint16(0x4000); got != want {
		t.Fatalf("invalid last sample: got=0x%04x, want=0x%04x", got, want)
	}
	for _, k := range []int{1, 2} {
		var zero Samples
		if chips[k] != zero {
			t.Fatalf("chip %d has non-zero samples", k)
		}
	}
}

func TestDemuxShortFrame(t *testing.T) {
	_, err := Demux(make([]uint32, MinWords-1), 0xffffffff)
	if !errors.Is(err, ErrShortFrame) {
		t.Fatalf("invalid error: got=%v, want=%v", err, ErrShortFrame)
	}

	_, err = Mux(nil, 0, MinWords-1)
	if !errors.Is(err, ErrShortFrame) {
		t.Fatalf("invalid error: got=%v, want=%v", err, ErrShortFrame)
	}
}

func TestMuxInvalidChips(t *testing.T) {
	_, err := Mux(make([]Samples, 3), 0x0f000000, MinWords)
	if err == nil {
		t.Fatalf("expected an error")
	}
}

func TestRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(1234))
	for boards := 1; boards <= MaxBoards; boards++ {
		mask, err := MaskFrom(boards)
		if err != nil {
			t.Fatal(err)
		}

		want := make([]Samples, NumChips(mask))
		for k := range want {
			for i := range want[k] {
				want[k][i] = uint16(rnd.Intn(1 << 16))
			}
		}

		words, err := Mux(want, mask, DefaultWords)
		if err != nil {
			t.Fatalf("boards=%d: could not mux chips: %+v", boards, err)
		}
		if got, want := words[0], uint32(FrameMarker); got != want {
			t.Fatalf("boards=%d: invalid frame marker: got=0x%x, want=0x%x", boards, got, want)
		}
		for i, w := range words[MinWords:] {
			if w != 0 {
				t.Fatalf("boards=%d: invalid padding word %d: 0x%x", boards, MinWords+i, w)
			}
		}
		for i, w := range words[headerWords:MinWords] {
			if w&^mask != 0 {
				t.Fatalf("boards=%d: word %d has bits outside mask: 0x%08x", boards, i, w)
			}
		}

		got, err := Demux(words, mask)
		if err != nil {
			t.Fatalf("boards=%d: could not demux frame: %+v", boards, err)
		}

		if len(got) != len(want) {
			t.Fatalf("boards=%d: invalid number of chips: got=%d, want=%d", boards, len(got), len(want))
		}
		for k := range got {
			if got[k] != want[k] {
				t.Fatalf("boards=%d: chip %d: round-trip failed", boards, k)
			}
		}
	}
}

func BenchmarkDemux(b *testing.B) {
	words := make([]uint32, DefaultWords)
	rnd := rand.New(rand.NewSource(1234))
	for i := range words {
		words[i] = rnd.Uint32()
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := Demux(words, 0xffffffff)
		if err != nil {
			b.Fatal(err)
		}
	}
}
