// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package skiroc

import "fmt"

// Demux reconstructs the samples of every chip selected by mask from the
// words of a frame.
//
// Sample i of the chip on line k is built from words [1+16*i, 1+16*(i+1)):
// bit k of the j-th word is bit 15-j of the sample.
// Chips are returned in ascending line order.
func Demux(words []uint32, mask uint32) ([]Samples, error) {
	if len(words) < MinWords {
		return nil, fmt.Errorf(
			"%w (got=%d words, want>=%d)",
			ErrShortFrame, len(words), MinWords,
		)
	}

	var (
		lines = lines(mask)
		chips = make([]Samples, len(lines))
	)

	for i := 0; i < NumSamples; i++ {
		blk := words[headerWords+i*WordsPerSample : headerWords+(i+1)*WordsPerSample]
		for j, w := range blk {
			shift := uint(WordsPerSample - 1 - j)
			for k, line := range lines {
				chips[k][i] |= uint16((w>>line)&1) << shift
			}
		}
	}

	return chips, nil
}

// Mux is the inverse of Demux: it serializes the samples of the chips
// selected by mask into a frame of nwords words.
// The first word of the frame is set to FrameMarker, the words past the
// last sample are zero.
func Mux(chips []Samples, mask uint32, nwords int) ([]uint32, error) {
	if nwords < MinWords {
		return nil, fmt.Errorf(
			"%w (got=%d words, want>=%d)",
			ErrShortFrame, nwords, MinWords,
		)
	}

	lines := lines(mask)
	if len(chips) != len(lines) {
		return nil, fmt.Errorf(
			"skiroc: invalid number of chips for mask 0x%08x (got=%d, want=%d)",
			mask, len(chips), len(lines),
		)
	}

	words := make([]uint32, nwords)
	words[0] = FrameMarker
	for i := 0; i < NumSamples; i++ {
		blk := words[headerWords+i*WordsPerSample : headerWords+(i+1)*WordsPerSample]
		for j := range blk {
			shift := uint(WordsPerSample - 1 - j)
			for k, line := range lines {
				blk[j] |= uint32((chips[k][i]>>shift)&1) << line
			}
		}
	}

	return words, nil
}
