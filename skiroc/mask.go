// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package skiroc

import (
	"fmt"
	"math/bits"
)

// MaxBoards is the maximal number of readout boards.
const MaxBoards = 8

// masks holds the active-lines mask for 1 to 8 readout boards.
// Each board drives 4 chips.
var masks = [MaxBoards]uint32{
	0x0f000000,
	0xff000000,
	0xff0f0000,
	0xffff0000,
	0xffff0f00,
	0xffffff00,
	0xffffff0f,
	0xffffffff,
}

// MaskFrom returns the mask of active serial lines for the given number
// of readout boards.
func MaskFrom(boards int) (uint32, error) {
	if boards < 1 || boards > MaxBoards {
		return 0, fmt.Errorf("%w (got=%d, want=[1, %d])", ErrInvalidBoards, boards, MaxBoards)
	}
	return masks[boards-1], nil
}

// NumChips returns the number of chips read out with the provided mask.
func NumChips(mask uint32) int {
	return bits.OnesCount32(mask)
}

// lines returns the positions of the set bits of mask, in ascending order.
func lines(mask uint32) []uint {
	out := make([]uint, 0, NumChips(mask))
	for mask != 0 {
		out = append(out, uint(bits.TrailingZeros32(mask)))
		mask &= mask - 1
	}
	return out
}
