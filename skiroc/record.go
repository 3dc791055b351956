// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package skiroc

import (
	"fmt"

	"github.com/go-lpc/hgcal/emap"
)

// Record holds the samples of one chip together with the geometric
// identifier of each of its channels.
// Unmapped channels carry the emap.Unmapped identifier.
type Record struct {
	Samples Samples
	DetIDs  []emap.DetID
}

// Check verifies the structural consistency of a record made for a chip
// with nchans channels.
func (rec *Record) Check(nchans int) error {
	if nchans < 1 || nchans > MaxChannels {
		return fmt.Errorf("%w: invalid number of channels %d", ErrInvalidRecord, nchans)
	}
	if got, want := len(rec.DetIDs), nchans; got != want {
		return fmt.Errorf(
			"%w: invalid number of detector ids (got=%d, want=%d)",
			ErrInvalidRecord, got, want,
		)
	}

	seen := make(map[emap.DetID]int, len(rec.DetIDs))
	for ch, id := range rec.DetIDs {
		if id == emap.Unmapped {
			continue
		}
		if dup, ok := seen[id]; ok {
			return fmt.Errorf(
				"%w: channels %d and %d share detector id 0x%08x",
				ErrInvalidRecord, dup, ch, uint32(id),
			)
		}
		seen[id] = ch
	}

	return nil
}

const (
	maskADC    = 0x0fff
	maskRoll   = 0x1fff
	maskGTSMSB = 0x3fff
	maskGTSLSB = 0x1fff
	maskID     = 0x00ff

	shiftLow  = 0
	shiftHigh = MaxChannels

	scaStride = 2 * MaxChannels
	idxTOA    = scaStride * NumSCA
	idxTOT    = scaStride * (NumSCA + 1)
	idxRoll   = scaStride * (NumSCA + 2)
	idxGTSMSB = idxRoll + 1
	idxGTSLSB = idxRoll + 2
	idxChipID = idxRoll + 3
)

// Channels are stored in reverse order in the data block.
func (rec *Record) field(ch, off int) uint16 {
	return gray(rec.Samples[MaxChannels-1-ch+off] & maskADC)
}

// ADCLow returns the low-gain ADC value of channel ch for the given SCA cell.
func (rec *Record) ADCLow(ch, sca int) uint16 {
	return rec.field(ch, shiftLow+scaStride*sca)
}

// ADCHigh returns the high-gain ADC value of channel ch for the given SCA cell.
func (rec *Record) ADCHigh(ch, sca int) uint16 {
	return rec.field(ch, shiftHigh+scaStride*sca)
}

func (rec *Record) TOAFall(ch int) uint16 { return rec.field(ch, shiftLow+idxTOA) }
func (rec *Record) TOARise(ch int) uint16 { return rec.field(ch, shiftHigh+idxTOA) }
func (rec *Record) TOTFast(ch int) uint16 { return rec.field(ch, shiftLow+idxTOT) }
func (rec *Record) TOTSlow(ch int) uint16 { return rec.field(ch, shiftHigh+idxTOT) }

// RollMask returns the SCA roll-position mask.
func (rec *Record) RollMask() uint16 { return rec.Samples[idxRoll] & maskRoll }

// GlobalTS returns the most and least significant parts of the global
// time stamp of the chip.
func (rec *Record) GlobalTS() (msb, lsb uint16) {
	return rec.Samples[idxGTSMSB] & maskGTSMSB, rec.Samples[idxGTSLSB] & maskGTSLSB
}

// ChipID returns the identifier the chip wrote in its data block.
func (rec *Record) ChipID() uint8 { return uint8(rec.Samples[idxChipID] & maskID) }

// gray converts a gray-coded value to binary.
func gray(v uint16) uint16 {
	for m := v >> 1; m != 0; m >>= 1 {
		v ^= m
	}
	return v
}
