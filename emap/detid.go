// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emap

import "fmt"

// DetID is the geometric identifier of a detector cell.
//
// Layout (bit 31 first):
//
//	[31]    valid flag, always set
//	[27:30] cell type
//	[20:26] layer
//	[16:19] sensor u (signed)
//	[12:15] sensor v (signed)
//	[6:11]  cell u (signed)
//	[0:5]   cell v (signed)
type DetID uint32

// Unmapped is the detector id of channels with no entry in an
// electronics map.
const Unmapped DetID = 0

type field struct {
	shift, bits uint
	signed      bool
}

var (
	fCellV  = field{0, 6, true}
	fCellU  = field{6, 6, true}
	fSensV  = field{12, 4, true}
	fSensU  = field{16, 4, true}
	fLayer  = field{20, 7, false}
	fType   = field{27, 4, false}
	validID = DetID(1 << 31)
)

func (f field) rng() (lo, hi int) {
	if f.signed {
		return -(1 << (f.bits - 1)), 1<<(f.bits-1) - 1
	}
	return 0, 1<<f.bits - 1
}

func (f field) put(v int) uint32 {
	return (uint32(v) & (1<<f.bits - 1)) << f.shift
}

func (f field) get(id DetID) int {
	v := int(uint32(id)>>f.shift) & (1<<f.bits - 1)
	if f.signed && v >= 1<<(f.bits-1) {
		v -= 1 << f.bits
	}
	return v
}

// NewDetID returns the detector id of a cell.
func NewDetID(layer, sensorU, sensorV, cellU, cellV, cellType int) (DetID, error) {
	id := validID
	for _, v := range []struct {
		name string
		f    field
		v    int
	}{
		{"layer", fLayer, layer},
		{"sensor-u", fSensU, sensorU},
		{"sensor-v", fSensV, sensorV},
		{"cell-u", fCellU, cellU},
		{"cell-v", fCellV, cellV},
		{"cell-type", fType, cellType},
	} {
		lo, hi := v.f.rng()
		if v.v < lo || v.v > hi {
			return Unmapped, fmt.Errorf(
				"emap: %s value %d out of range [%d, %d]",
				v.name, v.v, lo, hi,
			)
		}
		id |= DetID(v.f.put(v.v))
	}
	return id, nil
}

func (id DetID) Layer() int    { return fLayer.get(id) }
func (id DetID) SensorU() int  { return fSensU.get(id) }
func (id DetID) SensorV() int  { return fSensV.get(id) }
func (id DetID) CellU() int    { return fCellU.get(id) }
func (id DetID) CellV() int    { return fCellV.get(id) }
func (id DetID) CellType() int { return fType.get(id) }

func (id DetID) String() string {
	if id == Unmapped {
		return "DetID{unmapped}"
	}
	return fmt.Sprintf(
		"DetID{layer=%d, sensor=(%d,%d), cell=(%d,%d), type=%d}",
		id.Layer(), id.SensorU(), id.SensorV(),
		id.CellU(), id.CellV(), id.CellType(),
	)
}
