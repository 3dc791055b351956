// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package emap describes the mapping between the electronics identifier
// of a readout channel and its geometric identifier in the detector.
package emap // import "github.com/go-lpc/hgcal/emap"

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/exp/maps"
)

var (
	// ErrLoad is returned when an electronics map could not be loaded.
	ErrLoad = errors.New("emap: could not load electronics map")
)

const (
	chanBits = 6
	chanMask = 1<<chanBits - 1
	chipBits = 10
	chipMask = 1<<chipBits - 1
)

const (
	MaxChips    = 1 << chipBits // number of addressable chips
	MaxChannels = 1 << chanBits // number of addressable channels per chip
)

// ElecID identifies a readout channel by its chip index within an event
// and its channel index within the chip.
type ElecID uint32

// NewElecID returns the electronics identifier of channel ch of chip.
// Out of range indices are truncated; see ElecIDFrom.
func NewElecID(chip, ch int) ElecID {
	return ElecID(uint32(chip&chipMask)<<chanBits | uint32(ch&chanMask))
}

// ElecIDFrom returns the electronics identifier of channel ch of chip.
// ElecIDFrom returns an error if chip is outside [0, MaxChips) or ch outside
// [0, MaxChannels).
func ElecIDFrom(chip, ch int) (ElecID, error) {
	switch {
	case chip < 0 || chip >= MaxChips:
		return 0, fmt.Errorf("emap: chip value %d out of range [0, %d)", chip, MaxChips)
	case ch < 0 || ch >= MaxChannels:
		return 0, fmt.Errorf("emap: channel value %d out of range [0, %d)", ch, MaxChannels)
	}
	return NewElecID(chip, ch), nil
}

func (id ElecID) Chip() int    { return int(uint32(id)>>chanBits) & chipMask }
func (id ElecID) Channel() int { return int(uint32(id) & chanMask) }

func (id ElecID) String() string {
	return fmt.Sprintf("ElecID{chip=%d, chan=%d}", id.Chip(), id.Channel())
}

// Entry is one line of an electronics map.
type Entry struct {
	ElecID ElecID
	DetID  DetID
}

// Map is an in-memory electronics map.
// A Map is not safe for concurrent writes; it is safe for concurrent
// reads once loaded.
type Map struct {
	ids map[ElecID]DetID
}

// New returns a new empty electronics map.
func New() *Map {
	return &Map{ids: make(map[ElecID]DetID)}
}

// Add registers the detector id of the channel eid.
func (m *Map) Add(eid ElecID, did DetID) error {
	if did == Unmapped {
		return fmt.Errorf("emap: invalid null detector id for %v", eid)
	}
	if old, dup := m.ids[eid]; dup {
		return fmt.Errorf(
			"emap: duplicate entry for %v (old=%v, new=%v)",
			eid, old, did,
		)
	}
	m.ids[eid] = did
	return nil
}

// Exists returns whether eid has an entry in the map.
func (m *Map) Exists(eid ElecID) bool {
	_, ok := m.ids[eid]
	return ok
}

// Resolve returns the detector id of eid, or Unmapped.
func (m *Map) Resolve(eid ElecID) DetID {
	return m.ids[eid]
}

// Len returns the number of entries in the map.
func (m *Map) Len() int { return len(m.ids) }

// Entries returns all the entries of the map, sorted by electronics id.
func (m *Map) Entries() []Entry {
	keys := maps.Keys(m.ids)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]Entry, len(keys))
	for i, k := range keys {
		out[i] = Entry{ElecID: k, DetID: m.ids[k]}
	}
	return out
}
