// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rawtodigi turns raw SKIROC2-CMS readout frames into chip
// records annotated with detector identifiers.
//
// A Source reads one frame per event from a raw data file, demultiplexes
// the samples of every active chip, maps each channel to its detector
// identifier and checks the resulting records.
// Run drives a Source until the end of the raw data file and hands every
// event to a Sink.
package rawtodigi // import "github.com/go-lpc/hgcal/rawtodigi"

import (
	"errors"

	"github.com/go-lpc/hgcal/emap"
	"github.com/go-lpc/hgcal/skiroc"
)

var (
	// ErrInvalidConfig is returned for invalid session configurations.
	ErrInvalidConfig = errors.New("rawtodigi: invalid configuration")

	// ErrInvalidRecord is returned when an assembled chip record fails
	// its structural check. It aborts the session.
	ErrInvalidRecord = skiroc.ErrInvalidRecord
)

// Lookup resolves electronics identifiers into detector identifiers.
type Lookup interface {
	Exists(eid emap.ElecID) bool
	Resolve(eid emap.ElecID) emap.DetID
}

// Event is the set of chip records of one readout, in ascending
// serial line order.
type Event struct {
	Number  int
	Records []skiroc.Record
}

// Sink consumes events.
type Sink interface {
	Put(name string, evt *Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(name string, evt *Event) error

func (f SinkFunc) Put(name string, evt *Event) error { return f(name, evt) }
