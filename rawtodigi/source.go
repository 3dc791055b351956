// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rawtodigi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-daq/tdaq/log"
	"github.com/go-lpc/hgcal/internal/mmap"
	"github.com/go-lpc/hgcal/skiroc"
)

// File is a raw data file.
type File interface {
	io.ReaderAt
	io.Closer
}

type state uint8

const (
	stateInit state = iota
	stateReading
	stateExhausted
	stateAborted
)

func (st state) String() string {
	switch st {
	case stateInit:
		return "uninitialized"
	case stateReading:
		return "reading"
	case stateExhausted:
		return "exhausted"
	case stateAborted:
		return "aborted"
	}
	return fmt.Sprintf("state(%d)", uint8(st))
}

// Source is a raw-to-digi session reading events from one raw data file.
//
// The raw data file is opened on the first call to Next.
// Once the end of the file is reached, or the file could not be read,
// Next returns io.EOF. Once a record failed its structural check,
// Next returns that error.
//
// A Source is not safe for concurrent use.
type Source struct {
	cfg  Config
	mask uint32
	emap Lookup
	msg  log.MsgStream
	open func(name string) (File, error)

	state state
	f     File
	rdr   *skiroc.Reader
	evt   int // number of produced events
	words []uint32
	err   error
}

// Option configures a Source.
type Option func(src *Source)

// WithMsgStream sets the message stream a Source logs to.
func WithMsgStream(msg log.MsgStream) Option {
	return func(src *Source) {
		src.msg = msg
	}
}

// WithOpener sets the function used to open the raw data file.
func WithOpener(open func(name string) (File, error)) Option {
	return func(src *Source) {
		src.open = open
	}
}

// NewSource creates a new session from the provided configuration and
// electronics map.
// NewSource validates the configuration but does not open the raw data file.
func NewSource(cfg Config, m Lookup, opts ...Option) (*Source, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	if m == nil {
		return nil, fmt.Errorf("%w: nil electronics map", ErrInvalidConfig)
	}

	mask, err := skiroc.MaskFrom(cfg.Boards)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	src := &Source{
		cfg:  cfg,
		mask: mask,
		emap: m,
		msg:  log.NewMsgStream("rawtodigi", log.LvlInfo, io.Discard),
		open: openFile,
	}
	if cfg.Mmap {
		src.open = openMmap
	}

	for _, opt := range opts {
		opt(src)
	}

	src.msg.Infof("boards=%d mask=0x%08x chips=%d channels=%d words=%d",
		cfg.Boards, mask, skiroc.NumChips(mask), cfg.Channels, cfg.Words,
	)
	if n := cfg.Hexaboards * cfg.ChipsPerHexaboard; n != skiroc.NumChips(mask) {
		src.msg.Warnf(
			"hexaboards layout (%d x %d chips) does not match the %d chips read out",
			cfg.Hexaboards, cfg.ChipsPerHexaboard, skiroc.NumChips(mask),
		)
	}

	return src, nil
}

func openFile(name string) (File, error) {
	return os.Open(name)
}

func openMmap(name string) (File, error) {
	return mmap.Open(name)
}

// Config returns the configuration of the session.
func (src *Source) Config() Config { return src.cfg }

// Mask returns the mask of active serial lines.
func (src *Source) Mask() uint32 { return src.mask }

// Events returns the number of events produced so far.
func (src *Source) Events() int { return src.evt }

// Next reads, decodes and assembles the next event.
func (src *Source) Next(ctx context.Context) (*Event, error) {
	switch src.state {
	case stateExhausted:
		return nil, io.EOF
	case stateAborted:
		return nil, src.err
	}

	err := ctx.Err()
	if err != nil {
		return nil, err
	}

	if src.state == stateInit {
		err = src.openInput()
		if err != nil {
			src.msg.Warnf("could not open raw data file: %+v", err)
			src.state = stateExhausted
			return nil, io.EOF
		}
		src.state = stateReading
	}

	src.words, err = src.rdr.Read(src.words, src.evt)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			src.msg.Warnf("could not read event %d: %+v", src.evt, err)
		}
		src.state = stateExhausted
		return nil, io.EOF
	}

	chips, err := skiroc.Demux(src.words, src.mask)
	if err != nil {
		return nil, src.abort(fmt.Errorf("rawtodigi: could not decode event %d: %w", src.evt, err))
	}

	recs, err := Assemble(chips, src.emap, src.cfg.Channels)
	if err != nil {
		return nil, src.abort(fmt.Errorf("rawtodigi: could not assemble event %d: %w", src.evt, err))
	}

	evt := &Event{Number: src.evt, Records: recs}
	src.evt++

	return evt, nil
}

func (src *Source) openInput() error {
	name := strings.TrimPrefix(src.cfg.Input, "file:")
	f, err := src.open(name)
	if err != nil {
		return fmt.Errorf("rawtodigi: could not open %q: %w", name, err)
	}
	src.f = f
	src.rdr = skiroc.NewReader(f, src.cfg.Words)
	src.msg.Debugf("opened raw data file %q", name)
	return nil
}

func (src *Source) abort(err error) error {
	src.msg.Errorf("%+v", err)
	src.state = stateAborted
	src.err = err
	return err
}

// Close releases the raw data file.
func (src *Source) Close() error {
	if src.state != stateAborted {
		src.state = stateExhausted
	}
	if src.f == nil {
		return nil
	}
	f := src.f
	src.f = nil

	err := f.Close()
	if err != nil {
		return fmt.Errorf("rawtodigi: could not close raw data file: %w", err)
	}
	return nil
}

// Run reads all the events of src and puts them into sink, under the
// configured output name.
// Run returns the number of events put into sink.
// Reaching the end of the raw data file is not an error.
func Run(ctx context.Context, src *Source, sink Sink) (int, error) {
	n := 0
	for {
		evt, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				src.msg.Infof("processed %d events", n)
				return n, nil
			}
			return n, err
		}

		err = sink.Put(src.cfg.OutputName, evt)
		if err != nil {
			return n, fmt.Errorf("rawtodigi: could not put event %d: %w", evt.Number, err)
		}
		n++

		if n%100 == 0 {
			src.msg.Infof("processing evt %d...", n)
		}
	}
}
