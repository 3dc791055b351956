// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command hgc-tdaq starts a TDAQ server publishing HGCal raw-to-digi events.
//
// The server replays a raw data file, or generates synthetic noise frames
// when no input file is configured, and publishes every assembled event
// on its "/skiroc" output.
package main // import "github.com/go-lpc/hgcal/cmd/hgc-tdaq"

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"
	"github.com/go-lpc/hgcal/emap"
	"github.com/go-lpc/hgcal/internal/rawsim"
	"github.com/go-lpc/hgcal/rawtodigi"
	"github.com/go-lpc/hgcal/skiroc"
)

func main() {
	cmd := flags.New()

	dev := newDevice(cmd.Args[0])

	srv := tdaq.New(cmd, os.Stdout)
	srv.CmdHandle("/config", dev.OnConfig)
	srv.CmdHandle("/init", dev.OnInit)
	srv.CmdHandle("/reset", dev.OnReset)
	srv.CmdHandle("/start", dev.OnStart)
	srv.CmdHandle("/stop", dev.OnStop)
	srv.CmdHandle("/quit", dev.OnQuit)

	srv.OutputHandle("/skiroc", dev.skiroc)

	srv.RunHandle(dev.run)

	err := srv.Run(context.Background())
	if err != nil {
		log.Panicf("error: %+v", err)
	}
}

type device struct {
	name string
	cfg  rawtodigi.Config
	seed int64
	freq time.Duration // frame period of the generator

	src  *rawtodigi.Source
	gen  *rawsim.Generator
	emap *emap.Map
	evt  int

	n    atomic.Int64 // number of published events
	data chan []byte
}

func newDevice(name string) *device {
	cfg := rawtodigi.Default()
	cfg.Input = ""
	cfg.ElectronicMap = ""
	return &device{
		name: name,
		cfg:  cfg,
		seed: 1234,
		freq: 100 * time.Millisecond,
	}
}

// OnConfig updates the raw-to-digi configuration with the JSON document
// held by the request body, if any.
func (dev *device) OnConfig(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /config command...")
	if len(req.Body) == 0 {
		return nil
	}

	cfg := dev.cfg
	err := json.NewDecoder(bytes.NewReader(req.Body)).Decode(&cfg)
	if err != nil {
		return fmt.Errorf("could not decode configuration: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return err
	}

	dev.cfg = cfg
	return nil
}

func (dev *device) OnInit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /init command...")
	return dev.init(ctx)
}

func (dev *device) OnReset(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /reset command...")
	err := dev.close()
	if err != nil {
		ctx.Msg.Warnf("could not close raw-to-digi session: %+v", err)
	}
	return dev.init(ctx)
}

func (dev *device) init(ctx tdaq.Context) error {
	var err error
	switch dev.cfg.ElectronicMap {
	case "":
		dev.emap = emap.New()
	default:
		dev.emap, err = emap.Load(dev.cfg.ElectronicMap)
		if err != nil {
			return fmt.Errorf("could not load electronics map: %w", err)
		}
	}

	dev.src = nil
	dev.gen = nil
	switch dev.cfg.Input {
	case "":
		dev.gen, err = rawsim.New(dev.seed, dev.cfg.Boards, dev.cfg.Words)
		if err != nil {
			return fmt.Errorf("could not create frame generator: %w", err)
		}
	default:
		dev.src, err = rawtodigi.NewSource(
			dev.cfg, dev.emap, rawtodigi.WithMsgStream(ctx.Msg),
		)
		if err != nil {
			return fmt.Errorf("could not create raw-to-digi session: %w", err)
		}
	}

	dev.data = make(chan []byte, 1024)
	dev.n.Store(0)
	dev.evt = 0
	return nil
}

func (dev *device) OnStart(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /start command...")
	return nil
}

func (dev *device) OnStop(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	n := dev.n.Load()
	ctx.Msg.Debugf("received /stop command... -> n=%d", n)
	return nil
}

func (dev *device) OnQuit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /quit command...")
	return dev.close()
}

func (dev *device) close() error {
	if dev.src == nil {
		return nil
	}
	src := dev.src
	dev.src = nil
	return src.Close()
}

func (dev *device) skiroc(ctx tdaq.Context, dst *tdaq.Frame) error {
	select {
	case <-ctx.Ctx.Done():
		dst.Body = nil
		return nil
	case data := <-dev.data:
		dst.Body = data
	}
	return nil
}

func (dev *device) next(ctx context.Context) (*rawtodigi.Event, error) {
	if dev.src != nil {
		return dev.src.Next(ctx)
	}

	chips, err := skiroc.Demux(dev.gen.Next(), dev.gen.Mask())
	if err != nil {
		return nil, err
	}
	recs, err := rawtodigi.Assemble(chips, dev.emap, dev.cfg.Channels)
	if err != nil {
		return nil, err
	}
	evt := &rawtodigi.Event{Number: dev.evt, Records: recs}
	dev.evt++
	return evt, nil
}

func (dev *device) run(ctx tdaq.Context) error {
	var (
		buf = new(bytes.Buffer)
		enc = rawtodigi.NewEncoder(buf)
	)

	tick := time.NewTicker(dev.freq)
	defer tick.Stop()

	for {
		if dev.gen != nil {
			select {
			case <-ctx.Ctx.Done():
				return nil
			case <-tick.C:
			}
		}

		evt, err := dev.next(ctx.Ctx)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			ctx.Msg.Infof("raw data file exhausted after %d events", dev.n.Load())
			<-ctx.Ctx.Done()
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil
		default:
			return fmt.Errorf("could not read event %d: %w", dev.n.Load(), err)
		}

		buf.Reset()
		err = enc.Encode(evt)
		if err != nil {
			return fmt.Errorf("could not encode event %d: %w", evt.Number, err)
		}
		raw := make([]byte, buf.Len())
		copy(raw, buf.Bytes())

		select {
		case <-ctx.Ctx.Done():
			return nil
		case dev.data <- raw:
			dev.n.Add(1)
		}
	}
}
