// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-daq/tdaq"
	tlog "github.com/go-daq/tdaq/log"
	"github.com/go-lpc/hgcal/internal/rawsim"
	"github.com/go-lpc/hgcal/rawtodigi"
	"github.com/go-lpc/hgcal/skiroc"
)

func newContext(ctx context.Context) tdaq.Context {
	return tdaq.Context{
		Ctx: ctx,
		Msg: tlog.NewMsgStream("hgc-tdaq", tlog.LvlDebug, io.Discard),
	}
}

func TestConfig(t *testing.T) {
	dev := newDevice("test")
	ctx := newContext(context.Background())

	for _, tc := range []struct {
		body string
		err  error
	}{
		{body: ""},
		{body: `{"boards": 2, "channels": 32}`},
		{body: `{"boards": 9}`, err: rawtodigi.ErrInvalidConfig},
		{body: `{"boards": "x"}`, err: errors.New("could not decode configuration")},
	} {
		t.Run(tc.body, func(t *testing.T) {
			err := dev.OnConfig(ctx, nil, tdaq.Frame{Body: []byte(tc.body)})
			switch {
			case tc.err == nil && err != nil:
				t.Fatalf("could not configure device: %+v", err)
			case tc.err != nil && err == nil:
				t.Fatalf("expected an error")
			}
		})
	}

	if got, want := dev.cfg.Boards, 2; got != want {
		t.Fatalf("invalid boards: got=%d, want=%d", got, want)
	}
	if got, want := dev.cfg.Channels, 32; got != want {
		t.Fatalf("invalid channels: got=%d, want=%d", got, want)
	}
}

func collect(t *testing.T, dev *device, n int) []rawtodigi.Event {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	tctx := newContext(ctx)

	errc := make(chan error, 1)
	go func() {
		errc <- dev.run(tctx)
	}()

	var evts []rawtodigi.Event
	for i := 0; i < n; i++ {
		var frame tdaq.Frame
		err := dev.skiroc(tctx, &frame)
		if err != nil {
			t.Fatalf("could not get frame %d: %+v", i, err)
		}

		var evt rawtodigi.Event
		err = rawtodigi.NewDecoder(bytes.NewReader(frame.Body)).Decode(&evt)
		if err != nil {
			t.Fatalf("could not decode frame %d: %+v", i, err)
		}
		evts = append(evts, evt)
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("could not run device: %+v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timeout waiting for run loop to stop")
	}

	return evts
}

func TestGenerator(t *testing.T) {
	dev := newDevice("test")
	dev.freq = time.Millisecond
	ctx := newContext(context.Background())

	err := dev.OnConfig(ctx, nil, tdaq.Frame{Body: []byte(`{"boards": 2}`)})
	if err != nil {
		t.Fatalf("could not configure device: %+v", err)
	}

	err = dev.OnInit(ctx, nil, tdaq.Frame{})
	if err != nil {
		t.Fatalf("could not init device: %+v", err)
	}

	evts := collect(t, dev, 3)
	for i, evt := range evts {
		if got, want := evt.Number, i; got != want {
			t.Fatalf("invalid event number: got=%d, want=%d", got, want)
		}
		if got, want := len(evt.Records), 8; got != want {
			t.Fatalf("invalid number of records: got=%d, want=%d", got, want)
		}
	}

	err = dev.OnStop(ctx, nil, tdaq.Frame{})
	if err != nil {
		t.Fatalf("could not stop device: %+v", err)
	}

	err = dev.OnQuit(ctx, nil, tdaq.Frame{})
	if err != nil {
		t.Fatalf("could not quit device: %+v", err)
	}
}

func TestReplay(t *testing.T) {
	const nevts = 4
	fname := filepath.Join(t.TempDir(), "HexaData_Run0001.raw")
	{
		gen, err := rawsim.New(42, 1, skiroc.DefaultWords)
		if err != nil {
			t.Fatalf("could not create generator: %+v", err)
		}
		f, err := os.Create(fname)
		if err != nil {
			t.Fatalf("could not create raw file: %+v", err)
		}
		defer f.Close()
		w := skiroc.NewWriter(f, skiroc.DefaultWords)
		for i := 0; i < nevts; i++ {
			err = w.Write(gen.Next())
			if err != nil {
				t.Fatalf("could not write event %d: %+v", i, err)
			}
		}
		err = f.Close()
		if err != nil {
			t.Fatalf("could not close raw file: %+v", err)
		}
	}

	dev := newDevice("test")
	ctx := newContext(context.Background())

	err := dev.OnConfig(ctx, nil, tdaq.Frame{Body: []byte(fmt.Sprintf(`{"input": %q}`, fname))})
	if err != nil {
		t.Fatalf("could not configure device: %+v", err)
	}

	for _, cmd := range []func(tdaq.Context, *tdaq.Frame, tdaq.Frame) error{
		dev.OnInit, dev.OnReset, dev.OnStart,
	} {
		err = cmd(ctx, nil, tdaq.Frame{})
		if err != nil {
			t.Fatalf("could not run command: %+v", err)
		}
	}

	evts := collect(t, dev, nevts)
	for i, evt := range evts {
		if got, want := evt.Number, i; got != want {
			t.Fatalf("invalid event number: got=%d, want=%d", got, want)
		}
		if got, want := len(evt.Records), 4; got != want {
			t.Fatalf("invalid number of records: got=%d, want=%d", got, want)
		}
	}

	if got, want := dev.n.Load(), int64(nevts); got != want {
		t.Fatalf("invalid number of published events: got=%d, want=%d", got, want)
	}

	err = dev.OnQuit(ctx, nil, tdaq.Frame{})
	if err != nil {
		t.Fatalf("could not quit device: %+v", err)
	}
}

func TestStopWhileRunning(t *testing.T) {
	dev := newDevice("test")
	dev.freq = time.Millisecond
	ctx := newContext(context.Background())

	err := dev.OnInit(ctx, nil, tdaq.Frame{})
	if err != nil {
		t.Fatalf("could not init device: %+v", err)
	}

	rctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		errc <- dev.run(newContext(rctx))
	}()

	for i := 0; i < 3; i++ {
		var frame tdaq.Frame
		err := dev.skiroc(ctx, &frame)
		if err != nil {
			t.Fatalf("could not get frame %d: %+v", i, err)
		}
		err = dev.OnStop(ctx, nil, tdaq.Frame{})
		if err != nil {
			t.Fatalf("could not stop device: %+v", err)
		}
	}

	cancel()
	err = <-errc
	if err != nil {
		t.Fatalf("could not run device: %+v", err)
	}

	if got := dev.n.Load(); got < 3 {
		t.Fatalf("invalid number of published events: got=%d, want>=3", got)
	}
}

func TestInitEMap(t *testing.T) {
	dev := newDevice("test")
	dev.cfg.ElectronicMap = "../../emap/testdata/map.txt"

	err := dev.OnInit(newContext(context.Background()), nil, tdaq.Frame{})
	if err != nil {
		t.Fatalf("could not init device: %+v", err)
	}
	if got, want := dev.emap.Len(), 4; got != want {
		t.Fatalf("invalid electronics map size: got=%d, want=%d", got, want)
	}
}

func TestInitInvalidEMap(t *testing.T) {
	dev := newDevice("test")
	dev.cfg.ElectronicMap = "not-there.txt"

	err := dev.OnInit(newContext(context.Background()), nil, tdaq.Frame{})
	if err == nil {
		t.Fatalf("expected an error")
	}
}
