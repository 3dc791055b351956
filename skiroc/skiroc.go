// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package skiroc holds functions to decode raw data from the SKIROC2-CMS
// front-end chips of the HGCal test-beam readout.
//
// A readout frame is a fixed-size block of 32-bit words. Each bit position
// of those words is a serial line carrying the data of one chip: the
// 16-bit samples of a chip are spread over 16 consecutive words, one bit
// per word, most significant bit first.
package skiroc // import "github.com/go-lpc/hgcal/skiroc"

const (
	NumSamples     = 1924  // number of 16-bit samples per chip and per event
	WordsPerSample = 16    // number of 32-bit words carrying one sample
	MaxChannels    = 64    // number of channels of a SKIROC2-CMS chip
	NumSCA         = 13    // number of switched capacitor array cells
	DefaultWords   = 30788 // default number of 32-bit words per readout

	// MinWords is the minimal number of 32-bit words a frame must hold
	// to carry a full set of samples, including the leading marker word.
	MinWords = headerWords + NumSamples*WordsPerSample

	// FrameMarker is the value of the first word of frames created by
	// Mux and Writer. Decoding ignores the first word.
	FrameMarker = 0xffffffff

	headerWords = 1
	numLines    = 32 // number of serial lines (bits) in a word
)

// Samples is the decoded data of one chip for one event.
type Samples [NumSamples]uint16
