// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package skiroc

import "errors"

var (
	// ErrInvalidBoards is returned when the number of boards is not supported.
	ErrInvalidBoards = errors.New("skiroc: invalid number of boards")

	// ErrShortFrame is returned when a frame is too short to hold
	// all the samples of a chip.
	ErrShortFrame = errors.New("skiroc: frame too short")

	// ErrInvalidRecord is returned when a chip record fails its
	// structural check.
	ErrInvalidRecord = errors.New("skiroc: invalid chip record")
)
