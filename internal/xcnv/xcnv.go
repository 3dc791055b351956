// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xcnv provides tools to convert raw-to-digi events to/from LCIO.
//
// Each event is stored as two LCIO generic object collections:
// the named collection holds one object per chip record with its samples,
// the "<name>_DETIDS" collection holds one object per chip record with
// the detector identifiers of its channels.
package xcnv // import "github.com/go-lpc/hgcal/internal/xcnv"

const (
	detector = "HGCal"
	suffix   = "_DETIDS"
)

// DetIDsName returns the name of the collection holding the detector
// identifiers of the named samples collection.
func DetIDsName(name string) string { return name + suffix }
