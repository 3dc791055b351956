// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rawtodigi

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-lpc/hgcal/skiroc"
)

// Config holds the parameters of a raw-to-digi session.
type Config struct {
	Input             string `json:"input"`               // path to the raw data file
	ElectronicMap     string `json:"electronic_map"`      // path to the electronics map
	OutputName        string `json:"output_name"`         // name of the output collection
	Boards            int    `json:"boards"`              // number of readout boards
	Hexaboards        int    `json:"hexaboards"`          // number of hexaboards
	ChipsPerHexaboard int    `json:"chips_per_hexaboard"` // number of chips per hexaboard
	Channels          int    `json:"channels"`            // number of channels per chip
	Words             int    `json:"words"`               // number of 32-bit words per readout
	Mmap              bool   `json:"mmap"`                // memory-map the raw data file
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		ElectronicMap:     "HGCal/CondObjects/data/map_CERN_Hexaboard_28Layers.txt",
		OutputName:        "SKIROC2CMSDATA",
		Boards:            1,
		Hexaboards:        1,
		ChipsPerHexaboard: 4,
		Channels:          skiroc.MaxChannels,
		Words:             skiroc.DefaultWords,
	}
}

// LoadConfig loads a JSON configuration file on top of the default
// configuration.
func LoadConfig(fname string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(fname)
	if err != nil {
		return cfg, fmt.Errorf("rawtodigi: could not read configuration file: %w", err)
	}

	err = json.Unmarshal(raw, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("rawtodigi: could not decode configuration file %q: %w", fname, err)
	}

	return cfg, nil
}

// Validate checks the configuration values.
// Validate does not access the input file nor the electronics map.
func (cfg Config) Validate() error {
	_, err := skiroc.MaskFrom(cfg.Boards)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	switch {
	case cfg.OutputName == "":
		return fmt.Errorf("%w: empty output collection name", ErrInvalidConfig)
	case cfg.Channels < 1 || cfg.Channels > skiroc.MaxChannels:
		return fmt.Errorf(
			"%w: invalid number of channels per chip %d (want=[1, %d])",
			ErrInvalidConfig, cfg.Channels, skiroc.MaxChannels,
		)
	case cfg.Words < skiroc.MinWords:
		return fmt.Errorf(
			"%w: %w (got=%d words per readout, want>=%d)",
			ErrInvalidConfig, skiroc.ErrShortFrame, cfg.Words, skiroc.MinWords,
		)
	case cfg.Hexaboards < 0 || cfg.ChipsPerHexaboard < 0:
		return fmt.Errorf(
			"%w: invalid hexaboards layout (hexaboards=%d, chips=%d)",
			ErrInvalidConfig, cfg.Hexaboards, cfg.ChipsPerHexaboard,
		)
	}

	return nil
}
