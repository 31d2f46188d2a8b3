// Copyright © 2026 Plato contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/emulator.go
// Summary: VT100 emulator facade: feeds pty bytes into the grid and
// exposes a read-only screen view.

package term

import (
	"log"

	"github.com/OGKevin/plato/term/history"
	"github.com/OGKevin/plato/term/parser"
)

// Emulator wraps the VT100 parser and grid. Mutated only by Feed; never
// resized during a session.
type Emulator struct {
	vterm  *parser.VTerm
	parser *parser.Parser
}

// NewEmulator creates an emulator with a rows×cols grid. When hist is
// non-nil, lines scrolling off the top are appended to it.
func NewEmulator(rows, cols int, hist *history.Store) *Emulator {
	var opts []parser.Option
	if hist != nil {
		opts = append(opts, parser.WithEvictionHandler(func(line string) {
			if err := hist.Append(line); err != nil {
				log.Printf("Terminal: history append failed: %v", err)
			}
		}))
	}
	vterm := parser.NewVTerm(rows, cols, opts...)
	return &Emulator{
		vterm:  vterm,
		parser: parser.NewParser(vterm),
	}
}

// Feed advances the terminal state machine. Deterministic: equal byte
// sequences on equal initial state produce identical grids.
func (e *Emulator) Feed(data []byte) {
	e.parser.Parse(data)
}

// Screen returns the read-only view of the grid and cursor.
func (e *Emulator) Screen() *parser.VTerm {
	return e.vterm
}
