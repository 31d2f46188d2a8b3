// Copyright © 2026 Plato contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/emulator_test.go
// Summary: Exercises the emulator facade and its history wiring.

package term

import (
	"path/filepath"
	"testing"

	"github.com/OGKevin/plato/term/history"
)

func TestEmulatorDeterminism(t *testing.T) {
	input := []byte("\x1b[2Jfirst\r\n\x1b[31msecond\x1b[0m\r\n\x1b[2;3Hthird")
	a := NewEmulator(10, 20, nil)
	b := NewEmulator(10, 20, nil)
	a.Feed(input)
	b.Feed(input)

	for row := 0; row < 10; row++ {
		for col := 0; col < 20; col++ {
			if a.Screen().Cell(row, col) != b.Screen().Cell(row, col) {
				t.Fatalf("grids diverge at %d,%d", row, col)
			}
		}
	}
}

func TestEmulatorFeedsHistoryOnScroll(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "hist.db"), 100)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer store.Close()

	e := NewEmulator(3, 10, store)
	e.Feed([]byte("a\r\nb\r\nc\r\nd"))

	lines, err := store.Recent(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(lines) != 1 || lines[0].Content != "a" {
		t.Fatalf("history: %+v", lines)
	}
}
