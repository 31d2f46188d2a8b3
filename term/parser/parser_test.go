// Copyright © 2026 Plato contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/parser/parser_test.go
// Summary: Exercises the VT100 state machine against common sequences.

package parser

import (
	"strings"
	"testing"
)

func feedString(t *testing.T, rows, cols int, input string) *VTerm {
	t.Helper()
	v := NewVTerm(rows, cols)
	p := NewParser(v)
	p.Parse([]byte(input))
	return v
}

func TestPlainText(t *testing.T) {
	v := feedString(t, 5, 20, "hello")
	if got := v.RowText(0); got != "hello" {
		t.Fatalf("row 0: got %q", got)
	}
	row, col := v.Cursor()
	if row != 0 || col != 5 {
		t.Fatalf("cursor at %d,%d", row, col)
	}
}

func TestNewlineAndCarriageReturn(t *testing.T) {
	v := feedString(t, 5, 20, "ab\r\ncd")
	if v.RowText(0) != "ab" || v.RowText(1) != "cd" {
		t.Fatalf("rows: %q / %q", v.RowText(0), v.RowText(1))
	}
}

func TestCursorMovementCSI(t *testing.T) {
	v := feedString(t, 10, 20, "\x1b[3;5Hx")
	if v.Cell(2, 4).Rune != 'x' {
		t.Fatalf("expected x at 2,4, grid row: %q", v.RowText(2))
	}
}

func TestSGRAttributes(t *testing.T) {
	v := feedString(t, 5, 20, "\x1b[1;7mZ\x1b[0my")
	z := v.Cell(0, 0)
	if z.Attr&AttrBold == 0 || z.Attr&AttrReverse == 0 {
		t.Fatalf("attrs not applied: %v", z.Attr)
	}
	y := v.Cell(0, 1)
	if y.Attr != 0 {
		t.Fatalf("reset failed: %v", y.Attr)
	}
}

func TestSGRColors(t *testing.T) {
	v := feedString(t, 5, 40, "\x1b[31mr\x1b[48;5;200mp\x1b[38;2;1;2;3mt")
	if c := v.Cell(0, 0); c.FG != (Color{Mode: ColorModeStandard, Value: 1}) {
		t.Fatalf("standard fg: %+v", c.FG)
	}
	if c := v.Cell(0, 1); c.BG != (Color{Mode: ColorMode256, Value: 200}) {
		t.Fatalf("256 bg: %+v", c.BG)
	}
	if c := v.Cell(0, 2); c.FG != (Color{Mode: ColorModeRGB, R: 1, G: 2, B: 3}) {
		t.Fatalf("rgb fg: %+v", c.FG)
	}
}

func TestClearScreen(t *testing.T) {
	v := feedString(t, 5, 20, "dirt\x1b[2J")
	if v.RowText(0) != "" {
		t.Fatalf("screen not cleared: %q", v.RowText(0))
	}
	row, col := v.Cursor()
	if row != 0 || col != 0 {
		t.Fatalf("cursor not homed: %d,%d", row, col)
	}
}

func TestClearToEndOfLine(t *testing.T) {
	v := feedString(t, 5, 20, "abcdef\x1b[4G\x1b[K")
	if got := v.RowText(0); got != "abc" {
		t.Fatalf("EL: got %q", got)
	}
}

func TestScrollingEvictsTopLine(t *testing.T) {
	var evicted []string
	v := NewVTerm(3, 10, WithEvictionHandler(func(line string) {
		evicted = append(evicted, line)
	}))
	p := NewParser(v)
	p.Parse([]byte("one\r\ntwo\r\nthree\r\nfour"))

	if len(evicted) != 1 || evicted[0] != "one" {
		t.Fatalf("evicted: %v", evicted)
	}
	if v.RowText(0) != "two" || v.RowText(2) != "four" {
		t.Fatalf("rows after scroll: %q / %q", v.RowText(0), v.RowText(2))
	}
}

func TestScrollRegion(t *testing.T) {
	v := feedString(t, 5, 10, "\x1b[2;4rX")
	// DECSTBM homes the cursor.
	if v.Cell(0, 0).Rune != 'X' {
		t.Fatalf("cursor not homed after DECSTBM")
	}
}

func TestWideRunePlacement(t *testing.T) {
	v := feedString(t, 3, 10, "日x")
	c := v.Cell(0, 0)
	if c.Rune != '日' || !c.Wide {
		t.Fatalf("wide cell: %+v", c)
	}
	if !v.Cell(0, 1).WideCont {
		t.Fatalf("continuation missing: %+v", v.Cell(0, 1))
	}
	if v.Cell(0, 2).Rune != 'x' {
		t.Fatalf("following cell: %+v", v.Cell(0, 2))
	}
}

func TestOverwritingWidePairDissolvesIt(t *testing.T) {
	v := NewVTerm(3, 10)
	p := NewParser(v)
	p.Parse([]byte("日"))
	p.Parse([]byte("\x1b[1;2Ha"))
	if v.Cell(0, 0).Wide || v.Cell(0, 0).Rune != ' ' {
		t.Fatalf("left half survived: %+v", v.Cell(0, 0))
	}
	if v.Cell(0, 1).Rune != 'a' || v.Cell(0, 1).WideCont {
		t.Fatalf("overwrite failed: %+v", v.Cell(0, 1))
	}
}

func TestUTF8SplitAcrossChunks(t *testing.T) {
	v := NewVTerm(3, 10)
	p := NewParser(v)
	raw := []byte("é")
	p.Parse(raw[:1])
	p.Parse(raw[1:])
	if v.Cell(0, 0).Rune != 'é' {
		t.Fatalf("split rune: %+v", v.Cell(0, 0))
	}
}

func TestEscapeSplitAcrossChunks(t *testing.T) {
	v := NewVTerm(5, 20)
	p := NewParser(v)
	p.Parse([]byte("\x1b["))
	p.Parse([]byte("2;3H!"))
	if v.Cell(1, 2).Rune != '!' {
		t.Fatalf("split CSI: %q", v.RowText(1))
	}
}

func TestAutowrap(t *testing.T) {
	v := feedString(t, 3, 4, "abcdef")
	if v.RowText(0) != "abcd" || v.RowText(1) != "ef" {
		t.Fatalf("autowrap: %q / %q", v.RowText(0), v.RowText(1))
	}
}

func TestCursorVisibilityModes(t *testing.T) {
	v := feedString(t, 3, 10, "\x1b[?25l")
	if v.CursorVisible() {
		t.Fatal("cursor should be hidden")
	}
	p := NewParser(v)
	p.Parse([]byte("\x1b[?25h"))
	if !v.CursorVisible() {
		t.Fatal("cursor should be visible")
	}
}

func TestDeleteCharacters(t *testing.T) {
	v := feedString(t, 3, 10, "abcdef\x1b[1;2H\x1b[2P")
	if got := v.RowText(0); got != "adef" {
		t.Fatalf("DCH: got %q", got)
	}
}

func TestOSCIsSwallowed(t *testing.T) {
	v := feedString(t, 3, 20, "\x1b]0;some title\x07after")
	if got := v.RowText(0); got != "after" {
		t.Fatalf("OSC leaked into grid: %q", got)
	}
}

func TestDeterminism(t *testing.T) {
	input := "\x1b[2Jhello\r\n\x1b[1mworld\x1b[0m\r\n日本語\x1b[5;1Htail"
	a := feedString(t, 10, 20, input)
	b := feedString(t, 10, 20, input)
	for row := 0; row < 10; row++ {
		for col := 0; col < 20; col++ {
			if a.Cell(row, col) != b.Cell(row, col) {
				t.Fatalf("cells diverge at %d,%d", row, col)
			}
		}
	}
	ar, ac := a.Cursor()
	br, bc := b.Cursor()
	if ar != br || ac != bc {
		t.Fatal("cursors diverge")
	}
}

func TestRowTextTrimsTrailingBlanks(t *testing.T) {
	v := feedString(t, 3, 10, "hi   ")
	if !strings.HasSuffix(v.RowText(0), "hi") {
		t.Fatalf("row text: %q", v.RowText(0))
	}
}
