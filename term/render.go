// Copyright © 2026 Plato contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/render.go
// Summary: Cell-diffing incremental renderer from the emulator grid onto
// a grayscale pixmap.
// Notes: The previous-frame cache is a flat rows×cols array allocated
// once; the grid never resizes during a session.

package term

import (
	"github.com/OGKevin/plato/font"
	"github.com/OGKevin/plato/framebuffer"
	"github.com/OGKevin/plato/geom"
	"github.com/OGKevin/plato/term/parser"
)

const (
	// MinRows and MinCols floor the grid so degenerate inputs never
	// produce an unusable terminal.
	MinRows = 10
	MinCols = 20

	cursorBarHeight = 2
)

// cellState is the renderer-private snapshot used to detect whether a
// cell changed since the previous frame.
type cellState struct {
	contents rune
	inverse  bool
	bold     bool
	wide     bool
	wideCont bool
	hasBG    bool
}

func snapshotCell(c parser.Cell) cellState {
	return cellState{
		contents: c.Rune,
		inverse:  c.Attr&parser.AttrReverse != 0,
		bold:     c.Attr&parser.AttrBold != 0,
		wide:     c.Wide,
		wideCont: c.WideCont,
		hasBG:    !c.BG.IsDefault(),
	}
}

// TerminalRenderer paints emulator screens incrementally.
type TerminalRenderer struct {
	cellWidth  int
	cellHeight int
	baseline   int
	rows, cols int
	prev       []cellState
	prevCurRow int
	prevCurCol int
}

// CalculateGridForFontSize derives the grid size from the available
// pixel area and the face's fixed cell metrics.
func CalculateGridForFontSize(width, height int, face *font.Face) (rows, cols int) {
	cellWidth := face.Advance()
	if cellWidth < 1 {
		cellWidth = 1
	}
	lineHeight := face.LineHeight()
	if lineHeight < 1 {
		lineHeight = 1
	}
	cols = width / cellWidth
	if cols < MinCols {
		cols = MinCols
	}
	rows = height / lineHeight
	if rows < MinRows {
		rows = MinRows
	}
	return rows, cols
}

// NewRendererWithFontSize precomputes cell metrics and allocates the
// previous-frame cache as default cell states.
func NewRendererWithFontSize(face *font.Face, rows, cols int) *TerminalRenderer {
	return &TerminalRenderer{
		cellWidth:  face.Advance(),
		cellHeight: face.LineHeight(),
		baseline:   face.Ascent(),
		rows:       rows,
		cols:       cols,
		prev:       make([]cellState, rows*cols),
	}
}

func (r *TerminalRenderer) cellRect(row, col, span int) geom.Rectangle {
	return geom.Rect(
		col*r.cellWidth,
		row*r.cellHeight,
		(col+span)*r.cellWidth,
		(row+1)*r.cellHeight,
	)
}

// RenderScreen diffs the screen against the previous frame and paints
// changed cells into pm. It returns the bounding dirty rectangle, or nil
// when neither a cell nor the cursor position changed.
func (r *TerminalRenderer) RenderScreen(screen *parser.VTerm, pm *framebuffer.Pixmap, face *font.Face) *geom.Rectangle {
	rows, cols := screen.Size()
	if rows > r.rows {
		rows = r.rows
	}
	if cols > r.cols {
		cols = r.cols
	}
	curRow, curCol := screen.Cursor()

	var dirty geom.Rectangle
	changed := false

	// Repaint the old cursor cell plainly so no bar artifact survives a
	// cursor move.
	if curRow != r.prevCurRow || curCol != r.prevCurCol {
		if r.prevCurRow < rows && r.prevCurCol < cols {
			row, col := r.prevCurRow, r.prevCurCol
			// A continuation half only repaints through its left
			// neighbor; target that cell so the bar is cleared.
			if screen.Cell(row, col).WideCont && col > 0 {
				col--
			}
			span := 1
			if screen.Cell(row, col).Wide {
				span = 2
			}
			r.paintCell(screen, row, col, pm, face)
			dirty.Absorb(r.cellRect(row, col, span))
		}
		r.prevCurRow, r.prevCurCol = curRow, curCol
		changed = true
	}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			cell := screen.Cell(row, col)
			state := snapshotCell(cell)
			idx := row*r.cols + col
			if state == r.prev[idx] {
				continue
			}
			r.prev[idx] = state
			changed = true
			// Continuation cells were painted with their left half;
			// painting them alone would corrupt the glyph.
			if cell.WideCont {
				continue
			}
			r.paintCell(screen, row, col, pm, face)
			span := 1
			if cell.Wide {
				span = 2
			}
			dirty.Absorb(r.cellRect(row, col, span))
		}
	}

	// The cursor bar is cheap; always paint it so it never fades under
	// partial refreshes.
	if curRow >= 0 && curRow < rows && curCol >= 0 && curCol < cols && screen.CursorVisible() {
		barTop := (curRow+1)*r.cellHeight - 1 - cursorBarHeight
		bar := geom.Rect(
			curCol*r.cellWidth,
			barTop,
			(curCol+1)*r.cellWidth,
			barTop+cursorBarHeight,
		)
		pm.FillRect(bar, framebuffer.Black)
		if changed {
			dirty.Absorb(bar)
		}
	}

	if !changed || dirty.Empty() {
		return nil
	}
	out := dirty
	return &out
}

// paintCell fills the cell background and draws its glyph. Wide cells
// paint both columns in one pass.
func (r *TerminalRenderer) paintCell(screen *parser.VTerm, row, col int, pm *framebuffer.Pixmap, face *font.Face) {
	cell := screen.Cell(row, col)
	if cell.WideCont {
		return
	}

	fg := colorToGray(cell.FG, framebuffer.Black)
	bg := colorToGray(cell.BG, framebuffer.White)
	if cell.Attr&parser.AttrReverse != 0 {
		fg, bg = bg, fg
	}
	// An explicit background may land near the ink's gray (default black
	// ink on a dark background, say); snap the ink to the far pole so
	// glyphs stay legible on paper.
	if !cell.BG.IsDefault() {
		fg = contrastInk(fg, bg)
	}

	span := 1
	if cell.Wide {
		span = 2
	}
	rect := r.cellRect(row, col, span)
	pm.FillRect(rect, bg)

	if cell.Rune != ' ' && cell.Rune != 0 {
		pt := geom.Pt(rect.Min.X, rect.Min.Y+r.baseline)
		face.Render(pm, string(cell.Rune), pt, fg)
		if cell.Attr&parser.AttrBold != 0 {
			// Fake bold: overstrike one pixel right.
			face.Render(pm, string(cell.Rune), geom.Pt(pt.X+1, pt.Y), fg)
		}
	}
}
