// Copyright © 2026 Plato contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/parser/vterm.go
// Summary: Virtual terminal grid state driven by the VT100/ANSI parser.
// Notes: Fixed size for the lifetime of the instance; the session never
// resizes a running terminal.

package parser

import (
	"log"
	"strings"

	"github.com/mattn/go-runewidth"
)

// VTerm holds the state of a virtual terminal: the cell grid, cursor,
// scroll margins, tab stops and the attributes applied to new cells.
type VTerm struct {
	width, height              int
	cursorX, cursorY           int
	savedCursorX, savedCursorY int
	grid                       [][]Cell
	currentFG, currentBG       Color
	currentAttr                Attribute
	tabStops                   map[int]bool
	cursorVisible              bool
	wrapNext                   bool
	autoWrapMode               bool
	marginTop, marginBottom    int

	onEvict func(line string)
	onBell  func()
}

// Option configures a VTerm at construction.
type Option func(*VTerm)

// WithEvictionHandler registers a callback invoked with the text of each
// line that scrolls off the top of the screen.
func WithEvictionHandler(handler func(string)) Option {
	return func(v *VTerm) { v.onEvict = handler }
}

// WithBellHandler registers a callback invoked on BEL.
func WithBellHandler(handler func()) Option {
	return func(v *VTerm) { v.onBell = handler }
}

// NewVTerm creates a virtual terminal with the given grid size.
func NewVTerm(rows, cols int, opts ...Option) *VTerm {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	v := &VTerm{
		width:         cols,
		height:        rows,
		grid:          make([][]Cell, rows),
		currentFG:     DefaultFG,
		currentBG:     DefaultBG,
		tabStops:      make(map[int]bool),
		cursorVisible: true,
		autoWrapMode:  true,
		marginTop:     0,
		marginBottom:  rows - 1,
	}
	for _, opt := range opts {
		opt(v)
	}
	for i := range v.grid {
		v.grid[i] = make([]Cell, cols)
	}
	v.clearScreen()
	for x := 0; x < cols; x += 8 {
		v.tabStops[x] = true
	}
	return v
}

// Size returns rows, cols.
func (v *VTerm) Size() (int, int) { return v.height, v.width }

// Cell returns the cell at row, col. Out-of-range positions yield a blank.
func (v *VTerm) Cell(row, col int) Cell {
	if row < 0 || row >= v.height || col < 0 || col >= v.width {
		return blankCell(DefaultFG, DefaultBG)
	}
	return v.grid[row][col]
}

// Cursor returns the cursor position as row, col.
func (v *VTerm) Cursor() (int, int) { return v.cursorY, v.cursorX }

// CursorVisible reports whether DECTCEM has the cursor shown.
func (v *VTerm) CursorVisible() bool { return v.cursorVisible }

// RowText returns the trimmed text content of a row.
func (v *VTerm) RowText(row int) string {
	if row < 0 || row >= v.height {
		return ""
	}
	return rowText(v.grid[row])
}

func rowText(row []Cell) string {
	var sb strings.Builder
	for _, c := range row {
		if c.WideCont {
			continue
		}
		sb.WriteRune(c.Rune)
	}
	return strings.TrimRight(sb.String(), " ")
}

// placeRune writes a printable rune at the cursor, handling autowrap and
// double-width glyphs.
func (v *VTerm) placeRune(r rune) {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		return
	}

	if v.wrapNext {
		v.cursorX = 0
		v.lineFeed()
		v.wrapNext = false
	}
	// A wide glyph that would straddle the right edge wraps early.
	if w == 2 && v.cursorX == v.width-1 {
		if !v.autoWrapMode {
			return
		}
		v.setCell(v.cursorY, v.cursorX, blankCell(v.currentFG, v.currentBG))
		v.cursorX = 0
		v.lineFeed()
	}

	if v.cursorY < 0 || v.cursorY >= v.height || v.cursorX < 0 || v.cursorX >= v.width {
		return
	}

	cell := Cell{
		Rune: r,
		FG:   v.currentFG,
		BG:   v.currentBG,
		Attr: v.currentAttr,
		Wide: w == 2,
	}
	v.setCell(v.cursorY, v.cursorX, cell)
	if w == 2 {
		cont := blankCell(v.currentFG, v.currentBG)
		cont.WideCont = true
		v.setCell(v.cursorY, v.cursorX+1, cont)
	}

	last := v.cursorX + w - 1
	if v.autoWrapMode && last >= v.width-1 {
		v.cursorX = v.width - 1
		v.wrapNext = true
	} else if last < v.width-1 {
		v.cursorX = last + 1
	}
}

// setCell writes a cell, dissolving any wide pair it lands on so half a
// glyph never survives an overwrite.
func (v *VTerm) setCell(row, col int, c Cell) {
	if row < 0 || row >= v.height || col < 0 || col >= v.width {
		return
	}
	old := v.grid[row][col]
	if old.WideCont && col > 0 && v.grid[row][col-1].Wide {
		left := blankCell(v.grid[row][col-1].FG, v.grid[row][col-1].BG)
		v.grid[row][col-1] = left
	}
	if old.Wide && col+1 < v.width && v.grid[row][col+1].WideCont {
		v.grid[row][col+1] = blankCell(v.grid[row][col+1].FG, v.grid[row][col+1].BG)
	}
	v.grid[row][col] = c
}

func (v *VTerm) lineFeed() {
	if v.cursorY == v.marginBottom {
		v.scrollUp()
	} else if v.cursorY < v.height-1 {
		v.cursorY++
	}
}

func (v *VTerm) carriageReturn() {
	v.wrapNext = false
	v.cursorX = 0
}

func (v *VTerm) backspace() {
	v.wrapNext = false
	if v.cursorX > 0 {
		v.cursorX--
	}
}

func (v *VTerm) tab() {
	v.wrapNext = false
	for x := v.cursorX + 1; x < v.width; x++ {
		if v.tabStops[x] {
			v.cursorX = x
			return
		}
	}
	v.cursorX = v.width - 1
}

func (v *VTerm) bell() {
	if v.onBell != nil {
		v.onBell()
	}
}

// scrollUp shifts the scroll region up one line. When the whole screen
// scrolls, the departing top line is offered to the eviction handler.
func (v *VTerm) scrollUp() {
	if v.onEvict != nil && v.marginTop == 0 && v.marginBottom == v.height-1 {
		v.onEvict(rowText(v.grid[0]))
	}
	copy(v.grid[v.marginTop:], v.grid[v.marginTop+1:v.marginBottom+1])
	v.grid[v.marginBottom] = v.freshLine()
}

func (v *VTerm) scrollDown(n int) {
	for i := 0; i < n; i++ {
		copy(v.grid[v.marginTop+1:v.marginBottom+1], v.grid[v.marginTop:v.marginBottom])
		v.grid[v.marginTop] = v.freshLine()
	}
}

func (v *VTerm) freshLine() []Cell {
	line := make([]Cell, v.width)
	for i := range line {
		line[i] = blankCell(v.currentFG, v.currentBG)
	}
	return line
}

func (v *VTerm) setCursorPos(row, col int) {
	v.wrapNext = false
	if row < 0 {
		row = 0
	}
	if row >= v.height {
		row = v.height - 1
	}
	if col < 0 {
		col = 0
	}
	if col >= v.width {
		col = v.width - 1
	}
	v.cursorY, v.cursorX = row, col
}

func (v *VTerm) setCursorColumn(col int) {
	if col < 0 {
		col = 0
	}
	if col >= v.width {
		col = v.width - 1
	}
	v.wrapNext = false
	v.cursorX = col
}

func (v *VTerm) moveCursorUp(n int) {
	v.wrapNext = false
	v.cursorY -= n
	if v.cursorY < v.marginTop {
		v.cursorY = v.marginTop
	}
}

func (v *VTerm) moveCursorDown(n int) {
	v.wrapNext = false
	v.cursorY += n
	if v.cursorY > v.marginBottom {
		v.cursorY = v.marginBottom
	}
}

func (v *VTerm) moveCursorForward(n int) {
	v.cursorX += n
	if v.cursorX >= v.width {
		v.cursorX = v.width - 1
	}
}

func (v *VTerm) moveCursorBackward(n int) {
	v.cursorX -= n
	if v.cursorX < 0 {
		v.cursorX = 0
	}
}

func (v *VTerm) saveCursor() {
	v.savedCursorX, v.savedCursorY = v.cursorX, v.cursorY
}

func (v *VTerm) restoreCursor() {
	v.cursorX, v.cursorY = v.savedCursorX, v.savedCursorY
}

// setMargins sets the scroll region from 1-based ANSI coordinates.
func (v *VTerm) setMargins(top, bottom int) {
	if top == 0 {
		top = 1
	}
	if bottom == 0 || bottom > v.height {
		bottom = v.height
	}
	if top < 1 {
		top = 1
	}
	if top >= bottom {
		return
	}
	v.marginTop = top - 1
	v.marginBottom = bottom - 1
	v.setCursorPos(0, 0)
}

func (v *VTerm) clearScreen() {
	for y := 0; y < v.height; y++ {
		for x := 0; x < v.width; x++ {
			v.grid[y][x] = blankCell(DefaultFG, DefaultBG)
		}
	}
}

func (v *VTerm) clearScreenMode(mode int) {
	switch mode {
	case 0:
		v.clearToEndOfScreen()
	case 1:
		v.clearToStartOfScreen()
	case 2, 3:
		v.clearScreen()
		v.setCursorPos(0, 0)
	}
}

func (v *VTerm) clearToEndOfScreen() {
	v.clearLine(0)
	for y := v.cursorY + 1; y < v.height; y++ {
		for x := 0; x < v.width; x++ {
			v.grid[y][x] = blankCell(v.currentFG, v.currentBG)
		}
	}
}

func (v *VTerm) clearToStartOfScreen() {
	v.clearLine(1)
	for y := 0; y < v.cursorY; y++ {
		for x := 0; x < v.width; x++ {
			v.grid[y][x] = blankCell(v.currentFG, v.currentBG)
		}
	}
}

func (v *VTerm) clearLine(mode int) {
	var start, end int
	switch mode {
	case 0:
		start, end = v.cursorX, v.width-1
	case 1:
		start, end = 0, v.cursorX
	case 2:
		start, end = 0, v.width-1
	}
	for x := start; x <= end && x < v.width; x++ {
		v.setCell(v.cursorY, x, blankCell(v.currentFG, v.currentBG))
	}
}

func (v *VTerm) eraseCharacters(n int) {
	for i := 0; i < n; i++ {
		if v.cursorX+i < v.width {
			v.setCell(v.cursorY, v.cursorX+i, blankCell(v.currentFG, v.currentBG))
		}
	}
}

func (v *VTerm) deleteCharacters(n int) {
	line := v.grid[v.cursorY]
	if n > v.width-v.cursorX {
		n = v.width - v.cursorX
	}
	copy(line[v.cursorX:], line[v.cursorX+n:])
	for i := v.width - n; i < v.width; i++ {
		line[i] = blankCell(v.currentFG, v.currentBG)
	}
}

func (v *VTerm) insertLines(n int) {
	if v.cursorY < v.marginTop || v.cursorY > v.marginBottom {
		return
	}
	for i := 0; i < n; i++ {
		copy(v.grid[v.cursorY+1:v.marginBottom+1], v.grid[v.cursorY:v.marginBottom])
		v.grid[v.cursorY] = v.freshLine()
	}
}

func (v *VTerm) deleteLines(n int) {
	if v.cursorY < v.marginTop || v.cursorY > v.marginBottom {
		return
	}
	for i := 0; i < n; i++ {
		copy(v.grid[v.cursorY:v.marginBottom], v.grid[v.cursorY+1:v.marginBottom+1])
		v.grid[v.marginBottom] = v.freshLine()
	}
}

func (v *VTerm) resetAttributes() {
	v.currentFG = DefaultFG
	v.currentBG = DefaultBG
	v.currentAttr = 0
}

// processCSI dispatches a complete CSI sequence.
func (v *VTerm) processCSI(command byte, params []int, private bool) {
	if private {
		v.processPrivateCSI(command, params)
		return
	}

	param := func(i, def int) int {
		if i < len(params) && params[i] != 0 {
			return params[i]
		}
		return def
	}

	switch command {
	case 'A':
		v.moveCursorUp(param(0, 1))
	case 'B':
		v.moveCursorDown(param(0, 1))
	case 'C':
		v.moveCursorForward(param(0, 1))
	case 'D':
		v.moveCursorBackward(param(0, 1))
	case 'G':
		v.setCursorColumn(param(0, 1) - 1)
	case 'H', 'f':
		v.setCursorPos(param(0, 1)-1, param(1, 1)-1)
	case 'J':
		v.clearScreenMode(param(0, 0))
	case 'K':
		v.clearLine(param(0, 0))
	case 'L':
		v.insertLines(param(0, 1))
	case 'M':
		v.deleteLines(param(0, 1))
	case 'P':
		v.deleteCharacters(param(0, 1))
	case 'S':
		for i := 0; i < param(0, 1); i++ {
			v.scrollUp()
		}
	case 'T':
		v.scrollDown(param(0, 1))
	case 'X':
		v.eraseCharacters(param(0, 1))
	case 'd':
		v.setCursorPos(param(0, 1)-1, v.cursorX)
	case 'g':
		if param(0, 0) == 3 {
			v.tabStops = make(map[int]bool)
		}
	case 'm':
		v.processSGR(params)
	case 'r':
		v.setMargins(param(0, 1), param(1, v.height))
	case 's':
		v.saveCursor()
	case 'u':
		v.restoreCursor()
	default:
		log.Printf("Parser: Ignoring CSI %q with params %v", command, params)
	}
}

func (v *VTerm) processSGR(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	i := 0
	for i < len(params) {
		p := params[i]
		switch {
		case p == 0:
			v.resetAttributes()
		case p == 1:
			v.currentAttr |= AttrBold
		case p == 4:
			v.currentAttr |= AttrUnderline
		case p == 7:
			v.currentAttr |= AttrReverse
		case p == 22:
			v.currentAttr &^= AttrBold
		case p == 24:
			v.currentAttr &^= AttrUnderline
		case p == 27:
			v.currentAttr &^= AttrReverse
		case p == 39:
			v.currentFG = DefaultFG
		case p == 49:
			v.currentBG = DefaultBG
		case p >= 30 && p <= 37:
			v.currentFG = Color{Mode: ColorModeStandard, Value: uint8(p - 30)}
		case p >= 40 && p <= 47:
			v.currentBG = Color{Mode: ColorModeStandard, Value: uint8(p - 40)}
		case p >= 90 && p <= 97:
			v.currentFG = Color{Mode: ColorModeStandard, Value: uint8(p - 90 + 8)}
		case p >= 100 && p <= 107:
			v.currentBG = Color{Mode: ColorModeStandard, Value: uint8(p - 100 + 8)}
		case p == 38:
			color, consumed := extendedColor(params[i+1:])
			if consumed == 0 {
				return
			}
			v.currentFG = color
			i += consumed
		case p == 48:
			color, consumed := extendedColor(params[i+1:])
			if consumed == 0 {
				return
			}
			v.currentBG = color
			i += consumed
		}
		i++
	}
}

// extendedColor parses the tail of a 38/48 SGR: "5;n" or "2;r;g;b".
func extendedColor(rest []int) (Color, int) {
	if len(rest) >= 2 && rest[0] == 5 {
		return Color{Mode: ColorMode256, Value: uint8(rest[1])}, 2
	}
	if len(rest) >= 4 && rest[0] == 2 {
		return Color{
			Mode: ColorModeRGB,
			R:    uint8(rest[1]),
			G:    uint8(rest[2]),
			B:    uint8(rest[3]),
		}, 4
	}
	return Color{}, 0
}

func (v *VTerm) processPrivateCSI(command byte, params []int) {
	if len(params) == 0 {
		return
	}
	switch command {
	case 'h':
		switch params[0] {
		case 7:
			v.autoWrapMode = true
		case 25:
			v.cursorVisible = true
		}
	case 'l':
		switch params[0] {
		case 7:
			v.autoWrapMode = false
		case 25:
			v.cursorVisible = false
		}
	}
}
