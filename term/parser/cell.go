// Copyright © 2026 Plato contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/parser/cell.go
// Summary: Cell, color and attribute types for the virtual terminal grid.
// Notes: Keeps parsing concerns isolated from rendering.

package parser

// Attribute is a bitmask of text attributes.
type Attribute uint16

const (
	AttrBold Attribute = 1 << iota
	AttrUnderline
	AttrReverse
)

// ColorMode selects how a Color value is interpreted.
type ColorMode int

const (
	ColorModeDefault  ColorMode = iota // terminal default
	ColorModeStandard                  // the 16 basic ANSI colors
	ColorMode256                       // 256-color palette
	ColorModeRGB                       // 24-bit true color
)

// Color is a terminal color in one of several modes.
type Color struct {
	Mode    ColorMode
	Value   uint8 // palette index for Standard and 256 modes
	R, G, B uint8 // channels for RGB mode
}

var (
	DefaultFG = Color{Mode: ColorModeDefault}
	DefaultBG = Color{Mode: ColorModeDefault}
)

// IsDefault reports whether the color is the terminal default.
func (c Color) IsDefault() bool {
	return c.Mode == ColorModeDefault
}

// Cell is a single character cell on the screen. A wide (two-column)
// glyph lives in its left cell with Wide set; the right cell is a
// placeholder with WideCont set and must never be drawn on its own.
type Cell struct {
	Rune     rune
	FG       Color
	BG       Color
	Attr     Attribute
	Wide     bool
	WideCont bool
}

func blankCell(fg, bg Color) Cell {
	return Cell{Rune: ' ', FG: fg, BG: bg}
}
