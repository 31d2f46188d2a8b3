// Copyright © 2026 Plato contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/grayscale.go
// Summary: Maps terminal colors onto e-ink gray levels through the
// standard xterm 256-color palette.

package term

import (
	"github.com/gdamore/tcell/v2"

	"github.com/OGKevin/plato/term/parser"
)

// palette is the standard xterm 256-color palette.
var palette = newDefaultPalette()

func newDefaultPalette() [256]tcell.Color {
	var p [256]tcell.Color
	// The 16 basic ANSI colors.
	base := [16][3]int32{
		{0, 0, 0}, {128, 0, 0}, {0, 128, 0}, {128, 128, 0},
		{0, 0, 128}, {128, 0, 128}, {0, 128, 128}, {192, 192, 192},
		{128, 128, 128}, {255, 0, 0}, {0, 255, 0}, {255, 255, 0},
		{0, 0, 255}, {255, 0, 255}, {0, 255, 255}, {255, 255, 255},
	}
	for i, rgb := range base {
		p[i] = tcell.NewRGBColor(rgb[0], rgb[1], rgb[2])
	}

	// 6x6x6 color cube.
	levels := []int32{0, 95, 135, 175, 215, 255}
	i := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p[i] = tcell.NewRGBColor(levels[r], levels[g], levels[b])
				i++
			}
		}
	}

	// Grayscale ramp.
	for j := 0; j < 24; j++ {
		gray := int32(8 + j*10)
		p[i] = tcell.NewRGBColor(gray, gray, gray)
		i++
	}
	return p
}

// colorToGray maps a terminal color to an 8-bit gray level, using def
// for the terminal default color.
func colorToGray(c parser.Color, def uint8) uint8 {
	switch c.Mode {
	case parser.ColorModeStandard, parser.ColorMode256:
		return luminance(palette[c.Value])
	case parser.ColorModeRGB:
		return luminance(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
	default:
		return def
	}
}

// minInkContrast is the smallest ink/paper gray distance considered
// readable on e-ink.
const minInkContrast = 64

// contrastInk returns fg when it already stands out against bg,
// otherwise the gray pole farthest from bg.
func contrastInk(fg, bg uint8) uint8 {
	d := int(fg) - int(bg)
	if d < 0 {
		d = -d
	}
	if d >= minInkContrast {
		return fg
	}
	if bg >= 0x80 {
		return 0x00
	}
	return 0xFF
}

// luminance converts an RGB color to perceived gray (ITU-R BT.601).
func luminance(c tcell.Color) uint8 {
	r, g, b := c.RGB()
	return uint8((299*r + 587*g + 114*b) / 1000)
}
