// Copyright © 2026 Plato contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: framebuffer/pixmap.go
// Summary: 8-bit grayscale pixel surface with rect fill and blit support.
// Notes: Row-major, one byte per pixel. White is 0xFF to match e-ink paper.

package framebuffer

import "github.com/OGKevin/plato/geom"

const (
	White uint8 = 0xFF
	Black uint8 = 0x00
)

// Pixmap is a grayscale pixel surface.
type Pixmap struct {
	Width  int
	Height int
	Data   []uint8
}

func NewPixmap(width, height int) *Pixmap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	pm := &Pixmap{
		Width:  width,
		Height: height,
		Data:   make([]uint8, width*height),
	}
	pm.Fill(White)
	return pm
}

func (pm *Pixmap) Bounds() geom.Rectangle {
	return geom.Rect(0, 0, pm.Width, pm.Height)
}

func (pm *Pixmap) Fill(gray uint8) {
	for i := range pm.Data {
		pm.Data[i] = gray
	}
}

// FillRect fills the part of rect that lies inside the pixmap.
func (pm *Pixmap) FillRect(rect geom.Rectangle, gray uint8) {
	clipped, ok := rect.Intersection(pm.Bounds())
	if !ok {
		return
	}
	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		row := pm.Data[y*pm.Width+clipped.Min.X : y*pm.Width+clipped.Max.X]
		for i := range row {
			row[i] = gray
		}
	}
}

// SetPixel writes one pixel, ignoring out-of-bounds coordinates.
func (pm *Pixmap) SetPixel(x, y int, gray uint8) {
	if x < 0 || x >= pm.Width || y < 0 || y >= pm.Height {
		return
	}
	pm.Data[y*pm.Width+x] = gray
}

func (pm *Pixmap) Pixel(x, y int) uint8 {
	if x < 0 || x >= pm.Width || y < 0 || y >= pm.Height {
		return White
	}
	return pm.Data[y*pm.Width+x]
}

// CopyFrom copies pixel data from a same-sized pixmap.
func (pm *Pixmap) CopyFrom(src *Pixmap) {
	if src == nil || len(src.Data) != len(pm.Data) {
		return
	}
	copy(pm.Data, src.Data)
}

// DrawPixmap blits srcRect of src onto pm with its top-left corner at dst.
func (pm *Pixmap) DrawPixmap(src *Pixmap, srcRect geom.Rectangle, dst geom.Point) {
	srcRect, ok := srcRect.Intersection(src.Bounds())
	if !ok {
		return
	}
	for y := 0; y < srcRect.Height(); y++ {
		sy := srcRect.Min.Y + y
		dy := dst.Y + y
		if dy < 0 || dy >= pm.Height {
			continue
		}
		for x := 0; x < srcRect.Width(); x++ {
			sx := srcRect.Min.X + x
			dx := dst.X + x
			if dx < 0 || dx >= pm.Width {
				continue
			}
			pm.Data[dy*pm.Width+dx] = src.Data[sy*src.Width+sx]
		}
	}
}
