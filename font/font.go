// Copyright © 2026 Plato contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: font/font.go
// Summary: Fixed-advance glyph measurement and rasterization onto pixmaps.
// Usage: Each rendering goroutine loads its own Faces; faces are not
// safe for concurrent use.

package font

import (
	"fmt"
	"image"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/OGKevin/plato/framebuffer"
	"github.com/OGKevin/plato/geom"
)

// Face is a monospace font at a fixed size. Glyphs are drawn from the
// underlying face's alpha mask, scaled by an integer factor so larger
// font sizes produce proportionally larger cells.
type Face struct {
	face    xfont.Face
	scale   int
	advance int
	height  int
	ascent  int
}

// Faces bundles the faces the terminal needs. Mirrors the loader shape
// used elsewhere in the application; the terminal only uses Monospace.
type Faces struct {
	Monospace *Face
}

// baseSize is the nominal point size of the built-in bitmap face.
const baseSize = 13.0

// LoadFaces loads the face set at the given font size.
func LoadFaces(fontSize float64) (*Faces, error) {
	mono, err := newFace(basicfont.Face7x13, fontSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load monospace face: %w", err)
	}
	return &Faces{Monospace: mono}, nil
}

func newFace(f xfont.Face, fontSize float64) (*Face, error) {
	if f == nil {
		return nil, fmt.Errorf("nil font face")
	}
	scale := int(fontSize/baseSize + 0.5)
	if scale < 1 {
		scale = 1
	}

	adv, ok := f.GlyphAdvance('M')
	if !ok {
		return nil, fmt.Errorf("face has no advance for reference glyph")
	}
	metrics := f.Metrics()

	advance := adv.Ceil() * scale
	height := (metrics.Ascent + metrics.Descent).Ceil() * scale
	ascent := metrics.Ascent.Ceil() * scale
	if advance < 1 {
		advance = 1
	}
	if height < 1 {
		height = 1
	}

	return &Face{
		face:    f,
		scale:   scale,
		advance: advance,
		height:  height,
		ascent:  ascent,
	}, nil
}

// Advance is the fixed cell width in pixels.
func (f *Face) Advance() int { return f.advance }

// LineHeight is the cell height in pixels.
func (f *Face) LineHeight() int { return f.height }

// Ascent is the baseline offset from the top of the cell.
func (f *Face) Ascent() int { return f.ascent }

// Render draws text onto pm with the baseline at pt, in the given gray.
// Pixels outside the pixmap are clipped.
func (f *Face) Render(pm *framebuffer.Pixmap, text string, pt geom.Point, gray uint8) {
	dot := fixed.P(0, 0)
	originX := pt.X
	for _, r := range text {
		dr, mask, maskp, advance, ok := f.face.Glyph(dot, r)
		if !ok {
			dr, mask, maskp, advance, _ = f.face.Glyph(dot, '?')
			if mask == nil {
				continue
			}
		}
		f.drawMask(pm, dr, mask, maskp, originX, pt.Y, gray)
		// The dot stays at the origin; advancing in integer pixels keeps
		// scaled glyphs on the fixed grid.
		originX += advance.Ceil() * f.scale
	}
}

func (f *Face) drawMask(pm *framebuffer.Pixmap, dr image.Rectangle, mask image.Image, maskp image.Point, originX, baselineY int, gray uint8) {
	for my := dr.Min.Y; my < dr.Max.Y; my++ {
		for mx := dr.Min.X; mx < dr.Max.X; mx++ {
			_, _, _, a := mask.At(maskp.X+mx-dr.Min.X, maskp.Y+my-dr.Min.Y).RGBA()
			if a < 0x8000 {
				continue
			}
			// Glyph-space pixel scaled up to an integer block.
			px := originX + mx*f.scale
			py := baselineY + my*f.scale
			for sy := 0; sy < f.scale; sy++ {
				for sx := 0; sx < f.scale; sx++ {
					pm.SetPixel(px+sx, py+sy, gray)
				}
			}
		}
	}
}
