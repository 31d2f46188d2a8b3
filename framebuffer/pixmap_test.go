// Copyright © 2026 Plato contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: framebuffer/pixmap_test.go
// Summary: Exercises pixmap fills, clipping and blits.

package framebuffer

import (
	"testing"

	"github.com/OGKevin/plato/geom"
)

func TestNewPixmapStartsWhite(t *testing.T) {
	pm := NewPixmap(4, 3)
	for i, v := range pm.Data {
		if v != White {
			t.Fatalf("pixel %d not white: %d", i, v)
		}
	}
}

func TestFillRectClips(t *testing.T) {
	pm := NewPixmap(4, 4)
	pm.FillRect(geom.Rect(2, 2, 10, 10), Black)
	if pm.Pixel(1, 1) != White {
		t.Fatal("pixel outside rect was touched")
	}
	if pm.Pixel(2, 2) != Black || pm.Pixel(3, 3) != Black {
		t.Fatal("pixels inside rect not filled")
	}
}

func TestCopyFromRequiresSameSize(t *testing.T) {
	a := NewPixmap(4, 4)
	b := NewPixmap(4, 4)
	b.Fill(Black)
	a.CopyFrom(b)
	if a.Pixel(0, 0) != Black {
		t.Fatal("copy did not happen")
	}

	c := NewPixmap(2, 2)
	c.Fill(0x80)
	a.CopyFrom(c)
	if a.Pixel(0, 0) != Black {
		t.Fatal("mismatched copy should be a no-op")
	}
}

func TestDrawPixmap(t *testing.T) {
	src := NewPixmap(2, 2)
	src.Fill(Black)
	dst := NewPixmap(4, 4)
	dst.DrawPixmap(src, src.Bounds(), geom.Pt(1, 1))
	if dst.Pixel(1, 1) != Black || dst.Pixel(2, 2) != Black {
		t.Fatal("blit missing")
	}
	if dst.Pixel(0, 0) != White || dst.Pixel(3, 3) != White {
		t.Fatal("blit overran")
	}
}
