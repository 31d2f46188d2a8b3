// Copyright © 2026 Plato contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: geom/geom.go
// Summary: Integer point and rectangle primitives for dirty-region tracking.

package geom

import "fmt"

// Point is a pixel coordinate.
type Point struct {
	X, Y int
}

func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Rectangle is a half-open pixel region: Min inclusive, Max exclusive.
type Rectangle struct {
	Min, Max Point
}

func Rect(x0, y0, x1, y1 int) Rectangle {
	return Rectangle{Min: Point{x0, y0}, Max: Point{x1, y1}}
}

func (r Rectangle) Width() int {
	return r.Max.X - r.Min.X
}

func (r Rectangle) Height() int {
	return r.Max.Y - r.Min.Y
}

func (r Rectangle) Empty() bool {
	return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y
}

func (r Rectangle) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// Absorb grows r to the bounding box of r and other.
func (r *Rectangle) Absorb(other Rectangle) {
	if other.Empty() {
		return
	}
	if r.Empty() {
		*r = other
		return
	}
	if other.Min.X < r.Min.X {
		r.Min.X = other.Min.X
	}
	if other.Min.Y < r.Min.Y {
		r.Min.Y = other.Min.Y
	}
	if other.Max.X > r.Max.X {
		r.Max.X = other.Max.X
	}
	if other.Max.Y > r.Max.Y {
		r.Max.Y = other.Max.Y
	}
}

// Intersection returns the overlap of r and other, and whether it is non-empty.
func (r Rectangle) Intersection(other Rectangle) (Rectangle, bool) {
	out := r
	if other.Min.X > out.Min.X {
		out.Min.X = other.Min.X
	}
	if other.Min.Y > out.Min.Y {
		out.Min.Y = other.Min.Y
	}
	if other.Max.X < out.Max.X {
		out.Max.X = other.Max.X
	}
	if other.Max.Y < out.Max.Y {
		out.Max.Y = other.Max.Y
	}
	if out.Empty() {
		return Rectangle{}, false
	}
	return out, true
}

// Translate returns r shifted by dx, dy.
func (r Rectangle) Translate(dx, dy int) Rectangle {
	return Rectangle{
		Min: Point{r.Min.X + dx, r.Min.Y + dy},
		Max: Point{r.Max.X + dx, r.Max.Y + dy},
	}
}

func (r Rectangle) String() string {
	return fmt.Sprintf("[%d,%d %d,%d]", r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}
