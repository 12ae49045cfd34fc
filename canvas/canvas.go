// seehuhn.de/go/pdfrender - render PDF pages to raster images
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package canvas provides a drawing context for rendering PDF pages.
//
// A [Canvas] is a [gg.Context] which additionally keeps a background color
// and can clear rectangles to this background.  It also converts between
// the column vector matrices used by gg and the row vector matrices used for
// PDF content streams.
package canvas

import (
	"image/color"
	"math"

	"github.com/gogpu/gg"
	"seehuhn.de/go/geom/matrix"
)

// Canvas is a drawing context backed by a pixel buffer.
type Canvas struct {
	*gg.Context

	background gg.RGBA
	owned      bool
}

// New allocates a new canvas of the given size in pixels.
// All pixels start out transparent, and the background is transparent.
func New(width, height int) *Canvas {
	return &Canvas{
		Context:    gg.NewContext(width, height),
		background: gg.Transparent,
		owned:      true,
	}
}

// FromContext wraps an existing drawing context.
// The context remains owned by the caller: Close does not release it.
func FromContext(dc *gg.Context) *Canvas {
	return &Canvas{
		Context:    dc,
		background: gg.Transparent,
	}
}

// SetBackground sets the color used by ClearRect.
func (c *Canvas) SetBackground(col color.Color) {
	c.background = gg.FromColor(col)
}

// Background returns the color used by ClearRect.
func (c *Canvas) Background() color.Color {
	return c.background.Color()
}

// ClearRect replaces all pixels covered by the rectangle with the
// background color.  The rectangle is given in user space; if the current
// transformation is not axis-aligned, the device space bounding box of the
// transformed rectangle is cleared.  Clipping does not apply.
func (c *Canvas) ClearRect(x, y, w, h float64) {
	m := c.GetTransform()

	xMin, yMin := math.Inf(1), math.Inf(1)
	xMax, yMax := math.Inf(-1), math.Inf(-1)
	for _, p := range []gg.Point{gg.Pt(x, y), gg.Pt(x+w, y), gg.Pt(x, y+h), gg.Pt(x+w, y+h)} {
		q := m.TransformPoint(p)
		xMin, xMax = math.Min(xMin, q.X), math.Max(xMax, q.X)
		yMin, yMax = math.Min(yMin, q.Y), math.Max(yMax, q.Y)
	}

	// A pixel is cleared if its center lies inside the rectangle.
	i0 := max(int(math.Round(xMin)), 0)
	i1 := min(int(math.Round(xMax)), c.Width())
	j0 := max(int(math.Round(yMin)), 0)
	j1 := min(int(math.Round(yMax)), c.Height())
	for j := j0; j < j1; j++ {
		for i := i0; i < i1; i++ {
			c.SetPixel(i, j, c.background)
		}
	}
}

// Concat prepends the PDF matrix m to the current transformation, in the
// same way as the "cm" operator does.
func (c *Canvas) Concat(m matrix.Matrix) {
	c.Transform(ToGG(m))
}

// CTM returns the current transformation as a PDF matrix.
func (c *Canvas) CTM() matrix.Matrix {
	return FromGG(c.GetTransform())
}

// Close releases the canvas.  Canvases created by [FromContext] are left
// untouched.
func (c *Canvas) Close() error {
	if !c.owned {
		return nil
	}
	return c.Context.Close()
}

// ToGG converts a PDF matrix, which acts on row vectors, into the
// corresponding gg matrix, which acts on column vectors.
func ToGG(m matrix.Matrix) gg.Matrix {
	return gg.Matrix{
		A: m[0], B: m[2], C: m[4],
		D: m[1], E: m[3], F: m[5],
	}
}

// FromGG is the inverse of [ToGG].
func FromGG(m gg.Matrix) matrix.Matrix {
	return matrix.Matrix{m.A, m.D, m.B, m.E, m.C, m.F}
}

// ScaleFactor returns the factor by which m scales areas, expressed as a
// length: the square root of the absolute determinant.
func ScaleFactor(m matrix.Matrix) float64 {
	return math.Sqrt(math.Abs(m[0]*m[3] - m[1]*m[2]))
}
