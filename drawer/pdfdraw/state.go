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

package pdfdraw

import (
	"image/color"
	"math"

	"github.com/gogpu/gg"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf"

	"seehuhn.de/go/pdfrender/canvas"
)

// params holds the parts of the PDF graphics state used for painting.
type params struct {
	ctm         matrix.Matrix
	fillColor   color.Color
	strokeColor color.Color
	lineWidth   float64
}

// state interprets content stream operators and paints onto a Painter.
type state struct {
	c Painter
	params
	stack []params

	// device scale of the crop box coordinate system
	deviceScale float64

	hasPath    bool
	curX, curY float64 // current point, in user space
	subX, subY float64 // start of the current subpath

	clipRule gg.FillRule
	clip     bool

	skipped int
}

func newState(c Painter) *state {
	return &state{
		c: c,
		params: params{
			ctm:         matrix.Identity,
			fillColor:   color.Black,
			strokeColor: color.Black,
			lineWidth:   1,
		},
		deviceScale: canvas.ScaleFactor(c.CTM()),
	}
}

// reset undoes the effect of unbalanced q operators.
func (s *state) reset() {
	for range s.stack {
		s.c.Pop()
	}
	s.stack = nil
	s.c.ClearPath()
}

// do is called by the content stream reader for every operator.
func (s *state) do(op string, args []pdf.Object) error {
	switch op {
	case "q":
		s.stack = append(s.stack, s.params)
		s.c.Push()
	case "Q":
		if len(s.stack) > 0 {
			s.params = s.stack[len(s.stack)-1]
			s.stack = s.stack[:len(s.stack)-1]
			s.c.Pop()
		}
	case "cm":
		if x, ok := numbers(args, 6); ok {
			m := matrix.Matrix{x[0], x[1], x[2], x[3], x[4], x[5]}
			s.ctm = m.Mul(s.ctm)
		}
	case "w":
		if x, ok := numbers(args, 1); ok {
			s.lineWidth = x[0]
		}

	case "g", "G":
		if x, ok := numbers(args, 1); ok {
			s.setColor(op == "g", color.Gray{Y: toByte(x[0])})
		}
	case "rg", "RG":
		if x, ok := numbers(args, 3); ok {
			col := color.RGBA{R: toByte(x[0]), G: toByte(x[1]), B: toByte(x[2]), A: 255}
			s.setColor(op == "rg", col)
		}
	case "k", "K":
		if x, ok := numbers(args, 4); ok {
			col := color.CMYK{C: toByte(x[0]), M: toByte(x[1]), Y: toByte(x[2]), K: toByte(x[3])}
			s.setColor(op == "k", col)
		}

	case "m":
		if x, ok := numbers(args, 2); ok {
			s.moveTo(x[0], x[1])
		}
	case "l":
		if x, ok := numbers(args, 2); ok && s.hasPath {
			s.lineTo(x[0], x[1])
		}
	case "c":
		if x, ok := numbers(args, 6); ok && s.hasPath {
			s.curveTo(x[0], x[1], x[2], x[3], x[4], x[5])
		}
	case "v":
		if x, ok := numbers(args, 4); ok && s.hasPath {
			s.curveTo(s.curX, s.curY, x[0], x[1], x[2], x[3])
		}
	case "y":
		if x, ok := numbers(args, 4); ok && s.hasPath {
			s.curveTo(x[0], x[1], x[2], x[3], x[2], x[3])
		}
	case "h":
		s.closePath()
	case "re":
		if x, ok := numbers(args, 4); ok {
			s.moveTo(x[0], x[1])
			s.lineTo(x[0]+x[2], x[1])
			s.lineTo(x[0]+x[2], x[1]+x[3])
			s.lineTo(x[0], x[1]+x[3])
			s.closePath()
		}

	case "W":
		s.clip, s.clipRule = true, gg.FillRuleNonZero
	case "W*":
		s.clip, s.clipRule = true, gg.FillRuleEvenOdd

	case "f", "F":
		return s.paint(true, false, gg.FillRuleNonZero)
	case "f*":
		return s.paint(true, false, gg.FillRuleEvenOdd)
	case "S":
		return s.paint(false, true, gg.FillRuleNonZero)
	case "s":
		s.closePath()
		return s.paint(false, true, gg.FillRuleNonZero)
	case "B":
		return s.paint(true, true, gg.FillRuleNonZero)
	case "B*":
		return s.paint(true, true, gg.FillRuleEvenOdd)
	case "b":
		s.closePath()
		return s.paint(true, true, gg.FillRuleNonZero)
	case "b*":
		s.closePath()
		return s.paint(true, true, gg.FillRuleEvenOdd)
	case "n":
		return s.paint(false, false, gg.FillRuleNonZero)

	case "BT", "Do", "sh", "BI", "d0", "d1":
		s.skipped++
	}
	return nil
}

func (s *state) setColor(fill bool, col color.Color) {
	if fill {
		s.fillColor = col
	} else {
		s.strokeColor = col
	}
}

func (s *state) moveTo(x, y float64) {
	s.c.MoveTo(s.apply(x, y))
	s.hasPath = true
	s.curX, s.curY = x, y
	s.subX, s.subY = x, y
}

func (s *state) lineTo(x, y float64) {
	s.c.LineTo(s.apply(x, y))
	s.curX, s.curY = x, y
}

func (s *state) curveTo(x1, y1, x2, y2, x3, y3 float64) {
	c1x, c1y := s.apply(x1, y1)
	c2x, c2y := s.apply(x2, y2)
	x, y := s.apply(x3, y3)
	s.c.CubicTo(c1x, c1y, c2x, c2y, x, y)
	s.curX, s.curY = x3, y3
}

func (s *state) closePath() {
	if !s.hasPath {
		return
	}
	s.c.ClosePath()
	s.curX, s.curY = s.subX, s.subY
}

// paint paints the current path and then ends it.  A pending clipping
// path is installed after painting.
func (s *state) paint(fill, stroke bool, rule gg.FillRule) error {
	defer func() {
		s.c.ClearPath()
		s.hasPath = false
		s.clip = false
	}()
	if !s.hasPath {
		return nil
	}

	if fill {
		s.c.SetFillRule(rule)
		s.c.SetColor(s.fillColor)
		err := s.c.FillPreserve()
		if err != nil {
			return err
		}
	}
	if stroke {
		s.c.SetColor(s.strokeColor)
		s.c.SetLineWidth(s.deviceLineWidth())
		err := s.c.StrokePreserve()
		if err != nil {
			return err
		}
	}
	if s.clip {
		s.c.SetFillRule(s.clipRule)
		s.c.ClipPreserve()
	}
	return nil
}

// deviceLineWidth returns the current line width in device pixels.  A line
// width of 0 denotes the thinnest line which can be drawn.
func (s *state) deviceLineWidth() float64 {
	w := s.lineWidth * canvas.ScaleFactor(s.ctm) * s.deviceScale
	if w < 1 {
		w = 1
	}
	return w
}

// apply maps user space coordinates to PDF default user space.
func (s *state) apply(x, y float64) (float64, float64) {
	m := s.ctm
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// numbers returns the first n operands as numbers.  The result is false
// if fewer operands are present or one of them is not a number.
func numbers(args []pdf.Object, n int) ([]float64, bool) {
	if len(args) < n {
		return nil, false
	}
	res := make([]float64, n)
	for i, obj := range args[:n] {
		switch x := obj.(type) {
		case pdf.Integer:
			res[i] = float64(x)
		case pdf.Real:
			res[i] = float64(x)
		case pdf.Number:
			res[i] = float64(x)
		default:
			return nil, false
		}
		if math.IsNaN(res[i]) || math.IsInf(res[i], 0) {
			return nil, false
		}
	}
	return res, true
}

// toByte converts a color component in the range [0, 1] to a byte.
func toByte(x float64) uint8 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 255
	default:
		return uint8(math.Round(x * 255))
	}
}
