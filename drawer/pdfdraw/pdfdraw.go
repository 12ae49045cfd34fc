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

// Package pdfdraw draws the vector graphics of PDF pages.
//
// The drawer interprets the path construction and path painting operators
// of a page content stream, together with the graphics state operators
// needed for them (q, Q, cm, w and the device color operators).  Text,
// images, shadings and XObjects are skipped.
//
// Clipping paths are always applied with the nonzero winding rule, also
// for the W* operator.
package pdfdraw

import (
	"fmt"
	"image/color"
	"log/slog"

	"github.com/gogpu/gg"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"
	"seehuhn.de/go/pdf/reader"

	"seehuhn.de/go/pdfrender"
	"seehuhn.de/go/pdfrender/document"
)

// Painter is the set of drawing operations used by the drawer.
// [*canvas.Canvas] implements this interface.
type Painter interface {
	pdfrender.Canvas

	MoveTo(x, y float64)
	LineTo(x, y float64)
	CubicTo(c1x, c1y, c2x, c2y, x, y float64)
	ClosePath()
	ClearPath()

	FillPreserve() error
	StrokePreserve() error
	ClipPreserve()
	ClipRect(x, y, w, h float64)

	SetColor(col color.Color)
	SetLineWidth(width float64)
	SetFillRule(rule gg.FillRule)

	Push()
	Pop()
	Concat(m matrix.Matrix)
	CTM() matrix.Matrix
}

// Drawer draws pages of a [document.Document].
type Drawer struct {
	logger *slog.Logger
	pages  int
}

// New returns a new drawer.  New can be used as a [pdfrender.DrawerFactory].
func New(r *pdfrender.Renderer) (pdfrender.ContentDrawer, error) {
	d := &Drawer{
		logger: r.Logger(),
	}
	return d, nil
}

// DrawPage draws the vector graphics of the page p.
//
// The canvas must implement [Painter] and p must be a [*document.Page].
func (d *Drawer) DrawPage(c pdfrender.Canvas, p pdfrender.Page, cropBox *pdf.Rectangle) error {
	pc, ok := c.(Painter)
	if !ok {
		return fmt.Errorf("pdfdraw: unsupported canvas type %T", c)
	}
	page, ok := p.(*document.Page)
	if !ok {
		return fmt.Errorf("pdfdraw: unsupported page type %T", p)
	}

	stm, err := pagetree.ContentStream(page.Getter(), page.Dict)
	if err != nil {
		return err
	}

	pc.Push()
	defer pc.Pop()

	// map PDF default user space to the crop box area of the canvas
	pc.Concat(matrix.Matrix{1, 0, 0, -1, -cropBox.LLx, cropBox.URy})
	pc.ClipRect(cropBox.LLx, cropBox.LLy, cropBox.URx-cropBox.LLx, cropBox.URy-cropBox.LLy)

	st := newState(pc)
	cr := reader.New(page.Getter(), nil)
	cr.Reset()
	cr.EveryOp = st.do
	err = cr.ParseContentStream(stm)
	st.reset()
	d.pages++

	if st.skipped > 0 {
		d.logger.Debug("pdfdraw: operators skipped",
			"page", page.Index,
			"count", st.skipped)
	}
	if err != nil {
		return fmt.Errorf("pdfdraw: page %d: %w", page.Index, err)
	}
	return nil
}

// Close implements the [pdfrender.ContentDrawer] interface.
func (d *Drawer) Close() error {
	d.logger.Debug("pdfdraw: closed", "pages", d.pages)
	return nil
}
