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

package pdfrender

import (
	"seehuhn.de/go/pdf"
)

// ContentDrawer paints the content of a page.
//
// When DrawPage is called, the transformation of the canvas maps the
// coordinate system with origin at the top-left corner of the crop box, x
// pointing right and y pointing down, in units of PDF points, to the device.
// Implementations are responsible for mapping PDF user space onto this
// coordinate system.
type ContentDrawer interface {
	DrawPage(c Canvas, p Page, cropBox *pdf.Rectangle) error

	// Close releases all resources held by the drawer.  The renderer calls
	// Close exactly once, also when DrawPage fails.
	Close() error
}

// DrawerFactory creates a content drawer bound to the given renderer.
type DrawerFactory func(r *Renderer) (ContentDrawer, error)

// drawPage obtains a content drawer, uses it to paint the page, and then
// releases the drawer.
func (r *Renderer) drawPage(index int, page Page, c Canvas) (err error) {
	if r.newDrawer == nil {
		return nil
	}

	d, err := r.newDrawer(r)
	if err != nil {
		return &ContentRenderError{Index: index, Err: err}
	}
	defer func() {
		closeErr := d.Close()
		if closeErr == nil {
			return
		}
		if err == nil {
			err = &ContentRenderError{Index: index, Err: closeErr}
		} else {
			r.Logger().Warn("cannot release content drawer",
				"page", index,
				"error", closeErr)
		}
	}()

	err = d.DrawPage(c, page, page.CropBox())
	if err != nil {
		return &ContentRenderError{Index: index, Err: err}
	}
	return nil
}
