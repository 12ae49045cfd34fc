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

// Package pdfrender renders pages of PDF documents into raster images.
//
// A [Renderer] is bound to one document.  It determines the device size of
// a page from its crop box, rotation and the requested scale, prepares the
// drawing surface and the page-to-device transformation, and hands the
// prepared surface to a [ContentDrawer] which paints the page content:
//
//	doc, err := document.Open("in.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer doc.Close()
//
//	r := pdfrender.New(doc, pdfdraw.New)
//	img, err := r.RenderImageWithDPI(0, 150, pdfrender.RGB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	... encode img ...
//
// Pages can also be drawn into an existing drawing context using
// [Renderer.RenderPageToCanvas].
//
// Renderers are not safe for concurrent use.  To render pages in parallel,
// use one Renderer (and one document handle) per goroutine.
package pdfrender
