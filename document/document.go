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

// Package document reads the page tree of PDF files.
//
// A [Document] provides the pages of a PDF file in the form needed by
// [pdfrender.Renderer]: the visible region of every page and its rotation.
package document

import (
	"io"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"

	"seehuhn.de/go/pdfrender"
)

// Document is a PDF document opened for rendering.
type Document struct {
	r      pdf.Getter
	closer io.Closer
	path   string
}

// Open opens the named PDF file.  After use, Close must be called.
func Open(path string) (*Document, error) {
	r, err := pdf.Open(path, nil)
	if err != nil {
		return nil, err
	}
	doc := &Document{
		r:      r,
		closer: r,
		path:   path,
	}
	return doc, nil
}

// New returns a document which reads pages from r.  Closing the document
// does not close r.
func New(r pdf.Getter) *Document {
	return &Document{r: r}
}

// Close closes the underlying file, if the document was opened using
// [Open].
func (d *Document) Close() error {
	if d.closer == nil {
		return nil
	}
	err := d.closer.Close()
	d.closer = nil
	return err
}

// Path returns the file name passed to [Open].  For documents created using
// [New], the empty string is returned.
func (d *Document) Path() string {
	return d.path
}

// Getter gives access to the objects of the PDF file.
func (d *Document) Getter() pdf.Getter {
	return d.r
}

// NumPages returns the number of pages in the document.
func (d *Document) NumPages() (int, error) {
	return pagetree.NumPages(d.r)
}

// Page returns the page with the given index.  The returned value has type
// [*Page].
func (d *Document) Page(index int) (pdfrender.Page, error) {
	return d.LoadPage(index)
}

// LoadPage reads the page dictionary of the page with the given index,
// including inherited attributes.
func (d *Document) LoadPage(index int) (*Page, error) {
	_, dict, err := pagetree.GetPage(d.r, index)
	if err != nil {
		return nil, err
	}
	return newPage(d.r, index, dict)
}
