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

// Package testdoc builds small PDF documents for tests.
package testdoc

import (
	"bytes"
	"io"
	"os"

	"seehuhn.de/go/pdf"
)

// Page describes one page of a test document.  Nil fields are omitted
// from the page dictionary.
type Page struct {
	MediaBox *pdf.Rectangle
	CropBox  *pdf.Rectangle
	Rotate   pdf.Object

	// Content is the content stream of the page.
	Content string
}

// Doc describes a test document.
type Doc struct {
	// Root holds additional entries of the root page tree node, for
	// example inherited attributes.
	Root pdf.Dict

	// If Node is non-nil, the pages are placed below an intermediate page
	// tree node with these additional entries.
	Node pdf.Dict

	Pages []*Page
}

// Build writes the document into memory and opens the result for reading.
func (d *Doc) Build() (*pdf.Reader, error) {
	buf := &bytes.Buffer{}
	err := d.Write(buf)
	if err != nil {
		return nil, err
	}
	return pdf.NewReader(bytes.NewReader(buf.Bytes()), nil)
}

// WriteFile writes the document to the named file.
func (d *Doc) WriteFile(name string) error {
	fd, err := os.Create(name)
	if err != nil {
		return err
	}
	err = d.Write(fd)
	if err != nil {
		fd.Close()
		return err
	}
	return fd.Close()
}

// Write writes the document as a PDF file to w.
func (d *Doc) Write(w io.Writer) error {
	data, err := pdf.NewWriter(w, pdf.V1_7, nil)
	if err != nil {
		return err
	}

	rootRef := data.Alloc()
	parent := rootRef
	var nodeRef pdf.Reference
	if d.Node != nil {
		nodeRef = data.Alloc()
		parent = nodeRef
	}

	var kids pdf.Array
	for _, p := range d.Pages {
		ref := data.Alloc()
		dict := pdf.Dict{
			"Type":      pdf.Name("Page"),
			"Parent":    parent,
			"Resources": pdf.Dict{},
		}
		if p.MediaBox != nil {
			dict["MediaBox"] = Rect(p.MediaBox)
		}
		if p.CropBox != nil {
			dict["CropBox"] = Rect(p.CropBox)
		}
		if p.Rotate != nil {
			dict["Rotate"] = p.Rotate
		}
		if p.Content != "" {
			contentRef := data.Alloc()
			stm, err := data.OpenStream(contentRef, nil)
			if err != nil {
				return err
			}
			_, err = io.WriteString(stm, p.Content)
			if err != nil {
				return err
			}
			err = stm.Close()
			if err != nil {
				return err
			}
			dict["Contents"] = contentRef
		}
		err = data.Put(ref, dict)
		if err != nil {
			return err
		}
		kids = append(kids, ref)
	}
	count := pdf.Integer(len(d.Pages))

	if d.Node != nil {
		node := pdf.Dict{
			"Type":   pdf.Name("Pages"),
			"Parent": rootRef,
			"Kids":   kids,
			"Count":  count,
		}
		for key, val := range d.Node {
			node[key] = val
		}
		err = data.Put(nodeRef, node)
		if err != nil {
			return err
		}
		kids = pdf.Array{nodeRef}
	}

	root := pdf.Dict{
		"Type":  pdf.Name("Pages"),
		"Kids":  kids,
		"Count": count,
	}
	for key, val := range d.Root {
		root[key] = val
	}
	err = data.Put(rootRef, root)
	if err != nil {
		return err
	}
	data.GetMeta().Catalog.Pages = rootRef

	return data.Close()
}

// Rect converts a rectangle into a PDF array.
func Rect(r *pdf.Rectangle) pdf.Array {
	return pdf.Array{
		pdf.Real(r.LLx), pdf.Real(r.LLy),
		pdf.Real(r.URx), pdf.Real(r.URy),
	}
}
