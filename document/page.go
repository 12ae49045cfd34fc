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

package document

import (
	"fmt"
	"math"

	"seehuhn.de/go/pdf"
)

// Page is a page of a PDF document.
type Page struct {
	// Index is the position of the page in the document, starting at 0.
	Index int

	// Dict is the page dictionary, with inherited attributes filled in.
	Dict pdf.Dict

	r        pdf.Getter
	mediaBox *pdf.Rectangle
	cropBox  *pdf.Rectangle
	rotate   int
}

func newPage(r pdf.Getter, index int, dict pdf.Dict) (*Page, error) {
	mediaBox, err := pdf.GetRectangle(r, dict["MediaBox"])
	if err != nil {
		return nil, fmt.Errorf("MediaBox: %w", err)
	}
	if mediaBox == nil || isEmpty(mediaBox) {
		mediaBox = Letter
	}

	cropBox, err := pdf.GetRectangle(r, dict["CropBox"])
	if err != nil {
		return nil, fmt.Errorf("CropBox: %w", err)
	}
	if cropBox == nil {
		cropBox = mediaBox
	} else {
		cropBox = intersect(cropBox, mediaBox)
	}

	rotate, err := getRotate(r, dict["Rotate"])
	if err != nil {
		return nil, err
	}

	p := &Page{
		Index:    index,
		Dict:     dict,
		r:        r,
		mediaBox: mediaBox,
		cropBox:  cropBox,
		rotate:   rotate,
	}
	return p, nil
}

// MediaBox returns the boundaries of the physical medium, in PDF points.
// If the page has no valid media box, [Letter] is used.
func (p *Page) MediaBox() *pdf.Rectangle {
	return p.mediaBox
}

// CropBox returns the visible region of the page.  This is the crop box
// clipped to the media box.  If no crop box is given, the media box is
// used.
func (p *Page) CropBox() *pdf.Rectangle {
	return p.cropBox
}

// Rotation returns the value of the /Rotate entry in the page dictionary,
// or 0 if no rotation is given.  The value is not normalized.
func (p *Page) Rotation() int {
	return p.rotate
}

// Getter returns the PDF file the page belongs to.
func (p *Page) Getter() pdf.Getter {
	return p.r
}

func getRotate(r pdf.Getter, obj pdf.Object) (int, error) {
	obj, err := pdf.Resolve(r, obj)
	if err != nil {
		return 0, err
	}
	if obj == nil {
		return 0, nil
	}
	x, err := pdf.GetNumber(r, obj)
	if err != nil {
		return 0, fmt.Errorf("Rotate: %w", err)
	}
	if math.IsNaN(float64(x)) || math.Abs(float64(x)) > math.MaxInt32 {
		return 0, fmt.Errorf("Rotate: invalid value %g", float64(x))
	}
	return int(x), nil
}

// intersect clips a to b.  If the rectangles do not overlap, b is returned.
func intersect(a, b *pdf.Rectangle) *pdf.Rectangle {
	res := &pdf.Rectangle{
		LLx: math.Max(a.LLx, b.LLx),
		LLy: math.Max(a.LLy, b.LLy),
		URx: math.Min(a.URx, b.URx),
		URy: math.Min(a.URy, b.URy),
	}
	if isEmpty(res) {
		return b
	}
	return res
}

func isEmpty(r *pdf.Rectangle) bool {
	return r.URx <= r.LLx || r.URy <= r.LLy
}
