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
	"fmt"
)

// PageNotFoundError is returned when a page index is outside the range of
// pages in the document.
type PageNotFoundError struct {
	Index    int
	NumPages int
}

func (err *PageNotFoundError) Error() string {
	return fmt.Sprintf("page %d not found (document has %d pages)", err.Index, err.NumPages)
}

// MetadataError indicates that the page tree, the crop box or the rotation
// of a page could not be read.
type MetadataError struct {
	Index int // -1 if the error is not specific to a page
	Err   error
}

func (err *MetadataError) Error() string {
	if err.Index < 0 {
		return "cannot read page tree: " + err.Err.Error()
	}
	return fmt.Sprintf("cannot read page %d: %s", err.Index, err.Err)
}

func (err *MetadataError) Unwrap() error {
	return err.Err
}

// ContentRenderError is returned when the content drawer fails to paint a
// page.
type ContentRenderError struct {
	Index int
	Err   error
}

func (err *ContentRenderError) Error() string {
	return fmt.Sprintf("cannot draw page %d: %s", err.Index, err.Err)
}

func (err *ContentRenderError) Unwrap() error {
	return err.Err
}
