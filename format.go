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
	"strings"
)

// PixelFormat selects the color model of a rendered image.
type PixelFormat int

const (
	// RGB images are opaque.  Areas not painted by the page content are
	// white.
	RGB PixelFormat = iota

	// ARGB images have an alpha channel.  Areas not painted by the page
	// content are transparent.
	ARGB
)

// HasAlpha reports whether images in this format can be transparent.
func (f PixelFormat) HasAlpha() bool {
	return f == ARGB
}

func (f PixelFormat) String() string {
	switch f {
	case RGB:
		return "RGB"
	case ARGB:
		return "ARGB"
	default:
		return fmt.Sprintf("PixelFormat(%d)", int(f))
	}
}

// ParsePixelFormat converts a format name ("rgb" or "argb", case
// insensitive) into a PixelFormat.
func ParsePixelFormat(s string) (PixelFormat, error) {
	switch strings.ToLower(s) {
	case "rgb":
		return RGB, nil
	case "argb", "rgba":
		return ARGB, nil
	}
	return 0, fmt.Errorf("unknown pixel format %q", s)
}
