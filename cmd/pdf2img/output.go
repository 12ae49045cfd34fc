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

package main

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

type encoder func(w io.Writer, img image.Image) error

// encoderFor selects an image encoder based on the file name extension.
func encoderFor(name string) (encoder, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return png.Encode, nil
	case ".jpg", ".jpeg":
		return func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
		}, nil
	case ".tif", ".tiff":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}, nil
	case ".bmp":
		return bmp.Encode, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", filepath.Ext(name))
	}
}

var pageVerb = regexp.MustCompile(`%0?[0-9]*d`)

func hasPageVerb(pattern string) bool {
	return pageVerb.MatchString(pattern)
}

// outputName returns the file name for the given page.  If all pages are
// rendered, the page number is substituted into pattern.
func outputName(pattern string, pageNo int, allPages bool) string {
	if !allPages {
		return pattern
	}
	loc := pageVerb.FindStringIndex(pattern)
	if loc == nil {
		return pattern
	}
	return pattern[:loc[0]] + fmt.Sprintf(pattern[loc[0]:loc[1]], pageNo) + pattern[loc[1]:]
}

func writeImage(name string, img image.Image, encode encoder) error {
	out, err := os.Create(name)
	if err != nil {
		return err
	}
	err = encode(out, img)
	if err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
