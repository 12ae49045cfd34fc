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

// Package geometry computes the device geometry of a rendered PDF page.
//
// The functions in this package are pure: they map the crop box, the
// /Rotate value and a scale factor to device pixel dimensions, and they
// describe the page-to-device transformation as a [TransformPlan] which can
// be applied to any drawing context.
package geometry

import (
	"fmt"
	"math"
)

// Rotation is a page rotation in degrees, reduced to one of 0, 90, 180 or
// 270.  Positive angles rotate the page clockwise on the output device.
type Rotation int

// These are the valid values for a [Rotation].
const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// NormalizeRotation reduces a /Rotate value to a [Rotation].
//
// The value is brought into the range [0, 360) by adding or subtracting 360
// at most once.  Values which need more than one adjustment, and values which
// are not multiples of 90, are rejected with an [InvalidGeometryError].
func NormalizeRotation(deg int) (Rotation, error) {
	r := deg
	if r < 0 {
		r += 360
	} else if r >= 360 {
		r -= 360
	}
	switch Rotation(r) {
	case Rotate0, Rotate90, Rotate180, Rotate270:
		return Rotation(r), nil
	}
	if r < 0 || r >= 360 {
		return 0, &InvalidGeometryError{
			Reason: fmt.Sprintf("rotation %d is more than one turn out of range", deg),
		}
	}
	return 0, &InvalidGeometryError{
		Reason: fmt.Sprintf("rotation %d is not a multiple of 90", deg),
	}
}

// SwapsAxes reports whether the rotation exchanges the width and the height
// of the page.
func (r Rotation) SwapsAxes() bool {
	return r == Rotate90 || r == Rotate270
}

// Radians returns the rotation angle in radians.
func (r Rotation) Radians() float64 {
	return float64(r) * math.Pi / 180
}

// sinCos returns exact sine and cosine values for the rotation.
func (r Rotation) sinCos() (sin, cos float64) {
	switch r {
	case Rotate90:
		return 1, 0
	case Rotate180:
		return 0, -1
	case Rotate270:
		return -1, 0
	default:
		return 0, 1
	}
}

func (r Rotation) String() string {
	return fmt.Sprintf("%d°", int(r))
}

// Geometry describes the device surface for a rendered page.
type Geometry struct {
	// Width and Height give the size of the device surface in pixels.  For
	// rotations by 90 and 270 degrees these are the scaled crop box height
	// and width, respectively.
	Width, Height int

	// Rotation is the normalized page rotation.
	Rotation Rotation
}

// Resolve computes the device geometry of a page.
//
// The crop box dimensions widthPt and heightPt are given in PDF points and
// are scaled by scale and rounded to the nearest integer, with halves
// rounded away from zero.  The rotation is normalized using
// [NormalizeRotation].
func Resolve(widthPt, heightPt float64, rotation int, scale float64) (*Geometry, error) {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, &InvalidGeometryError{
			Reason: fmt.Sprintf("invalid scale %g", scale),
		}
	}
	if !validDim(widthPt) || !validDim(heightPt) {
		return nil, &InvalidGeometryError{
			Reason: fmt.Sprintf("invalid page size %gx%g", widthPt, heightPt),
		}
	}

	rot, err := NormalizeRotation(rotation)
	if err != nil {
		return nil, err
	}

	widthPx := DeviceSize(widthPt, scale)
	heightPx := DeviceSize(heightPt, scale)
	if rot.SwapsAxes() {
		widthPx, heightPx = heightPx, widthPx
	}

	g := &Geometry{
		Width:    widthPx,
		Height:   heightPx,
		Rotation: rot,
	}
	return g, nil
}

// DeviceSize converts a length in PDF points into a number of device pixels.
func DeviceSize(lengthPt, scale float64) int {
	return int(math.Round(lengthPt * scale))
}

func validDim(x float64) bool {
	return x >= 0 && !math.IsInf(x, 0)
}

// InvalidGeometryError is returned when a page cannot be mapped to a device
// surface, for example because of an unsupported /Rotate value.
type InvalidGeometryError struct {
	Reason string
}

func (err *InvalidGeometryError) Error() string {
	return "invalid page geometry: " + err.Reason
}
