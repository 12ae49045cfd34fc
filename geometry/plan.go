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

package geometry

import (
	"seehuhn.de/go/geom/matrix"
)

// Order selects the order in which a [TransformPlan] composes its
// transformations.
type Order int

const (
	// RotateFirst translates and rotates the drawing context before scaling
	// it.  The translation is therefore given in device pixels.  This is the
	// order used when rendering into a newly allocated surface.
	RotateFirst Order = iota

	// ScaleFirst scales the drawing context before translating and rotating
	// it.  The translation is therefore given in PDF points.  This is the
	// order used when rendering into a caller-supplied drawing context.
	ScaleFirst
)

func (o Order) String() string {
	switch o {
	case RotateFirst:
		return "rotate-first"
	case ScaleFirst:
		return "scale-first"
	default:
		return "invalid order"
	}
}

// Transformer is implemented by drawing contexts which can concatenate
// affine transformations to their current transformation matrix.
//
// Each call must prepend the new transformation in user space, so that
// after Translate(tx, ty) followed by Rotate(a) a point p is first rotated
// and then translated.  Angles are given in radians.
type Transformer interface {
	Translate(x, y float64)
	Rotate(angle float64)
	Scale(x, y float64)
}

// TransformPlan describes how page space is mapped onto a device.
type TransformPlan struct {
	Rotation Rotation

	// TX and TY give the translation which moves the rotated page back into
	// the visible area.
	TX, TY float64

	ScaleX, ScaleY float64

	Order Order
}

// NewSurfacePlan returns the transformation used for rendering a page into a
// newly allocated surface of the size given by g.
//
// Translation and rotation are applied before scaling, and the translation
// is looked up in the new-surface table (see [NewSurfaceOffset]) using the
// device surface dimensions.
func NewSurfacePlan(g *Geometry, scaleX, scaleY float64) TransformPlan {
	tx, ty := NewSurfaceOffset(g.Rotation, float64(g.Width), float64(g.Height))
	return TransformPlan{
		Rotation: g.Rotation,
		TX:       tx,
		TY:       ty,
		ScaleX:   scaleX,
		ScaleY:   scaleY,
		Order:    RotateFirst,
	}
}

// ExistingSurfacePlan returns the transformation used for rendering a page
// into a caller-supplied drawing context.  The width and height are the
// truncated, unscaled crop box dimensions.
//
// Scaling is applied before translation and rotation, and the translation
// is looked up in the existing-surface table (see [ExistingSurfaceOffset]).
func ExistingSurfacePlan(width, height int, rot Rotation, scaleX, scaleY float64) TransformPlan {
	tx, ty := ExistingSurfaceOffset(rot, float64(width), float64(height))
	return TransformPlan{
		Rotation: rot,
		TX:       tx,
		TY:       ty,
		ScaleX:   scaleX,
		ScaleY:   scaleY,
		Order:    ScaleFirst,
	}
}

// NewSurfaceOffset is the translate table for the new-surface path.
//
//	  0: (0, 0)
//	 90: (w, 0)
//	180: (w, h)
//	270: (0, h)
func NewSurfaceOffset(rot Rotation, w, h float64) (tx, ty float64) {
	switch rot {
	case Rotate90:
		return w, 0
	case Rotate180:
		return w, h
	case Rotate270:
		return 0, h
	default:
		return 0, 0
	}
}

// ExistingSurfaceOffset is the translate table for the existing-surface
// path.
//
//	  0: (0, 0)
//	 90: (h, 0)
//	180: (w, h)
//	270: (h, 0)
//
// The entry for 270 degrees places the rotated page to the right of the
// cleared rectangle.
func ExistingSurfaceOffset(rot Rotation, w, h float64) (tx, ty float64) {
	switch rot {
	case Rotate90, Rotate270:
		return h, 0
	case Rotate180:
		return w, h
	default:
		return 0, 0
	}
}

// Apply concatenates the plan to the current transformation of t.
func (p TransformPlan) Apply(t Transformer) {
	switch p.Order {
	case ScaleFirst:
		t.Scale(p.ScaleX, p.ScaleY)
		p.applyRotation(t)
	default:
		p.applyRotation(t)
		t.Scale(p.ScaleX, p.ScaleY)
	}
}

func (p TransformPlan) applyRotation(t Transformer) {
	if p.Rotation == Rotate0 {
		return
	}
	t.Translate(p.TX, p.TY)
	t.Rotate(p.Rotation.Radians())
}

// Matrix returns the transformation described by the plan, using the row
// vector convention of the "cm" operator: a point (x, y) is mapped to
// (x, y, 1) * M.
//
// Applying the plan to a drawing context with identity transformation
// results in this matrix.
func (p TransformPlan) Matrix() matrix.Matrix {
	S := matrix.Matrix{p.ScaleX, 0, 0, p.ScaleY, 0, 0}
	R := matrix.Identity
	if p.Rotation != Rotate0 {
		sin, cos := p.Rotation.sinCos()
		R = matrix.Matrix{cos, sin, -sin, cos, 0, 0}.Mul(matrix.Matrix{1, 0, 0, 1, p.TX, p.TY})
	}

	// Transformations concatenated later act first on a point.
	if p.Order == ScaleFirst {
		return R.Mul(S)
	}
	return S.Mul(R)
}
