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
	"errors"
	"image"
	"image/color"
	"log/slog"

	"seehuhn.de/go/pdf"

	"seehuhn.de/go/pdfrender/canvas"
	"seehuhn.de/go/pdfrender/geometry"
)

// DefaultScale is the scale used by [Renderer.Render].  At this scale one
// PDF point corresponds to one pixel, i.e. the resolution is 72 DPI.
const DefaultScale = 1

// Page is a page of a document.
type Page interface {
	// CropBox returns the visible region of the page, in PDF points.
	CropBox() *pdf.Rectangle

	// Rotation returns the /Rotate value of the page, in degrees.  The value
	// is not normalized.
	Rotation() int
}

// Document gives access to the pages of a document.
type Document interface {
	NumPages() (int, error)

	// Page returns the page with the given index.  The first page has
	// index 0.
	Page(index int) (Page, error)
}

// Canvas is a drawing context a page can be rendered into.
//
// [canvas.Canvas] implements this interface.
type Canvas interface {
	geometry.Transformer

	// SetBackground sets the color used by ClearRect.
	SetBackground(col color.Color)

	// ClearRect fills the given user space rectangle with the background
	// color, replacing the previous contents.
	ClearRect(x, y, w, h float64)
}

// Renderer renders the pages of one document.
type Renderer struct {
	doc       Document
	newDrawer DrawerFactory
	logger    *slog.Logger
}

// Option configures a [Renderer].
type Option func(*Renderer)

// WithLogger sets the logger of a renderer.  By default the package logger
// (see [SetLogger]) is used.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = l
	}
}

// New creates a renderer for doc.  For every page drawn, a new content
// drawer is obtained from newDrawer.  If newDrawer is nil, page contents are
// not drawn and only the page background is rendered.
func New(doc Document, newDrawer DrawerFactory, opts ...Option) *Renderer {
	r := &Renderer{
		doc:       doc,
		newDrawer: newDrawer,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Document returns the document the renderer is bound to.
func (r *Renderer) Document() Document {
	return r.doc
}

// Logger returns the logger used by the renderer.
func (r *Renderer) Logger() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return Logger()
}

// Render renders a page at 72 DPI into an opaque RGB image.
func (r *Renderer) Render(pageIndex int) (image.Image, error) {
	return r.RenderImage(pageIndex, DefaultScale, RGB)
}

// RenderImageWithDPI renders a page into a new image at the given
// resolution.
func (r *Renderer) RenderImageWithDPI(pageIndex int, dpi float64, format PixelFormat) (image.Image, error) {
	return r.RenderImage(pageIndex, dpi/72, format)
}

// RenderImage renders a page into a new image.
//
// One PDF point of the crop box corresponds to scale pixels in the image.
// Pages with a rotation of 90 or 270 degrees result in images where width
// and height are exchanged.  The returned image is owned by the caller.
//
// If the content drawer fails, or pending drawing operations cannot be
// flushed to the image, both the partially painted image and an error of
// type [*ContentRenderError] are returned.
func (r *Renderer) RenderImage(pageIndex int, scale float64, format PixelFormat) (image.Image, error) {
	page, err := r.getPage(pageIndex)
	if err != nil {
		return nil, err
	}
	w, h, err := cropSize(pageIndex, page)
	if err != nil {
		return nil, err
	}
	g, err := geometry.Resolve(w, h, page.Rotation(), scale)
	if err != nil {
		return nil, err
	}

	r.Logger().Debug("render page",
		"page", pageIndex,
		"width", g.Width,
		"height", g.Height,
		"rotation", int(g.Rotation),
		"format", format)

	c := canvas.New(g.Width, g.Height)
	defer c.Close()

	if !format.HasAlpha() {
		c.SetBackground(color.White)
	}

	c.ClearRect(0, 0, float64(g.Width), float64(g.Height))
	geometry.NewSurfacePlan(g, scale, scale).Apply(c)
	err = r.drawPage(pageIndex, page, c)

	flushErr := flushCanvas(c)
	if err == nil && flushErr != nil {
		err = &ContentRenderError{Index: pageIndex, Err: flushErr}
	}
	return c.Image(), err
}

// flushCanvas dispatches pending accelerated drawing operations to the
// pixel buffer of c.
var flushCanvas = func(c *canvas.Canvas) error {
	return c.FlushGPU()
}

// RenderToCanvas draws a page into c at 72 DPI.
func (r *Renderer) RenderToCanvas(pageIndex int, c Canvas) error {
	return r.RenderPageToCanvas(pageIndex, c, DefaultScale)
}

// RenderPageToCanvasWithDPI draws a page into c at the given resolution.
func (r *Renderer) RenderPageToCanvasWithDPI(pageIndex int, c Canvas, dpi float64) error {
	return r.RenderPageToCanvas(pageIndex, c, dpi/72)
}

// RenderPageToCanvas draws a page into an existing drawing context.
//
// The rectangle (0, 0, width, height) is cleared first, where width and
// height are the crop box dimensions in points, truncated to integers.  The
// transformation of c is then scaled by scale, translated and rotated
// according to the page rotation.  The drawing context remains owned by the
// caller; its transformation is not restored.
func (r *Renderer) RenderPageToCanvas(pageIndex int, c Canvas, scale float64) error {
	page, err := r.getPage(pageIndex)
	if err != nil {
		return err
	}
	w, h, err := cropSize(pageIndex, page)
	if err != nil {
		return err
	}
	g, err := geometry.Resolve(w, h, page.Rotation(), scale)
	if err != nil {
		return err
	}

	r.Logger().Debug("render page into canvas",
		"page", pageIndex,
		"scale", scale,
		"rotation", int(g.Rotation))

	width, height := int(w), int(h)
	c.ClearRect(0, 0, float64(width), float64(height))
	geometry.ExistingSurfacePlan(width, height, g.Rotation, scale, scale).Apply(c)
	return r.drawPage(pageIndex, page, c)
}

func (r *Renderer) getPage(index int) (Page, error) {
	n, err := r.doc.NumPages()
	if err != nil {
		return nil, &MetadataError{Index: -1, Err: err}
	}
	if index < 0 || index >= n {
		return nil, &PageNotFoundError{Index: index, NumPages: n}
	}

	page, err := r.doc.Page(index)
	if err != nil {
		var notFound *PageNotFoundError
		if errors.As(err, &notFound) {
			return nil, err
		}
		return nil, &MetadataError{Index: index, Err: err}
	}
	return page, nil
}

func cropSize(index int, page Page) (w, h float64, err error) {
	box := page.CropBox()
	if box == nil {
		return 0, 0, &MetadataError{Index: index, Err: errMissingCropBox}
	}
	return box.URx - box.LLx, box.URy - box.LLy, nil
}

var errMissingCropBox = errors.New("missing crop box")
