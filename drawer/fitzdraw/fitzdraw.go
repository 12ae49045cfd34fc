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

// Package fitzdraw draws PDF pages using the MuPDF library.
//
// MuPDF renders the complete page, including text and images, into a
// bitmap at the resolution of the canvas.  The bitmap is then placed onto
// the crop box area of the canvas.  Since MuPDF paints an opaque white page
// background, pages rendered in ARGB format are not transparent.
//
// The drawers returned by [New] open the PDF file with MuPDF once per
// rendered page, since a new drawer is created for every page.  For
// documents with many pages, a [Cache] keeps the MuPDF documents open
// until the cache is closed.
package fitzdraw

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"sync"

	"github.com/gen2brain/go-fitz"
	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf"

	"seehuhn.de/go/pdfrender"
	"seehuhn.de/go/pdfrender/canvas"
	"seehuhn.de/go/pdfrender/document"
	"seehuhn.de/go/pdfrender/geometry"
)

// Painter is the set of drawing operations used by the drawer.
// [*canvas.Canvas] implements this interface.
type Painter interface {
	pdfrender.Canvas

	CTM() matrix.Matrix
	Push()
	Pop()
	Identity()
	DrawImageEx(img *gg.ImageBuf, opts gg.DrawImageOptions)
}

// rasterizer renders pages of a PDF file to bitmaps.
// [*fitz.Document] implements this interface.
type rasterizer interface {
	ImageDPI(pageNumber int, dpi float64) (*image.RGBA, error)
	Close() error
}

// openFile opens a PDF file with MuPDF.
var openFile = func(path string) (rasterizer, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Drawer draws pages using MuPDF.
type Drawer struct {
	doc    rasterizer
	logger *slog.Logger
}

// New opens the file of the renderer's document with MuPDF.  The document
// must be a [*document.Document] which was opened using [document.Open].
// New can be used as a [pdfrender.DrawerFactory].
func New(r *pdfrender.Renderer) (pdfrender.ContentDrawer, error) {
	path, err := filePath(r)
	if err != nil {
		return nil, err
	}
	fd, err := openFile(path)
	if err != nil {
		return nil, fmt.Errorf("fitzdraw: %w", err)
	}
	d := &Drawer{
		doc:    fd,
		logger: r.Logger(),
	}
	return d, nil
}

func filePath(r *pdfrender.Renderer) (string, error) {
	doc, ok := r.Document().(*document.Document)
	if !ok || doc.Path() == "" {
		return "", errNoFile
	}
	return doc.Path(), nil
}

// Cache keeps PDF files open with MuPDF, so that pages of the same file
// can be rendered without parsing the file again.
// A Cache is safe for concurrent use.
type Cache struct {
	mu   sync.Mutex
	docs map[string]rasterizer
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{docs: make(map[string]rasterizer)}
}

// New returns a drawer which uses the cached MuPDF document for the file of
// the renderer's document, opening the file on first use.  Closing the
// drawer leaves the document open.
// c.New can be used as a [pdfrender.DrawerFactory].
func (c *Cache) New(r *pdfrender.Renderer) (pdfrender.ContentDrawer, error) {
	path, err := filePath(r)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.docs == nil {
		return nil, errCacheClosed
	}
	fd, ok := c.docs[path]
	if !ok {
		fd, err = openFile(path)
		if err != nil {
			return nil, fmt.Errorf("fitzdraw: %w", err)
		}
		c.docs[path] = fd
	}
	d := &Drawer{
		doc:    &lockedRasterizer{mu: &c.mu, r: fd},
		logger: r.Logger(),
	}
	return d, nil
}

// Close releases all cached MuPDF documents.  Drawers obtained from the
// cache must not be used after Close.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for _, fd := range c.docs {
		errs = append(errs, fd.Close())
	}
	c.docs = nil
	return errors.Join(errs...)
}

// lockedRasterizer serializes access to a cached MuPDF document.
// Closing it leaves the document open.
type lockedRasterizer struct {
	mu *sync.Mutex
	r  rasterizer
}

func (l *lockedRasterizer) ImageDPI(pageNumber int, dpi float64) (*image.RGBA, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.ImageDPI(pageNumber, dpi)
}

func (l *lockedRasterizer) Close() error {
	return nil
}

// DrawPage implements the [pdfrender.ContentDrawer] interface.
func (d *Drawer) DrawPage(c pdfrender.Canvas, p pdfrender.Page, cropBox *pdf.Rectangle) error {
	pc, ok := c.(Painter)
	if !ok {
		return fmt.Errorf("fitzdraw: unsupported canvas type %T", c)
	}
	page, ok := p.(*document.Page)
	if !ok {
		return fmt.Errorf("fitzdraw: unsupported page type %T", p)
	}
	rot, err := geometry.NormalizeRotation(page.Rotation())
	if err != nil {
		return err
	}

	ctm := pc.CTM()
	dpi := 72 * canvas.ScaleFactor(ctm)
	img, err := d.doc.ImageDPI(page.Index, dpi)
	if err != nil {
		return fmt.Errorf("fitzdraw: page %d: %w", page.Index, err)
	}
	d.logger.Debug("fitzdraw: page rasterized",
		"page", page.Index,
		"dpi", dpi,
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy())

	upright := unrotate(img, rot)
	w := cropBox.URx - cropBox.LLx
	h := cropBox.URy - cropBox.LLy
	placed, at := place(upright, w, h, ctm)
	if placed == nil {
		return nil
	}

	pc.Push()
	defer pc.Pop()
	pc.Identity()
	pc.DrawImageEx(gg.ImageBufFromImage(placed), gg.DrawImageOptions{
		X:       float64(at.X),
		Y:       float64(at.Y),
		Opacity: 1,
	})
	return nil
}

// Close releases the MuPDF document, unless the drawer was obtained from a
// [Cache].
func (d *Drawer) Close() error {
	return d.doc.Close()
}

// unrotate undoes the page rotation which MuPDF applies when rendering a
// page.  The result is the page in upright orientation.
func unrotate(src image.Image, rot geometry.Rotation) *image.RGBA {
	b := src.Bounds()
	if b.Min != (image.Point{}) {
		tmp := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(tmp, tmp.Bounds(), src, b.Min, draw.Src)
		src, b = tmp, tmp.Bounds()
	}

	w, h := b.Dx(), b.Dy()
	if rot.SwapsAxes() {
		w, h = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	var s2d f64.Aff3
	switch rot {
	case geometry.Rotate90:
		s2d = f64.Aff3{0, 1, 0, -1, 0, float64(h)}
	case geometry.Rotate180:
		s2d = f64.Aff3{-1, 0, float64(w), 0, -1, float64(h)}
	case geometry.Rotate270:
		s2d = f64.Aff3{0, -1, float64(w), 1, 0, 0}
	default:
		draw.Draw(dst, dst.Bounds(), src, image.Point{}, draw.Src)
		return dst
	}
	draw.NearestNeighbor.Transform(dst, s2d, src, b, draw.Src, nil)
	return dst
}

// place maps an upright page bitmap, showing a crop box of w×h points, to
// device space using ctm.  The result covers the device bounding box of the
// crop box, and at gives its top-left corner.  If the bounding box is
// empty, nil is returned.
func place(upright *image.RGBA, w, h float64, ctm matrix.Matrix) (*image.RGBA, image.Point) {
	b := upright.Bounds()
	if b.Empty() || w <= 0 || h <= 0 {
		return nil, image.Point{}
	}

	xMin, yMin := math.Inf(1), math.Inf(1)
	xMax, yMax := math.Inf(-1), math.Inf(-1)
	for _, corner := range [][2]float64{{0, 0}, {w, 0}, {0, h}, {w, h}} {
		x := ctm[0]*corner[0] + ctm[2]*corner[1] + ctm[4]
		y := ctm[1]*corner[0] + ctm[3]*corner[1] + ctm[5]
		xMin, xMax = math.Min(xMin, x), math.Max(xMax, x)
		yMin, yMax = math.Min(yMin, y), math.Max(yMax, y)
	}
	area := image.Rect(
		int(math.Floor(xMin)), int(math.Floor(yMin)),
		int(math.Ceil(xMax)), int(math.Ceil(yMax)))
	if area.Empty() {
		return nil, image.Point{}
	}

	kx := w / float64(b.Dx())
	ky := h / float64(b.Dy())
	s2d := f64.Aff3{
		ctm[0] * kx, ctm[2] * ky, ctm[4] - float64(area.Min.X),
		ctm[1] * kx, ctm[3] * ky, ctm[5] - float64(area.Min.Y),
	}
	dst := image.NewRGBA(image.Rect(0, 0, area.Dx(), area.Dy()))
	draw.BiLinear.Transform(dst, s2d, upright, b, draw.Src, nil)
	return dst, area.Min
}

var (
	errNoFile      = errors.New("fitzdraw: document not opened from a file")
	errCacheClosed = errors.New("fitzdraw: cache closed")
)
