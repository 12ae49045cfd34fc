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

package pdfrender_test

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf"

	"seehuhn.de/go/pdfrender"
	"seehuhn.de/go/pdfrender/canvas"
	"seehuhn.de/go/pdfrender/geometry"
)

type testPage struct {
	box *pdf.Rectangle
	rot int
}

func (p *testPage) CropBox() *pdf.Rectangle { return p.box }
func (p *testPage) Rotation() int           { return p.rot }

type testDoc struct {
	pages   []*testPage
	numErr  error
	pageErr error
}

func (d *testDoc) NumPages() (int, error) {
	if d.numErr != nil {
		return 0, d.numErr
	}
	return len(d.pages), nil
}

func (d *testDoc) Page(index int) (pdfrender.Page, error) {
	if d.pageErr != nil {
		return nil, d.pageErr
	}
	return d.pages[index], nil
}

func letterDoc(rot int) *testDoc {
	return &testDoc{
		pages: []*testPage{{box: &pdf.Rectangle{URx: 612, URy: 792}, rot: rot}},
	}
}

// testDrawer calls draw and counts how often it was closed.
type testDrawer struct {
	draw     func(c pdfrender.Canvas) error
	closeErr error
	closed   *int
}

func (d *testDrawer) DrawPage(c pdfrender.Canvas, p pdfrender.Page, box *pdf.Rectangle) error {
	if d.draw == nil {
		return nil
	}
	return d.draw(c)
}

func (d *testDrawer) Close() error {
	*d.closed++
	return d.closeErr
}

func drawWith(draw func(c pdfrender.Canvas) error, closeErr error, closed *int) pdfrender.DrawerFactory {
	if closed == nil {
		closed = new(int)
	}
	return func(r *pdfrender.Renderer) (pdfrender.ContentDrawer, error) {
		return &testDrawer{draw: draw, closeErr: closeErr, closed: closed}, nil
	}
}

// fillRect paints a rectangle given in crop box coordinates.
func fillRect(x, y, w, h float64, col color.Color) func(c pdfrender.Canvas) error {
	return func(c pdfrender.Canvas) error {
		cc, ok := c.(*canvas.Canvas)
		if !ok {
			return fmt.Errorf("unexpected canvas type %T", c)
		}
		cc.SetColor(col)
		cc.DrawRectangle(x, y, w, h)
		return cc.Fill()
	}
}

func isRed(c color.Color) bool {
	r, g, b, a := c.RGBA()
	return r > 0xf000 && g < 0x1000 && b < 0x1000 && a > 0xf000
}

func isWhite(c color.Color) bool {
	r, g, b, a := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff && a == 0xffff
}

func isTransparent(c color.Color) bool {
	_, _, _, a := c.RGBA()
	return a == 0
}

func TestRenderImageSizes(t *testing.T) {
	for _, rot := range []int{0, 90, 180, 270} {
		for _, scale := range []float64{0.5, 1, 2} {
			t.Run(fmt.Sprintf("%d-%g", rot, scale), func(t *testing.T) {
				r := pdfrender.New(letterDoc(rot), nil)
				img, err := r.RenderImage(0, scale, pdfrender.RGB)
				if err != nil {
					t.Fatal(err)
				}
				w := int(math.Round(612 * scale))
				h := int(math.Round(792 * scale))
				if rot == 90 || rot == 270 {
					w, h = h, w
				}
				b := img.Bounds()
				if b.Dx() != w || b.Dy() != h {
					t.Errorf("got %dx%d, want %dx%d", b.Dx(), b.Dy(), w, h)
				}
			})
		}
	}
}

func TestLetterScenarios(t *testing.T) {
	cases := []struct {
		rot   int
		scale float64
		w, h  int
	}{
		{0, 1, 612, 792},
		{90, 1, 792, 612},
		{180, 2, 1224, 1584},
	}
	for _, c := range cases {
		r := pdfrender.New(letterDoc(c.rot), nil)
		img, err := r.RenderImage(0, c.scale, pdfrender.RGB)
		if err != nil {
			t.Fatal(err)
		}
		b := img.Bounds()
		if b.Dx() != c.w || b.Dy() != c.h {
			t.Errorf("rot=%d scale=%g: got %dx%d, want %dx%d",
				c.rot, c.scale, b.Dx(), b.Dy(), c.w, c.h)
		}
		if c.rot == 0 {
			for _, p := range []image.Point{{0, 0}, {611, 791}, {300, 400}} {
				if !isWhite(img.At(p.X, p.Y)) {
					t.Errorf("pixel %v is not white", p)
				}
			}
		}
	}
}

func TestDPIWrappers(t *testing.T) {
	r := pdfrender.New(letterDoc(0), nil)

	img, err := r.RenderImageWithDPI(0, 144, pdfrender.ARGB)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 1224 || b.Dy() != 1584 {
		t.Errorf("144 DPI: got %v", b)
	}

	img, err = r.Render(0)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 612 || b.Dy() != 792 {
		t.Errorf("default scale: got %v", b)
	}
}

func TestBackground(t *testing.T) {
	doc := &testDoc{pages: []*testPage{{box: &pdf.Rectangle{URx: 40, URy: 30}}}}
	r := pdfrender.New(doc, drawWith(fillRect(10, 10, 10, 10, color.RGBA{R: 255, A: 255}), nil, nil))

	for _, format := range []pdfrender.PixelFormat{pdfrender.RGB, pdfrender.ARGB} {
		img, err := r.RenderImage(0, 1, format)
		if err != nil {
			t.Fatal(err)
		}
		if !isRed(img.At(15, 15)) {
			t.Errorf("%s: content not painted", format)
		}
		for _, p := range []image.Point{{0, 0}, {39, 29}, {5, 15}, {25, 15}, {15, 25}} {
			c := img.At(p.X, p.Y)
			switch format {
			case pdfrender.RGB:
				if !isWhite(c) {
					t.Errorf("RGB: pixel %v is %v, want opaque white", p, c)
				}
			case pdfrender.ARGB:
				if !isTransparent(c) {
					t.Errorf("ARGB: pixel %v is %v, want transparent", p, c)
				}
			}
		}
	}
}

func TestRotatedPlacement(t *testing.T) {
	// a square in the top-left corner of the unrotated page
	draw := fillRect(0, 0, 50, 50, color.RGBA{R: 255, A: 255})
	cases := []struct {
		rot  int
		want image.Point
	}{
		{0, image.Point{25, 25}},
		{90, image.Point{792 - 25, 25}},
		{180, image.Point{612 - 25, 792 - 25}},
		{270, image.Point{25, 612 - 25}},
	}
	for _, c := range cases {
		r := pdfrender.New(letterDoc(c.rot), drawWith(draw, nil, nil))
		img, err := r.RenderImage(0, 1, pdfrender.ARGB)
		if err != nil {
			t.Fatal(err)
		}
		if !isRed(img.At(c.want.X, c.want.Y)) {
			t.Errorf("rot=%d: pixel %v not painted", c.rot, c.want)
		}
		if !isTransparent(img.At(img.Bounds().Dx()/2, img.Bounds().Dy()/2)) {
			t.Errorf("rot=%d: center painted", c.rot)
		}
	}
}

func TestIdempotent(t *testing.T) {
	doc := &testDoc{pages: []*testPage{{box: &pdf.Rectangle{URx: 50, URy: 40}, rot: 90}}}
	draw := func(c pdfrender.Canvas) error {
		cc := c.(*canvas.Canvas)
		cc.SetColor(color.RGBA{B: 200, A: 128})
		cc.DrawCircle(20, 15, 12.3)
		return cc.Fill()
	}
	r := pdfrender.New(doc, drawWith(draw, nil, nil))

	for _, format := range []pdfrender.PixelFormat{pdfrender.RGB, pdfrender.ARGB} {
		img1, err := r.RenderImage(0, 1.7, format)
		if err != nil {
			t.Fatal(err)
		}
		img2, err := r.RenderImage(0, 1.7, format)
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(pixels(img1), pixels(img2)); d != "" {
			t.Errorf("%s: images differ (-first +second):\n%s", format, d)
		}
	}
}

func pixels(img image.Image) [][4]uint32 {
	b := img.Bounds()
	res := make([][4]uint32, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			res = append(res, [4]uint32{r, g, b, a})
		}
	}
	return res
}

func TestPageNotFound(t *testing.T) {
	r := pdfrender.New(letterDoc(0), nil)
	for _, idx := range []int{-1, 1, 100} {
		_, err := r.RenderImage(idx, 1, pdfrender.RGB)
		var notFound *pdfrender.PageNotFoundError
		if !errors.As(err, &notFound) {
			t.Errorf("page %d: expected PageNotFoundError, got %v", idx, err)
			continue
		}
		if notFound.Index != idx || notFound.NumPages != 1 {
			t.Errorf("page %d: unexpected error contents %+v", idx, notFound)
		}

		err = r.RenderPageToCanvas(idx, canvas.New(10, 10), 1)
		if !errors.As(err, &notFound) {
			t.Errorf("page %d: expected PageNotFoundError, got %v", idx, err)
		}
	}
}

func TestMetadataErrors(t *testing.T) {
	errBroken := errors.New("broken")
	docs := []*testDoc{
		{numErr: errBroken},
		{pages: []*testPage{{}}, pageErr: errBroken},
	}
	for i, doc := range docs {
		r := pdfrender.New(doc, nil)
		_, err := r.RenderImage(0, 1, pdfrender.RGB)
		var metaErr *pdfrender.MetadataError
		if !errors.As(err, &metaErr) {
			t.Errorf("%d: expected MetadataError, got %v", i, err)
		}
		if !errors.Is(err, errBroken) {
			t.Errorf("%d: cause lost: %v", i, err)
		}
	}

	// missing crop box
	r := pdfrender.New(&testDoc{pages: []*testPage{{}}}, nil)
	_, err := r.RenderImage(0, 1, pdfrender.RGB)
	var metaErr *pdfrender.MetadataError
	if !errors.As(err, &metaErr) {
		t.Errorf("expected MetadataError, got %v", err)
	}
}

func TestInvalidGeometry(t *testing.T) {
	var geomErr *geometry.InvalidGeometryError

	r := pdfrender.New(letterDoc(45), nil)
	_, err := r.RenderImage(0, 1, pdfrender.RGB)
	if !errors.As(err, &geomErr) {
		t.Errorf("rotation 45: expected InvalidGeometryError, got %v", err)
	}
	err = r.RenderPageToCanvas(0, canvas.New(10, 10), 1)
	if !errors.As(err, &geomErr) {
		t.Errorf("rotation 45: expected InvalidGeometryError, got %v", err)
	}

	r = pdfrender.New(letterDoc(0), nil)
	_, err = r.RenderImage(0, 0, pdfrender.RGB)
	if !errors.As(err, &geomErr) {
		t.Errorf("scale 0: expected InvalidGeometryError, got %v", err)
	}
}

func TestDrawerErrors(t *testing.T) {
	errDraw := errors.New("draw failed")
	errClose := errors.New("close failed")

	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	cases := []struct {
		name      string
		draw      func(c pdfrender.Canvas) error
		closeErr  error
		wantCause error
		wantLog   bool
	}{
		{"draw", func(pdfrender.Canvas) error { return errDraw }, nil, errDraw, false},
		{"close", nil, errClose, errClose, false},
		{"both", func(pdfrender.Canvas) error { return errDraw }, errClose, errDraw, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			logBuf.Reset()
			closed := 0
			r := pdfrender.New(letterDoc(0), drawWith(c.draw, c.closeErr, &closed),
				pdfrender.WithLogger(logger))

			img, err := r.RenderImage(0, 0.25, pdfrender.RGB)
			var renderErr *pdfrender.ContentRenderError
			if !errors.As(err, &renderErr) {
				t.Fatalf("expected ContentRenderError, got %v", err)
			}
			if !errors.Is(err, c.wantCause) {
				t.Errorf("error %v does not wrap %v", err, c.wantCause)
			}
			if img == nil {
				t.Error("partial image not returned")
			}
			if closed != 1 {
				t.Errorf("drawer closed %d times", closed)
			}
			if got := strings.Contains(logBuf.String(), "close failed"); got != c.wantLog {
				t.Errorf("close error logged: %t, want %t", got, c.wantLog)
			}

			closed = 0
			err = r.RenderPageToCanvas(0, canvas.New(10, 10), 1)
			if !errors.Is(err, c.wantCause) {
				t.Errorf("canvas: error %v does not wrap %v", err, c.wantCause)
			}
			if closed != 1 {
				t.Errorf("canvas: drawer closed %d times", closed)
			}
		})
	}
}

func TestDrawerFactoryError(t *testing.T) {
	errFactory := errors.New("no drawer")
	factory := func(*pdfrender.Renderer) (pdfrender.ContentDrawer, error) {
		return nil, errFactory
	}
	r := pdfrender.New(letterDoc(0), factory)
	_, err := r.RenderImage(0, 1, pdfrender.RGB)
	if !errors.Is(err, errFactory) {
		t.Errorf("expected factory error, got %v", err)
	}
}

func TestDrawerClosedOnPanic(t *testing.T) {
	closed := 0
	draw := func(pdfrender.Canvas) error { panic("boom") }
	r := pdfrender.New(letterDoc(0), drawWith(draw, nil, &closed))

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic was swallowed")
			}
		}()
		r.RenderImage(0, 0.1, pdfrender.RGB)
	}()
	if closed != 1 {
		t.Errorf("drawer closed %d times", closed)
	}
}

func TestDrawerBoundToRenderer(t *testing.T) {
	doc := letterDoc(0)
	var seen pdfrender.Document
	factory := func(r *pdfrender.Renderer) (pdfrender.ContentDrawer, error) {
		seen = r.Document()
		return &testDrawer{closed: new(int)}, nil
	}
	r := pdfrender.New(doc, factory)
	if _, err := r.RenderImage(0, 0.1, pdfrender.RGB); err != nil {
		t.Fatal(err)
	}
	if seen != pdfrender.Document(doc) {
		t.Error("drawer not bound to the renderer's document")
	}
}

// recordingCanvas records all calls made by the renderer.
type recordingCanvas struct {
	ops []string
}

func (c *recordingCanvas) Translate(x, y float64) {
	c.ops = append(c.ops, fmt.Sprintf("translate(%g,%g)", x, y))
}

func (c *recordingCanvas) Rotate(angle float64) {
	c.ops = append(c.ops, fmt.Sprintf("rotate(%g)", math.Round(angle*180/math.Pi)))
}

func (c *recordingCanvas) Scale(x, y float64) {
	c.ops = append(c.ops, fmt.Sprintf("scale(%g,%g)", x, y))
}

func (c *recordingCanvas) SetBackground(col color.Color) {
	c.ops = append(c.ops, "background")
}

func (c *recordingCanvas) ClearRect(x, y, w, h float64) {
	c.ops = append(c.ops, fmt.Sprintf("clear(%g,%g,%g,%g)", x, y, w, h))
}

func TestRenderPageToCanvasOrder(t *testing.T) {
	cases := []struct {
		box   *pdf.Rectangle
		rot   int
		scale float64
		want  []string
	}{
		{
			box: &pdf.Rectangle{URx: 612, URy: 792}, rot: 270, scale: 1,
			want: []string{"clear(0,0,612,792)", "scale(1,1)", "translate(792,0)", "rotate(270)", "draw"},
		},
		{
			box: &pdf.Rectangle{URx: 612, URy: 792}, rot: 90, scale: 2,
			want: []string{"clear(0,0,612,792)", "scale(2,2)", "translate(792,0)", "rotate(90)", "draw"},
		},
		{
			box: &pdf.Rectangle{URx: 100.7, URy: 50.9}, rot: -180, scale: 3,
			want: []string{"clear(0,0,100,50)", "scale(3,3)", "translate(100,50)", "rotate(180)", "draw"},
		},
		{
			box: &pdf.Rectangle{LLx: 10, LLy: 20, URx: 110, URy: 220}, rot: 0, scale: 1.5,
			want: []string{"clear(0,0,100,200)", "scale(1.5,1.5)", "draw"},
		},
	}
	for i, c := range cases {
		rc := &recordingCanvas{}
		draw := func(pdfrender.Canvas) error {
			rc.ops = append(rc.ops, "draw")
			return nil
		}
		doc := &testDoc{pages: []*testPage{{box: c.box, rot: c.rot}}}
		r := pdfrender.New(doc, drawWith(draw, nil, nil))
		err := r.RenderPageToCanvas(0, rc, c.scale)
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(c.want, rc.ops); d != "" {
			t.Errorf("%d: unexpected calls (-want +got):\n%s", i, d)
		}
	}
}

// TestRenderPageToCanvasMatrix checks the composed transformation for a page
// with rotation 270 by decomposing the matrix seen by the drawer.
func TestRenderPageToCanvasMatrix(t *testing.T) {
	for _, scale := range []float64{1, 2} {
		var ctm matrix.Matrix
		draw := func(c pdfrender.Canvas) error {
			ctm = c.(*canvas.Canvas).CTM()
			return nil
		}
		r := pdfrender.New(letterDoc(270), drawWith(draw, nil, nil))

		c := canvas.New(1600, 1600)
		err := r.RenderPageToCanvas(0, c, scale)
		if err != nil {
			t.Fatal(err)
		}

		// rotation part
		angle := math.Atan2(ctm[1], ctm[0]) * 180 / math.Pi
		if math.Abs(angle+90) > 1e-9 {
			t.Errorf("scale %g: rotation angle %g, want 270 (-90)", scale, angle)
		}
		// scale part
		if s := math.Hypot(ctm[0], ctm[1]); math.Abs(s-scale) > 1e-9 {
			t.Errorf("scale %g: decomposed scale %g", scale, s)
		}
		// translation, applied after rotation and before scaling
		tx, ty := ctm[4]/scale, ctm[5]/scale
		if math.Abs(tx-792) > 1e-9 || math.Abs(ty) > 1e-9 {
			t.Errorf("scale %g: translation (%g, %g), want (792, 0)", scale, tx, ty)
		}

		want := geometry.ExistingSurfacePlan(612, 792, geometry.Rotate270, scale, scale).Matrix()
		if d := cmp.Diff(want, ctm, cmpopts.EquateApprox(0, 1e-9)); d != "" {
			t.Errorf("scale %g: unexpected matrix (-want +got):\n%s", scale, d)
		}
	}
}

func TestRenderImageMatrix(t *testing.T) {
	for _, rot := range []int{0, 90, 180, 270} {
		var ctm matrix.Matrix
		draw := func(c pdfrender.Canvas) error {
			ctm = c.(*canvas.Canvas).CTM()
			return nil
		}
		r := pdfrender.New(letterDoc(rot), drawWith(draw, nil, nil))
		if _, err := r.RenderImage(0, 2, pdfrender.ARGB); err != nil {
			t.Fatal(err)
		}

		g, err := geometry.Resolve(612, 792, rot, 2)
		if err != nil {
			t.Fatal(err)
		}
		want := geometry.NewSurfacePlan(g, 2, 2).Matrix()
		if d := cmp.Diff(want, ctm, cmpopts.EquateApprox(0, 1e-9)); d != "" {
			t.Errorf("rot=%d: unexpected matrix (-want +got):\n%s", rot, d)
		}
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := pdfrender.New(letterDoc(90), nil, pdfrender.WithLogger(logger))
	if _, err := r.RenderImage(0, 0.5, pdfrender.RGB); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"render page", "width=396", "height=306", "rotation=90"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q does not contain %q", out, want)
		}
	}
}

func TestParsePixelFormat(t *testing.T) {
	cases := map[string]pdfrender.PixelFormat{
		"rgb":  pdfrender.RGB,
		"RGB":  pdfrender.RGB,
		"argb": pdfrender.ARGB,
		"RGBA": pdfrender.ARGB,
	}
	for in, want := range cases {
		got, err := pdfrender.ParsePixelFormat(in)
		if err != nil || got != want {
			t.Errorf("ParsePixelFormat(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := pdfrender.ParsePixelFormat("cmyk"); err == nil {
		t.Error("missing error for unknown format")
	}
}

func TestRenderToCanvas(t *testing.T) {
	rc := &recordingCanvas{}
	draw := func(pdfrender.Canvas) error {
		rc.ops = append(rc.ops, "draw")
		return nil
	}
	r := pdfrender.New(letterDoc(0), drawWith(draw, nil, nil))
	err := r.RenderToCanvas(0, rc)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"clear(0,0,612,792)", "scale(1,1)", "draw"}
	if d := cmp.Diff(want, rc.ops); d != "" {
		t.Errorf("unexpected calls (-want +got):\n%s", d)
	}
}

func TestFlushError(t *testing.T) {
	errFlush := errors.New("flush failed")
	restore := pdfrender.SetFlushCanvas(func(*canvas.Canvas) error { return errFlush })
	defer restore()

	r := pdfrender.New(letterDoc(0), drawWith(nil, nil, nil))
	img, err := r.RenderImage(0, 0.25, pdfrender.RGB)
	var renderErr *pdfrender.ContentRenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("expected ContentRenderError, got %v", err)
	}
	if renderErr.Index != 0 || !errors.Is(err, errFlush) {
		t.Errorf("unexpected error %v", err)
	}
	if img == nil {
		t.Error("image not returned")
	}

	// a drawer error takes precedence over the flush error
	errDraw := errors.New("draw failed")
	r = pdfrender.New(letterDoc(0), drawWith(func(pdfrender.Canvas) error { return errDraw }, nil, nil))
	_, err = r.RenderImage(0, 0.25, pdfrender.RGB)
	if !errors.Is(err, errDraw) {
		t.Errorf("error %v does not wrap %v", err, errDraw)
	}
}
