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

// Pdf2img renders pages of a PDF file to image files.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"seehuhn.de/go/pdfrender"
	"seehuhn.de/go/pdfrender/document"
	"seehuhn.de/go/pdfrender/drawer/fitzdraw"
	"seehuhn.de/go/pdfrender/drawer/pdfdraw"
)

func main() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	page    int
	dpi     float64
	scale   float64
	format  string
	drawer  string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opt := &options{}
	cmd := &cobra.Command{
		Use:   "pdf2img [flags] input.pdf output.png",
		Short: "Render PDF pages to image files",
		Long: `Pdf2img renders pages of a PDF file to PNG, JPEG, TIFF or BMP files.
The output format is chosen by the extension of the output file name.

To render all pages, use --page=0 and include a %d verb in the output
file name, for example "page-%03d.png".  Defaults for --dpi, --format and
--drawer can be set using the environment variables PDF2IMG_DPI,
PDF2IMG_FORMAT and PDF2IMG_DRAWER, or in a .env file.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("scale") {
				opt.scale = opt.dpi / 72
			}
			return run(cmd, opt, args[0], args[1])
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opt.page, "page", 1, "page number to render (1-based, 0 for all pages)")
	flags.Float64Var(&opt.dpi, "dpi", envFloat("PDF2IMG_DPI", 72), "resolution in dots per inch")
	flags.Float64Var(&opt.scale, "scale", 1, "pixels per PDF point (overrides --dpi)")
	flags.StringVar(&opt.format, "format", envString("PDF2IMG_FORMAT", "rgb"), "pixel format, rgb or argb")
	flags.StringVar(&opt.drawer, "drawer", envString("PDF2IMG_DRAWER", "vector"), "content drawer: vector, mupdf or none")
	flags.BoolVarP(&opt.verbose, "verbose", "v", false, "log rendering details to stderr")

	return cmd
}

func run(cmd *cobra.Command, opt *options, inputFile, outputFile string) error {
	if opt.verbose {
		h := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})
		pdfrender.SetLogger(slog.New(h))
	}

	format, err := pdfrender.ParsePixelFormat(opt.format)
	if err != nil {
		return err
	}
	cache := fitzdraw.NewCache()
	defer cache.Close()
	newDrawer, err := drawerFactory(opt.drawer, cache)
	if err != nil {
		return err
	}
	if opt.page == 0 && !hasPageVerb(outputFile) {
		return fmt.Errorf("output file name %q must contain a %%d verb when rendering all pages", outputFile)
	}
	if opt.page < 0 {
		return fmt.Errorf("invalid page number %d", opt.page)
	}
	encode, err := encoderFor(outputFile)
	if err != nil {
		return err
	}

	doc, err := document.Open(inputFile)
	if err != nil {
		return err
	}
	defer doc.Close()

	numPages, err := doc.NumPages()
	if err != nil {
		return err
	}
	first, last := opt.page, opt.page
	if opt.page == 0 {
		first, last = 1, numPages
	}

	r := pdfrender.New(doc, newDrawer)
	for pageNo := first; pageNo <= last; pageNo++ {
		img, err := r.RenderImage(pageNo-1, opt.scale, format)
		if err != nil {
			return err
		}

		name := outputName(outputFile, pageNo, opt.page == 0)
		err = writeImage(name, img, encode)
		if err != nil {
			return err
		}
		cmd.Printf("rendered page %d of %s to %s\n", pageNo, inputFile, name)
	}
	return nil
}

// drawerFactory returns the factory for the named content drawer.
// MuPDF documents are kept open in cache.
func drawerFactory(name string, cache *fitzdraw.Cache) (pdfrender.DrawerFactory, error) {
	switch strings.ToLower(name) {
	case "vector":
		return pdfdraw.New, nil
	case "mupdf":
		return cache.New, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown drawer %q", name)
	}
}

func envString(key, def string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return def
}

func envFloat(key string, def float64) float64 {
	val, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	x, err := strconv.ParseFloat(val, 64)
	if err != nil || x <= 0 {
		return def
	}
	return x
}
