package extract

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/gen2brain/go-fitz"
)

// FitzRasterizer renders PDF pages with MuPDF.
type FitzRasterizer struct{}

// FirstPage renders page 0 at the given DPI and reports the document's page count.
// The page is measured before rendering and refused when it would exceed maxPixels.
func (FitzRasterizer) FirstPage(data []byte, dpi float64, maxPixels int64) (image.Image, int, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, 0, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	pages := doc.NumPage()
	if pages < 1 {
		return nil, 0, errors.New("pdf has no pages")
	}
	bound, err := doc.Bound(0)
	if err != nil {
		return nil, pages, fmt.Errorf("measure page 0: %w", err)
	}
	w, h := renderedSize(bound, dpi)
	if err := checkPixels(w, h, maxPixels); err != nil {
		return nil, pages, err
	}
	img, err := doc.ImageDPI(0, dpi)
	if err != nil {
		return nil, pages, fmt.Errorf("render page 0: %w", err)
	}
	return img, pages, nil
}

// renderedSize converts a page box in points to pixels at dpi.
func renderedSize(bound image.Rectangle, dpi float64) (w, h int64) {
	w = int64(math.Ceil(float64(bound.Dx()) * dpi / 72))
	h = int64(math.Ceil(float64(bound.Dy()) * dpi / 72))
	return w, h
}
