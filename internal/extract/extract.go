// Package extract turns an uploaded resume file into plain text with a vision model.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"net/http"
	"strings"

	"resume-generator/internal/llm"
	"resume-generator/internal/shared/telemetry"
	"resume-generator/internal/shared/util"
)

// MediaType is the declared kind of an upload.
type MediaType string

const (
	MediaPDF     MediaType = "application/pdf"
	MediaPNG     MediaType = "image/png"
	MediaJPEG    MediaType = "image/jpeg"
	MediaUnknown MediaType = ""
)

const (
	pdfInstruction   = "Extract all resume text from this image (converted from PDF)."
	imageInstruction = "Extract all resume text from this image."

	// PDFRenderDPI is the resolution the first PDF page is rasterized at.
	PDFRenderDPI = 200

	// MaxImagePixels caps a decoded upload or a rendered page.
	MaxImagePixels int64 = 89_478_485
)

// ErrImageTooLarge is returned when an image or page exceeds MaxImagePixels.
var ErrImageTooLarge = errors.New("image exceeds pixel limit")

// MediaTypeFor resolves an upload's media type from its declared content type,
// falling back to the file extension and finally to content sniffing.
func MediaTypeFor(contentType, fileName string, data []byte) MediaType {
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "application/pdf":
		return MediaPDF
	case "image/png":
		return MediaPNG
	case "image/jpeg", "image/jpg", "image/pjpeg":
		return MediaJPEG
	}
	switch util.FileExtension(fileName) {
	case "pdf":
		return MediaPDF
	case "png":
		return MediaPNG
	case "jpg", "jpeg":
		return MediaJPEG
	}
	if len(data) > 0 {
		sniffed := http.DetectContentType(data)
		if sniffed != "application/octet-stream" {
			return MediaTypeFor(sniffed, "", nil)
		}
	}
	return MediaUnknown
}

// Rasterizer renders the first page of a PDF to an image and reports the page count.
// Implementations must refuse pages larger than maxPixels at dpi without rendering them.
type Rasterizer interface {
	FirstPage(data []byte, dpi float64, maxPixels int64) (img image.Image, pages int, err error)
}

// Extractor sends the rendered upload to the vision model, one attempt per call.
type Extractor struct {
	reader     llm.VisionReader
	rasterizer Rasterizer
}

// New builds an Extractor. A nil rasterizer uses MuPDF.
func New(reader llm.VisionReader, rasterizer Rasterizer) *Extractor {
	if rasterizer == nil {
		rasterizer = FitzRasterizer{}
	}
	return &Extractor{reader: reader, rasterizer: rasterizer}
}

// Extract returns the trimmed text the model read from data, or "" on any failure.
// Only the first page of a PDF is read.
func (e *Extractor) Extract(ctx context.Context, data []byte, media MediaType) string {
	if len(data) == 0 {
		return ""
	}

	var (
		img         image.Image
		instruction string
		err         error
	)
	switch media {
	case MediaPDF:
		var pages int
		img, pages, err = e.rasterizer.FirstPage(data, PDFRenderDPI, MaxImagePixels)
		if pages > 1 {
			telemetry.Info("extract.pages_ignored", map[string]any{"pages": pages, "read": 1})
		}
		instruction = pdfInstruction
	default:
		img, err = decodeBounded(data, MaxImagePixels)
		instruction = imageInstruction
	}
	if err != nil {
		event := "extract.decode_failed"
		if errors.Is(err, ErrImageTooLarge) {
			event = "extract.image_too_large"
		}
		telemetry.Warn(event, map[string]any{"media_type": string(media), "error": err})
		return ""
	}

	encoded, err := encodeRGBPNG(img)
	if err != nil {
		telemetry.Warn("extract.encode_failed", map[string]any{"media_type": string(media), "error": err})
		return ""
	}

	text, err := e.reader.ReadImage(ctx, instruction, llm.Image{Data: encoded, MIMEType: string(MediaPNG)})
	if err != nil {
		telemetry.Error("extract.model_failed", map[string]any{"media_type": string(media), "error": err})
		return ""
	}
	return strings.TrimSpace(text)
}

// encodeRGBPNG flattens img onto a white opaque canvas and PNG-encodes it.
func encodeRGBPNG(img image.Image) ([]byte, error) {
	bounds := img.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(canvas, bounds, img, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeBounded reads the image header first and refuses anything over maxPixels.
func decodeBounded(data []byte, maxPixels int64) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := checkPixels(int64(cfg.Width), int64(cfg.Height), maxPixels); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

func checkPixels(w, h, maxPixels int64) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("invalid image size %dx%d", w, h)
	}
	if w > maxPixels/h {
		return fmt.Errorf("%w: %dx%d", ErrImageTooLarge, w, h)
	}
	return nil
}
