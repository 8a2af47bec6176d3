// Package imaging holds the upload-processing pipeline: the ingestion gate,
// background removal with graceful degradation, and the garment categorizer.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log"

	_ "image/jpeg"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned when uploaded bytes cannot be decoded as a
// known image format. Callers may treat this as a soft failure and keep the
// raw bytes instead of rejecting the whole upload.
var ErrUnsupportedImage = errors.New("unsupported image format")

// maxEdge bounds the longest image edge before processing. Phone uploads
// regularly exceed 4000px and the remover cost scales with pixel count.
const maxEdge = 1024

// BackgroundRemover strips the background from a garment photo. A failed
// removal is not fatal; the pipeline falls back to a plain RGBA conversion.
type BackgroundRemover interface {
	Remove(img image.Image) (image.Image, error)
}

// Result is the outcome of processing one upload. Degraded marks the
// pass-through path where the input could not be decoded and the original
// bytes were kept; Note then carries the user-facing explanation.
type Result struct {
	PNG      []byte
	Degraded bool
	Note     string
}

// Processor runs the CPU-bound part of the upload pipeline. The gate bounds
// how many decodes/removals run at once so bulk uploads don't starve
// I/O-bound requests.
type Processor struct {
	remover BackgroundRemover
	gate    chan struct{}
}

// NewProcessor creates a Processor with the given remover and concurrency
// bound. A bound below one disables the gate's limiting effect sensibly.
func NewProcessor(remover BackgroundRemover, maxConcurrent int) *Processor {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Processor{
		remover: remover,
		gate:    make(chan struct{}, maxConcurrent),
	}
}

// Process decodes raw upload bytes, removes the background and returns a
// PNG-encoded RGBA artifact. Undecodable input returns ErrUnsupportedImage.
// A remover failure after a successful decode degrades to a plain RGBA
// conversion and still succeeds.
func (p *Processor) Process(raw []byte) (Result, error) {
	p.gate <- struct{}{}
	defer func() { <-p.gate }()

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	src := resizeWithinMax(toNRGBA(img), maxEdge)

	out, err := p.remover.Remove(src)
	if err != nil {
		// Background removal is a best-effort enhancement; keep the whole
		// image as foreground instead of failing the upload.
		log.Printf("background removal failed (%s input), using full image: %v", format, err)
		out = src
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, toNRGBA(out)); err != nil {
		return Result{}, fmt.Errorf("failed to encode processed image: %w", err)
	}
	return Result{PNG: buf.Bytes()}, nil
}

// ProcessLenient behaves like Process but turns an unsupported format into a
// degraded pass-through of the raw bytes, with a note for the caller to
// surface. Used by item creation, where background removal is optional.
func (p *Processor) ProcessLenient(raw []byte) (Result, error) {
	res, err := p.Process(raw)
	if errors.Is(err, ErrUnsupportedImage) {
		return Result{
			PNG:      raw,
			Degraded: true,
			Note:     "stored without background removal (unrecognized image format)",
		}, nil
	}
	return res, err
}

// toNRGBA converts any decoded image into NRGBA so the pipeline always works
// on an alpha-capable representation.
func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba
	}
	b := img.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}

// resizeWithinMax scales the image down so its longest edge does not exceed
// maxSize. Smaller images pass through untouched.
func resizeWithinMax(img *image.NRGBA, maxSize int) *image.NRGBA {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxSize {
		return img
	}

	scale := float64(maxSize) / float64(longest)
	resized := resize.Resize(uint(float64(w)*scale), uint(float64(h)*scale), img, resize.Lanczos3)
	return toNRGBA(resized)
}
