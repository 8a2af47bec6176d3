package imaging

import "image"

// HeuristicRemover is the default BackgroundRemover: it samples the image
// corners to estimate the background color and clears every pixel within a
// tolerance of that estimate. Good enough for flat-lay garment photos on a
// plain backdrop; a model-backed remover can replace it behind the same
// interface.
type HeuristicRemover struct {
	// Tolerance is the maximum per-channel distance (0-255) for a pixel to
	// count as background.
	Tolerance int
}

// NewHeuristicRemover creates a remover with the default tolerance.
func NewHeuristicRemover() *HeuristicRemover {
	return &HeuristicRemover{Tolerance: 28}
}

// Remove clears background-colored pixels to full transparency.
func (h *HeuristicRemover) Remove(img image.Image) (image.Image, error) {
	src := toNRGBA(img)
	w, hgt := src.Bounds().Dx(), src.Bounds().Dy()
	if w == 0 || hgt == 0 {
		return src, nil
	}

	br, bg, bb := cornerAverage(src)

	out := image.NewNRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	for i := 0; i < len(out.Pix); i += 4 {
		if within(out.Pix[i], br, h.Tolerance) &&
			within(out.Pix[i+1], bg, h.Tolerance) &&
			within(out.Pix[i+2], bb, h.Tolerance) {
			out.Pix[i+3] = 0
		}
	}
	return out, nil
}

// cornerAverage estimates the backdrop color from the four corner pixels.
func cornerAverage(img *image.NRGBA) (r, g, b int) {
	b2 := img.Bounds()
	corners := []image.Point{
		{b2.Min.X, b2.Min.Y},
		{b2.Max.X - 1, b2.Min.Y},
		{b2.Min.X, b2.Max.Y - 1},
		{b2.Max.X - 1, b2.Max.Y - 1},
	}
	for _, p := range corners {
		i := img.PixOffset(p.X, p.Y)
		r += int(img.Pix[i])
		g += int(img.Pix[i+1])
		b += int(img.Pix[i+2])
	}
	return r / 4, g / 4, b / 4
}

func within(v uint8, target, tolerance int) bool {
	d := int(v) - target
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}
