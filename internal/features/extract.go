package features

import (
	"fmt"
	"image"
	"image/draw"
)

// bucketRule matches a pixel by hue (degrees), saturation and lightness
// (percent). Bounds are inclusive.
type bucketRule struct {
	bucket     Bucket
	hMin, hMax float64
	sMin, sMax float64
	lMin, lMax float64
}

// Rules are evaluated in order and the first match wins. Reordering them
// changes classification results.
var bucketRules = []bucketRule{
	{bucket: DarkGreen, hMin: 80, hMax: 120, sMin: 30, sMax: 100, lMin: 15, lMax: 35},
	{bucket: MediumGreen, hMin: 70, hMax: 120, sMin: 25, sMax: 100, lMin: 35, lMax: 50},
	{bucket: LightGreen, hMin: 60, hMax: 110, sMin: 20, sMax: 100, lMin: 45, lMax: 65},
	{bucket: BrownBlack, hMin: 0, hMax: 40, sMin: 20, sMax: 100, lMin: 5, lMax: 25},
	{bucket: Yellow, hMin: 40, hMax: 60, sMin: 30, sMax: 100, lMin: 40, lMax: 100},
	{bucket: Red, hMin: 0, hMax: 20, sMin: 30, sMax: 100, lMin: 20, lMax: 45},
}

func (r bucketRule) matches(h, s, l float64) bool {
	return h >= r.hMin && h <= r.hMax &&
		s >= r.sMin && s <= r.sMax &&
		l >= r.lMin && l <= r.lMax
}

// Classify returns the bucket of a single pixel, or false if the pixel
// falls into none of them.
func Classify(r, g, b uint8) (Bucket, bool) {
	h, s, l := RGBToHSL(r, g, b)

	for _, rule := range bucketRules {
		if rule.matches(h, s, l) {
			return rule.bucket, true
		}
	}

	// Gray is defined by low saturation only, any hue.
	if s < 15 && l >= 20 && l <= 60 {
		return Gray, true
	}

	return 0, false
}

// Extract builds a feature vector from a flat RGBA buffer of width*height
// pixels. Alpha is ignored.
func Extract(pix []byte, width, height int) (Vector, error) {
	var v Vector

	if width <= 0 || height <= 0 {
		return v, fmt.Errorf("%w: image has no pixels (%dx%d)", ErrInvalidInput, width, height)
	}
	if len(pix)%4 != 0 {
		return v, fmt.Errorf("%w: buffer length %d is not a multiple of 4", ErrInvalidInput, len(pix))
	}
	n := width * height
	if len(pix) != n*4 {
		return v, fmt.Errorf("%w: buffer holds %d pixels, expected %d", ErrInvalidInput, len(pix)/4, n)
	}

	var counts [Size]int
	for i := 0; i < len(pix); i += 4 {
		if b, ok := Classify(pix[i], pix[i+1], pix[i+2]); ok {
			counts[b]++
		}
	}

	total := float64(n)
	for i, c := range counts {
		v[i] = float64(c) / total
	}

	return v, nil
}

// ExtractImage builds a feature vector from any image at its native size.
func ExtractImage(img image.Image) (Vector, error) {
	if img == nil {
		return Vector{}, fmt.Errorf("%w: nil image", ErrInvalidInput)
	}

	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || len(rgba.Pix) != bounds.Dx()*bounds.Dy()*4 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	return Extract(rgba.Pix, bounds.Dx(), bounds.Dy())
}
