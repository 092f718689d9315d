// Package imageio decodes captured images and brings them to the working
// resolution used for feature extraction.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"

	"github.com/haskel/aguacate/internal/features"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultSize is the reference working resolution.
const DefaultSize = 224

// DefaultMaxPixels bounds the declared size of a decoded image when no
// limit is configured. 25 MP covers current phone cameras.
const DefaultMaxPixels = 25_000_000

// ErrUnsupported is returned for unknown image formats or resamplers.
var ErrUnsupported = errors.New("unsupported")

// Resampler selects the scaling algorithm used by Normalize.
type Resampler string

const (
	ResamplerNone       Resampler = "none"
	ResamplerNearest    Resampler = "nearest"
	ResamplerBilinear   Resampler = "bilinear"
	ResamplerCatmullRom Resampler = "catmullrom"
	ResamplerLanczos3   Resampler = "lanczos3"
)

// Resamplers lists the valid resampler names.
func Resamplers() []Resampler {
	return []Resampler{ResamplerNone, ResamplerNearest, ResamplerBilinear, ResamplerCatmullRom, ResamplerLanczos3}
}

// ParseResampler parses a resampler name.
func ParseResampler(s string) (Resampler, error) {
	r := Resampler(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Resamplers() {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w resampler: %q", ErrUnsupported, s)
}

// Decode reads an image in any registered format
// (jpeg, png, gif, webp, bmp, tiff). The header is checked first: an image
// declaring more than maxPixels pixels (DefaultMaxPixels when maxPixels is
// not positive) fails with features.ErrInvalidInput before any pixel
// memory is allocated.
func Decode(r io.Reader, maxPixels int) (image.Image, string, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	// Keep the header bytes DecodeConfig consumes so the full decode can
	// replay them.
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, "", decodeError(err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", fmt.Errorf("%w: image declares %dx%d pixels", features.ErrInvalidInput, cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, "", fmt.Errorf("%w: image is %dx%d, above the %d pixel limit",
			features.ErrInvalidInput, cfg.Width, cfg.Height, maxPixels)
	}

	img, format, err := image.Decode(io.MultiReader(&head, r))
	if err != nil {
		return nil, "", decodeError(err)
	}
	return img, format, nil
}

func decodeError(err error) error {
	if errors.Is(err, image.ErrFormat) {
		return fmt.Errorf("%w image format: %w", ErrUnsupported, err)
	}
	return fmt.Errorf("decoding image: %w", err)
}

// Open decodes the image stored at path, subject to the same pixel limit
// as Decode.
func Open(path string, maxPixels int) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	return Decode(f, maxPixels)
}

// Normalize returns an RGBA copy of img scaled to size×size. With
// ResamplerNone or a non-positive size the native resolution is kept.
func Normalize(img image.Image, size int, method Resampler) (*image.RGBA, error) {
	if method == ResamplerNone || size <= 0 {
		return toRGBA(img), nil
	}

	rect := image.Rect(0, 0, size, size)

	switch method {
	case ResamplerLanczos3, "":
		return toRGBA(resize.Resize(uint(size), uint(size), img, resize.Lanczos3)), nil
	case ResamplerCatmullRom:
		return scale(draw.CatmullRom, rect, img), nil
	case ResamplerBilinear:
		return scale(draw.BiLinear, rect, img), nil
	case ResamplerNearest:
		return scale(draw.NearestNeighbor, rect, img), nil
	default:
		return nil, fmt.Errorf("%w resampler: %q", ErrUnsupported, string(method))
	}
}

func scale(s draw.Scaler, rect image.Rectangle, src image.Image) *image.RGBA {
	dst := image.NewRGBA(rect)
	s.Scale(dst, rect, src, src.Bounds(), draw.Src, nil)
	return dst
}

// toRGBA copies img into a zero-origin RGBA image.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Pixels returns the tightly packed RGBA bytes of img with its dimensions.
func Pixels(img *image.RGBA) (pix []byte, width, height int) {
	b := img.Bounds()
	width, height = b.Dx(), b.Dy()

	if img.Stride == width*4 && b.Min == (image.Point{}) {
		return img.Pix[:width*height*4], width, height
	}

	pix = make([]byte, 0, width*height*4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		start := img.PixOffset(b.Min.X, y)
		pix = append(pix, img.Pix[start:start+width*4]...)
	}
	return pix, width, height
}

// Load opens, decodes and normalizes an image file.
func Load(path string, size int, method Resampler, maxPixels int) (*image.RGBA, error) {
	img, _, err := Open(path, maxPixels)
	if err != nil {
		return nil, err
	}
	return Normalize(img, size, method)
}

// Read decodes and normalizes an image stream.
func Read(r io.Reader, size int, method Resampler, maxPixels int) (*image.RGBA, error) {
	img, _, err := Decode(r, maxPixels)
	if err != nil {
		return nil, err
	}
	return Normalize(img, size, method)
}
