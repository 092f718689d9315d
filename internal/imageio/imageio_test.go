package imageio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/haskel/aguacate/internal/features"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

var midGreen = color.RGBA{R: 60, G: 140, B: 60, A: 255}

func TestDecode_Formats(t *testing.T) {
	src := solidImage(16, 12, midGreen)

	tests := []struct {
		format string
		encode func(*bytes.Buffer) error
	}{
		{"png", func(b *bytes.Buffer) error { return png.Encode(b, src) }},
		{"bmp", func(b *bytes.Buffer) error { return bmp.Encode(b, src) }},
		{"tiff", func(b *bytes.Buffer) error { return tiff.Encode(b, src, nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.encode(&buf); err != nil {
				t.Fatalf("encode failed: %v", err)
			}

			img, format, err := Decode(&buf, 0)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if format != tt.format {
				t.Errorf("expected format %s, got %s", tt.format, format)
			}
			if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 12 {
				t.Errorf("unexpected bounds %v", img.Bounds())
			}
		})
	}
}

func TestDecode_Unsupported(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("definitely not an image")), 0)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

// pngHeader returns a PNG signature and IHDR chunk declaring w×h RGBA
// pixels, with no image data behind it.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // truecolor with alpha

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestDecode_PixelLimit(t *testing.T) {
	var small bytes.Buffer
	if err := png.Encode(&small, solidImage(4, 4, midGreen)); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	tests := []struct {
		name      string
		data      []byte
		maxPixels int
		wantErr   bool
	}{
		{"declared 20000x20000", pngHeader(20000, 20000), 0, true},
		{"declared over a custom limit", pngHeader(100, 100), 9999, true},
		{"real image over limit", small.Bytes(), 15, true},
		{"real image at limit", small.Bytes(), 16, false},
		{"real image under default", small.Bytes(), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, _, err := Decode(bytes.NewReader(tt.data), tt.maxPixels)
			if tt.wantErr {
				if !errors.Is(err, features.ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 4 {
				t.Errorf("unexpected bounds %v", img.Bounds())
			}
		})
	}
}

func TestRead_PixelLimit(t *testing.T) {
	_, err := Read(bytes.NewReader(pngHeader(20000, 20000)), DefaultSize, ResamplerLanczos3, 0)
	if !errors.Is(err, features.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaf.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := png.Encode(f, solidImage(4, 4, midGreen)); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	f.Close()

	img, err := Load(path, 8, ResamplerNearest, 0)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img.Bounds().Dx() != 8 {
		t.Errorf("expected width 8, got %d", img.Bounds().Dx())
	}

	if _, _, err := Open(filepath.Join(t.TempDir(), "missing.png"), 0); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNormalize_Resamplers(t *testing.T) {
	src := solidImage(40, 30, midGreen)

	for _, method := range []Resampler{ResamplerNearest, ResamplerBilinear, ResamplerCatmullRom, ResamplerLanczos3} {
		t.Run(string(method), func(t *testing.T) {
			img, err := Normalize(src, 24, method)
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			if img.Bounds() != image.Rect(0, 0, 24, 24) {
				t.Fatalf("unexpected bounds %v", img.Bounds())
			}

			pix, w, h := Pixels(img)
			v, err := features.Extract(pix, w, h)
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if v[features.MediumGreen] < 0.99 {
				t.Errorf("expected medium green to dominate, got %v", v)
			}
		})
	}
}

func TestNormalize_None(t *testing.T) {
	src := solidImage(10, 6, midGreen)
	sub := src.SubImage(image.Rect(2, 1, 8, 5))

	img, err := Normalize(sub, 224, ResamplerNone)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 6, 4) {
		t.Errorf("expected native 6x4 bounds, got %v", img.Bounds())
	}
}

func TestNormalize_Unknown(t *testing.T) {
	if _, err := Normalize(solidImage(2, 2, midGreen), 4, "sinc"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestParseResampler(t *testing.T) {
	r, err := ParseResampler(" Lanczos3 ")
	if err != nil || r != ResamplerLanczos3 {
		t.Errorf("expected lanczos3, got %q, %v", r, err)
	}
	if _, err := ParseResampler("cubic"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestPixels_SubImage(t *testing.T) {
	src := solidImage(6, 6, midGreen)
	src.SetRGBA(3, 3, color.RGBA{R: 255, A: 255})
	sub := src.SubImage(image.Rect(2, 2, 5, 5)).(*image.RGBA)

	pix, w, h := Pixels(sub)
	if w != 3 || h != 3 {
		t.Fatalf("expected 3x3, got %dx%d", w, h)
	}
	if len(pix) != 36 {
		t.Fatalf("expected 36 bytes, got %d", len(pix))
	}
	// (3,3) is the center of the sub-image.
	center := (1*3 + 1) * 4
	if pix[center] != 255 || pix[center+1] != 0 {
		t.Errorf("expected red center pixel, got %v", pix[center:center+4])
	}
}
