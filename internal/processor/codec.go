package processor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/webp"
	_ "golang.org/x/image/webp"

	"imageBackend/internal/lib/apperr"
)

// Format is an encoding format name as reported by image.Decode.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWEBP Format = "webp"
)

// Ext returns the canonical file extension, dot included.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return "." + string(f)
}

func (f Format) ContentType() string {
	return "image/" + string(f)
}

// FormatFromExt maps a user supplied extension (with or without the dot) to a
// Format. Only jpg, png and webp are accepted.
func FormatFromExt(ext string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWEBP, nil
	}
	return "", fmt.Errorf("%w: %q", apperr.ErrUnsupportedExtension, ext)
}

// Decode parses a complete image. Headers declaring more than maxPixels pixels
// are refused before any bitmap is allocated; maxPixels <= 0 disables the
// check. Any failure is reported as apperr.ErrDecode.
func Decode(data []byte, maxPixels int64) (image.Image, Format, error) {
	cfg, _, err := DecodeConfig(data)
	if err != nil {
		return nil, "", err
	}

	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds %d pixels", apperr.ErrDecode, cfg.Width, cfg.Height, maxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", apperr.ErrDecode, err)
	}

	return img, Format(format), nil
}

// DecodeConfig reads only the header: format and pixel dimensions.
func DecodeConfig(data []byte) (image.Config, Format, error) {
	if len(data) == 0 {
		return image.Config{}, "", fmt.Errorf("%w: empty input", apperr.ErrDecode)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", fmt.Errorf("%w: %v", apperr.ErrDecode, err)
	}

	return cfg, Format(format), nil
}

// Encode writes img in the given format. Quality (0-100) only affects lossy
// formats. Images with transparency are flattened onto white for JPEG.
func Encode(img image.Image, format Format, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case FormatJPEG:
		if err := imaging.Encode(&buf, flatten(img), imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	case FormatPNG:
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	case FormatWEBP:
		if err := webp.Encode(&buf, img, webp.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode webp: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", apperr.ErrUnsupportedExtension, format)
	}

	return buf.Bytes(), nil
}

// Resize scales img to exactly width x height.
func Resize(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

func Dimensions(img image.Image) (int, int) {
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}

	w, h := Dimensions(img)
	bg := imaging.New(w, h, color.White)

	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
