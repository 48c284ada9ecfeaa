package processor

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"imageBackend/internal/lib/apperr"
)

// RawUpload is the image part of an upload request.
type RawUpload struct {
	Data        []byte
	Filename    string
	ContentType string
	Size        int64
}

// Normalized is an image ready for storage. The extension of Filename always
// matches the encoding of Data.
type Normalized struct {
	Data        []byte
	Filename    string
	ContentType string
	Size        int64
	Width       int
	Height      int
	Action      Action
}

// Action records which branch of normalization produced the result.
type Action string

const (
	ActionPassThrough Action = "passthrough"
	ActionConvert     Action = "convert"
	ActionReduce      Action = "reduce"
)

type Normalizer struct {
	reducer    *Reducer
	maxImgSize int64
	maxPixels  int64
	quality    int
}

func NewNormalizer(reducer *Reducer, maxImgSize int64) *Normalizer {
	return &Normalizer{
		reducer:    reducer,
		maxImgSize: maxImgSize,
		maxPixels:  reducer.MaxPixels,
		quality:    reducer.Quality,
	}
}

func (n *Normalizer) MaxImgSize() int64 {
	return n.maxImgSize
}

// Normalize enforces the byte budget and the requested output extension.
// requestedExt may be empty. Images under budget with no conversion requested
// are returned byte for byte.
func (n *Normalizer) Normalize(raw RawUpload, requestedExt string) (*Normalized, error) {
	var (
		target    Format
		requested bool
	)

	if requestedExt != "" {
		f, err := FormatFromExt(requestedExt)
		if err != nil {
			return nil, apperr.Validation("unsupported extension", err)
		}
		target, requested = f, true
	}

	size := raw.Size
	if size <= 0 {
		size = int64(len(raw.Data))
	}

	if size > n.maxImgSize {
		if !requested {
			target = FormatJPEG
		}

		reduced, err := n.reducer.Reduce(raw.Data, target, n.maxImgSize)
		if err != nil {
			return nil, wrapDecode(err)
		}

		return &Normalized{
			Data:        reduced.Data,
			Filename:    WithExt(raw.Filename, target),
			ContentType: target.ContentType(),
			Size:        int64(len(reduced.Data)),
			Width:       reduced.Width,
			Height:      reduced.Height,
			Action:      ActionReduce,
		}, nil
	}

	cfg, actual, err := DecodeConfig(raw.Data)
	if err != nil {
		return nil, wrapDecode(err)
	}

	// A matching name is not enough: mislabeled bytes are re-encoded so the
	// extension always describes the encoding.
	if requested && (actual != target || !hasExt(raw.Filename, target)) {
		img, _, err := Decode(raw.Data, n.maxPixels)
		if err != nil {
			return nil, wrapDecode(err)
		}

		out, err := Encode(img, target, n.quality)
		if err != nil {
			return nil, err
		}

		w, h := Dimensions(img)

		return &Normalized{
			Data:        out,
			Filename:    WithExt(raw.Filename, target),
			ContentType: target.ContentType(),
			Size:        int64(len(out)),
			Width:       w,
			Height:      h,
			Action:      ActionConvert,
		}, nil
	}

	return &Normalized{
		Data:        raw.Data,
		Filename:    raw.Filename,
		ContentType: mimetype.Detect(raw.Data).String(),
		Size:        int64(len(raw.Data)),
		Width:       cfg.Width,
		Height:      cfg.Height,
		Action:      ActionPassThrough,
	}, nil
}

// WithExt replaces the extension of name with the one of format, or appends
// it when name has none.
func WithExt(name string, format Format) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" {
		base = "image"
	}
	return base + format.Ext()
}

func hasExt(name string, format Format) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if format == FormatJPEG {
		return ext == ".jpg" || ext == ".jpeg"
	}
	return ext == format.Ext()
}

func wrapDecode(err error) error {
	if errors.Is(err, apperr.ErrDecode) {
		return apperr.Validation("invalid image", err)
	}
	return fmt.Errorf("normalize: %w", err)
}
