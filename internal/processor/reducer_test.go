package processor

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"imageBackend/internal/lib/apperr"
)

func TestReducedDimensions(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		wantW int
		wantH int
	}{
		{name: "halve", w: 1000, h: 800, wantW: 500, wantH: 400},
		{name: "halve odd", w: 101, h: 51, wantW: 50, wantH: 25},
		{name: "exactly twice max side", w: 4800, h: 100, wantW: 2400, wantH: 50},
		{name: "clamp landscape", w: 6000, h: 5000, wantW: 2400, wantH: 2000},
		{name: "clamp portrait", w: 5000, h: 6000, wantW: 2000, wantH: 2400},
		{name: "clamp rounds", w: 4801, h: 100, wantW: 2400, wantH: 50},
		{name: "tiny", w: 1, h: 3, wantW: 1, wantH: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := reducedDimensions(tt.w, tt.h, DefaultMaxSide)
			require.Equal(t, tt.wantW, w)
			require.Equal(t, tt.wantH, h)
		})
	}
}

func TestReduceFitsWithoutResize(t *testing.T) {
	src := encodePNG(t, solidImage(200, 100, color.White))

	out, err := NewReducer(DefaultQuality, DefaultMaxSide, 1, DefaultMaxPixels).Reduce(src, FormatJPEG, 1<<20)
	require.NoError(t, err)
	require.Equal(t, 200, out.Width)
	require.Equal(t, 100, out.Height)

	_, f, err := DecodeConfig(out.Data)
	require.NoError(t, err)
	require.Equal(t, FormatJPEG, f)
}

func TestReduceLargeRGBAToJPEG(t *testing.T) {
	src := encodePNG(t, solidImage(6000, 5000, color.NRGBA{R: 255, G: 255, B: 255, A: 255}))
	budget := int64(len(src)) - 100
	if budget > 1024 {
		budget = 1024
	}

	out, err := NewReducer(DefaultQuality, DefaultMaxSide, 1, DefaultMaxPixels).Reduce(src, FormatJPEG, budget)
	require.NoError(t, err)

	cfg, f, err := DecodeConfig(out.Data)
	require.NoError(t, err)
	require.Equal(t, FormatJPEG, f)
	require.LessOrEqual(t, max(cfg.Width, cfg.Height), max(2400, 6000/2))
	require.Equal(t, 2400, cfg.Width)
	require.Equal(t, 2000, cfg.Height)
}

func TestReduceSinglePassDoesNotConverge(t *testing.T) {
	src := encodePNG(t, noiseImage(64, 64))

	out, err := NewReducer(DefaultQuality, DefaultMaxSide, 1, DefaultMaxPixels).Reduce(src, FormatJPEG, 10)
	require.NoError(t, err)
	require.Equal(t, 32, out.Width)
	require.Equal(t, 32, out.Height)
	require.Greater(t, int64(len(out.Data)), int64(10))
}

func TestReduceExtraPassesKeepShrinking(t *testing.T) {
	src := encodePNG(t, noiseImage(64, 64))

	out, err := NewReducer(DefaultQuality, DefaultMaxSide, 3, DefaultMaxPixels).Reduce(src, FormatJPEG, 10)
	require.NoError(t, err)
	require.Equal(t, 8, out.Width)
	require.Equal(t, 8, out.Height)
}

func TestReducePropagatesDecodeError(t *testing.T) {
	_, err := NewReducer(DefaultQuality, DefaultMaxSide, 1, DefaultMaxPixels).Reduce([]byte("nope"), FormatJPEG, 10)
	require.ErrorIs(t, err, apperr.ErrDecode)
}
