package processor

import (
	"fmt"
	"math"
)

const (
	DefaultQuality = 90
	DefaultMaxSide = 2400

	// DefaultMaxPixels is about 7000x7000; a decoded RGBA bitmap of that size
	// takes 200 MB.
	DefaultMaxPixels = 50_000_000
)

// Reducer brings an encoded image under a byte budget by re-encoding and, if
// that is not enough, downscaling.
//
// One downscale pass is the contract: the result of that pass is returned
// whether or not it fits. Passes > 1 repeats the downscale on the previous
// result while it is still over budget.
type Reducer struct {
	Quality   int
	MaxSide   int
	Passes    int
	MaxPixels int64
}

func NewReducer(quality, maxSide, passes int, maxPixels int64) *Reducer {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	if maxSide <= 0 {
		maxSide = DefaultMaxSide
	}
	if passes <= 0 {
		passes = 1
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	return &Reducer{
		Quality:   quality,
		MaxSide:   maxSide,
		Passes:    passes,
		MaxPixels: maxPixels,
	}
}

// Reduced is the output of Reduce: encoded bytes plus the pixel size they
// decode to.
type Reduced struct {
	Data   []byte
	Width  int
	Height int
}

func (r *Reducer) Reduce(data []byte, format Format, budget int64) (*Reduced, error) {
	img, _, err := Decode(data, r.MaxPixels)
	if err != nil {
		return nil, err
	}

	out, err := Encode(img, format, r.Quality)
	if err != nil {
		return nil, err
	}

	w, h := Dimensions(img)
	if int64(len(out)) <= budget {
		return &Reduced{Data: out, Width: w, Height: h}, nil
	}

	for pass := 0; pass < r.Passes; pass++ {
		nw, nh := reducedDimensions(w, h, r.MaxSide)
		if nw == w && nh == h {
			break
		}

		img = Resize(img, nw, nh)
		w, h = nw, nh

		out, err = Encode(img, format, r.Quality)
		if err != nil {
			return nil, fmt.Errorf("pass %d: %w", pass+1, err)
		}

		if int64(len(out)) <= budget {
			break
		}
	}

	return &Reduced{Data: out, Width: w, Height: h}, nil
}

// reducedDimensions halves both sides, unless half of the longer side is
// still above maxSide; then the longer side becomes maxSide and the shorter
// one follows the aspect ratio.
func reducedDimensions(width, height, maxSide int) (int, int) {
	longest := max(width, height)

	if float64(longest)/2 > float64(maxSide) {
		if width >= height {
			return maxSide, atLeastOne(int(math.Round(float64(height) * float64(maxSide) / float64(width))))
		}
		return atLeastOne(int(math.Round(float64(width) * float64(maxSide) / float64(height)))), maxSide
	}

	return atLeastOne(width / 2), atLeastOne(height / 2)
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
