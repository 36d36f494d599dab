package sorter

import (
	"cmp"
	"fmt"
	"slices"
)

type sortConfig struct {
	workers int
}

var defaultSortConfig = sortConfig{
	workers: 1,
}

// Option sets an optional parameter for Sort.
type Option func(*sortConfig)

// WithWorkers returns an Option that splits the sort across n goroutines.
// The result is identical to the single-threaded sort. Values below 1 are treated as 1.
func WithWorkers(n int) Option {
	return func(c *sortConfig) {
		c.workers = max(n, 1)
	}
}

type keyedPixel struct {
	key   float64
	pixel Pixel
}

func compareKeyed(a, b keyedPixel) int {
	return cmp.Compare(a.key, b.key)
}

// Sort reorders the pixels of img into non-decreasing key order for mode.
// Pixels with equal keys keep their row-major order.
//
// The returned image takes over the pixel buffer of img, whose Pix is set to nil.
func Sort(img *Image, mode Mode, opts ...Option) (*Image, error) {
	cfg := defaultSortConfig
	for _, option := range opts {
		option(&cfg)
	}

	if err := img.validate(); err != nil {
		return nil, fmt.Errorf("could not sort the image: %w", err)
	}

	seq := keyPixels(img.Pix, mode)
	workers := min(cfg.workers, len(seq)/minRunLength)
	if workers > 1 {
		sortParallel(seq, workers)
	} else {
		slices.SortStableFunc(seq, compareKeyed)
	}

	sorted, err := rebuild(img.Width, img.Height, seq, img.Pix)
	if err != nil {
		return nil, err
	}
	img.Pix = nil
	return sorted, nil
}

func keyPixels(pix []byte, mode Mode) []keyedPixel {
	seq := make([]keyedPixel, len(pix)/bytesPerPixel)
	for i := range seq {
		p := Pixel(pix[i*bytesPerPixel : (i+1)*bytesPerPixel])
		seq[i] = keyedPixel{key: mode.Key(p), pixel: p}
	}
	return seq
}

// rebuild writes seq into buf and wraps it as a width×height image.
func rebuild(width, height int, seq []keyedPixel, buf []byte) (*Image, error) {
	if len(seq) != width*height || len(buf) != len(seq)*bytesPerPixel {
		return nil, fmt.Errorf("could not rebuild the image: %w: %dx%d from %d pixels", ErrInvalidDimensions, width, height, len(seq))
	}
	for i, kp := range seq {
		copy(buf[i*bytesPerPixel:], kp.pixel[:])
	}
	return NewImage(width, height, buf)
}
