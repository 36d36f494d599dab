package sorter

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Key returns the sort key of p under mode.
func Key(mode Mode, p Pixel) float64 {
	return mode.Key(p)
}

// Key returns the sort key of p. Channel modes yield the raw byte value,
// HSL modes ignore alpha and yield hue in [0, 360) or saturation/lightness in [0, 1].
func (m Mode) Key(p Pixel) float64 {
	switch m {
	case Red:
		return float64(p.R())
	case Green:
		return float64(p.G())
	case Blue:
		return float64(p.B())
	case Alpha:
		return float64(p.A())
	case Hue:
		h, _, _ := HSL(p)
		return h
	case Saturation:
		_, s, _ := HSL(p)
		return s
	case Lightness:
		_, _, l := HSL(p)
		return l
	default:
		panic(fmt.Sprintf("sorter: no key function for %v", m))
	}
}

// HSL converts the RGB channels of p to hue, saturation and lightness.
// Gray pixels get hue 0 and saturation 0.
func HSL(p Pixel) (h, s, l float64) {
	c := colorful.Color{
		R: float64(p.R()) / 255,
		G: float64(p.G()) / 255,
		B: float64(p.B()) / 255,
	}
	return c.Hsl()
}
