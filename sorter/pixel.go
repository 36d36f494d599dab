// Package sorter reorders the pixels of an RGBA image by a per-pixel key
// such as a color channel, hue, saturation or lightness.
package sorter

// Pixel is one non-premultiplied RGBA pixel.
type Pixel [4]byte

const bytesPerPixel = 4

func (p Pixel) R() byte {
	return p[0]
}

func (p Pixel) G() byte {
	return p[1]
}

func (p Pixel) B() byte {
	return p[2]
}

func (p Pixel) A() byte {
	return p[3]
}

// flatten copies a row-major RGBA buffer into a pixel sequence. len(pix) must be a multiple of 4.
func flatten(pix []byte) []Pixel {
	pixels := make([]Pixel, len(pix)/bytesPerPixel)
	for i := range pixels {
		copy(pixels[i][:], pix[i*bytesPerPixel:])
	}
	return pixels
}
