package sorter

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrInvalidDimensions is returned when a pixel buffer does not hold exactly width*height pixels,
// or when the image has no pixels at all.
var ErrInvalidDimensions = errors.New("invalid image dimensions")

// Image is a row-major, non-premultiplied RGBA raster.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

// NewImage wraps pix as a width×height image. The image takes ownership of pix.
func NewImage(width, height int, pix []byte) (*Image, error) {
	img := &Image{Width: width, Height: height, Pix: pix}
	if err := img.validate(); err != nil {
		return nil, err
	}
	return img, nil
}

// FromImage copies any decoded image into a new Image anchored at (0, 0).
func FromImage(src image.Image) (*Image, error) {
	if src.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty bounds %v", ErrInvalidDimensions, src.Bounds())
	}
	nrgba := imaging.Clone(src)
	size := nrgba.Bounds().Size()
	return NewImage(size.X, size.Y, nrgba.Pix)
}

func (img *Image) validate() error {
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, img.Width, img.Height)
	}
	expected := img.Width * img.Height * bytesPerPixel
	if len(img.Pix) != expected {
		return fmt.Errorf("%w: %dx%d needs %d bytes, got %d", ErrInvalidDimensions, img.Width, img.Height, expected, len(img.Pix))
	}
	return nil
}

// Len returns the number of pixels.
func (img *Image) Len() int {
	return img.Width * img.Height
}

// Pixel returns the i-th pixel in row-major order.
func (img *Image) Pixel(i int) Pixel {
	var p Pixel
	copy(p[:], img.Pix[i*bytesPerPixel:(i+1)*bytesPerPixel])
	return p
}

// Pixels returns a row-major copy of the pixels.
func (img *Image) Pixels() []Pixel {
	return flatten(img.Pix)
}

// NRGBA shares the pixel buffer as an *image.NRGBA so it can be handed to encoders.
func (img *Image) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    img.Pix,
		Stride: img.Width * bytesPerPixel,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
}
