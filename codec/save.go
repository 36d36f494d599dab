package codec

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"pixelsort/qoi"
)

type encodeConfig struct {
	jpegQuality int
	webpQuality float32
	webpLossy   bool
}

var defaultEncodeConfig = encodeConfig{
	jpegQuality: 95,
}

// EncodeOption sets an optional parameter for the Encode and Save functions.
type EncodeOption func(*encodeConfig)

// JPEGQuality returns an EncodeOption that sets the output JPEG quality.
// Quality ranges from 1 to 100 inclusive, higher is better. Out of range values are ignored.
func JPEGQuality(quality int) EncodeOption {
	return func(c *encodeConfig) {
		if quality >= 1 && quality <= 100 {
			c.jpegQuality = quality
		}
	}
}

// WebPQuality returns an EncodeOption that switches WEBP output to lossy compression with the given quality.
// Quality ranges from 1 to 100 inclusive. Out of range values keep lossless output.
func WebPQuality(quality int) EncodeOption {
	return func(c *encodeConfig) {
		if quality >= 1 && quality <= 100 {
			c.webpQuality = float32(quality)
			c.webpLossy = true
		}
	}
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format Format, opts ...EncodeOption) error {
	cfg := defaultEncodeConfig
	for _, option := range opts {
		option(&cfg)
	}

	switch format {
	case JPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(cfg.jpegQuality))
	case PNG:
		return imaging.Encode(w, img, imaging.PNG)
	case GIF:
		return imaging.Encode(w, img, imaging.GIF)
	case TIFF:
		return imaging.Encode(w, img, imaging.TIFF)
	case BMP:
		return imaging.Encode(w, img, imaging.BMP)
	case WEBP:
		return webp.Encode(w, img, &webp.Options{Lossless: !cfg.webpLossy, Quality: cfg.webpQuality})
	case TGA:
		return encodeTGA(w, img)
	case ICO:
		return encodeICO(w, img)
	case HDR:
		return encodeHDR(w, img)
	case PNM:
		return encodePAM(w, img)
	case QOI:
		return qoi.Encode(w, img)
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
}

// Save writes img to path in the format implied by the path's extension.
func Save(img image.Image, path string, opts ...EncodeOption) (err error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not open the output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("could not close the output file: %w", cerr)
		}
	}()

	err = Encode(f, img, format, opts...)
	if err != nil {
		return fmt.Errorf("could not encode the image as %v: %w", format, err)
	}
	return nil
}
