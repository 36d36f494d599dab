package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

const tgaHeaderLength = 18

const (
	tgaTrueColor    = 2
	tgaGray         = 3
	tgaTrueColorRLE = 10
	tgaGrayRLE      = 11

	tgaTopLeft    = 0x20
	tgaAlphaBits  = 0x0f
	tgaMaxDimSize = 0xffff
)

var errTGA = errors.New("tga: invalid format")

// encodeTGA writes img as an uncompressed 32-bit true colour TGA with a top-left origin.
func encodeTGA(w io.Writer, img image.Image) error {
	nrgba := imaging.Clone(img)
	width, height := nrgba.Rect.Dx(), nrgba.Rect.Dy()
	if width > tgaMaxDimSize || height > tgaMaxDimSize {
		return fmt.Errorf("tga: image is too large: %dx%d", width, height)
	}

	var header [tgaHeaderLength]byte
	header[2] = tgaTrueColor
	binary.LittleEndian.PutUint16(header[12:], uint16(width))
	binary.LittleEndian.PutUint16(header[14:], uint16(height))
	header[16] = 32
	header[17] = tgaTopLeft | 8
	if _, err := w.Write(header[:]); err != nil {
		return err
	}

	row := make([]byte, width*4)
	for y := 0; y < height; y++ {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+width*4]
		for i := 0; i < len(src); i += 4 {
			row[i+0] = src[i+2]
			row[i+1] = src[i+1]
			row[i+2] = src[i+0]
			row[i+3] = src[i+3]
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// decodeTGA reads uncompressed or run-length encoded true colour and grayscale TGA images.
func decodeTGA(r io.Reader) (*image.NRGBA, error) {
	var header [tgaHeaderLength]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: short header", errTGA)
	}
	idLength := int(header[0])
	colorMapType := header[1]
	imageType := header[2]
	width := int(binary.LittleEndian.Uint16(header[12:]))
	height := int(binary.LittleEndian.Uint16(header[14:]))
	depth := int(header[16])
	descriptor := header[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped images are not supported", errTGA)
	}
	if width == 0 || height == 0 || width*height > maxDecodePixels {
		return nil, fmt.Errorf("%w: %dx%d", errTGA, width, height)
	}
	gray := imageType == tgaGray || imageType == tgaGrayRLE
	rle := imageType == tgaTrueColorRLE || imageType == tgaGrayRLE
	switch {
	case imageType != tgaTrueColor && imageType != tgaTrueColorRLE && !gray:
		return nil, fmt.Errorf("%w: image type %d is not supported", errTGA, imageType)
	case gray && depth != 8:
		return nil, fmt.Errorf("%w: %d-bit grayscale is not supported", errTGA, depth)
	case !gray && depth != 24 && depth != 32:
		return nil, fmt.Errorf("%w: %d-bit true colour is not supported", errTGA, depth)
	}
	if _, err := io.CopyN(io.Discard, r, int64(idLength)); err != nil {
		return nil, fmt.Errorf("%w: short image ID", errTGA)
	}

	bpp := depth / 8
	raw := make([]byte, width*height*bpp)
	var err error
	if rle {
		err = readTGARLE(r, raw, bpp)
	} else {
		_, err = io.ReadFull(r, raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: truncated pixel data", errTGA)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	hasAlpha := depth == 32 && descriptor&tgaAlphaBits != 0
	for y := 0; y < height; y++ {
		dstY := y
		if descriptor&tgaTopLeft == 0 {
			dstY = height - 1 - y
		}
		dst := img.Pix[dstY*img.Stride:]
		src := raw[y*width*bpp:]
		for x := 0; x < width; x++ {
			s := src[x*bpp:]
			d := dst[x*4:]
			if gray {
				d[0], d[1], d[2] = s[0], s[0], s[0]
			} else {
				d[0], d[1], d[2] = s[2], s[1], s[0]
			}
			d[3] = 0xff
			if hasAlpha {
				d[3] = s[3]
			}
		}
	}
	return img, nil
}

func readTGARLE(r io.Reader, raw []byte, bpp int) error {
	var packet [1]byte
	value := make([]byte, bpp)
	for len(raw) > 0 {
		if _, err := io.ReadFull(r, packet[:]); err != nil {
			return err
		}
		count := int(packet[0]&0x7f) + 1
		n := min(count*bpp, len(raw))
		if packet[0]&0x80 == 0 {
			if _, err := io.ReadFull(r, raw[:n]); err != nil {
				return err
			}
		} else {
			if _, err := io.ReadFull(r, value); err != nil {
				return err
			}
			for i := 0; i < n; i += bpp {
				copy(raw[i:], value)
			}
		}
		raw = raw[n:]
	}
	return nil
}
