package qoi

import (
	"bufio"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// Encode writes the Image m to w in QOI format. Images that are not *image.NRGBA are converted first.
func Encode(w io.Writer, m image.Image) error {
	return NewEncoder(w, m).Encode()
}

type Encoder struct {
	out                         *bufio.Writer
	img                         *image.NRGBA
	header                      Header
	window                      [windowLength]pixel
	previousPixel, currentPixel pixel
	diffR, diffG, diffB, diffA  int8
	run                         int
}

func NewEncoder(out io.Writer, img image.Image) *Encoder {
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) || nrgba.Stride != nrgba.Rect.Dx()*4 {
		nrgba = imaging.Clone(img)
	}
	return &Encoder{out: bufio.NewWriter(out), img: nrgba}
}

func (enc *Encoder) Encode() error {
	size := enc.img.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 || uint64(size.X)*uint64(size.Y) > maxPixels {
		return fmt.Errorf("could not encode the header: %w %dx%d", ErrInvalidDimensions, size.X, size.Y)
	}
	enc.header = Header{
		magic:      qoiMagicBytes,
		width:      uint32(size.X),
		height:     uint32(size.Y),
		channels:   channelsRGBA,
		colorspace: colorspaceSRGB,
	}
	err := enc.encodeHeader()
	if err != nil {
		return fmt.Errorf("could not encode the header: %w", err)
	}
	err = enc.encodeBody()
	if err != nil {
		return fmt.Errorf("could not encode the image body: %w", err)
	}
	return nil
}

func (enc *Encoder) encodeHeader() error {
	return enc.header.write(enc.out)
}

func (enc *Encoder) encodeBody() error {
	enc.previousPixel = startPixel
	size := enc.img.Rect.Size()
	pix := enc.img.Pix[:size.X*size.Y*4]
	for i := 0; i < len(pix); i += 4 {
		enc.currentPixel = pixel(pix[i : i+4])
		err := enc.dispatchOP(i+4 == len(pix))
		if err != nil {
			return err
		}
		enc.previousPixel = enc.currentPixel
	}
	_, err := enc.out.Write(endMarker[:])
	if err != nil {
		return err
	}
	return enc.out.Flush()
}

func (enc *Encoder) dispatchOP(last bool) error {
	if enc.currentPixel == enc.previousPixel {
		enc.run++
		if enc.run == maxRun || last {
			return enc.op_RUN()
		}
		return nil
	}
	if enc.run > 0 {
		err := enc.op_RUN()
		if err != nil {
			return err
		}
	}
	hash := enc.currentPixel.Hash()
	if enc.window[hash] == enc.currentPixel {
		return enc.op_INDEX(hash)
	}
	enc.window[hash] = enc.currentPixel // We do not check for equality as copying a 4B array is faster than checking
	enc.calculateDiff()
	if enc.diffA != 0 {
		return enc.op_RGBA()
	}
	if enc.isCurrentPixelWithinDIFFSpec() {
		return enc.op_DIFF()
	}
	if enc.isCurrentPixelWithinLUMASpec() {
		return enc.op_LUMA()
	}
	return enc.op_RGB()
}

func (enc *Encoder) calculateDiff() {
	enc.diffR, enc.diffG, enc.diffB, enc.diffA = enc.currentPixel.Minus(enc.previousPixel)
}

func isValueWithinDIFFSpec(v int8) bool {
	return v >= -2 && v <= 1
}

func isGreenValueWithinLUMASpec(v int) bool {
	return v >= -32 && v <= 31
}

func isValueWithinLUMASpec(v int) bool {
	return v >= -8 && v <= 7
}

func (enc *Encoder) isCurrentPixelWithinDIFFSpec() bool {
	return isValueWithinDIFFSpec(enc.diffR) && isValueWithinDIFFSpec(enc.diffG) && isValueWithinDIFFSpec(enc.diffB)
}

func (enc *Encoder) isCurrentPixelWithinLUMASpec() bool {
	// The red and blue directions are computed without int8 wrap-around.
	return isGreenValueWithinLUMASpec(int(enc.diffG)) &&
		isValueWithinLUMASpec(int(enc.diffR)-int(enc.diffG)) &&
		isValueWithinLUMASpec(int(enc.diffB)-int(enc.diffG))
}

func (enc *Encoder) op_RGB() error {
	err := enc.out.WriteByte(qoi_OP_RGB)
	if err != nil {
		return err
	}
	_, err = enc.out.Write(enc.currentPixel[:3])
	return err
}

func (enc *Encoder) op_RGBA() error {
	err := enc.out.WriteByte(qoi_OP_RGBA)
	if err != nil {
		return err
	}
	_, err = enc.out.Write(enc.currentPixel[:])
	return err
}

func (enc *Encoder) op_INDEX(hash byte) error {
	return enc.out.WriteByte(qoi_OP_INDEX | hash)
}

func (enc *Encoder) op_DIFF() error {
	r := byte(enc.diffR+diffBias) << 4
	g := byte(enc.diffG+diffBias) << 2
	b := byte(enc.diffB + diffBias)
	return enc.out.WriteByte(qoi_OP_DIFF | r | g | b)
}

func (enc *Encoder) op_LUMA() error {
	directionRG := byte(int(enc.diffR) - int(enc.diffG) + lumaBias)
	directionBG := byte(int(enc.diffB) - int(enc.diffG) + lumaBias)
	err := enc.out.WriteByte(qoi_OP_LUMA | byte(enc.diffG+lumaGreenBias))
	if err != nil {
		return err
	}
	return enc.out.WriteByte(directionRG<<4 | directionBG)
}

func (enc *Encoder) op_RUN() error {
	err := enc.out.WriteByte(qoi_OP_RUN | byte(enc.run-runBias))
	enc.run = 0
	return err
}
