package qoi

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
)

func init() {
	image.RegisterFormat("qoi", qoiMagic, Decode, DecodeConfig)
}

// ErrTruncated is returned when the data ends before every pixel was decoded.
var ErrTruncated = errors.New("truncated image data")

// Decode reads a QOI image from r and returns it as an *image.NRGBA.
func Decode(r io.Reader) (image.Image, error) {
	decoder := NewDecoder(r)
	err := decoder.decodeHeader()
	if err != nil {
		return nil, fmt.Errorf("could not decode the header: %w", err)
	}
	img, err := decoder.decodeBody()
	if err != nil {
		return nil, fmt.Errorf("could not decode the image body: %w", err)
	}
	return img, nil
}

// DecodeConfig returns the color model and dimensions of a QOI image without decoding the entire image.
func DecodeConfig(r io.Reader) (image.Config, error) {
	decoder := NewDecoder(r)
	err := decoder.decodeHeader()
	if err != nil {
		return image.Config{}, fmt.Errorf("could not decode the header: %w", err)
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(decoder.header.width),
		Height:     int(decoder.header.height),
	}, nil
}

type Decoder struct {
	data          *bufio.Reader
	headerBytes   headerBytes
	header        Header
	pixelWindow   [windowLength]pixel
	currentPixel  pixel
	currentByte   byte
	run           int
	imgPixelBytes []byte
}

func NewDecoder(data io.Reader) *Decoder {
	return &Decoder{data: bufio.NewReader(data)}
}

func (d *Decoder) decodeHeader() error {
	err := d.readHeader()
	if err != nil {
		return fmt.Errorf("could not read the header: %w", err)
	}
	header, err := interpretHeaderBytes(d.headerBytes)
	if err != nil {
		return fmt.Errorf("could not interpret the header: %w", err)
	}
	d.header = header
	return nil
}

func (d *Decoder) readHeader() error {
	_, err := io.ReadFull(d.data, d.headerBytes[:])
	if err != nil {
		return fmt.Errorf("%w: data is too short", ErrTruncated)
	}
	return nil
}

func (d *Decoder) decodeBody() (*image.NRGBA, error) {
	d.currentPixel = startPixel
	img := image.NewNRGBA(image.Rect(0, 0, int(d.header.width), int(d.header.height)))
	d.imgPixelBytes = img.Pix
	for len(d.imgPixelBytes) > 0 {
		if d.run > 0 {
			d.run--
			d.writeCurrentPixel()
			continue
		}

		b, err := d.data.ReadByte()
		if err == io.EOF {
			return nil, ErrTruncated
		}
		if err != nil {
			return nil, err
		}
		d.currentByte = b
		err = d.dispatchOP()
		if err != nil {
			return nil, err
		}

		d.cacheCurrentPixel()
		d.writeCurrentPixel()
	}
	return img, nil
}

func (d *Decoder) cacheCurrentPixel() {
	d.pixelWindow[d.currentPixel.Hash()] = d.currentPixel // We do not check for equality as copying a 4B array is faster than checking
}

func (d *Decoder) dispatchOP() error {
	switch getOP(d.currentByte) {
	case qoi_OP_RGB:
		return d.op_RGB()
	case qoi_OP_RGBA:
		return d.op_RGBA()
	case qoi_OP_INDEX:
		return d.op_INDEX()
	case qoi_OP_DIFF:
		return d.op_DIFF()
	case qoi_OP_LUMA:
		return d.op_LUMA()
	default:
		return d.op_RUN()
	}
}

func (d *Decoder) op_RGB() error {
	_, err := io.ReadFull(d.data, d.currentPixel[:3])
	return truncated(err)
}

func (d *Decoder) op_RGBA() error {
	_, err := io.ReadFull(d.data, d.currentPixel[:])
	return truncated(err)
}

func (d *Decoder) op_INDEX() error {
	d.currentPixel = d.pixelWindow[d.currentByte&^qoi_2B_MASK]
	return nil
}

func (d *Decoder) op_DIFF() error {
	r, g, b := getDIFFValues(d.currentByte)
	d.currentPixel.Add(r, g, b)
	return nil
}

func getDIFFValues(diff byte) (byte, byte, byte) {
	return (diff>>4)&0b11 - diffBias, (diff>>2)&0b11 - diffBias, diff&0b11 - diffBias
}

func (d *Decoder) op_LUMA() error {
	b2, err := d.data.ReadByte()
	if err != nil {
		return truncated(err)
	}
	r, g, b := getLUMAValues(d.currentByte, b2)
	d.currentPixel.Add(r, g, b)
	return nil
}

func getLUMAValues(b1, b2 byte) (byte, byte, byte) {
	diffGreen := b1&^qoi_2B_MASK - lumaGreenBias
	diffRed := diffGreen + b2>>4 - lumaBias
	diffBlue := diffGreen + b2&0b00001111 - lumaBias
	return diffRed, diffGreen, diffBlue
}

func (d *Decoder) op_RUN() error {
	run := int(d.currentByte&^qoi_2B_MASK) + runBias
	// The current pixel is written once by the caller, the rest are repeated.
	d.run = run - 1
	return nil
}

func (d *Decoder) writeCurrentPixel() {
	copy(d.imgPixelBytes[:4], d.currentPixel[:])
	d.imgPixelBytes = d.imgPixelBytes[4:]
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}
