package qoi

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	qoi_OP_RGB   byte = 0b11111110
	qoi_OP_RGBA  byte = 0b11111111
	qoi_OP_INDEX byte = 0b00000000
	qoi_OP_DIFF  byte = 0b01000000
	qoi_OP_LUMA  byte = 0b10000000
	qoi_OP_RUN   byte = 0b11000000

	qoi_2B_MASK byte = 0b11000000
)

// getOP returns the full 8-bit tag for RGB/RGBA and the 2-bit tag otherwise.
func getOP(b byte) byte {
	if b == qoi_OP_RGB || b == qoi_OP_RGBA {
		return b
	}
	return b & qoi_2B_MASK
}

const (
	headerLength = 4 + 4 + 4 + 1 + 1
	qoiMagic     = "qoif"
	windowLength = 64
	maxRun       = 62

	diffBias      = 2
	lumaGreenBias = 32
	lumaBias      = 8
	runBias       = 1

	channelsRGBA     = 4
	colorspaceSRGB   = 0
	colorspaceLinear = 1

	// maxPixels guards against headers that would allocate absurd buffers.
	maxPixels = 400_000_000
)

var qoiMagicBytes = [4]byte{'q', 'o', 'i', 'f'}

var endMarker = [8]byte{0, 0, 0, 0, 0, 0, 0, 1}

var (
	ErrInvalidMagic      = errors.New("invalid magic")
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrInvalidHeader     = errors.New("invalid header")
)

type headerBytes [headerLength]byte

// Header is the fixed 14-byte QOI file header.
type Header struct {
	magic      [4]byte
	width      uint32
	height     uint32
	channels   uint8
	colorspace uint8
}

func (h Header) write(w io.Writer) error {
	var b headerBytes
	copy(b[:4], h.magic[:])
	binary.BigEndian.PutUint32(b[4:], h.width)
	binary.BigEndian.PutUint32(b[8:], h.height)
	b[12] = h.channels
	b[13] = h.colorspace
	_, err := w.Write(b[:])
	return err
}

func interpretHeaderBytes(b headerBytes) (Header, error) {
	var h Header
	copy(h.magic[:], b[:4])
	if h.magic != qoiMagicBytes {
		return h, fmt.Errorf("%w '%v'", ErrInvalidMagic, b[:4])
	}
	h.width = binary.BigEndian.Uint32(b[4:])
	h.height = binary.BigEndian.Uint32(b[8:])
	h.channels = b[12]
	h.colorspace = b[13]
	if h.width == 0 || h.height == 0 || uint64(h.width)*uint64(h.height) > maxPixels {
		return h, fmt.Errorf("%w %dx%d", ErrInvalidDimensions, h.width, h.height)
	}
	if h.channels != 3 && h.channels != 4 {
		return h, fmt.Errorf("%w: %d channels", ErrInvalidHeader, h.channels)
	}
	if h.colorspace > colorspaceLinear {
		return h, fmt.Errorf("%w: colorspace %d", ErrInvalidHeader, h.colorspace)
	}
	return h, nil
}
