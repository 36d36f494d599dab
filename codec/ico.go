package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
)

func init() {
	image.RegisterFormat("ico", "\x00\x00\x01\x00", decodeICO, decodeICOConfig)
}

const (
	icoHeaderLength = 6
	icoEntryLength  = 16
	icoMaxDimSize   = 256
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

var errICO = errors.New("ico: invalid format")

type icoEntry struct {
	width, height int
	size, offset  uint32
}

// encodeICO writes img as a single-entry icon holding a PNG stream.
func encodeICO(w io.Writer, img image.Image) error {
	size := img.Bounds().Size()
	if size.X < 1 || size.Y < 1 || size.X > icoMaxDimSize || size.Y > icoMaxDimSize {
		return fmt.Errorf("ico: image must be between 1x1 and %dx%d, got %dx%d", icoMaxDimSize, icoMaxDimSize, size.X, size.Y)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return err
	}

	var header [icoHeaderLength + icoEntryLength]byte
	binary.LittleEndian.PutUint16(header[2:], 1)
	binary.LittleEndian.PutUint16(header[4:], 1)
	entry := header[icoHeaderLength:]
	// A stored dimension of 0 means 256.
	entry[0] = byte(size.X % icoMaxDimSize)
	entry[1] = byte(size.Y % icoMaxDimSize)
	binary.LittleEndian.PutUint16(entry[4:], 1)
	binary.LittleEndian.PutUint16(entry[6:], 32)
	binary.LittleEndian.PutUint32(entry[8:], uint32(buf.Len()))
	binary.LittleEndian.PutUint32(entry[12:], uint32(len(header)))

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func readICOEntries(data []byte) ([]icoEntry, error) {
	if len(data) < icoHeaderLength || binary.LittleEndian.Uint16(data[2:]) != 1 {
		return nil, fmt.Errorf("%w: bad header", errICO)
	}
	count := int(binary.LittleEndian.Uint16(data[4:]))
	if count == 0 || len(data) < icoHeaderLength+count*icoEntryLength {
		return nil, fmt.Errorf("%w: bad directory", errICO)
	}
	entries := make([]icoEntry, count)
	for i := range entries {
		e := data[icoHeaderLength+i*icoEntryLength:]
		entries[i] = icoEntry{
			width:  int(e[0]),
			height: int(e[1]),
			size:   binary.LittleEndian.Uint32(e[8:]),
			offset: binary.LittleEndian.Uint32(e[12:]),
		}
		if entries[i].width == 0 {
			entries[i].width = icoMaxDimSize
		}
		if entries[i].height == 0 {
			entries[i].height = icoMaxDimSize
		}
	}
	return entries, nil
}

// largestICOImage returns the payload of the entry with the most pixels.
func largestICOImage(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	entries, err := readICOEntries(data)
	if err != nil {
		return nil, err
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if e.width*e.height > best.width*best.height {
			best = e
		}
	}
	end := uint64(best.offset) + uint64(best.size)
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("%w: entry exceeds file", errICO)
	}
	payload := data[best.offset:end]
	if !bytes.HasPrefix(payload, pngSignature) {
		return nil, fmt.Errorf("%w: only PNG-compressed entries are supported", errICO)
	}
	return payload, nil
}

func decodeICO(r io.Reader) (image.Image, error) {
	payload, err := largestICOImage(r)
	if err != nil {
		return nil, err
	}
	return png.Decode(bytes.NewReader(payload))
}

func decodeICOConfig(r io.Reader) (image.Config, error) {
	payload, err := largestICOImage(r)
	if err != nil {
		return image.Config{}, err
	}
	return png.DecodeConfig(bytes.NewReader(payload))
}
