package qoi

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qoiFile(width, height uint32, body ...byte) []byte {
	var buf bytes.Buffer
	header := Header{magic: qoiMagicBytes, width: width, height: height, channels: 4}
	header.write(&buf)
	buf.Write(body)
	buf.Write(endMarker[:])
	return buf.Bytes()
}

func TestDecodeConfig(t *testing.T) {
	data := qoiFile(492, 445)
	cfg, err := DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Could not decode the config: %v", err)
	}
	assert.Equal(t, 492, cfg.Width)
	assert.Equal(t, 445, cfg.Height)
	assert.Equal(t, color.NRGBAModel, cfg.ColorModel)
}

func TestDecodeOps(t *testing.T) {
	data := qoiFile(4, 2,
		qoi_OP_RGB, 10, 20, 30,
		qoi_OP_DIFF|1<<4|2<<2|3, // -1, 0, +1
		qoi_OP_LUMA|(4+lumaGreenBias), (2+lumaBias)<<4|(-3+lumaBias),
		qoi_OP_RGBA, 1, 2, 3, 4,
		qoi_OP_INDEX|pixel{10, 20, 30, 255}.Hash(),
		qoi_OP_RUN|2,
	)
	img, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)

	nrgba := img.(*image.NRGBA)
	assert.Equal(t, []byte{
		10, 20, 30, 255,
		9, 20, 31, 255,
		15, 24, 32, 255,
		1, 2, 3, 4,
		10, 20, 30, 255,
		10, 20, 30, 255,
		10, 20, 30, 255,
		10, 20, 30, 255,
	}, nrgba.Pix)
}

func TestDecodeRejectsBadInput(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("qoif")))
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = Decode(bytes.NewReader([]byte("notqoi at all!!")))
	assert.ErrorIs(t, err, ErrInvalidMagic)

	data := qoiFile(2, 2, qoi_OP_RGB, 1, 2, 3)
	_, err = Decode(bytes.NewReader(data[:len(data)-len(endMarker)]))
	assert.ErrorIs(t, err, ErrTruncated)

	data = qoiFile(2, 2, qoi_OP_RGBA, 1, 2)
	_, err = Decode(bytes.NewReader(data[:headerLength+3]))
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeLongRuns(t *testing.T) {
	// 0b11111110 and 0b11111111 are RGB and RGBA, so the longest encodable run is 62.
	data := qoiFile(64, 1, qoi_OP_RUN|61, qoi_OP_RUN|1)
	img, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)

	nrgba := img.(*image.NRGBA)
	for x := 0; x < 64; x++ {
		assert.Equal(t, color.NRGBA{A: 255}, nrgba.NRGBAAt(x, 0))
	}
}

func BenchmarkDecode(b *testing.B) {
	var buf bytes.Buffer
	if err := Encode(&buf, testImage(512, 512)); err != nil {
		b.Fatalf("Could not encode the test image: %v", err)
	}
	data := buf.Bytes()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Decode(bytes.NewReader(data))
	}
}
