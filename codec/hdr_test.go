package codec

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRGBE(t *testing.T) {
	assert.Equal(t, [4]byte{}, toRGBE(0, 0, 0))
	assert.Equal(t, [4]byte{128, 64, 0, 129}, toRGBE(1, 0.5, 0))

	r, g, b := fromRGBE([]byte{128, 64, 0, 129})
	assert.InDelta(t, 1.0, r, 0.01)
	assert.InDelta(t, 0.5, g, 0.01)
	assert.InDelta(t, 0.0, b, 0.01)
}

func TestEncodeDecodeHDR(t *testing.T) {
	src := gradient(20, 10, true)
	var buf bytes.Buffer
	require.NoError(t, encodeHDR(&buf, src))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y 10 +X 20\n")))

	img, format, err := image.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "hdr", format)

	nrgba := img.(*image.NRGBA)
	for i := 0; i < len(src.Pix); i += 4 {
		assert.InDelta(t, src.Pix[i], nrgba.Pix[i], 2)
		assert.InDelta(t, src.Pix[i+1], nrgba.Pix[i+1], 2)
		assert.InDelta(t, src.Pix[i+2], nrgba.Pix[i+2], 2)
		assert.Equal(t, uint8(255), nrgba.Pix[i+3])
	}
}

func TestDecodeHDRRunLengthScanline(t *testing.T) {
	data := []byte("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y 1 +X 8\n")
	data = append(data, 2, 2, 0, 8)
	// red: run of 8; green: 8 literals; blue: run of 8; exponent: run of 8
	data = append(data, 128+8, 128)
	data = append(data, 8, 0, 0, 0, 0, 128, 128, 128, 128)
	data = append(data, 128+8, 0)
	data = append(data, 128+8, 128)

	img, err := decodeHDR(bytes.NewReader(data))
	require.NoError(t, err)
	nrgba := img.(*image.NRGBA)
	assert.InDelta(t, 128, nrgba.Pix[0], 1)
	assert.InDelta(t, 0, nrgba.Pix[1], 1)
	assert.InDelta(t, 128, nrgba.Pix[7*4+1], 1)
	assert.InDelta(t, 1, nrgba.Pix[7*4+2], 1)
}

func TestDecodeHDRRejectsBadInput(t *testing.T) {
	tests := map[string]string{
		"bad magic":   "P6\n",
		"bad format":  "#?RADIANCE\nFORMAT=32-bit_rle_xyze\n\n-Y 1 +X 1\n",
		"orientation": "#?RADIANCE\n\n+Y 1 +X 1\n",
		"truncated":   "#?RADIANCE\n\n-Y 1 +X 2\n\x01\x01\x01\x80",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := decodeHDR(bytes.NewReader([]byte(data)))
			assert.ErrorIs(t, err, errHDR)
		})
	}
}
