package codec

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePPMWithCommentsAndMaxval(t *testing.T) {
	data := []byte("P6\n# made by hand\n2 1\n15\n")
	data = append(data, 15, 0, 5, 1, 2, 3)

	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "pnm", format)

	nrgba := img.(*image.NRGBA)
	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 85, A: 255}, nrgba.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 17, G: 34, B: 51, A: 255}, nrgba.NRGBAAt(1, 0))
}

func TestDecodePGM(t *testing.T) {
	data := append([]byte("P5 1 2 255\n"), 9, 250)
	img, err := decodePNM(bytes.NewReader(data))
	require.NoError(t, err)

	nrgba := img.(*image.NRGBA)
	assert.Equal(t, color.NRGBA{R: 9, G: 9, B: 9, A: 255}, nrgba.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 250, G: 250, B: 250, A: 255}, nrgba.NRGBAAt(0, 1))
}

func TestEncodePAM(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 4})

	var buf bytes.Buffer
	require.NoError(t, encodePAM(&buf, src))
	expected := append([]byte("P7\nWIDTH 1\nHEIGHT 1\nDEPTH 4\nMAXVAL 255\nTUPLTYPE RGB_ALPHA\nENDHDR\n"), 1, 2, 3, 4)
	assert.Equal(t, expected, buf.Bytes())

	cfg, err := decodePNMConfig(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Width)
	assert.Equal(t, 1, cfg.Height)
}

func TestDecodePNMRejectsBadHeaders(t *testing.T) {
	tests := map[string]string{
		"ascii ppm":        "P3\n1 1\n255\n",
		"16-bit":           "P6\n1 1\n65535\n",
		"zero width":       "P6\n0 1\n255\n",
		"garbage":          "P6\n1 x\n255\n",
		"missing ENDHDR":   "P7\nWIDTH 1\nHEIGHT 1\n",
		"bad depth":        "P7\nWIDTH 1\nHEIGHT 1\nDEPTH 5\nMAXVAL 255\nENDHDR\n",
		"truncated raster": "P6\n2 2\n255\n\x01\x02",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := decodePNM(bytes.NewReader([]byte(data)))
			assert.ErrorIs(t, err, errPNM)
		})
	}
}
