package codec

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/disintegration/imaging"
)

func init() {
	image.RegisterFormat("hdr", "#?RADIANCE", decodeHDR, decodeHDRConfig)
	image.RegisterFormat("hdr", "#?RGBE", decodeHDR, decodeHDRConfig)
}

const (
	hdrMagic        = "#?RADIANCE"
	hdrFormatLine   = "FORMAT=32-bit_rle_rgbe"
	hdrMinRLEWidth  = 8
	hdrMaxRLEWidth  = 0x7fff
	hdrExponentBias = 128
)

var errHDR = errors.New("hdr: invalid format")

// encodeHDR writes img as a Radiance RGBE file with flat scanlines.
// Channels are scaled linearly to [0, 1]; alpha is dropped.
func encodeHDR(w io.Writer, img image.Image) error {
	nrgba := imaging.Clone(img)
	width, height := nrgba.Rect.Dx(), nrgba.Rect.Dy()
	bw := bufio.NewWriter(w)
	_, err := fmt.Fprintf(bw, "%s\n%s\n\n-Y %d +X %d\n", hdrMagic, hdrFormatLine, height, width)
	if err != nil {
		return err
	}
	for y := 0; y < height; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+width*4]
		for i := 0; i < len(row); i += 4 {
			rgbe := toRGBE(float64(row[i])/255, float64(row[i+1])/255, float64(row[i+2])/255)
			if _, err := bw.Write(rgbe[:]); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func toRGBE(r, g, b float64) [4]byte {
	v := max(r, g, b)
	if v < 1e-32 {
		return [4]byte{}
	}
	frac, exp := math.Frexp(v)
	scale := frac * 256 / v
	return [4]byte{byte(r * scale), byte(g * scale), byte(b * scale), byte(exp + hdrExponentBias)}
}

func fromRGBE(rgbe []byte) (r, g, b float64) {
	if rgbe[3] == 0 {
		return 0, 0, 0
	}
	f := math.Ldexp(1, int(rgbe[3])-(hdrExponentBias+8))
	return (float64(rgbe[0]) + 0.5) * f, (float64(rgbe[1]) + 0.5) * f, (float64(rgbe[2]) + 0.5) * f
}

type hdrHeader struct {
	width, height int
}

func readHDRHeader(br *bufio.Reader) (hdrHeader, error) {
	var h hdrHeader
	first, err := br.ReadString('\n')
	if err != nil || !strings.HasPrefix(first, "#?") {
		return h, fmt.Errorf("%w: bad magic", errHDR)
	}
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return h, fmt.Errorf("%w: short header", errHDR)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if strings.HasPrefix(line, "FORMAT=") && line != hdrFormatLine {
			return h, fmt.Errorf("%w: unsupported %s", errHDR, line)
		}
	}
	resolution, err := br.ReadString('\n')
	if err != nil {
		return h, fmt.Errorf("%w: missing resolution", errHDR)
	}
	if _, err := fmt.Sscanf(strings.TrimSpace(resolution), "-Y %d +X %d", &h.height, &h.width); err != nil {
		return h, fmt.Errorf("%w: only -Y +X orientation is supported", errHDR)
	}
	if h.width <= 0 || h.height <= 0 || h.width > maxDecodePixels/h.height {
		return h, fmt.Errorf("%w: %dx%d", errHDR, h.width, h.height)
	}
	return h, nil
}

func decodeHDRConfig(r io.Reader) (image.Config, error) {
	h, err := readHDRHeader(bufio.NewReader(r))
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: color.NRGBAModel, Width: h.width, Height: h.height}, nil
}

// decodeHDR reads flat and run-length encoded Radiance scanlines, clamping values above 1.
func decodeHDR(r io.Reader) (image.Image, error) {
	br := bufio.NewReader(r)
	h, err := readHDRHeader(br)
	if err != nil {
		return nil, err
	}

	img := image.NewNRGBA(image.Rect(0, 0, h.width, h.height))
	scanline := make([]byte, h.width*4)
	for y := 0; y < h.height; y++ {
		if err := readHDRScanline(br, scanline, h.width); err != nil {
			return nil, err
		}
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < h.width; x++ {
			r, g, b := fromRGBE(scanline[x*4 : x*4+4])
			dst[x*4+0] = clampUnit(r)
			dst[x*4+1] = clampUnit(g)
			dst[x*4+2] = clampUnit(b)
			dst[x*4+3] = 0xff
		}
	}
	return img, nil
}

func clampUnit(v float64) byte {
	return byte(math.Round(min(max(v, 0), 1) * 255))
}

// readHDRScanline fills scanline with width RGBE quadruples.
func readHDRScanline(br *bufio.Reader, scanline []byte, width int) error {
	if _, err := io.ReadFull(br, scanline[:4]); err != nil {
		return fmt.Errorf("%w: truncated pixel data", errHDR)
	}
	rle := width >= hdrMinRLEWidth && width <= hdrMaxRLEWidth &&
		scanline[0] == 2 && scanline[1] == 2 && scanline[2]&0x80 == 0
	if !rle {
		if _, err := io.ReadFull(br, scanline[4:]); err != nil {
			return fmt.Errorf("%w: truncated pixel data", errHDR)
		}
		return nil
	}
	if int(scanline[2])<<8|int(scanline[3]) != width {
		return fmt.Errorf("%w: scanline width mismatch", errHDR)
	}

	// Run-length encoded scanlines store each channel separately.
	for c := 0; c < 4; c++ {
		for x := 0; x < width; {
			count, err := br.ReadByte()
			if err != nil {
				return fmt.Errorf("%w: truncated pixel data", errHDR)
			}
			if count > 128 {
				n := int(count - 128)
				value, err := br.ReadByte()
				if err != nil || x+n > width {
					return fmt.Errorf("%w: bad run", errHDR)
				}
				for ; n > 0; n-- {
					scanline[x*4+c] = value
					x++
				}
				continue
			}
			n := int(count)
			if n == 0 || x+n > width {
				return fmt.Errorf("%w: bad run", errHDR)
			}
			for ; n > 0; n-- {
				value, err := br.ReadByte()
				if err != nil {
					return fmt.Errorf("%w: truncated pixel data", errHDR)
				}
				scanline[x*4+c] = value
				x++
			}
		}
	}
	return nil
}
