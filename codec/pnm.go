package codec

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

func init() {
	image.RegisterFormat("pnm", "P5", decodePNM, decodePNMConfig)
	image.RegisterFormat("pnm", "P6", decodePNM, decodePNMConfig)
	image.RegisterFormat("pnm", "P7", decodePNM, decodePNMConfig)
}

var errPNM = errors.New("pnm: invalid format")

type pnmHeader struct {
	magic  string
	width  int
	height int
	depth  int
	maxval int
}

// encodePAM writes img as a PAM (P7) file with the RGB_ALPHA tuple type.
func encodePAM(w io.Writer, img image.Image) error {
	nrgba := imaging.Clone(img)
	width, height := nrgba.Rect.Dx(), nrgba.Rect.Dy()
	bw := bufio.NewWriter(w)
	_, err := fmt.Fprintf(bw, "P7\nWIDTH %d\nHEIGHT %d\nDEPTH 4\nMAXVAL 255\nTUPLTYPE RGB_ALPHA\nENDHDR\n", width, height)
	if err != nil {
		return err
	}
	for y := 0; y < height; y++ {
		if _, err := bw.Write(nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+width*4]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func decodePNMConfig(r io.Reader) (image.Config, error) {
	h, err := readPNMHeader(bufio.NewReader(r))
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: color.NRGBAModel, Width: h.width, Height: h.height}, nil
}

// decodePNM reads binary PGM (P5), PPM (P6) and PAM (P7) images with a maxval of at most 255.
func decodePNM(r io.Reader) (image.Image, error) {
	br := bufio.NewReader(r)
	h, err := readPNMHeader(br)
	if err != nil {
		return nil, err
	}

	raw := make([]byte, h.width*h.height*h.depth)
	if _, err := io.ReadFull(br, raw); err != nil {
		return nil, fmt.Errorf("%w: truncated pixel data", errPNM)
	}

	img := image.NewNRGBA(image.Rect(0, 0, h.width, h.height))
	scale := func(v byte) byte {
		return byte((int(v)*255 + h.maxval/2) / h.maxval)
	}
	for i := 0; i < h.width*h.height; i++ {
		s := raw[i*h.depth : (i+1)*h.depth]
		d := img.Pix[i*4 : i*4+4]
		switch h.depth {
		case 1:
			d[0], d[1], d[2], d[3] = scale(s[0]), scale(s[0]), scale(s[0]), 0xff
		case 2:
			d[0], d[1], d[2], d[3] = scale(s[0]), scale(s[0]), scale(s[0]), scale(s[1])
		case 3:
			d[0], d[1], d[2], d[3] = scale(s[0]), scale(s[1]), scale(s[2]), 0xff
		case 4:
			d[0], d[1], d[2], d[3] = scale(s[0]), scale(s[1]), scale(s[2]), scale(s[3])
		}
	}
	return img, nil
}

func readPNMHeader(br *bufio.Reader) (pnmHeader, error) {
	var magic [2]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return pnmHeader{}, fmt.Errorf("%w: short header", errPNM)
	}
	h := pnmHeader{magic: string(magic[:])}

	var err error
	switch h.magic {
	case "P5", "P6":
		h.depth = 1
		if h.magic == "P6" {
			h.depth = 3
		}
		var fields [3]int
		for i := range fields {
			if fields[i], err = readPNMInt(br); err != nil {
				return h, err
			}
		}
		h.width, h.height, h.maxval = fields[0], fields[1], fields[2]
		// Exactly one whitespace byte separates the header from the raster.
		if _, err := br.ReadByte(); err != nil {
			return h, fmt.Errorf("%w: short header", errPNM)
		}
	case "P7":
		if err := readPAMHeader(br, &h); err != nil {
			return h, err
		}
	default:
		return h, fmt.Errorf("%w: unsupported magic %q", errPNM, h.magic)
	}

	if h.width <= 0 || h.height <= 0 || h.width > maxDecodePixels/h.height || h.depth < 1 || h.depth > 4 {
		return h, fmt.Errorf("%w: %dx%d with depth %d", errPNM, h.width, h.height, h.depth)
	}
	if h.maxval < 1 || h.maxval > 255 {
		return h, fmt.Errorf("%w: maxval %d is not supported", errPNM, h.maxval)
	}
	return h, nil
}

func readPAMHeader(br *bufio.Reader, h *pnmHeader) error {
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return fmt.Errorf("%w: missing ENDHDR", errPNM)
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if fields[0] == "ENDHDR" {
			return nil
		}
		if len(fields) < 2 {
			return fmt.Errorf("%w: malformed header line %q", errPNM, line)
		}
		var dst *int
		switch fields[0] {
		case "WIDTH":
			dst = &h.width
		case "HEIGHT":
			dst = &h.height
		case "DEPTH":
			dst = &h.depth
		case "MAXVAL":
			dst = &h.maxval
		default:
			// TUPLTYPE and unknown keys do not change the layout.
			continue
		}
		if *dst, err = strconv.Atoi(fields[1]); err != nil {
			return fmt.Errorf("%w: malformed header line %q", errPNM, line)
		}
	}
}

// readPNMInt reads the next decimal header field, skipping whitespace and comments.
func readPNMInt(br *bufio.Reader) (int, error) {
	var digits []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("%w: short header", errPNM)
		}
		switch {
		case b == '#' && len(digits) == 0:
			if _, err := br.ReadString('\n'); err != nil {
				return 0, fmt.Errorf("%w: short header", errPNM)
			}
		case b >= '0' && b <= '9':
			digits = append(digits, b)
		case isPNMSpace(b) && len(digits) == 0:
		case isPNMSpace(b):
			if err := br.UnreadByte(); err != nil {
				return 0, err
			}
			return strconv.Atoi(string(digits))
		default:
			return 0, fmt.Errorf("%w: unexpected byte %q in header", errPNM, b)
		}
	}
}

func isPNMSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}
