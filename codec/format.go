// Package codec reads images into the sorter's RGBA representation and writes
// sorted images back out in the format implied by the output path.
package codec

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// ErrUnsupportedFormat is returned for output paths whose extension maps to no encoder.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// maxDecodePixels bounds the buffers allocated from untrusted headers.
const maxDecodePixels = 1 << 28

// Format is an image file format.
type Format int

const (
	JPEG Format = iota
	PNG
	GIF
	WEBP
	TIFF
	TGA
	BMP
	ICO
	HDR
	PNM
	QOI
)

var formatNames = [...]string{
	JPEG: "jpeg",
	PNG:  "png",
	GIF:  "gif",
	WEBP: "webp",
	TIFF: "tiff",
	TGA:  "tga",
	BMP:  "bmp",
	ICO:  "ico",
	HDR:  "hdr",
	PNM:  "pnm",
	QOI:  "qoi",
}

var formatExts = map[string]Format{
	"jpg":  JPEG,
	"jpeg": JPEG,
	"png":  PNG,
	"gif":  GIF,
	"webp": WEBP,
	"tif":  TIFF,
	"tiff": TIFF,
	"tga":  TGA,
	"bmp":  BMP,
	"ico":  ICO,
	"hdr":  HDR,
	"pnm":  PNM,
	"qoi":  QOI,
}

// Formats returns every supported output format.
func Formats() []Format {
	formats := make([]Format, len(formatNames))
	for i := range formatNames {
		formats[i] = Format(i)
	}
	return formats
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// Extensions returns the file extensions, without the dot, that map to f.
func (f Format) Extensions() []string {
	var exts []string
	for ext, format := range formatExts {
		if format == f {
			exts = append(exts, ext)
		}
	}
	slices.Sort(exts)
	return exts
}

// FormatFromExtension maps a file extension, with or without the leading dot, to a Format.
// Matching is case-insensitive.
func FormatFromExtension(ext string) (Format, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	f, ok := formatExts[ext]
	if !ok {
		return 0, fmt.Errorf("%w: image format image/%s is not supported", ErrUnsupportedFormat, ext)
	}
	return f, nil
}

// FormatFromPath infers the Format from the extension of path.
func FormatFromPath(path string) (Format, error) {
	return FormatFromExtension(filepath.Ext(path))
}
