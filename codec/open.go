package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	_ "pixelsort/qoi"
	"pixelsort/sorter"
)

// Decode reads an image in any registered format from r.
// TGA has no magic number, so the data is tried as TGA when no registered decoder matches.
func Decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}
	if !errors.Is(err, image.ErrFormat) {
		return nil, err
	}
	img, tgaErr := decodeTGA(bytes.NewReader(data))
	if tgaErr != nil {
		return nil, fmt.Errorf("could not detect the image format: %w", err)
	}
	return img, nil
}

// Open decodes the image stored at path.
func Open(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Load decodes the image stored at path into the sorter's RGBA representation.
func Load(path string) (*sorter.Image, error) {
	img, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open the input image: %w", err)
	}
	rgba, err := sorter.FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("could not convert the input image: %w", err)
	}
	return rgba, nil
}
