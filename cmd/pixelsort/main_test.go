package main

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelsort/codec"
	"pixelsort/sorter"
)

func writeInput(t *testing.T, dir string) string {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	path := filepath.Join(dir, "input.png")
	require.NoErrorf(t, codec.Save(img, path), "Could not write the test image")
	return path
}

func execute(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSortCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir)

	tests := []struct {
		mode     string
		expected []sorter.Pixel
	}{
		{"red", []sorter.Pixel{{0, 255, 0, 255}, {255, 0, 0, 255}}},
		{"Green", []sorter.Pixel{{255, 0, 0, 255}, {0, 255, 0, 255}}},
		{"hue", []sorter.Pixel{{255, 0, 0, 255}, {0, 255, 0, 255}}},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			output := filepath.Join(dir, tt.mode+".qoi")
			_, err := execute(input, output, "--mode", tt.mode)
			require.NoError(t, err)

			sorted, err := codec.Load(output)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sorted.Pixels())
		})
	}
}

func TestSortCommandVerbose(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir)
	out, err := execute("-v", "-w", "2", input, filepath.Join(dir, "out.png"))
	require.NoError(t, err)
	assert.Contains(t, out, "sorted 2 pixels by hue")
	assert.Contains(t, out, "wrote ")
}

func TestSortCommandErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir)

	_, err := execute(input, filepath.Join(dir, "out.png"), "--mode", "brightness")
	assert.ErrorIs(t, err, sorter.ErrUnknownMode)

	_, err = execute(input, filepath.Join(dir, "out.xyz"))
	assert.ErrorIs(t, err, codec.ErrUnsupportedFormat)

	_, err = execute(filepath.Join(dir, "missing.png"), filepath.Join(dir, "out.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = execute(input, filepath.Join(dir, "out.jpg"), "--quality", "101")
	assert.ErrorContains(t, err, "quality must be between 0 and 100")

	_, err = execute(input)
	assert.Error(t, err)
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir)
	output := filepath.Join(dir, "converted.qoi")

	_, err := execute("convert", input, output)
	require.NoError(t, err)

	converted, err := codec.Load(output)
	require.NoError(t, err)
	assert.Equal(t, []sorter.Pixel{{255, 0, 0, 255}, {0, 255, 0, 255}}, converted.Pixels())

	_, err = execute("convert", input, filepath.Join(dir, "converted.xyz"))
	assert.ErrorIs(t, err, codec.ErrUnsupportedFormat)
}

func TestFormatsCommand(t *testing.T) {
	out, err := execute("formats")
	require.NoError(t, err)
	assert.Contains(t, out, "jpeg  jpeg, jpg")
	assert.Contains(t, out, "qoi")
	assert.Contains(t, out, "saturation")
}
