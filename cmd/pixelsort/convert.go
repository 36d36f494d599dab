package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pixelsort/codec"
)

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert an image between formats without sorting it",
		Example: `  pixelsort convert input.png output.qoi
  pixelsort convert input.qoi output.png`,
		Args: cobra.ExactArgs(2),
		RunE: runConvert,
	}
	cmd.Flags().IntP("quality", "q", 0, "JPEG or lossy WEBP quality from 1 to 100; 0 keeps the format default")
	return cmd
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath, outputPath := args[0], args[1]
	logger := newLogger(cmd)

	if _, err := codec.FormatFromPath(outputPath); err != nil {
		return err
	}
	img, err := codec.Open(inputPath)
	if err != nil {
		return fmt.Errorf("could not open the input image: %w", err)
	}
	if err := codec.Save(img, outputPath, encodeOptions(cmd)...); err != nil {
		return fmt.Errorf("could not save the output image: %w", err)
	}
	logger.Printf("converted %s to %s", inputPath, outputPath)
	return nil
}
