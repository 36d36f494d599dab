package main

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pixelsort/codec"
	"pixelsort/sorter"
)

func addSortFlags(cmd *cobra.Command) {
	names := make([]string, 0, len(sorter.Modes()))
	for _, m := range sorter.Modes() {
		names = append(names, m.String())
	}
	cmd.Flags().StringP("mode", "m", sorter.Hue.String(), fmt.Sprintf("Value to sort by (%s)", strings.Join(names, ", ")))
	cmd.Flags().IntP("workers", "w", 1, fmt.Sprintf("Goroutines used for sorting (this machine has %d CPUs)", runtime.NumCPU()))
	cmd.Flags().IntP("quality", "q", 0, "JPEG or lossy WEBP quality from 1 to 100; 0 keeps the format default")
}

func encodeOptions(cmd *cobra.Command) []codec.EncodeOption {
	quality, _ := cmd.Flags().GetInt("quality")
	if quality == 0 {
		return nil
	}
	return []codec.EncodeOption{codec.JPEGQuality(quality), codec.WebPQuality(quality)}
}

func runSort(cmd *cobra.Command, args []string) error {
	inputPath, outputPath := args[0], args[1]
	modeName, _ := cmd.Flags().GetString("mode")
	workers, _ := cmd.Flags().GetInt("workers")
	logger := newLogger(cmd)

	mode, err := sorter.ParseMode(modeName)
	if err != nil {
		return err
	}
	quality, _ := cmd.Flags().GetInt("quality")
	if quality < 0 || quality > 100 {
		return fmt.Errorf("quality must be between 0 and 100, got %d", quality)
	}
	// Fail on the output format before spending time on decoding and sorting.
	format, err := codec.FormatFromPath(outputPath)
	if err != nil {
		return err
	}

	start := time.Now()
	img, err := codec.Load(inputPath)
	if err != nil {
		return err
	}
	logger.Printf("decoded %s (%dx%d) in %v", inputPath, img.Width, img.Height, time.Since(start))

	start = time.Now()
	sorted, err := sorter.Sort(img, mode, sorter.WithWorkers(workers))
	if err != nil {
		return err
	}
	logger.Printf("sorted %d pixels by %v with %d worker(s) in %v", sorted.Len(), mode, workers, time.Since(start))

	start = time.Now()
	if err := codec.Save(sorted.NRGBA(), outputPath, encodeOptions(cmd)...); err != nil {
		return fmt.Errorf("could not save the output image: %w", err)
	}
	logger.Printf("wrote %s as %v in %v", outputPath, format, time.Since(start))
	return nil
}
