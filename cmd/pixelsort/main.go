package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pixelsort <input> <output>",
		Short: "Sort every pixel of an image by a color channel or HSL component",
		Example: `  pixelsort input.png output.png
  pixelsort -m lightness photo.jpg sorted.webp
  pixelsort --mode red --workers 4 in.tiff out.qoi`,
		Args:          cobra.ExactArgs(2),
		RunE:          runSort,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	addSortFlags(rootCmd)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log each step to stderr")
	rootCmd.AddCommand(newConvertCmd(), newFormatsCmd())
	return rootCmd
}

// newLogger returns a logger that writes to stderr when --verbose is set and discards otherwise.
func newLogger(cmd *cobra.Command) *log.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	out := io.Discard
	if verbose {
		out = cmd.ErrOrStderr()
	}
	return log.New(out, "pixelsort: ", log.Ltime|log.Lmicroseconds)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
