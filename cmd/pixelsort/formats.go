package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pixelsort/codec"
	"pixelsort/sorter"
)

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported output formats and sort modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Output formats:")
			for _, f := range codec.Formats() {
				fmt.Fprintf(out, "  %-5s %s\n", f, strings.Join(f.Extensions(), ", "))
			}
			fmt.Fprintln(out, "Sort modes:")
			for _, m := range sorter.Modes() {
				fmt.Fprintf(out, "  %s\n", m)
			}
			return nil
		},
	}
}
