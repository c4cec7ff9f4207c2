package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/blockpool/internal/report"
	"github.com/joshuapare/blockpool/pool"
)

var (
	layoutSize  int
	layoutBlock int
	layoutAlign int
)

func init() {
	cmd := newLayoutCmd()
	cmd.Flags().IntVar(&layoutSize, "size", 1<<20, "Region size in bytes")
	cmd.Flags().IntVar(&layoutBlock, "block", 4096, "Requested block size in bytes")
	cmd.Flags().IntVar(&layoutAlign, "align", 64, "Block alignment (power of two)")
	rootCmd.AddCommand(cmd)
}

func newLayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute the layout of a region without creating it",
		Long: `The layout command shows how a region of the given size would be split
into a descriptor, an occupancy bitmap and aligned blocks.

Example:
  bmmctl layout --size 1052672 --block 4096 --align 4096
  bmmctl layout --size 65536 --block 100 --align 64 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout()
		},
	}
	return cmd
}

func runLayout() error {
	l, err := pool.ComputeLayout(layoutSize, layoutBlock, layoutAlign)
	if err != nil {
		return fmt.Errorf("failed to compute layout: %w", err)
	}

	if jsonOut {
		return printJSON(l)
	}
	if quiet {
		return nil
	}
	return report.WriteLayout(os.Stdout, l)
}
