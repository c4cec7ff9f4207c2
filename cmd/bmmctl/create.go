package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/blockpool/internal/report"
	"github.com/joshuapare/blockpool/pool"
)

var (
	createSize  int
	createBlock int
	createAlign int
)

func init() {
	cmd := newCreateCmd()
	cmd.Flags().IntVar(&createSize, "size", 1<<20, "File size in bytes")
	cmd.Flags().IntVar(&createBlock, "block", 4096, "Requested block size in bytes")
	cmd.Flags().IntVar(&createAlign, "align", 64, "Block alignment (power of two, at most the page size)")
	rootCmd.AddCommand(cmd)
}

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <file>",
		Short: "Create a file-backed pool",
		Long: `The create command creates (or truncates) a file, maps it, and lays out
an empty pool in it.

Example:
  bmmctl create blocks.pool --size 1052672 --block 4096 --align 4096`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(args)
		},
	}
	return cmd
}

func runCreate(args []string) (err error) {
	path := args[0]

	printVerbose("Creating pool: %s\n", path)

	fp, err := pool.CreateFile(path, createSize, createBlock, createAlign, nil)
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}
	defer func() {
		err = errors.Join(err, fp.Close())
	}()

	if jsonOut {
		return printJSON(fp.Layout())
	}
	printInfo("Created %s\n\n", path)
	if quiet {
		return nil
	}
	return report.WriteLayout(os.Stdout, fp.Layout())
}
