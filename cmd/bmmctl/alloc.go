package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/blockpool/pool"
)

var allocCount int

func init() {
	cmd := newAllocCmd()
	cmd.Flags().IntVarP(&allocCount, "count", "n", 1, "Number of blocks to allocate")
	rootCmd.AddCommand(cmd)
}

func newAllocCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alloc <file>",
		Short: "Allocate blocks from a pool file",
		Long: `The alloc command allocates blocks from a pool file and prints their
offsets from the start of the file. Offsets, unlike addresses, stay valid
across mappings and can be passed to the free command.

Example:
  bmmctl alloc blocks.pool
  bmmctl alloc blocks.pool -n 8 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlloc(args)
		},
	}
	return cmd
}

// AllocResult is the JSON form of the alloc command.
type AllocResult struct {
	File      string `json:"file"`
	Offsets   []int  `json:"offsets"`
	FreeCount int    `json:"free_count"`
}

func runAlloc(args []string) (err error) {
	path := args[0]
	if allocCount < 1 {
		return fmt.Errorf("count must be positive, got %d", allocCount)
	}

	printVerbose("Opening pool: %s\n", path)

	fp, err := pool.OpenFile(path, nil)
	if err != nil {
		return fmt.Errorf("failed to open pool: %w", err)
	}
	defer func() {
		err = errors.Join(err, fp.Close())
	}()

	res := AllocResult{File: path, Offsets: make([]int, 0, allocCount)}
	for range allocCount {
		a, ok := fp.Alloc()
		if !ok {
			break
		}
		off, err := fp.Offset(a)
		if err != nil {
			return err
		}
		res.Offsets = append(res.Offsets, off)
	}
	res.FreeCount = fp.FreeCount()

	var exhausted error
	if len(res.Offsets) < allocCount {
		exhausted = fmt.Errorf("pool exhausted: allocated %d of %d blocks", len(res.Offsets), allocCount)
	}

	if jsonOut {
		return errors.Join(printJSON(res), exhausted)
	}
	for _, off := range res.Offsets {
		printInfo("%d\n", off)
	}
	printVerbose("%d blocks free\n", res.FreeCount)
	return exhausted
}
