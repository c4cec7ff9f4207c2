package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joshuapare/blockpool/pool"
)

func init() {
	rootCmd.AddCommand(newFreeCmd())
}

func newFreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "free <file> <offset>...",
		Short: "Free blocks in a pool file by offset",
		Long: `The free command returns blocks to a pool file. Each block is named by
its offset from the start of the file, as printed by the alloc command.
Offsets may be decimal or 0x-prefixed hex. Every offset is attempted; the
command fails if any of them could not be freed.

Example:
  bmmctl free blocks.pool 4096 8192
  bmmctl free blocks.pool 0x1000`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFree(args)
		},
	}
	return cmd
}

// FreeResult is the JSON form of the free command.
type FreeResult struct {
	File      string            `json:"file"`
	Freed     []int             `json:"freed"`
	Failed    map[string]string `json:"failed,omitempty"`
	FreeCount int               `json:"free_count"`
}

func runFree(args []string) (err error) {
	path := args[0]

	printVerbose("Opening pool: %s\n", path)

	fp, err := pool.OpenFile(path, nil)
	if err != nil {
		return fmt.Errorf("failed to open pool: %w", err)
	}
	defer func() {
		err = errors.Join(err, fp.Close())
	}()

	res := FreeResult{File: path, Freed: []int{}}
	var errs []error
	for _, arg := range args[1:] {
		if ferr := freeOffset(fp, arg); ferr != nil {
			if res.Failed == nil {
				res.Failed = make(map[string]string)
			}
			res.Failed[arg] = ferr.Error()
			errs = append(errs, fmt.Errorf("offset %s: %w", arg, ferr))
			continue
		}
		off, _ := strconv.ParseInt(arg, 0, 64)
		res.Freed = append(res.Freed, int(off))
	}
	res.FreeCount = fp.FreeCount()

	if jsonOut {
		errs = append([]error{printJSON(res)}, errs...)
		return errors.Join(errs...)
	}
	for _, off := range res.Freed {
		printInfo("freed %d\n", off)
	}
	printVerbose("%d blocks free\n", res.FreeCount)
	return errors.Join(errs...)
}

func freeOffset(fp *pool.FilePool, arg string) error {
	off, err := strconv.ParseInt(arg, 0, 64)
	if err != nil {
		return fmt.Errorf("invalid offset: %w", err)
	}
	a, err := fp.AddrAt(int(off))
	if err != nil {
		return err
	}
	return fp.Free(a)
}
