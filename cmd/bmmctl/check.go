package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newCheckCmd())
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Verify a pool file's descriptor and bitmap",
		Long: `The check command attaches to a pool file and verifies the validity tag,
the layout recorded in the descriptor, the scan cursor, and that the free
count matches the occupancy bitmap. It exits non-zero when the pool is corrupt.

Example:
  bmmctl check blocks.pool
  bmmctl check blocks.pool --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args)
		},
	}
	return cmd
}

func runCheck(args []string) error {
	path := args[0]

	printVerbose("Checking pool: %s\n", path)

	var blocks, free int
	p, closeFn, err := attachReadOnly(path)
	if err == nil {
		err = p.Check()
		blocks, free = p.BlockCount(), p.FreeCount()
		err = errors.Join(err, closeFn())
	}

	result := map[string]any{
		"file":  path,
		"valid": err == nil,
	}
	if err != nil {
		result["error"] = err.Error()
	} else {
		result["block_count"] = blocks
		result["free_count"] = free
	}

	if jsonOut {
		if perr := printJSON(result); perr != nil {
			return perr
		}
		return err
	}

	if err != nil {
		printInfo("✗ %s: %v\n", path, err)
		return err
	}
	printInfo("✓ %s: %d blocks, %d free\n", path, blocks, free)
	return nil
}
