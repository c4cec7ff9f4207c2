package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/blockpool/internal/mmfile"
	"github.com/joshuapare/blockpool/internal/report"
	"github.com/joshuapare/blockpool/pool"
)

func init() {
	rootCmd.AddCommand(newStatsCmd())
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <file>",
		Short: "Show pool layout and occupancy",
		Long: `The stats command maps a pool file read-only and shows its layout,
the number of blocks in use, and the scan cursor.

Example:
  bmmctl stats blocks.pool
  bmmctl stats blocks.pool --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args)
		},
	}
	return cmd
}

// PoolStats is the JSON form of the stats command.
type PoolStats struct {
	File string `json:"file"`
	pool.Stats
}

func runStats(args []string) (err error) {
	path := args[0]

	printVerbose("Opening pool: %s\n", path)

	p, closeFn, err := attachReadOnly(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, closeFn())
	}()

	if jsonOut {
		return printJSON(PoolStats{File: path, Stats: p.Stats()})
	}
	if quiet {
		return nil
	}
	return report.WriteStats(os.Stdout, path, p)
}

// attachReadOnly maps path read-only and attaches a pool to it. The returned
// pool must only be inspected; the mapping does not allow writes.
func attachReadOnly(path string) (*pool.Pool, func() error, error) {
	data, closeFn, err := mmfile.Map(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to map %s: %w", path, err)
	}
	p, err := pool.Attach(data, nil)
	if err != nil {
		_ = closeFn()
		return nil, nil, fmt.Errorf("failed to attach %s: %w", path, err)
	}
	return p, closeFn, nil
}
