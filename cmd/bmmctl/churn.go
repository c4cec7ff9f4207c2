package main

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/joshuapare/blockpool/internal/mmfile"
	"github.com/joshuapare/blockpool/pool"
)

var (
	churnSize  int
	churnBlock int
	churnAlign int
	churnOps   int
	churnSeed  int64
)

func init() {
	cmd := newChurnCmd()
	cmd.Flags().IntVar(&churnSize, "size", 1<<20, "Region size in bytes")
	cmd.Flags().IntVar(&churnBlock, "block", 4096, "Requested block size in bytes")
	cmd.Flags().IntVar(&churnAlign, "align", 64, "Block alignment (power of two)")
	cmd.Flags().IntVar(&churnOps, "ops", 10000, "Number of alloc/free operations")
	cmd.Flags().Int64Var(&churnSeed, "seed", 1, "Random seed")
	rootCmd.AddCommand(cmd)
}

func newChurnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "churn",
		Short: "Run random alloc/free traffic against an in-memory pool",
		Long: `The churn command builds a pool in an anonymous mapping and runs a seeded
random mix of allocations and frees against it. After every operation it
checks the pool's accounting against the set of blocks it holds, and stops
at the first disagreement.

Example:
  bmmctl churn --size 1052672 --block 4096 --align 4096 --ops 100000
  bmmctl churn --seed 7 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChurn()
		},
	}
	return cmd
}

// ChurnResult is the summary printed by the churn command.
type ChurnResult struct {
	Seed      int64      `json:"seed"`
	Ops       int        `json:"ops"`
	Allocs    int        `json:"allocs"`
	Frees     int        `json:"frees"`
	Exhausted int        `json:"exhausted"`
	PeakInUse int        `json:"peak_in_use"`
	Final     pool.Stats `json:"final"`
}

func runChurn() (err error) {
	if churnOps < 0 {
		return fmt.Errorf("ops must not be negative, got %d", churnOps)
	}

	region, release, err := churnRegion(churnSize, churnAlign)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, release())
	}()

	p, err := pool.Init(region, churnBlock, churnAlign, nil)
	if err != nil {
		return fmt.Errorf("failed to init pool: %w", err)
	}
	printVerbose("Pool of %d blocks of %d bytes\n", p.BlockCount(), p.BlockSize())

	res, err := churn(p, churnOps, churnSeed)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(res)
	}
	printInfo("churn: %d ops (seed %d)\n", res.Ops, res.Seed)
	printInfo("  allocs:      %d\n", res.Allocs)
	printInfo("  frees:       %d\n", res.Frees)
	printInfo("  exhausted:   %d\n", res.Exhausted)
	printInfo("  peak in use: %d of %d\n", res.PeakInUse, res.Final.BlockCount)
	printInfo("  final free:  %d\n", res.Final.FreeCount)
	printInfo("invariants held after every operation\n")
	return nil
}

// churnRegion returns an anonymous mapping, or an aligned heap buffer when
// align exceeds the page size.
func churnRegion(size, align int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("size must be positive, got %d", size)
	}
	if align > mmfile.PageSize {
		b, err := mmfile.Aligned(size, align)
		if err != nil {
			return nil, nil, err
		}
		return b, func() error { return nil }, nil
	}
	b, release, err := mmfile.Anonymous(size)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to map region: %w", err)
	}
	return b, release, nil
}

// churn runs ops random operations on p. Blocks are allocated and freed with
// equal probability while both are possible.
func churn(p *pool.Pool, ops int, seed int64) (ChurnResult, error) {
	rng := rand.New(rand.NewSource(seed))
	res := ChurnResult{Seed: seed, Ops: ops}
	var live []pool.Addr

	for step := range ops {
		if len(live) > 0 && rng.Intn(2) == 0 {
			k := rng.Intn(len(live))
			a := live[k]
			live[k] = live[len(live)-1]
			live = live[:len(live)-1]
			if err := p.Free(a); err != nil {
				return res, fmt.Errorf("step %d: free: %w", step, err)
			}
			res.Frees++
		} else if a, ok := p.Alloc(); ok {
			live = append(live, a)
			res.Allocs++
		} else {
			if len(live) != p.BlockCount() {
				return res, fmt.Errorf("step %d: alloc failed with %d of %d blocks held", step, len(live), p.BlockCount())
			}
			res.Exhausted++
		}

		if err := p.Check(); err != nil {
			return res, fmt.Errorf("step %d: %w", step, err)
		}
		if got, want := p.FreeCount(), p.BlockCount()-len(live); got != want {
			return res, fmt.Errorf("step %d: free count %d, want %d", step, got, want)
		}
		res.PeakInUse = max(res.PeakInUse, len(live))
	}

	res.Final = p.Stats()
	return res, nil
}
