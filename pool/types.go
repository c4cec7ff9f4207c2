package pool

import (
	"log/slog"

	"github.com/joshuapare/blockpool/internal/logger"
	"github.com/joshuapare/blockpool/pool/dirty"
)

// Addr is the address of a block handed out by a Pool.
type Addr uintptr

// DirtyTracker is a type alias for the canonical interface defined in pool/dirty.
type DirtyTracker = dirty.DirtyTracker

// Options configures Init and Attach. A nil *Options uses the defaults.
type Options struct {
	// Tracker, if set, is told about every descriptor and bitmap write as a
	// region-relative byte range. Used to flush mapped regions.
	Tracker DirtyTracker

	// Logger receives debug records for init, attach and rejected frees.
	// Default: logger.L at the time the pool is created.
	Logger *slog.Logger
}

func (o *Options) tracker() DirtyTracker {
	if o == nil {
		return nil
	}
	return o.Tracker
}

func (o *Options) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return logger.L
	}
	return o.Logger
}

// Stats is a point-in-time snapshot of a pool.
type Stats struct {
	RegionSize int `json:"region_size"`
	BlockSize  int `json:"block_size"`
	Alignment  int `json:"alignment"`
	BlockCount int `json:"block_count"`
	FreeCount  int `json:"free_count"`
	InUse      int `json:"in_use"`
	Cursor     int `json:"cursor"`
	Overhead   int `json:"overhead"` // descriptor + bitmap + alignment padding
	Slack      int `json:"slack"`    // trailing bytes too small for a block
}
