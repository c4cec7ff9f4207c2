//go:build unix

package dirty

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/blockpool/internal/mmfile"
)

func TestTracker_FlushMappedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.bin")
	m, err := mmfile.MapRW(path, 4*page, true)
	require.NoError(t, err)
	defer m.Close()

	tracker := NewTracker(m.Data)
	copy(m.Data[2*page:], "dirty-bytes")
	tracker.Add(2*page, len("dirty-bytes"))

	require.NoError(t, tracker.Flush(context.Background()))
	require.Zero(t, tracker.Len(), "flush clears tracked ranges")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "dirty-bytes", string(raw[2*page:2*page+11]))
}
