package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_DisabledDiscards(t *testing.T) {
	var out bytes.Buffer
	Init(Options{Enabled: false, Output: &out})
	L.Error("should not appear")
	assert.Zero(t, out.Len())
}

func TestInit_TextLevelFilter(t *testing.T) {
	t.Cleanup(func() { Init(Options{}) })

	var out bytes.Buffer
	Init(Options{Enabled: true, Output: &out, Level: slog.LevelWarn})
	L.Info("hidden")
	L.Warn("shown", "blocks", 4)

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "shown")
	assert.Contains(t, out.String(), "blocks=4")
}

func TestInit_JSON(t *testing.T) {
	t.Cleanup(func() { Init(Options{}) })

	var out bytes.Buffer
	Init(Options{Enabled: true, Output: &out, JSON: true, Level: slog.LevelDebug})
	L.Debug("pool init", "block_count", 256)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "pool init", rec["msg"])
	assert.EqualValues(t, 256, rec["block_count"])
}
