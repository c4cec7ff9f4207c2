package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// resetFlags restores every command flag to its default.
func resetFlags() {
	verbose, quiet, jsonOut = false, false, false
	layoutSize, layoutBlock, layoutAlign = 1<<20, 4096, 64
	createSize, createBlock, createAlign = 1<<20, 4096, 64
	allocCount = 1
	churnSize, churnBlock, churnAlign, churnOps, churnSeed = 1<<20, 4096, 64, 10000, 1
}

// newPoolFile creates a pool file of exactly blocks 512-byte blocks (at most
// 32) in a temp dir: descriptor and one bitmap word padded to 128 bytes.
func newPoolFile(t *testing.T, blocks int) string {
	t.Helper()
	resetFlags()
	path := filepath.Join(t.TempDir(), "test.pool")
	createSize = 128 + blocks*512
	createBlock = 512
	createAlign = 64
	quiet = true
	if _, err := captureOutput(t, func() error { return runCreate([]string{path}) }); err != nil {
		t.Fatalf("runCreate: %v", err)
	}
	resetFlags()
	return path
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	// Drain concurrently so large outputs cannot fill the pipe.
	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout

	return string(<-done), fnErr
}

// assertJSON checks that output is valid JSON and decodes it into v
func assertJSON(t *testing.T, output string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(output), v); err != nil {
		t.Fatalf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}
