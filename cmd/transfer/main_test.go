package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFiveFlowLossyTransferEndToEnd exercises spec.md §8 scenario 4
// (five staggered concurrent flows over a lossy link) through the
// actual CLI entry point, writing to a temp directory instead of
// stubbing any part of the pipeline.
func TestFiveFlowLossyTransferEndToEnd(t *testing.T) {
	dir := t.TempDir()
	inFile := filepath.Join(dir, "payload.bin")
	payload := bytes.Repeat([]byte("q"), 8000)
	require.NoError(t, os.WriteFile(inFile, payload, 0o644))

	outdir := filepath.Join(dir, "received")
	opts := &options{
		filename: inFile,
		loss:     0.01,
		flows:    5,
		outdir:   outdir,
	}
	require.NoError(t, run(opts))

	entries, err := os.ReadDir(outdir)
	require.NoError(t, err)
	assert.Len(t, entries, 5)

	for _, e := range entries {
		got, err := os.ReadFile(filepath.Join(outdir, e.Name()))
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	}
}

// TestTopologyFileDrivesEndpoints exercises --topology end to end
// against a two-node/one-link file instead of the built-in default.
func TestTopologyFileDrivesEndpoints(t *testing.T) {
	dir := t.TempDir()
	topoFile := filepath.Join(dir, "topo.txt")
	require.NoError(t, os.WriteFile(topoFile, []byte(
		"node a\nnode b\nlink a b bandwidth=1000000 propagation=0.01\n"+
			"address a b 10.0.0.1\naddress b a 10.0.0.2\n"), 0o644))

	inFile := filepath.Join(dir, "payload.bin")
	payload := []byte("hello topology")
	require.NoError(t, os.WriteFile(inFile, payload, 0o644))

	outdir := filepath.Join(dir, "received")
	opts := &options{
		filename: inFile,
		topology: topoFile,
		flows:    1,
		outdir:   outdir,
	}
	require.NoError(t, run(opts))

	entries, err := os.ReadDir(outdir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	got, err := os.ReadFile(filepath.Join(outdir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}
