package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/communities/config"
	"github.com/katalvlaran/communities/snapshot"
)

func TestParseFlags(t *testing.T) {
	_, err := parseFlags(nil)
	require.Error(t, err)

	f, err := parseFlags([]string{"-synth", "2x3", "-communities", "2"})
	require.NoError(t, err)
	assert.Equal(t, "2x3", f.synth)
	assert.Equal(t, 2, f.communities)
	assert.Equal(t, "communities.geojson", f.out)
}

func TestInput_BadSynth(t *testing.T) {
	_, err := input(flags{synth: "three"}, config.Default())
	require.Error(t, err)
}

func TestSink(t *testing.T) {
	cfg := config.Default()
	assert.IsType(t, snapshot.Nop{}, sink(cfg))

	cfg.Snapshot.Kind = config.SinkFile
	assert.Equal(t, snapshot.FileSink{Dir: "snapshots"}, sink(cfg))

	cfg.Snapshot.Kind = config.SinkRedis
	assert.IsType(t, &snapshot.RedisSink{}, sink(cfg))
}

func TestRun_Synthetic(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.geojson")
	prom := filepath.Join(dir, "run.prom")

	err := run(context.Background(), []string{
		"-synth", "2x2",
		"-communities", "1",
		"-env", filepath.Join(dir, "missing.env"),
		"-out", out,
		"-metrics-file", prom,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"FeatureCollection"`)

	data, err = os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), "communities_")
}
