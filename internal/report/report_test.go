package report

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/flowsim/internal/config"
	"github.com/talgya/flowsim/internal/engine"
	"github.com/talgya/flowsim/internal/entropy"
)

func testRun(t *testing.T, rounds int) *engine.Run {
	t.Helper()
	p := config.Default()
	p.Seed = 42
	p.NumRounds = rounds
	run, err := engine.NewSimulation(p, entropy.New(p.Seed)).Run(context.Background())
	require.NoError(t, err)
	return run
}

func TestPrintHistory_LabelsAndOrder(t *testing.T) {
	run := testRun(t, 3)

	var buf bytes.Buffer
	require.NoError(t, PrintHistory(&buf, run.History))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 8)

	wantPrefixes := []string{
		"Effort History per Round: [",
		"Component Supply History: [0, ",
		"NFT Supply History: [0, ",
		"Legendary NFTs History: [0, 0, 0, 0]",
		"Successful Mints per Round: [",
		"Legendary Mints per Round: [0, 0, 0]",
		"Burned NFTs per Round: [6, 6, 6]",
		"Community Pool Growth: [10000, ",
	}
	for i, prefix := range wantPrefixes {
		assert.True(t, strings.HasPrefix(lines[i], prefix), "line %d = %q", i, lines[i])
	}
}

func TestPrintHistory_ZeroRounds(t *testing.T) {
	run := testRun(t, 0)

	var buf bytes.Buffer
	require.NoError(t, PrintHistory(&buf, run.History))

	assert.Equal(t, strings.Join([]string{
		"Effort History per Round: []",
		"Component Supply History: [0]",
		"NFT Supply History: [0]",
		"Legendary NFTs History: [0]",
		"Successful Mints per Round: []",
		"Legendary Mints per Round: []",
		"Burned NFTs per Round: []",
		"Community Pool Growth: [10000]",
	}, "\n")+"\n", buf.String())
}

func TestPrintBands(t *testing.T) {
	bands := []engine.Band{
		{Key: engine.MetricBurned, Mean: []float64{6, 5.5}, StdDev: []float64{0, 0.5}},
	}

	var buf bytes.Buffer
	require.NoError(t, PrintBands(&buf, 2, bands))
	assert.Equal(t, "Mean over 2 replicas\nBurned NFTs per Round: [6, 5.5] (final sd 0.5)\n", buf.String())
}

func TestLabel_UnknownKey(t *testing.T) {
	assert.Equal(t, "mystery", Label("mystery"))
	assert.Equal(t, "Community Pool Growth", Label(engine.MetricPool))
}

func TestWriteFigure(t *testing.T) {
	run := testRun(t, 10)
	path := filepath.Join(t.TempDir(), "figure.png")

	require.NoError(t, WriteFigure(path, run.History))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Greater(t, cfg.Width, cfg.Height)
}

func TestWriteFigure_ZeroRounds(t *testing.T) {
	run := testRun(t, 0)
	path := filepath.Join(t.TempDir(), "empty.png")

	require.NoError(t, WriteFigure(path, run.History))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWriteFigure_BadPath(t *testing.T) {
	run := testRun(t, 1)
	err := WriteFigure(filepath.Join(t.TempDir(), "missing", "figure.png"), run.History)
	assert.Error(t, err)
}

func TestFigurePanels_CoverEveryMetric(t *testing.T) {
	h := testRun(t, 1).History
	assert.Len(t, figurePanels, figureRows*figureCols)
	for _, m := range h.Metrics() {
		found := false
		for _, fp := range figurePanels {
			if fp.key == m.Key {
				found = true
			}
		}
		assert.True(t, found, "metric %s has no panel", m.Key)
	}
}
