// Package report renders run histories for people: labelled console lines,
// the eight-panel figure, and replica summaries. It only reads engine output.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/talgya/flowsim/internal/engine"
)

var consoleLabels = map[string]string{
	engine.MetricEffort:         "Effort History per Round",
	engine.MetricSupply:         "Component Supply History",
	engine.MetricNFTSupply:      "NFT Supply History",
	engine.MetricLegendary:      "Legendary NFTs History",
	engine.MetricMints:          "Successful Mints per Round",
	engine.MetricLegendaryMints: "Legendary Mints per Round",
	engine.MetricBurned:         "Burned NFTs per Round",
	engine.MetricPool:           "Community Pool Growth",
}

// Label returns the console label for a metric key.
func Label(key string) string {
	if l, ok := consoleLabels[key]; ok {
		return l
	}
	return key
}

// PrintHistory writes one labelled line per history series.
func PrintHistory(w io.Writer, h *engine.History) error {
	for _, m := range h.Metrics() {
		if _, err := fmt.Fprintf(w, "%s: %s\n", Label(m.Key), formatSeries(m.Values, m.Integer)); err != nil {
			return err
		}
	}
	return nil
}

// PrintBands writes the per-round mean of each metric across replicas,
// followed by the standard deviation of its last entry.
func PrintBands(w io.Writer, replicas int, bands []engine.Band) error {
	if _, err := fmt.Fprintf(w, "Mean over %d replicas\n", replicas); err != nil {
		return err
	}
	for _, b := range bands {
		last := 0.0
		if n := len(b.StdDev); n > 0 {
			last = b.StdDev[n-1]
		}
		if _, err := fmt.Fprintf(w, "%s: %s (final sd %s)\n",
			Label(b.Key), formatSeries(b.Mean, false), formatFloat(last)); err != nil {
			return err
		}
	}
	return nil
}

func formatSeries(values []float64, integer bool) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if integer {
			parts[i] = strconv.FormatInt(int64(v), 10)
		} else {
			parts[i] = formatFloat(v)
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
