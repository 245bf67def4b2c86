// Package metrics exports simulation totals as Prometheus metrics, written
// to a node_exporter textfile at the end of a run.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/talgya/flowsim/internal/engine"
)

const namespace = "flowsim"

// Recorder holds the metric set for one run on its own registry.
type Recorder struct {
	reg *prometheus.Registry

	round          prometheus.Gauge
	supply         prometheus.Gauge
	nftSupply      prometheus.Gauge
	legendary      prometheus.Gauge
	pool           prometheus.Gauge
	mints          prometheus.Counter
	legendaryMints prometheus.Counter
	burned         prometheus.Counter
	spent          prometheus.Counter
}

// NewRecorder creates a Recorder labelled with the run's seed.
func NewRecorder(seed uint64) *Recorder {
	labels := prometheus.Labels{"seed": fmt.Sprintf("%d", seed)}
	gauge := func(subsystem, name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}
	counter := func(subsystem, name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}

	r := &Recorder{
		reg:            prometheus.NewRegistry(),
		round:          gauge("run", "rounds_completed", "Number of rounds completed."),
		supply:         gauge("market", "component_supply", "Components issued on the bonding curve."),
		nftSupply:      gauge("craft", "nft_supply", "Circulating NFT supply after burn."),
		legendary:      gauge("craft", "legendary_supply", "Legendary NFTs held."),
		pool:           gauge("pool", "value", "Community pool balance."),
		mints:          counter("craft", "mints_total", "Successful mints."),
		legendaryMints: counter("craft", "legendary_mints_total", "Legendary mints."),
		burned:         counter("burn", "burned_total", "NFTs burned on sale to the pool."),
		spent:          counter("market", "spent_total", "Effort spent on components."),
	}
	r.reg.MustRegister(
		r.round, r.supply, r.nftSupply, r.legendary, r.pool,
		r.mints, r.legendaryMints, r.burned, r.spent,
	)
	return r
}

// Start sets the gauges to a run's initial state.
func (r *Recorder) Start(s engine.State) {
	r.setState(s)
}

// Observe records one completed round.
func (r *Recorder) Observe(rr engine.RoundResult) {
	r.round.Set(float64(rr.Round + 1))
	r.setState(rr.State)
	r.mints.Add(float64(rr.Mints))
	r.legendaryMints.Add(float64(rr.LegendaryMints))
	r.burned.Add(float64(rr.Burned))
	if rr.Spent > 0 { // counters reject negative adds
		r.spent.Add(rr.Spent)
	}
}

func (r *Recorder) setState(s engine.State) {
	r.supply.Set(float64(s.Supply))
	r.nftSupply.Set(float64(s.NFTSupply))
	r.legendary.Set(float64(s.Legendary))
	r.pool.Set(s.Pool)
}

// Registry returns the recorder's registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// WriteTextfile writes the current metric values in text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
