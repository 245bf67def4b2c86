package engine

// Metric keys, in report order.
const (
	MetricEffort         = "effort"
	MetricSupply         = "component_supply"
	MetricNFTSupply      = "nft_supply"
	MetricLegendary      = "legendary_supply"
	MetricMints          = "mints"
	MetricLegendaryMints = "legendary_mints"
	MetricBurned         = "burned"
	MetricPool           = "pool"
)

// History holds the append-only series for a run. Running totals start with
// their initial value and so hold one more entry than the per-round series.
type History struct {
	Effort         []float64 `json:"effort"`
	Supply         []int     `json:"component_supply"`
	NFTSupply      []int     `json:"nft_supply"`
	Legendary      []int     `json:"legendary_supply"`
	Mints          []int     `json:"mints"`
	LegendaryMints []int     `json:"legendary_mints"`
	Burned         []int     `json:"burned"`
	Pool           []float64 `json:"pool"`
}

func newHistory(start State) *History {
	return &History{
		Effort:         []float64{},
		Supply:         []int{start.Supply},
		NFTSupply:      []int{start.NFTSupply},
		Legendary:      []int{start.Legendary},
		Mints:          []int{},
		LegendaryMints: []int{},
		Burned:         []int{},
		Pool:           []float64{start.Pool},
	}
}

// HistoryFromRounds rebuilds a history from its initial state and rounds.
func HistoryFromRounds(start State, rounds []RoundResult) *History {
	h := newHistory(start)
	for _, r := range rounds {
		h.append(r)
	}
	return h
}

func (h *History) append(r RoundResult) {
	h.Effort = append(h.Effort, r.TotalEffort)
	h.Supply = append(h.Supply, r.State.Supply)
	h.NFTSupply = append(h.NFTSupply, r.State.NFTSupply)
	h.Legendary = append(h.Legendary, r.State.Legendary)
	h.Mints = append(h.Mints, r.Mints)
	h.LegendaryMints = append(h.LegendaryMints, r.LegendaryMints)
	h.Burned = append(h.Burned, r.Burned)
	h.Pool = append(h.Pool, r.State.Pool)
}

// Metric is one named history series as floats.
type Metric struct {
	Key     string
	Integer bool // values are counts
	Values  []float64
}

// Metrics returns the eight series in report order.
func (h *History) Metrics() []Metric {
	return []Metric{
		{Key: MetricEffort, Values: h.Effort},
		{Key: MetricSupply, Integer: true, Values: intsToFloats(h.Supply)},
		{Key: MetricNFTSupply, Integer: true, Values: intsToFloats(h.NFTSupply)},
		{Key: MetricLegendary, Integer: true, Values: intsToFloats(h.Legendary)},
		{Key: MetricMints, Integer: true, Values: intsToFloats(h.Mints)},
		{Key: MetricLegendaryMints, Integer: true, Values: intsToFloats(h.LegendaryMints)},
		{Key: MetricBurned, Integer: true, Values: intsToFloats(h.Burned)},
		{Key: MetricPool, Values: h.Pool},
	}
}

// Metric returns the series with the given key.
func (h *History) Metric(key string) (Metric, bool) {
	for _, m := range h.Metrics() {
		if m.Key == key {
			return m, true
		}
	}
	return Metric{}, false
}

func intsToFloats(xs []int) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}
