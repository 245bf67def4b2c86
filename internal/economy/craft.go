package economy

// MintOutcome is the result of one crafting attempt.
type MintOutcome struct {
	Minted    bool
	Legendary bool
}

// Oracle resolves crafting attempts.
type Oracle struct {
	SuccessProb   float64
	Threshold     float64 // effort must strictly exceed this for a legendary roll
	LegendaryProb float64
}

// Mint rolls one crafting attempt for the given effort. The mint roll always
// consumes one draw; the legendary roll consumes a second draw only when the
// mint succeeded and effort exceeds the threshold.
func (o Oracle) Mint(src Source, effort float64) MintOutcome {
	if src.Float() >= o.SuccessProb {
		return MintOutcome{}
	}
	out := MintOutcome{Minted: true}
	if effort > o.Threshold && src.Float() < o.LegendaryProb {
		out.Legendary = true
	}
	return out
}
