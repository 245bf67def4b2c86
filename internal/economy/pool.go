package economy

// FeeFraction returns the round's pool growth fraction: the fee skimmed from
// spending, relative to the current pool. A zero pool yields zero.
func FeeFraction(spent, pool, feeRate float64) float64 {
	if pool == 0 {
		return 0
	}
	return spent * feeRate / pool
}

// Grow compounds the pool by the fee fraction.
func Grow(pool, fee float64) float64 {
	return pool * (1 + fee)
}
