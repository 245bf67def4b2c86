package economy

import "math"

// SellToPool liquidates a round's sells into the pool. A burnRate share of
// the regular (non-legendary) sells is burned; legendary sells are exempt and
// never reduce supply. The resulting supply is clamped at zero.
func SellToPool(regularSells, supply int, burnRate float64) (burned, newSupply int) {
	burned = int(math.Floor(float64(regularSells) * burnRate))
	newSupply = supply - burned
	if newSupply < 0 {
		newSupply = 0
	}
	return burned, newSupply
}

// SplitSells divides sells between legendary and regular units in proportion
// to the legendary share of supply. With no supply every sell is regular.
func SplitSells(sells, legendary, supply int) (legendarySells, regularSells int) {
	ratio := 0.0
	if supply > 0 {
		ratio = float64(legendary) / float64(supply)
	}
	legendarySells = int(float64(sells) * ratio)
	return legendarySells, sells - legendarySells
}

// SellCount returns the number of users liquidating in a round.
func SellCount(users int, sellFraction float64) int {
	return int(float64(users) * sellFraction)
}
