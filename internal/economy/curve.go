package economy

// Curve is a linear bonding curve: unit price rises with cumulative supply.
type Curve struct {
	BasePrice float64
	Factor    float64
}

// Price returns the price of the unit issued at the given supply index.
func (c Curve) Price(supply int) float64 {
	return c.BasePrice + c.Factor*float64(supply)
}

// Cost returns the total price of count consecutive units starting at supply.
func (c Curve) Cost(count, supply int) float64 {
	total := 0.0
	for i := 0; i < count; i++ {
		total += c.Price(supply + i)
	}
	return total
}

// Purchase buys count units starting at supply with the given budget.
// All-or-nothing: if the units cost more than the budget, nothing is bought,
// cost is 0 and supply is returned unchanged.
func (c Curve) Purchase(budget float64, count, supply int) (cost float64, newSupply int) {
	total := c.Cost(count, supply)
	if total > budget {
		return 0, supply
	}
	return total, supply + count
}
