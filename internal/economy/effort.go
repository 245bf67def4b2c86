// Package economy provides the circulation model's numeric components:
// effort generation, the bonding-curve component market, probabilistic
// crafting, the burn pool and the community pool.
package economy

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Source is the random stream consumed by the stochastic components.
type Source interface {
	rand.Source
	Float() float64 // uniform in [0, 1)
}

// GenerateEfforts draws one normally distributed effort sample per
// (user, activity) pair, returned as a flat slice of users*activities values.
// Samples are not clamped and may be negative.
func GenerateEfforts(src Source, users, activities int, mean, stddev float64) []float64 {
	n := users * activities
	if n <= 0 {
		return []float64{}
	}
	dist := distuv.Normal{Mu: mean, Sigma: stddev, Src: src}
	efforts := make([]float64, n)
	for i := range efforts {
		efforts[i] = dist.Rand()
	}
	return efforts
}
