package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/talgya/flowsim/internal/config"
	"github.com/talgya/flowsim/internal/entropy"
)

// ReplicaSeeds returns n consecutive seeds starting at base. Zero means
// "pick a seed" elsewhere, so it is skipped when the sequence wraps.
func ReplicaSeeds(base uint64, n int) []uint64 {
	if n <= 0 {
		return []uint64{}
	}
	seeds := make([]uint64, n)
	seed := base
	for i := range seeds {
		if seed == 0 {
			seed++
		}
		seeds[i] = seed
		seed++
	}
	return seeds
}

// RunReplicas runs one independent simulation per seed, at most workers at a
// time (workers <= 0 means unbounded). Each replica owns its random source,
// so results depend only on the seed. Runs are returned in seed order.
func RunReplicas(ctx context.Context, p config.Params, seeds []uint64, workers int) ([]*Run, error) {
	runs := make([]*Run, len(seeds))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, seed := range seeds {
		g.Go(func() error {
			rp := p
			rp.Seed = seed
			run, err := NewSimulation(rp, entropy.New(seed)).Run(ctx)
			if err != nil {
				return fmt.Errorf("replica %d (seed %d): %w", i, seed, err)
			}
			runs[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}

// Band is the per-index mean and standard deviation of a metric across
// replicas.
type Band struct {
	Key    string
	Mean   []float64
	StdDev []float64
}

// Summarize aggregates each metric across runs, index by index. All runs
// must share the same round count.
func Summarize(runs []*Run) ([]Band, error) {
	if len(runs) == 0 {
		return nil, nil
	}
	rounds := len(runs[0].Rounds)
	for _, r := range runs[1:] {
		if len(r.Rounds) != rounds {
			return nil, fmt.Errorf("summarize: run %s has %d rounds, want %d", r.ID, len(r.Rounds), rounds)
		}
	}

	perRun := make([][]Metric, len(runs))
	for i, r := range runs {
		perRun[i] = r.History.Metrics()
	}

	bands := make([]Band, len(perRun[0]))
	sample := make([]float64, len(runs))
	for m := range bands {
		n := len(perRun[0][m].Values)
		band := Band{
			Key:    perRun[0][m].Key,
			Mean:   make([]float64, n),
			StdDev: make([]float64, n),
		}
		for idx := 0; idx < n; idx++ {
			for i := range perRun {
				sample[i] = perRun[i][m].Values[idx]
			}
			if len(sample) < 2 {
				band.Mean[idx] = sample[0]
				continue
			}
			band.Mean[idx], band.StdDev[idx] = stat.MeanStdDev(sample, nil)
		}
		bands[m] = band
	}
	return bands, nil
}
