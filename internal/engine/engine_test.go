package engine

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/flowsim/internal/config"
	"github.com/talgya/flowsim/internal/entropy"
)

func newTestParams() config.Params {
	p := config.Default()
	p.Seed = 42
	return p
}

func runSim(t *testing.T, p config.Params) *Run {
	t.Helper()
	run, err := NewSimulation(p, entropy.New(p.Seed)).Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, run)
	return run
}

func TestRun_SeriesLengths(t *testing.T) {
	p := newTestParams()
	run := runSim(t, p)
	h := run.History

	assert.Len(t, h.Effort, p.NumRounds)
	assert.Len(t, h.Mints, p.NumRounds)
	assert.Len(t, h.LegendaryMints, p.NumRounds)
	assert.Len(t, h.Burned, p.NumRounds)
	assert.Len(t, h.Supply, p.NumRounds+1)
	assert.Len(t, h.NFTSupply, p.NumRounds+1)
	assert.Len(t, h.Legendary, p.NumRounds+1)
	assert.Len(t, h.Pool, p.NumRounds+1)
	assert.Len(t, run.Rounds, p.NumRounds)
	assert.Equal(t, p.Seed, run.Seed)
}

func TestRun_Invariants(t *testing.T) {
	for _, seed := range []uint64{1, 2, 3, 42, 1000} {
		p := newTestParams()
		p.Seed = seed
		p.NumRounds = 30
		run := runSim(t, p)
		h := run.History

		for i := 1; i < len(h.Supply); i++ {
			assert.GreaterOrEqual(t, h.Supply[i], h.Supply[i-1], "component supply decreased at %d", i)
			assert.GreaterOrEqual(t, h.Pool[i], h.Pool[i-1], "pool shrank at %d", i)
		}
		for _, n := range h.NFTSupply {
			assert.GreaterOrEqual(t, n, 0)
		}
		for i := range h.Mints {
			assert.LessOrEqual(t, h.LegendaryMints[i], h.Mints[i])
		}
		for _, r := range run.Rounds {
			assert.GreaterOrEqual(t, r.FeeFraction, 0.0)
			assert.Equal(t, r.Sells, r.LegendarySells+r.RegularSells)
		}
	}
}

func TestRun_DeterministicForSeed(t *testing.T) {
	a := runSim(t, newTestParams())
	b := runSim(t, newTestParams())
	assert.Equal(t, a.History, b.History)
	assert.Equal(t, a.Final, b.Final)
}

func TestRun_ReferenceRoundZero(t *testing.T) {
	p := newTestParams()
	p.NumRounds = 1
	run := runSim(t, p)
	r := run.Rounds[0]

	// 500 samples near 10 each, per-activity budget ~2 against a price that
	// starts at 1 and rises by 0.01 per unit.
	assert.InDelta(t, 5000, r.TotalEffort, 300)
	assert.Greater(t, r.State.Supply, 0)
	assert.Greater(t, r.Spent, 0.0)
	assert.Equal(t, 30, r.Sells)
	// Per-activity effort never clears the default threshold of 12.
	assert.Equal(t, 0, r.LegendaryMints)
	assert.Equal(t, 6, r.Burned)
	assert.Equal(t, r.Mints-6, r.State.NFTSupply)
	assert.InDelta(t, 10000+r.Spent*0.1, r.State.Pool, 1e-6)
}

func TestRun_ThresholdAboveAnyEffort(t *testing.T) {
	p := newTestParams()
	p.EffortThreshold = 1e9
	p.LegendaryProb = 1
	run := runSim(t, p)

	for _, n := range run.History.LegendaryMints {
		assert.Equal(t, 0, n)
	}
	assert.Equal(t, 0, run.Final.Legendary)
}

func TestRun_EveryEligibleMintIsLegendary(t *testing.T) {
	p := newTestParams()
	p.EffortThreshold = math.Inf(-1)
	p.LegendaryProb = 1
	run := runSim(t, p)

	for i := range run.History.Mints {
		assert.Equal(t, run.History.Mints[i], run.History.LegendaryMints[i])
	}
}

func TestRun_ZeroBurnRate(t *testing.T) {
	p := newTestParams()
	p.BurnRate = 0
	run := runSim(t, p)

	for _, b := range run.History.Burned {
		assert.Equal(t, 0, b)
	}
	for i := 1; i < len(run.History.NFTSupply); i++ {
		assert.GreaterOrEqual(t, run.History.NFTSupply[i], run.History.NFTSupply[i-1])
	}
}

func TestRun_ZeroRounds(t *testing.T) {
	p := newTestParams()
	p.NumRounds = 0
	run := runSim(t, p)
	h := run.History

	assert.Empty(t, h.Effort)
	assert.Empty(t, h.Mints)
	assert.Empty(t, h.LegendaryMints)
	assert.Empty(t, h.Burned)
	assert.Equal(t, []int{p.InitialSupply}, h.Supply)
	assert.Equal(t, []int{p.InitialNFTSupply}, h.NFTSupply)
	assert.Equal(t, []int{p.InitialLegendary}, h.Legendary)
	assert.Equal(t, []float64{p.InitialPool}, h.Pool)
	assert.Empty(t, run.Rounds)
}

func TestRun_ZeroPoolStaysZero(t *testing.T) {
	p := newTestParams()
	p.InitialPool = 0
	run := runSim(t, p)

	require.NotEmpty(t, run.Rounds)
	assert.Greater(t, run.Rounds[0].Spent, 0.0)
	assert.Equal(t, 0.0, run.Rounds[0].FeeFraction)
	for _, v := range run.History.Pool {
		assert.Equal(t, 0.0, v)
	}
}

func TestRun_NoUsers(t *testing.T) {
	p := newTestParams()
	p.NumUsers = 0
	run := runSim(t, p)

	for i := range run.Rounds {
		assert.Equal(t, 0.0, run.History.Effort[i])
		assert.Equal(t, 0, run.History.Mints[i])
		assert.Equal(t, 0, run.History.Burned[i])
	}
	assert.Equal(t, p.InitialPool, run.Final.Pool)
}

func TestRun_LegendaryExemptFromBurn(t *testing.T) {
	p := newTestParams()
	p.NumRounds = 5
	p.SuccessProb = 0
	p.InitialNFTSupply = 100
	p.InitialLegendary = 100 // every unit legendary: all sells are exempt
	run := runSim(t, p)

	for _, r := range run.Rounds {
		assert.Equal(t, r.Sells, r.LegendarySells)
		assert.Equal(t, 0, r.Burned)
	}
	assert.Equal(t, 100, run.Final.NFTSupply)
	assert.Equal(t, 100, run.Final.Legendary)
}

func TestRun_LegendaryDriftIsNotClamped(t *testing.T) {
	p := newTestParams()
	p.SuccessProb = 0
	p.InitialNFTSupply = 0
	p.InitialLegendary = 50
	run := runSim(t, p)

	assert.Equal(t, 50, run.Final.Legendary)
	assert.Equal(t, 0, run.Final.NFTSupply)
	assert.Equal(t, 50, run.Final.LegendaryDrift())
}

func TestStep_NonFinitePoolAborts(t *testing.T) {
	p := newTestParams()
	p.InitialPool = math.Inf(1)
	sim := NewSimulation(p, entropy.New(p.Seed))

	_, err := sim.Step()
	require.ErrorIs(t, err, ErrNonFinitePool)
	assert.Equal(t, 0, sim.CurrentRound())
	assert.Len(t, sim.History.Pool, 1)

	run, err := NewSimulation(p, entropy.New(p.Seed)).Run(context.Background())
	assert.ErrorIs(t, err, ErrNonFinitePool)
	assert.Nil(t, run)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := NewSimulation(newTestParams(), entropy.New(1)).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, run)
}

func TestRun_OnRoundCalledOncePerRound(t *testing.T) {
	p := newTestParams()
	sim := NewSimulation(p, entropy.New(p.Seed))

	var seen []int
	sim.OnRound = func(r RoundResult) { seen = append(seen, r.Round) }
	_, err := sim.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, seen)
}

func TestExecute_PicksSeedWhenZero(t *testing.T) {
	p := config.Default()
	p.NumRounds = 2

	run, err := Execute(context.Background(), p, nil)
	require.NoError(t, err)
	assert.NotZero(t, run.Seed)
	assert.Equal(t, run.Seed, run.Params.Seed)
}

func TestHistory_Metrics(t *testing.T) {
	run := runSim(t, newTestParams())
	metrics := run.History.Metrics()

	require.Len(t, metrics, 8)
	keys := make([]string, len(metrics))
	for i, m := range metrics {
		keys[i] = m.Key
	}
	assert.Equal(t, []string{
		MetricEffort, MetricSupply, MetricNFTSupply, MetricLegendary,
		MetricMints, MetricLegendaryMints, MetricBurned, MetricPool,
	}, keys)

	m, ok := run.History.Metric(MetricBurned)
	require.True(t, ok)
	assert.True(t, m.Integer)
	assert.Equal(t, float64(run.History.Burned[0]), m.Values[0])

	_, ok = run.History.Metric("nope")
	assert.False(t, ok)
}

func TestState_LegendaryDrift(t *testing.T) {
	assert.Equal(t, 0, State{NFTSupply: 10, Legendary: 3}.LegendaryDrift())
	assert.Equal(t, 4, State{NFTSupply: 1, Legendary: 5}.LegendaryDrift())
}
