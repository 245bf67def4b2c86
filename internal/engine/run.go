package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/talgya/flowsim/internal/config"
	"github.com/talgya/flowsim/internal/entropy"
)

// Run is the record of one completed simulation.
type Run struct {
	ID         uuid.UUID     `json:"id"`
	Seed       uint64        `json:"seed"`
	Params     config.Params `json:"params"`
	History    *History      `json:"history"`
	Rounds     []RoundResult `json:"rounds"`
	Final      State         `json:"final"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Execute runs a full simulation for p. A zero seed is replaced with a fresh
// one; the seed actually used is recorded on the returned Run.
func Execute(ctx context.Context, p config.Params, onRound func(RoundResult)) (*Run, error) {
	p.Seed = entropy.SeedOrNew(p.Seed)
	sim := NewSimulation(p, entropy.New(p.Seed))
	sim.OnRound = onRound

	run, err := sim.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run simulation (seed %d): %w", p.Seed, err)
	}
	run.LogSummary()
	return run, nil
}

// TotalSpent returns market spending across all rounds.
func (r *Run) TotalSpent() float64 {
	total := 0.0
	for _, rr := range r.Rounds {
		total += rr.Spent
	}
	return total
}

// LogSummary writes a one-line run summary at info level.
func (r *Run) LogSummary() {
	meanEffort := 0.0
	if len(r.History.Effort) > 0 {
		meanEffort = stat.Mean(r.History.Effort, nil)
	}
	slog.Info("run complete",
		"run_id", r.ID,
		"seed", r.Seed,
		"rounds", len(r.Rounds),
		"mean_effort", fmt.Sprintf("%.2f", meanEffort),
		"spent", humanize.FormatFloat("#,###.##", r.TotalSpent()),
		"component_supply", humanize.Comma(int64(r.Final.Supply)),
		"nft_supply", humanize.Comma(int64(r.Final.NFTSupply)),
		"legendary", r.Final.Legendary,
		"pool", humanize.FormatFloat("#,###.##", r.Final.Pool),
		"elapsed", r.FinishedAt.Sub(r.StartedAt),
	)
}

