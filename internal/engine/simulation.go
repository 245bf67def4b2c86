// Package engine drives the circulation model round by round.
// A Simulation owns one random source and four running totals; each Step
// runs the five round phases in a fixed order and appends to the history.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/talgya/flowsim/internal/config"
	"github.com/talgya/flowsim/internal/economy"
	"github.com/talgya/flowsim/internal/entropy"
)

// ErrNonFinitePool is returned when the community pool compounds to NaN or
// an infinity. The run is aborted.
var ErrNonFinitePool = errors.New("community pool is not finite")

// State holds the running totals carried from one round to the next.
type State struct {
	Supply    int     `json:"component_supply"`
	NFTSupply int     `json:"nft_supply"`
	Legendary int     `json:"legendary_supply"`
	Pool      float64 `json:"pool"`
}

// LegendaryDrift returns how far the legendary count exceeds NFT supply,
// or 0. Burns never touch legendary units, so the two can drift apart.
func (s State) LegendaryDrift() int {
	if s.Legendary > s.NFTSupply {
		return s.Legendary - s.NFTSupply
	}
	return 0
}

// RoundResult is everything one round produced.
type RoundResult struct {
	Round          int     `json:"round"`
	TotalEffort    float64 `json:"total_effort"`
	Spent          float64 `json:"spent"`
	Mints          int     `json:"mints"`
	LegendaryMints int     `json:"legendary_mints"`
	Sells          int     `json:"sells"`
	LegendarySells int     `json:"legendary_sells"`
	RegularSells   int     `json:"regular_sells"`
	Burned         int     `json:"burned"`
	FeeFraction    float64 `json:"fee_fraction"`
	State          State   `json:"state"` // running totals after the round
}

// Simulation holds the model state and wires the economy components together.
type Simulation struct {
	Params  config.Params
	State   State
	History *History

	// OnRound, if set, is called after each completed round.
	OnRound func(RoundResult)

	src    *entropy.Source
	curve  economy.Curve
	oracle economy.Oracle
	round  int

	driftLogged bool
}

// NewSimulation creates a Simulation at its initial state.
func NewSimulation(p config.Params, src *entropy.Source) *Simulation {
	start := InitialState(p)
	return &Simulation{
		Params:  p,
		State:   start,
		History: newHistory(start),
		src:     src,
		curve:   economy.Curve{BasePrice: p.BasePrice, Factor: p.CurveFactor},
		oracle: economy.Oracle{
			SuccessProb:   p.SuccessProb,
			Threshold:     p.EffortThreshold,
			LegendaryProb: p.LegendaryProb,
		},
	}
}

// InitialState returns the running totals a run starts from.
func InitialState(p config.Params) State {
	return State{
		Supply:    p.InitialSupply,
		NFTSupply: p.InitialNFTSupply,
		Legendary: p.InitialLegendary,
		Pool:      p.InitialPool,
	}
}

// CurrentRound returns the index of the next round to run.
func (s *Simulation) CurrentRound() int {
	return s.round
}

// Step runs one round. On error the simulation state is left as it was
// before the round.
func (s *Simulation) Step() (RoundResult, error) {
	p := s.Params
	cur := s.State
	r := RoundResult{Round: s.round}

	// Efforts.
	efforts := economy.GenerateEfforts(s.src, p.NumUsers, p.ActivitiesPerUser, p.BaseEffort, p.EffortStdDev)
	r.TotalEffort = floats.Sum(efforts)

	// Purchases: one component per sample, budget is the per-activity average.
	supply := cur.Supply
	for _, e := range efforts {
		cost, next := s.curve.Purchase(e/float64(p.ActivitiesPerUser), 1, supply)
		r.Spent += cost
		supply = next
	}

	// Crafting.
	for _, e := range efforts {
		out := s.oracle.Mint(s.src, e/float64(p.ActivitiesPerUser))
		if out.Minted {
			r.Mints++
		}
		if out.Legendary {
			r.LegendaryMints++
		}
	}
	nftSupply := cur.NFTSupply + r.Mints
	legendary := cur.Legendary + r.LegendaryMints

	// Sells and burn. Legendary sells recirculate untouched.
	r.Sells = economy.SellCount(p.NumUsers, p.SellFraction)
	r.LegendarySells, r.RegularSells = economy.SplitSells(r.Sells, legendary, nftSupply)
	r.Burned, nftSupply = economy.SellToPool(r.RegularSells, nftSupply, p.BurnRate)

	// Pool growth from this round's spending.
	r.FeeFraction = economy.FeeFraction(r.Spent, cur.Pool, p.FeeRate)
	pool := economy.Grow(cur.Pool, r.FeeFraction)
	if math.IsNaN(pool) || math.IsInf(pool, 0) {
		return RoundResult{}, fmt.Errorf("round %d: %w", s.round, ErrNonFinitePool)
	}

	r.State = State{
		Supply:    supply,
		NFTSupply: nftSupply,
		Legendary: legendary,
		Pool:      pool,
	}

	if drift := r.State.LegendaryDrift(); drift > 0 && !s.driftLogged {
		s.driftLogged = true
		slog.Warn("legendary count exceeds NFT supply",
			"round", s.round,
			"legendary", legendary,
			"nft_supply", nftSupply,
			"drift", drift,
		)
	}

	s.State = r.State
	s.History.append(r)
	s.round++
	return r, nil
}

// Run executes every remaining round and returns the completed run record.
// Any error aborts the run and no partial record is returned.
func (s *Simulation) Run(ctx context.Context) (*Run, error) {
	run := &Run{
		ID:        uuid.New(),
		Seed:      s.src.Seed(),
		Params:    s.Params,
		StartedAt: time.Now(),
	}

	slog.Debug("simulation started", "run_id", run.ID, "seed", run.Seed, "rounds", s.Params.NumRounds)

	for s.round < s.Params.NumRounds {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("round %d: %w", s.round, err)
		}
		r, err := s.Step()
		if err != nil {
			return nil, err
		}
		run.Rounds = append(run.Rounds, r)

		slog.Debug("round complete",
			"round", r.Round,
			"effort", fmt.Sprintf("%.2f", r.TotalEffort),
			"spent", fmt.Sprintf("%.2f", r.Spent),
			"mints", r.Mints,
			"legendary_mints", r.LegendaryMints,
			"burned", r.Burned,
			"nft_supply", r.State.NFTSupply,
			"pool", fmt.Sprintf("%.2f", r.State.Pool),
		)
		if s.OnRound != nil {
			s.OnRound(r)
		}
	}

	run.History = s.History
	run.Final = s.State
	run.FinishedAt = time.Now()
	return run, nil
}
