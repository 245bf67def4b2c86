// Package persistence provides a SQLite archive of completed simulation runs.
// Runs are write-once records for later comparison; nothing here feeds a
// new simulation.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/flowsim/internal/config"
	"github.com/talgya/flowsim/internal/engine"
)

// ErrRunNotFound is returned by LoadRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// DB wraps a SQLite connection for the run archive.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed TEXT NOT NULL,
		num_rounds INTEGER NOT NULL,
		params_yaml TEXT NOT NULL,
		final_supply INTEGER NOT NULL,
		final_nft_supply INTEGER NOT NULL,
		final_legendary INTEGER NOT NULL,
		final_pool REAL NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rounds (
		run_id TEXT NOT NULL REFERENCES runs(id),
		round INTEGER NOT NULL,
		total_effort REAL NOT NULL,
		spent REAL NOT NULL,
		mints INTEGER NOT NULL,
		legendary_mints INTEGER NOT NULL,
		sells INTEGER NOT NULL,
		legendary_sells INTEGER NOT NULL,
		regular_sells INTEGER NOT NULL,
		burned INTEGER NOT NULL,
		fee_fraction REAL NOT NULL,
		component_supply INTEGER NOT NULL,
		nft_supply INTEGER NOT NULL,
		legendary_supply INTEGER NOT NULL,
		pool REAL NOT NULL,
		PRIMARY KEY (run_id, round)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RunSummary is one row of the runs table.
type RunSummary struct {
	ID             string    `db:"id" json:"id"`
	Seed           string    `db:"seed" json:"seed"` // stored as text: uint64 overflows INTEGER
	NumRounds      int       `db:"num_rounds" json:"num_rounds"`
	ParamsYAML     string    `db:"params_yaml" json:"-"`
	FinalSupply    int       `db:"final_supply" json:"final_supply"`
	FinalNFTSupply int       `db:"final_nft_supply" json:"final_nft_supply"`
	FinalLegendary int       `db:"final_legendary" json:"final_legendary"`
	FinalPool      float64   `db:"final_pool" json:"final_pool"`
	StartedAt      time.Time `db:"started_at" json:"started_at"`
	FinishedAt     time.Time `db:"finished_at" json:"finished_at"`
}

type roundRow struct {
	RunID          string  `db:"run_id"`
	Round          int     `db:"round"`
	TotalEffort    float64 `db:"total_effort"`
	Spent          float64 `db:"spent"`
	Mints          int     `db:"mints"`
	LegendaryMints int     `db:"legendary_mints"`
	Sells          int     `db:"sells"`
	LegendarySells int     `db:"legendary_sells"`
	RegularSells   int     `db:"regular_sells"`
	Burned         int     `db:"burned"`
	FeeFraction    float64 `db:"fee_fraction"`
	Supply         int     `db:"component_supply"`
	NFTSupply      int     `db:"nft_supply"`
	Legendary      int     `db:"legendary_supply"`
	Pool           float64 `db:"pool"`
}

// SaveRun writes a completed run and all its rounds in one transaction.
func (db *DB) SaveRun(run *engine.Run) error {
	paramsYAML, err := run.Params.YAML()
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.NamedExec(`INSERT INTO runs
		(id, seed, num_rounds, params_yaml, final_supply, final_nft_supply,
		 final_legendary, final_pool, started_at, finished_at)
		VALUES (:id, :seed, :num_rounds, :params_yaml, :final_supply, :final_nft_supply,
		 :final_legendary, :final_pool, :started_at, :finished_at)`,
		RunSummary{
			ID:             run.ID.String(),
			Seed:           fmt.Sprintf("%d", run.Seed),
			NumRounds:      len(run.Rounds),
			ParamsYAML:     string(paramsYAML),
			FinalSupply:    run.Final.Supply,
			FinalNFTSupply: run.Final.NFTSupply,
			FinalLegendary: run.Final.Legendary,
			FinalPool:      run.Final.Pool,
			StartedAt:      run.StartedAt.UTC(),
			FinishedAt:     run.FinishedAt.UTC(),
		})
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareNamed(`INSERT INTO rounds
		(run_id, round, total_effort, spent, mints, legendary_mints, sells,
		 legendary_sells, regular_sells, burned, fee_fraction,
		 component_supply, nft_supply, legendary_supply, pool)
		VALUES (:run_id, :round, :total_effort, :spent, :mints, :legendary_mints, :sells,
		 :legendary_sells, :regular_sells, :burned, :fee_fraction,
		 :component_supply, :nft_supply, :legendary_supply, :pool)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range run.Rounds {
		if _, err := stmt.Exec(roundRow{
			RunID:          run.ID.String(),
			Round:          r.Round,
			TotalEffort:    r.TotalEffort,
			Spent:          r.Spent,
			Mints:          r.Mints,
			LegendaryMints: r.LegendaryMints,
			Sells:          r.Sells,
			LegendarySells: r.LegendarySells,
			RegularSells:   r.RegularSells,
			Burned:         r.Burned,
			FeeFraction:    r.FeeFraction,
			Supply:         r.State.Supply,
			NFTSupply:      r.State.NFTSupply,
			Legendary:      r.State.Legendary,
			Pool:           r.State.Pool,
		}); err != nil {
			return fmt.Errorf("insert round %d of run %s: %w", r.Round, run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("run archived", "run_id", run.ID, "rounds", len(run.Rounds))
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]RunSummary, error) {
	var runs []RunSummary
	err := db.conn.Select(&runs,
		"SELECT * FROM runs ORDER BY started_at DESC LIMIT ?",
		limit,
	)
	return runs, err
}

// LoadRun reads an archived run back, rebuilding its history.
func (db *DB) LoadRun(id uuid.UUID) (*engine.Run, error) {
	var sum RunSummary
	err := db.conn.Get(&sum, "SELECT * FROM runs WHERE id = ?", id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}

	params, err := config.Decode([]byte(sum.ParamsYAML))
	if err != nil {
		return nil, fmt.Errorf("decode params of run %s: %w", id, err)
	}

	var rows []roundRow
	if err := db.conn.Select(&rows,
		"SELECT * FROM rounds WHERE run_id = ? ORDER BY round", id.String()); err != nil {
		return nil, fmt.Errorf("load rounds of run %s: %w", id, err)
	}

	var seed uint64
	if _, err := fmt.Sscan(sum.Seed, &seed); err != nil {
		return nil, fmt.Errorf("decode seed of run %s: %w", id, err)
	}

	run := &engine.Run{
		ID:     id,
		Seed:   seed,
		Params: params,
		Final: engine.State{
			Supply:    sum.FinalSupply,
			NFTSupply: sum.FinalNFTSupply,
			Legendary: sum.FinalLegendary,
			Pool:      sum.FinalPool,
		},
		StartedAt:  sum.StartedAt,
		FinishedAt: sum.FinishedAt,
	}
	for _, row := range rows {
		run.Rounds = append(run.Rounds, engine.RoundResult{
			Round:          row.Round,
			TotalEffort:    row.TotalEffort,
			Spent:          row.Spent,
			Mints:          row.Mints,
			LegendaryMints: row.LegendaryMints,
			Sells:          row.Sells,
			LegendarySells: row.LegendarySells,
			RegularSells:   row.RegularSells,
			Burned:         row.Burned,
			FeeFraction:    row.FeeFraction,
			State: engine.State{
				Supply:    row.Supply,
				NFTSupply: row.NFTSupply,
				Legendary: row.Legendary,
				Pool:      row.Pool,
			},
		})
	}
	run.History = engine.HistoryFromRounds(engine.InitialState(params), run.Rounds)
	return run, nil
}

// RunJSON returns an archived run encoded as JSON, for export.
func (db *DB) RunJSON(id uuid.UUID) ([]byte, error) {
	run, err := db.LoadRun(id)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(run, "", "  ")
}
