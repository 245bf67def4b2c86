package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talgya/flowsim/internal/engine"
	"github.com/talgya/flowsim/internal/persistence"
	"github.com/talgya/flowsim/internal/report"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run independent replicas and print per-round means",
		Long: `sweep runs the same parameters under consecutive seeds starting at
--seed and prints the per-round mean of every history series.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadParams(cmd)
			if err != nil {
				return err
			}
			replicas, _ := cmd.Flags().GetInt("replicas")
			workers, _ := cmd.Flags().GetInt("workers")
			dbPath, _ := cmd.Flags().GetString("db")
			if replicas < 0 {
				return fmt.Errorf("invalid --replicas %d: must not be negative", replicas)
			}
			if workers <= 0 {
				workers = runtime.GOMAXPROCS(0)
			}

			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			seeds := engine.ReplicaSeeds(p.Seed, replicas)
			slog.Info("starting sweep", "replicas", replicas, "workers", workers, "base_seed", p.Seed, "rounds", p.NumRounds)

			runs, err := engine.RunReplicas(ctx, p, seeds, workers)
			if err != nil {
				return err
			}
			bands, err := engine.Summarize(runs)
			if err != nil {
				return err
			}
			if err := report.PrintBands(cmd.OutOrStdout(), len(runs), bands); err != nil {
				return err
			}

			if dbPath != "" {
				db, err := persistence.Open(dbPath)
				if err != nil {
					return err
				}
				defer db.Close()
				for _, run := range runs {
					if err := db.SaveRun(run); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	addParamFlags(cmd)
	cmd.Flags().Int("replicas", 20, "Number of replicas")
	cmd.Flags().Int("workers", 0, "Replicas run at once (0 uses GOMAXPROCS)")
	cmd.Flags().String("db", "", "Archive every replica in this SQLite database")
	return cmd
}
