package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talgya/flowsim/internal/engine"
	"github.com/talgya/flowsim/internal/metrics"
	"github.com/talgya/flowsim/internal/persistence"
	"github.com/talgya/flowsim/internal/report"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation, print its histories and render the figure",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadParams(cmd)
			if err != nil {
				return err
			}
			plotPath, _ := cmd.Flags().GetString("plot")
			show, _ := cmd.Flags().GetBool("show")
			dbPath, _ := cmd.Flags().GetString("db")
			metricsPath, _ := cmd.Flags().GetString("metrics-file")

			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			slog.Info("starting simulation",
				"seed", p.Seed,
				"rounds", p.NumRounds,
				"users", p.NumUsers,
				"activities_per_user", p.ActivitiesPerUser,
			)

			var rec *metrics.Recorder
			var onRound func(engine.RoundResult)
			if metricsPath != "" {
				rec = metrics.NewRecorder(p.Seed)
				rec.Start(engine.InitialState(p))
				onRound = rec.Observe
			}

			run, err := engine.Execute(ctx, p, onRound)
			if err != nil {
				return err
			}

			if err := report.PrintHistory(cmd.OutOrStdout(), run.History); err != nil {
				return err
			}

			if plotPath != "" {
				if err := report.WriteFigure(plotPath, run.History); err != nil {
					return err
				}
				slog.Info("figure written", "path", plotPath)
				if show {
					if err := report.Show(plotPath); err != nil {
						slog.Warn("could not display figure", "error", err)
					}
				}
			}

			if rec != nil {
				if err := rec.WriteTextfile(metricsPath); err != nil {
					return err
				}
				slog.Info("metrics written", "path", metricsPath)
			}

			if dbPath != "" {
				db, err := persistence.Open(dbPath)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := db.SaveRun(run); err != nil {
					return err
				}
			}
			return nil
		},
	}

	addParamFlags(cmd)
	cmd.Flags().String("plot", report.DefaultFigurePath, "PNG output path (empty disables the figure)")
	cmd.Flags().Bool("show", false, "Open the figure after rendering")
	cmd.Flags().String("db", "", "Archive the run in this SQLite database")
	cmd.Flags().String("metrics-file", "", "Write Prometheus textfile metrics to this path")
	return cmd
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
