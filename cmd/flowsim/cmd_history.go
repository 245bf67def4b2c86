package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/talgya/flowsim/internal/persistence"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived runs, or export one as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			limit, _ := cmd.Flags().GetInt("limit")
			export, _ := cmd.Flags().GetString("export")

			if _, err := os.Stat(dbPath); err != nil {
				return fmt.Errorf("open run archive: %w", err)
			}
			db, err := persistence.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			out := cmd.OutOrStdout()
			if export != "" {
				id, err := uuid.Parse(export)
				if err != nil {
					return fmt.Errorf("invalid run id %q: %w", export, err)
				}
				data, err := db.RunJSON(id)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}

			runs, err := db.ListRuns(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No archived runs.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSEED\tROUNDS\tNFT SUPPLY\tLEGENDARY\tPOOL\tSTARTED")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%s\t%s\n",
					r.ID, r.Seed, r.NumRounds,
					humanize.Comma(int64(r.FinalNFTSupply)),
					r.FinalLegendary,
					humanize.FormatFloat("#,###.##", r.FinalPool),
					humanize.Time(r.StartedAt),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().String("db", defaultDBPath, "SQLite run archive")
	cmd.Flags().Int("limit", 20, "Maximum runs to list")
	cmd.Flags().String("export", "", "Print the run with this ID as JSON")
	return cmd
}
