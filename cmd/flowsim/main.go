// Command flowsim runs the token circulation simulation: a bonding-curve
// component market, probabilistic crafting with legendary rolls, and a burn
// pool that exempts legendaries.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/talgya/flowsim/internal/config"
	"github.com/talgya/flowsim/internal/entropy"
)

var version = "0.1.0-dev"

const defaultDBPath = "flowsim.db"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("flowsim failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "flowsim",
		Short: "Circulation economy simulation with burn exemptions",
		Long: `flowsim runs a round-based Monte Carlo model of an effort-driven
token economy: components bought on a linear bonding curve, NFTs crafted
with a chance of legendary rarity, regular NFTs burned on sale to the pool,
and a community pool compounding on market fees.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			setupLogging(cmd.ErrOrStderr(), verbose)
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every round")

	rootCmd.AddCommand(
		newRunCmd(),
		newSweepCmd(),
		newHistoryCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

// addParamFlags registers the flags that shape simulation parameters.
func addParamFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "YAML parameter file (defaults apply for missing keys)")
	cmd.Flags().Uint64("seed", 0, "Random seed (0 picks one)")
	cmd.Flags().Int("rounds", 0, "Number of rounds (overrides config)")
}

// loadParams resolves parameters: defaults, config file, environment, flags.
// The returned Params always carries a non-zero seed.
func loadParams(cmd *cobra.Command) (config.Params, error) {
	path, _ := cmd.Flags().GetString("config")
	p, err := config.Load(path)
	if err != nil {
		return config.Params{}, err
	}

	if cmd.Flags().Changed("seed") {
		p.Seed, _ = cmd.Flags().GetUint64("seed")
	}
	if cmd.Flags().Changed("rounds") {
		p.NumRounds, _ = cmd.Flags().GetInt("rounds")
	}
	p.Seed = entropy.SeedOrNew(p.Seed)
	return p, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "flowsim version %s\n", version)
		},
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved simulation parameters as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadParams(cmd)
			if err != nil {
				return err
			}
			data, err := p.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	addParamFlags(cmd)
	return cmd
}
