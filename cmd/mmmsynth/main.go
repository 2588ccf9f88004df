package main

import (
	"context"
	"fmt"
	"os"

	"mmmsynth/internal/config"
	"mmmsynth/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// overrides are command-line values applied on top of the loaded config
type overrides struct {
	configFile string
	seed       int64
	samples    int
	output     string
	format     string
	mode       string
	ledger     string
}

func main() {
	if err := loadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadDotEnv loads path into the environment. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func newRootCmd() *cobra.Command {
	o := &overrides{}

	rootCmd := &cobra.Command{
		Use:   "mmmsynth",
		Short: "Synthetic marketing-mix dataset generator and OLS reporter",
		Long: `Generate a weekly marketing-mix dataset with known response curves,
export it, fit sales against spend and print the regression and describe tables.

Run without a subcommand to execute the full pipeline.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.container(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			_, err = c.Pipeline.Run(cmd.Context(), cmd.OutOrStdout())
			return err
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&o.configFile, "config", "", "YAML config file (overrides "+config.ConfigFileEnv+")")
	flags.Int64Var(&o.seed, "seed", 0, "RNG seed (default from SEED or 91)")
	flags.IntVar(&o.samples, "samples", 0, "number of weeks (default from N_SAMPLES or 156)")
	flags.StringVar(&o.output, "output", "", "export path (default from OUTPUT_PATH or data.csv)")
	flags.StringVar(&o.format, "format", "", "export format: csv or xlsx (default inferred from --output)")
	flags.StringVar(&o.mode, "missing-mode", "", "missing-value injection: resample or aligned")
	flags.StringVar(&o.ledger, "ledger", "", "run ledger DSN: a SQLite path or postgres:// URL (default from LEDGER_DSN)")

	rootCmd.AddCommand(
		newGenerateCmd(o),
		newFitCmd(o),
		newDescribeCmd(o),
		newVerifyCmd(o),
		newPlotCmd(o),
		newSweepCmd(o),
		newHistoryCmd(o),
	)
	return rootCmd
}

// container loads the configuration, applies flag overrides and wires the app
func (o *overrides) container(cmd *cobra.Command) (*container.Container, error) {
	if o.configFile != "" {
		if err := os.Setenv(config.ConfigFileEnv, o.configFile); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Generator.Seed = o.seed
	}
	if flags.Changed("samples") {
		cfg.Generator.Samples = o.samples
	}
	if flags.Changed("output") {
		cfg.Output.Path = o.output
	}
	if flags.Changed("format") {
		cfg.Output.Format = o.format
	}
	if flags.Changed("missing-mode") {
		cfg.Generator.MissingMode = o.mode
	}
	if flags.Changed("ledger") {
		cfg.Ledger.DSN = o.ledger
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return container.New(cmd.Context(), cfg, nil)
}

func newGenerateCmd(o *overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate and export the dataset without fitting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.container(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			table, err := c.Pipeline.Generate(cmd.Context())
			if err != nil {
				return err
			}
			fp, err := c.Pipeline.Export(cmd.Context(), table)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d rows\tsha256 %s\n", c.Config.Output.Path, table.Len(), fp)
			return nil
		},
	}
}

func newFitCmd(o *overrides) *cobra.Command {
	return &cobra.Command{
		Use:     "fit [data-file]",
		Short:   "Fit the sales model to an exported CSV or XLSX file",
		Example: "mmmsynth fit data.csv",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.container(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			_, err = c.Pipeline.FitFile(cmd.Context(), args[0], cmd.OutOrStdout())
			return err
		},
	}
}

func newDescribeCmd(o *overrides) *cobra.Command {
	return &cobra.Command{
		Use:     "describe [data-file]",
		Short:   "Print summary statistics of an exported file",
		Example: "mmmsynth describe data.csv",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.container(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			_, err = c.Pipeline.DescribeFile(cmd.Context(), args[0], cmd.OutOrStdout())
			return err
		},
	}
}

func newVerifyCmd(o *overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that a seed reproduces the export byte for byte and survives a round trip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.container(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			dir, err := os.MkdirTemp("", "mmmsynth-verify-")
			if err != nil {
				return err
			}
			defer os.RemoveAll(dir)

			v, err := c.Pipeline.Verify(cmd.Context(), dir)
			if v != nil {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "determinism: %t (%s, %s)\n", v.Deterministic, v.First.Short(), v.Second.Short())
				fmt.Fprintf(out, "round trip:  %t (Sales mean %.6f vs %.6f)\n", v.RoundTrip, v.InMemory.Mean, v.Reread.Mean)
			}
			return err
		},
	}
}

func newPlotCmd(o *overrides) *cobra.Command {
	return &cobra.Command{
		Use:     "plot [out.png]",
		Short:   "Draw actual vs fitted sales",
		Example: "mmmsynth plot fit.png",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.container(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			return c.Pipeline.Plot(cmd.Context(), args[0])
		},
	}
}

func newSweepCmd(o *overrides) *cobra.Command {
	var runs, workers int

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Refit consecutive seeds and summarize how stable each coefficient is",
		Long: `Generate and fit the dataset for --runs consecutive seeds starting at --seed,
running at most --workers fits at a time, then print the spread of every
coefficient across seeds.

Example: mmmsynth sweep --seed 91 --runs 50 --workers 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.container(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			if !cmd.Flags().Changed("runs") {
				runs = c.Config.Sweep.Runs
			}
			if !cmd.Flags().Changed("workers") {
				workers = c.Config.Sweep.Workers
			}
			_, err = c.Pipeline.Sweep(cmd.Context(), runs, workers, cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().IntVar(&runs, "runs", config.DefaultSweepRuns, "number of consecutive seeds (default from SWEEP_RUNS)")
	cmd.Flags().IntVar(&workers, "workers", config.DefaultSweepWorkers, "concurrent fits (default from SWEEP_WORKERS)")
	return cmd
}

func newHistoryCmd(o *overrides) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent pipeline runs from the run ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.container(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			_, err = c.Pipeline.History(cmd.Context(), limit, cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	return cmd
}
