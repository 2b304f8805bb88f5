package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/i94-warehouse/internal/config"
	"github.com/sells-group/i94-warehouse/internal/pipeline"
	"github.com/sells-group/i94-warehouse/internal/quality"
	"github.com/sells-group/i94-warehouse/internal/runlog"
	"github.com/sells-group/i94-warehouse/internal/storage"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the warehouse tables",
	Long:  "Runs the selected datasets (all by default), replaces their tables under the output root, gates every table on its row count and records the run.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := applyFlags(cmd, cfg); err != nil {
			return err
		}
		gate, err := validate(cfg)
		if err != nil {
			return err
		}

		store, err := storage.New(cfg.Output.Root, s3Options(cfg))
		if err != nil {
			return err
		}
		runs, err := openRunLog(ctx, cfg)
		if err != nil {
			return err
		}
		defer runs.Close() //nolint:errcheck

		engine := pipeline.NewEngine(pipeline.NewRegistry(cfg), store, runs, gate,
			clockwork.NewRealClock(), cfg.Pipeline.Concurrency)
		summary, err := engine.Run(ctx, pipeline.RunOpts{Datasets: cfg.Pipeline.Datasets})
		if summary != nil {
			formatTables(os.Stdout, summary.RunID, summary.Tables)
		}
		return err
	},
}

func init() {
	runCmd.Flags().StringSlice("datasets", nil, "datasets to run (immigration, temperature, demographics, airports); default all")
	runCmd.Flags().String("output", "", "output root, a local path or s3://bucket/prefix (overrides output.root)")
	runCmd.Flags().String("on-empty", "", "empty table policy: warn or fail (overrides quality.on_empty)")
	rootCmd.AddCommand(runCmd)
}

// applyFlags copies the flags a command defines and the user set onto c.
func applyFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()
	if f := flags.Lookup("datasets"); f != nil && f.Changed {
		ds, err := flags.GetStringSlice("datasets")
		if err != nil {
			return eris.Wrap(err, "read --datasets")
		}
		c.Pipeline.Datasets = ds
	}
	if f := flags.Lookup("output"); f != nil && f.Changed {
		c.Output.Root = f.Value.String()
	}
	if f := flags.Lookup("on-empty"); f != nil && f.Changed {
		c.Quality.OnEmpty = f.Value.String()
	}
	return nil
}

// validate checks the configuration and returns the quality gate it selects.
func validate(c *config.Config) (*quality.Gate, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := pipeline.ValidateRules(c); err != nil {
		return nil, err
	}
	policy, err := quality.ParseOnEmpty(c.Quality.OnEmpty)
	if err != nil {
		return nil, err
	}
	return quality.NewGate(policy), nil
}

func s3Options(c *config.Config) storage.S3Options {
	return storage.S3Options{
		Region:          c.Storage.S3.Region,
		Endpoint:        c.Storage.S3.Endpoint,
		AccessKeyID:     c.Storage.S3.AccessKeyID,
		SecretAccessKey: c.Storage.S3.SecretAccessKey,
		ForcePathStyle:  c.Storage.S3.ForcePathStyle,
	}
}

// openRunLog opens and migrates the configured run log.
func openRunLog(ctx context.Context, c *config.Config) (runlog.Log, error) {
	runs, err := runlog.Open(ctx, runlog.Config{Driver: c.RunLog.Driver, DSN: c.RunLog.DSN})
	if err != nil {
		return nil, err
	}
	if err := runs.Migrate(ctx); err != nil {
		_ = runs.Close()
		return nil, eris.Wrap(err, "migrate run log")
	}
	return runs, nil
}

// formatTables writes the per-table outcome of a run to out.
func formatTables(out io.Writer, runID string, tables []runlog.TableResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Run:\t%s\n", runID)
	_, _ = fmt.Fprintln(w, "TABLE\tROWS\tCHECK\tLOCATION")
	_, _ = fmt.Fprintln(w, "-----\t----\t-----\t--------")
	for _, t := range tables {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", t.Table, t.Rows, checkLabel(t.Passed), t.Location)
	}
	_ = w.Flush()
}

func checkLabel(passed bool) string {
	if passed {
		return "passed"
	}
	return "FAILED"
}
