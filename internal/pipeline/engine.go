package pipeline

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/i94-warehouse/internal/quality"
	"github.com/sells-group/i94-warehouse/internal/runlog"
	"github.com/sells-group/i94-warehouse/internal/storage"
	"github.com/sells-group/i94-warehouse/internal/warehouse"
)

// Engine orchestrates warehouse runs.
type Engine struct {
	reg         *Registry
	store       storage.Store
	runs        runlog.Log
	gate        *quality.Gate
	clock       clockwork.Clock
	concurrency int
}

// RunOpts configures which datasets to run.
type RunOpts struct {
	Datasets []string // restrict to specific dataset names
}

// Summary is the outcome of one run.
type Summary struct {
	RunID  string
	Tables []runlog.TableResult
}

// NewEngine creates a new engine. A nil run log records nothing and a nil clock uses
// wall time.
func NewEngine(reg *Registry, store storage.Store, runs runlog.Log, gate *quality.Gate, clock clockwork.Clock, concurrency int) *Engine {
	if runs == nil {
		runs = runlog.Nop{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Engine{
		reg:         reg,
		store:       store,
		runs:        runs,
		gate:        gate,
		clock:       clock,
		concurrency: concurrency,
	}
}

// Run executes the selected datasets concurrently, gates every produced table and
// records the run. The first dataset failure cancels the others; tables already
// written stay in place. A gate failure under the fail policy is returned after every
// table has been checked.
func (e *Engine) Run(ctx context.Context, opts RunOpts) (*Summary, error) {
	log := zap.L().With(zap.String("component", "pipeline.engine"))

	datasets, err := e.reg.Select(opts.Datasets)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(datasets))
	for i, ds := range datasets {
		names[i] = ds.Name()
	}

	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))
	started := e.clock.Now().UTC()
	if err := e.runs.Start(ctx, runlog.Run{
		ID:        runID,
		Status:    runlog.StatusRunning,
		Datasets:  names,
		StartedAt: started,
	}); err != nil {
		return nil, eris.Wrap(err, "pipeline: start run log")
	}

	log.Info("selected datasets", zap.Strings("datasets", names), zap.Int("concurrency", e.concurrency))

	w := warehouse.NewWriter(e.store, runID, e.clock)
	results := make([][]warehouse.Result, len(datasets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, ds := range datasets {
		g.Go(func() error {
			dsLog := log.With(zap.String("dataset", ds.Name()))
			dsLog.Info("starting dataset")

			start := e.clock.Now()
			res, err := ds.Run(gctx, w)

			results[i] = res

			if err != nil {
				dsLog.Error("dataset failed", zap.Error(err), zap.Duration("elapsed", e.clock.Since(start)))
				return eris.Wrapf(err, "pipeline: dataset %s", ds.Name())
			}
			dsLog.Info("dataset complete",
				zap.Int("tables", len(res)),
				zap.Duration("elapsed", e.clock.Since(start)),
			)
			return nil
		})
	}
	runErr := g.Wait()

	var written []warehouse.Result
	for _, res := range results {
		written = append(written, res...)
	}

	summary := &Summary{RunID: runID}
	if runErr != nil {
		summary.Tables = tableResults(written, nil)
		e.fail(ctx, log, runID, runErr, summary.Tables)
		return summary, runErr
	}

	checks := make([]quality.Check, len(written))
	for i, r := range written {
		checks[i] = e.gate.Check(r.Table, r.Rows)
	}
	summary.Tables = tableResults(written, checks)

	if err := e.gate.Evaluate(checks); err != nil {
		e.fail(ctx, log, runID, err, summary.Tables)
		return summary, err
	}

	if err := e.runs.Complete(ctx, runID, e.clock.Now().UTC(), summary.Tables); err != nil {
		log.Error("failed to record run completion", zap.Error(err))
	}
	log.Info("run complete",
		zap.Int("datasets", len(datasets)),
		zap.Int("tables", len(summary.Tables)),
		zap.Duration("elapsed", e.clock.Since(started)),
	)
	return summary, nil
}

func (e *Engine) fail(ctx context.Context, log *zap.Logger, runID string, runErr error, tables []runlog.TableResult) {
	log.Error("run failed", zap.Error(runErr))
	// The run context may already be cancelled; the failure is still recorded.
	if err := e.runs.Fail(context.WithoutCancel(ctx), runID, e.clock.Now().UTC(), runErr.Error(), tables); err != nil {
		log.Error("failed to record run failure", zap.Error(err))
	}
}

// tableResults pairs written tables with their gate checks. Without checks every table
// is reported as not passed.
func tableResults(written []warehouse.Result, checks []quality.Check) []runlog.TableResult {
	out := make([]runlog.TableResult, len(written))
	for i, r := range written {
		out[i] = runlog.TableResult{
			Table:    r.Table,
			Rows:     r.Rows,
			Location: r.Location,
		}
		if checks != nil {
			out[i].Passed = checks[i].Passed
		}
	}
	return out
}
