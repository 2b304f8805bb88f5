// Package runlog records every pipeline run and the tables it produced.
package runlog

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Backends accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// TableResult is the gate outcome for one written table.
type TableResult struct {
	Table    string `json:"table"`
	Rows     int64  `json:"rows"`
	Passed   bool   `json:"passed"`
	Location string `json:"location,omitempty"`
}

// Run is one recorded pipeline run.
type Run struct {
	ID         string        `json:"id"`
	Status     Status        `json:"status"`
	Datasets   []string      `json:"datasets"`
	Tables     []TableResult `json:"tables,omitempty"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
}

// Log persists runs.
type Log interface {
	Migrate(ctx context.Context) error
	// Start records a new run in the running state.
	Start(ctx context.Context, run Run) error
	Complete(ctx context.Context, id string, finishedAt time.Time, tables []TableResult) error
	Fail(ctx context.Context, id string, finishedAt time.Time, errMsg string, tables []TableResult) error
	// Recent returns up to limit runs, most recent first.
	Recent(ctx context.Context, limit int) ([]Run, error)
	Close() error
}

// Config selects and locates the run log backend.
type Config struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// Open connects to the configured backend. It does not migrate.
func Open(ctx context.Context, cfg Config) (Log, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverSQLite, "":
		return NewSQLite(cfg.DSN)
	case DriverPostgres:
		return NewPostgres(ctx, cfg.DSN)
	case DriverNone:
		return Nop{}, nil
	default:
		return nil, eris.Errorf("runlog: unknown driver %q (valid: sqlite, postgres, none)", cfg.Driver)
	}
}

func marshalList(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: marshal")
	}
	return b, nil
}

func unmarshalRun(r *Run, datasets, tables []byte) error {
	if len(datasets) > 0 {
		if err := json.Unmarshal(datasets, &r.Datasets); err != nil {
			return eris.Wrapf(err, "runlog: decode datasets of %s", r.ID)
		}
	}
	if len(tables) > 0 {
		if err := json.Unmarshal(tables, &r.Tables); err != nil {
			return eris.Wrapf(err, "runlog: decode tables of %s", r.ID)
		}
	}
	return nil
}

// Nop discards every record.
type Nop struct{}

func (Nop) Migrate(context.Context) error { return nil }
func (Nop) Start(context.Context, Run) error { return nil }
func (Nop) Complete(context.Context, string, time.Time, []TableResult) error { return nil }
func (Nop) Fail(context.Context, string, time.Time, string, []TableResult) error { return nil }
func (Nop) Recent(context.Context, int) ([]Run, error) { return nil, nil }
func (Nop) Close() error { return nil }
