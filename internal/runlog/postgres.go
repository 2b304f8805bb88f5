package runlog

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool the Postgres log uses; pgxmock satisfies it in
// tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresLog stores runs in a Postgres table.
type PostgresLog struct {
	pool    Pool
	closeFn func()
}

// NewPostgres connects a pool to the given database.
func NewPostgres(ctx context.Context, dsn string) (*PostgresLog, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: postgres parse config")
	}
	cfg.MaxConns = 4
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: postgres connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "runlog: postgres ping")
	}
	return &PostgresLog{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool.
func NewPostgresWithPool(pool Pool) *PostgresLog {
	return &PostgresLog{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS etl_runs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL DEFAULT 'running',
	datasets    JSONB NOT NULL,
	tables      JSONB,
	error       TEXT,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_etl_runs_started_at ON etl_runs(started_at DESC);
`

func (p *PostgresLog) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "runlog: postgres migrate")
	}
	return nil
}

func (p *PostgresLog) Close() error {
	if p.closeFn != nil {
		p.closeFn()
	}
	return nil
}

func (p *PostgresLog) Start(ctx context.Context, run Run) error {
	datasets, err := marshalList(run.Datasets)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO etl_runs (id, status, datasets, started_at) VALUES ($1, $2, $3, $4)`,
		run.ID, string(StatusRunning), datasets, run.StartedAt.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: start run %s", run.ID)
	}
	return nil
}

func (p *PostgresLog) Complete(ctx context.Context, id string, finishedAt time.Time, tables []TableResult) error {
	return p.finish(ctx, id, StatusComplete, finishedAt, nil, tables)
}

func (p *PostgresLog) Fail(ctx context.Context, id string, finishedAt time.Time, errMsg string, tables []TableResult) error {
	return p.finish(ctx, id, StatusFailed, finishedAt, &errMsg, tables)
}

func (p *PostgresLog) finish(ctx context.Context, id string, status Status, finishedAt time.Time, errMsg *string, tables []TableResult) error {
	tablesJSON, err := marshalList(tables)
	if err != nil {
		return err
	}
	tag, err := p.pool.Exec(ctx,
		`UPDATE etl_runs SET status = $1, tables = $2, error = $3, finished_at = $4 WHERE id = $5`,
		string(status), tablesJSON, errMsg, finishedAt.UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: finish run %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("runlog: run not found: %s", id)
	}
	return nil
}

func (p *PostgresLog) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, status, datasets, tables, error, started_at, finished_at
		 FROM etl_runs ORDER BY started_at DESC, id LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			status   string
			datasets []byte
			tables   []byte
			errMsg   *string
		)
		if err := rows.Scan(&r.ID, &status, &datasets, &tables, &errMsg, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, eris.Wrap(err, "runlog: scan run")
		}
		r.Status = Status(status)
		if errMsg != nil {
			r.Error = *errMsg
		}
		if err := unmarshalRun(&r, datasets, tables); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "runlog: iterate runs")
	}
	return runs, nil
}
