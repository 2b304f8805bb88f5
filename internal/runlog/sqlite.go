package runlog

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteLog stores runs in a local SQLite file.
type SQLiteLog struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteLog, error) {
	if dsn == "" {
		return nil, eris.New("runlog: sqlite dsn is empty")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "runlog: sqlite exec %s", pragma)
		}
	}
	return &SQLiteLog{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS etl_runs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL DEFAULT 'running',
	datasets    TEXT NOT NULL,
	tables      TEXT,
	error       TEXT,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_etl_runs_started_at ON etl_runs(started_at);
`

func (s *SQLiteLog) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "runlog: sqlite migrate")
	}
	return nil
}

func (s *SQLiteLog) Close() error {
	return s.db.Close()
}

func (s *SQLiteLog) Start(ctx context.Context, run Run) error {
	datasets, err := marshalList(run.Datasets)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO etl_runs (id, status, datasets, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, string(StatusRunning), string(datasets), run.StartedAt.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: start run %s", run.ID)
	}
	return nil
}

func (s *SQLiteLog) Complete(ctx context.Context, id string, finishedAt time.Time, tables []TableResult) error {
	return s.finish(ctx, id, StatusComplete, finishedAt, nil, tables)
}

func (s *SQLiteLog) Fail(ctx context.Context, id string, finishedAt time.Time, errMsg string, tables []TableResult) error {
	return s.finish(ctx, id, StatusFailed, finishedAt, &errMsg, tables)
}

func (s *SQLiteLog) finish(ctx context.Context, id string, status Status, finishedAt time.Time, errMsg *string, tables []TableResult) error {
	tablesJSON, err := marshalList(tables)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE etl_runs SET status = ?, tables = ?, error = ?, finished_at = ? WHERE id = ?`,
		string(status), string(tablesJSON), errMsg, finishedAt.UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: finish run %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "runlog: rows affected")
	}
	if n == 0 {
		return eris.Errorf("runlog: run not found: %s", id)
	}
	return nil
}

func (s *SQLiteLog) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, datasets, tables, error, started_at, finished_at
		 FROM etl_runs ORDER BY started_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			status   string
			datasets string
			tables   sql.NullString
			errMsg   sql.NullString
			finished sql.NullTime
		)
		if err := rows.Scan(&r.ID, &status, &datasets, &tables, &errMsg, &r.StartedAt, &finished); err != nil {
			return nil, eris.Wrap(err, "runlog: scan run")
		}
		r.Status = Status(status)
		r.Error = errMsg.String
		if finished.Valid {
			t := finished.Time.UTC()
			r.FinishedAt = &t
		}
		r.StartedAt = r.StartedAt.UTC()
		if err := unmarshalRun(&r, []byte(datasets), []byte(tables.String)); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "runlog: iterate runs")
	}
	return runs, nil
}
