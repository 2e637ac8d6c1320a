// Package history keeps an audit log of export runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"kvbackup/internal/history/db"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Config selects where the history is stored. A Url takes precedence over a File,
// when neither is set the history is disabled.
type Config struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (c Config) Enabled() bool {
	return c.File != "" || c.Url != ""
}

// Open opens the history database, a local file goes through sqlite and a url through libsql.
func Open(config Config) (*sql.DB, error) {
	if config.Url != "" {
		dsn, err := url.Parse(config.Url)
		if err != nil {
			return nil, fmt.Errorf("parse history url: %w", err)
		}
		if config.AuthToken != "" {
			query := dsn.Query()
			query.Set("authToken", config.AuthToken)
			dsn.RawQuery = query.Encode()
		}
		return sql.Open("libsql", dsn.String())
	}
	if config.File == "" {
		return nil, fmt.Errorf("history is not configured")
	}

	dir := filepath.Dir(config.File)
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return nil, err
	}
	return sql.Open("sqlite", config.File)
}

// Run is a single export attempt.
type Run struct {
	ID         int64
	Namespace  string
	Collection string
	Outcome    string
	StatusCode int
	Rows       int
	Columns    int
	OutputPath string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

type Store struct {
	db  *sql.DB
	qry *db.Queries
}

// NewStore creates the schema if it does not exist yet.
func NewStore(ctx context.Context, database *sql.DB) (Store, error) {
	_, err := database.ExecContext(ctx, db.Schema)
	if err != nil {
		return Store{}, fmt.Errorf("create history schema: %w", err)
	}
	return Store{
		db:  database,
		qry: db.New(database),
	}, nil
}

func (s Store) Record(ctx context.Context, run Run) error {
	_, err := s.qry.InsertExportRun(ctx, db.InsertExportRunParams{
		Namespace:   run.Namespace,
		Collection:  run.Collection,
		Outcome:     run.Outcome,
		StatusCode:  int64(run.StatusCode),
		RowCount:    int64(run.Rows),
		ColumnCount: int64(run.Columns),
		OutputPath:  run.OutputPath,
		Error:       run.Error,
		StartedAt:   run.StartedAt.UnixMilli(),
		FinishedAt:  run.FinishedAt.UnixMilli(),
	})
	return err
}

type ListParams struct {
	// Namespace filters the runs to a single app, empty means every app.
	Namespace string
	// Limit of 0 means 20.
	Limit int
}

// List returns the most recent runs first.
func (s Store) List(ctx context.Context, params ListParams) ([]Run, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.qry.ListExportRuns(ctx, db.ListExportRunsParams{
		Namespace: params.Namespace,
		Limit:     int64(limit),
	})
	if err != nil {
		return nil, err
	}

	runs := make([]Run, len(rows))
	for i, row := range rows {
		runs[i] = Run{
			ID:         row.ID,
			Namespace:  row.Namespace,
			Collection: row.Collection,
			Outcome:    row.Outcome,
			StatusCode: int(row.StatusCode),
			Rows:       int(row.RowCount),
			Columns:    int(row.ColumnCount),
			OutputPath: row.OutputPath,
			Error:      row.Error,
			StartedAt:  time.UnixMilli(row.StartedAt),
			FinishedAt: time.UnixMilli(row.FinishedAt),
		}
	}
	return runs, nil
}
