package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type ExportRun struct {
	ID          int64
	Namespace   string
	Collection  string
	Outcome     string
	StatusCode  int64
	RowCount    int64
	ColumnCount int64
	OutputPath  string
	Error       string
	StartedAt   int64
	FinishedAt  int64
}

const insertExportRun = `insert into export_run (
    namespace, collection, outcome, status_code, row_count, column_count,
    output_path, error, started_at, finished_at
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type InsertExportRunParams struct {
	Namespace   string
	Collection  string
	Outcome     string
	StatusCode  int64
	RowCount    int64
	ColumnCount int64
	OutputPath  string
	Error       string
	StartedAt   int64
	FinishedAt  int64
}

func (q *Queries) InsertExportRun(ctx context.Context, arg InsertExportRunParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertExportRun,
		arg.Namespace,
		arg.Collection,
		arg.Outcome,
		arg.StatusCode,
		arg.RowCount,
		arg.ColumnCount,
		arg.OutputPath,
		arg.Error,
		arg.StartedAt,
		arg.FinishedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const listExportRuns = `select
    id, namespace, collection, outcome, status_code, row_count, column_count,
    output_path, error, started_at, finished_at
from export_run
where ? = '' or namespace = ?
order by started_at desc, id desc
limit ?`

type ListExportRunsParams struct {
	Namespace string
	Limit     int64
}

func (q *Queries) ListExportRuns(ctx context.Context, arg ListExportRunsParams) ([]ExportRun, error) {
	rows, err := q.db.QueryContext(ctx, listExportRuns, arg.Namespace, arg.Namespace, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ExportRun
	for rows.Next() {
		var i ExportRun
		if err := rows.Scan(
			&i.ID,
			&i.Namespace,
			&i.Collection,
			&i.Outcome,
			&i.StatusCode,
			&i.RowCount,
			&i.ColumnCount,
			&i.OutputPath,
			&i.Error,
			&i.StartedAt,
			&i.FinishedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
