// Package exporter backs up a single KV store collection to a csv file.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kvbackup/internal/assert"
	"kvbackup/internal/components/chrono"
	"kvbackup/internal/components/credentials"
	"kvbackup/internal/components/telemetry"
	"kvbackup/internal/history"
	"kvbackup/internal/kvstore"
	"kvbackup/internal/table"
)

const (
	report_exporter_run            = "exporter.run"
	report_exporter_malformed_body = "exporter.malformed-body"
	report_exporter_bad_status     = "exporter.bad-status"
	report_exporter_no_data        = "exporter.no-data"
	report_exporter_record_history = "exporter.record-history"
	report_exporter_rows           = "exporter.rows"
)

type Outcome string

const (
	// OutcomeWritten means the csv file was written.
	OutcomeWritten Outcome = "written"
	// OutcomeNoData means the collection was empty, no file was written.
	OutcomeNoData Outcome = "no_data"
	// OutcomeBadStatus means the server answered with something other than 200, no file was written.
	OutcomeBadStatus Outcome = "bad_status"
	// OutcomeMalformedBody means the server answered 200 with a body that is not a json array, no file was written.
	OutcomeMalformedBody Outcome = "malformed_body"
	// OutcomeFailed means the run returned an error.
	OutcomeFailed Outcome = "failed"
)

// Target identifies the collection to back up.
type Target struct {
	// Namespace is the Splunk app the collection belongs to.
	Namespace  string
	Collection string
}

func (t Target) Validate() error {
	if strings.TrimSpace(t.Namespace) == "" {
		return fmt.Errorf("app name must not be empty")
	}
	if !isPathSegment(t.Namespace) {
		return fmt.Errorf("app name %q is not a valid directory name", t.Namespace)
	}
	collection := kvstore.NormalizeCollection(t.Collection)
	if strings.TrimSpace(collection) == "" {
		return fmt.Errorf("collection name must not be empty")
	}
	if !isPathSegment(collection) {
		return fmt.Errorf("collection name %q is not a valid file name", t.Collection)
	}
	return nil
}

// isPathSegment reports whether name stays a single element when joined to a path.
func isPathSegment(name string) bool {
	return name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

type Result struct {
	Target Target
	// Collection is the normalized collection name used in the request.
	Collection string
	Outcome    Outcome
	StatusCode int
	// Path is the csv file, it is only set when Outcome is OutcomeWritten.
	Path       string
	Columns    []string
	Rows       int
}

// Fetcher reads the raw contents of a collection.
//
// note: fault injection point
type Fetcher interface {
	FetchCollection(ctx context.Context, namespace, collection string, creds credentials.Credentials) (kvstore.Response, error)
}

// HistoryRecorder stores finished runs.
type HistoryRecorder interface {
	Record(ctx context.Context, run history.Run) error
}

type Options struct {
	// OutputDir is the directory that holds one sub directory per app.
	OutputDir string
	Schema    table.SchemaMode
	ExtraKeys table.ExtraKeyPolicy
}

type Exporter struct {
	fetcher Fetcher
	opts    Options
	tel     telemetry.API
	time    chrono.API
	history HistoryRecorder
}

type ExporterOption func(e *Exporter)

func WithTelemetry(tel telemetry.API) ExporterOption {
	return func(e *Exporter) {
		e.tel = tel
	}
}

func WithClock(clock chrono.API) ExporterOption {
	return func(e *Exporter) {
		e.time = clock
	}
}

func WithHistory(recorder HistoryRecorder) ExporterOption {
	return func(e *Exporter) {
		e.history = recorder
	}
}

func New(fetcher Fetcher, opts Options, options ...ExporterOption) Exporter {
	assert.NotNil(fetcher)
	assert.NotEmptyStr(opts.OutputDir)

	e := Exporter{fetcher: fetcher, opts: opts}
	for _, o := range options {
		o(&e)
	}
	if e.tel == nil {
		e.tel = telemetry.SlogAPI{}
	}
	if e.time == nil {
		e.time = chrono.NewStandardImpl()
	}
	e.tel = telemetry.NewScopedAPI("exporter", e.tel)
	return e
}

// OutputPath is where the csv file of a target is written.
func (e Exporter) OutputPath(target Target) string {
	return filepath.Join(e.opts.OutputDir, target.Namespace, kvstore.BackupFileName(target.Collection))
}

// Run performs a single backup. Only failures that prevent talking to the server or
// writing the file are returned as errors, every other outcome is described by the Result.
func (e Exporter) Run(ctx context.Context, target Target, provider credentials.Provider) (result Result, err error) {
	startedAt := e.time.Now()
	result = Result{
		Target:     target,
		Collection: kvstore.NormalizeCollection(target.Collection),
	}
	defer func() {
		if err != nil {
			result.Outcome = OutcomeFailed
			e.tel.ReportBroken(report_exporter_run, err, target.Namespace, target.Collection)
		}
		e.recordHistory(ctx, result, err, startedAt)
	}()

	e.tel.ReportInfo("processing kv store data", target.Namespace, result.Collection)

	err = target.Validate()
	if err != nil {
		return result, err
	}
	creds, err := provider.Credentials(ctx)
	if err != nil {
		return result, fmt.Errorf("read credentials: %w", err)
	}

	dir := filepath.Join(e.opts.OutputDir, target.Namespace)
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return result, fmt.Errorf("create backup directory: %w", err)
	}
	e.tel.ReportInfo("created/checked backup directory", dir)

	e.tel.ReportInfo("requesting kv store data")
	res, err := e.fetcher.FetchCollection(ctx, target.Namespace, result.Collection, creds)
	if err != nil {
		return result, err
	}
	result.StatusCode = res.StatusCode
	e.tel.ReportInfo("received response", res.StatusCode)

	if res.StatusCode != http.StatusOK {
		result.Outcome = OutcomeBadStatus
		e.tel.ReportWarning(report_exporter_bad_status, "failed to fetch data from the kv store", res.StatusCode)
		return result, nil
	}

	records, perr := table.Parse(res.Body)
	if perr != nil {
		result.Outcome = OutcomeMalformedBody
		e.tel.ReportWarning(report_exporter_malformed_body, perr)
		return result, nil
	}
	if len(records) == 0 {
		result.Outcome = OutcomeNoData
		e.tel.ReportWarning(report_exporter_no_data, "no data found in the kv store collection")
		return result, nil
	}

	result.Columns = table.DeriveColumns(records, e.opts.Schema)
	rows, err := table.Project(records, result.Columns, e.opts.ExtraKeys)
	if err != nil {
		return result, err
	}

	path := e.OutputPath(target)
	e.tel.ReportInfo("writing data to the csv file", path)
	err = writeFile(path, result.Columns, rows)
	if err != nil {
		return result, fmt.Errorf("write %s: %w", path, err)
	}

	result.Outcome = OutcomeWritten
	result.Path = path
	result.Rows = len(rows)
	e.tel.ReportCount(report_exporter_rows, int64(len(rows)))
	e.tel.ReportInfo("backup successful", path, len(rows))
	return result, nil
}

func writeFile(path string, columns []string, rows [][]table.Cell) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := table.NewWriter(f)
	err = w.WriteHeader(columns)
	for _, row := range rows {
		if err != nil {
			break
		}
		err = w.WriteRow(row)
	}
	if err == nil {
		err = w.Flush()
	}

	return errors.Join(err, f.Close())
}

func (e Exporter) recordHistory(ctx context.Context, result Result, runErr error, startedAt time.Time) {
	if e.history == nil {
		return
	}
	run := history.Run{
		Namespace:  result.Target.Namespace,
		Collection: result.Collection,
		Outcome:    string(result.Outcome),
		StatusCode: result.StatusCode,
		Rows:       result.Rows,
		Columns:    len(result.Columns),
		OutputPath: result.Path,
		StartedAt:  startedAt,
		FinishedAt: e.time.Now(),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	err := e.history.Record(ctx, run)
	if err != nil {
		e.tel.ReportWarning(report_exporter_record_history, err)
	}
}
