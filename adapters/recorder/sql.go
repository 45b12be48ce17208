package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"choicelab/domain/core"
	"choicelab/domain/run"
	"choicelab/internal"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z"

var nowUTC = func() time.Time { return time.Now().UTC() }

func timestamp(t time.Time) string { return t.UTC().Format(timeLayout) }

// SQLRecorder stores runs in sqlite or postgres through sqlx
type SQLRecorder struct {
	db  *sqlx.DB
	log *internal.Logger
}

type runRow struct {
	ID          string `db:"id"`
	Kind        string `db:"kind"`
	CreatedAt   string `db:"created_at"`
	Fingerprint string `db:"fingerprint"`
	Inputs      string `db:"inputs"`
	Payload     string `db:"payload"`
}

// Open connects with driver "sqlite" or "postgres" and applies migrations
func Open(ctx context.Context, driver, dsn string, log *internal.Logger) (*SQLRecorder, error) {
	if log == nil {
		log = internal.DefaultLogger
	}
	switch driver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported recorder driver %q", driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// One writer keeps sqlite (and in-memory databases) consistent.
		db.SetMaxOpenConns(1)
	}

	n, err := migrate(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Info("[Recorder] %s recorder opened (%d migrations applied)", driver, n)
	return &SQLRecorder{db: db, log: log}, nil
}

// RecordRun inserts a run
func (r *SQLRecorder) RecordRun(ctx context.Context, rec *run.Record) error {
	inputs, err := json.Marshal(rec.Inputs)
	if err != nil {
		return fmt.Errorf("encode inputs: %w", err)
	}
	row := runRow{
		ID:          rec.ID.String(),
		Kind:        string(rec.Kind),
		CreatedAt:   timestamp(rec.CreatedAt.Time()),
		Fingerprint: rec.Fingerprint.String(),
		Inputs:      string(inputs),
		Payload:     string(rec.Payload),
	}

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO analysis_runs (id, kind, created_at, fingerprint, inputs, payload)
		VALUES (:id, :kind, :created_at, :fingerprint, :inputs, :payload)
	`, row)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", rec.ID, err)
	}
	r.log.Debug("[Recorder] recorded %s run %s", rec.Kind, rec.ID)
	return nil
}

// GetRun loads one run
func (r *SQLRecorder) GetRun(ctx context.Context, id core.RunID) (*run.Record, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT id, kind, created_at, fingerprint, inputs, payload
		FROM analysis_runs WHERE id = ?`), id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("select run %s: %w", id, err)
	}
	return row.record()
}

// ListRuns returns the newest runs first. created_at is fixed-width text so it
// sorts lexically; time-ordered run IDs break ties.
func (r *SQLRecorder) ListRuns(ctx context.Context, limit int) ([]run.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []runRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT id, kind, created_at, fingerprint, inputs, payload
		FROM analysis_runs ORDER BY created_at DESC, id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	out := make([]run.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

// Close releases the database
func (r *SQLRecorder) Close() error {
	return r.db.Close()
}

func (row runRow) record() (*run.Record, error) {
	created, err := time.Parse(timeLayout, row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("run %s: bad created_at %q: %w", row.ID, row.CreatedAt, err)
	}
	rec := &run.Record{
		ID:          core.RunID(row.ID),
		Kind:        run.Kind(row.Kind),
		CreatedAt:   core.Timestamp(created),
		Fingerprint: core.Hash(row.Fingerprint),
		Payload:     json.RawMessage(row.Payload),
	}
	if err := json.Unmarshal([]byte(row.Inputs), &rec.Inputs); err != nil {
		return nil, fmt.Errorf("run %s: decode inputs: %w", row.ID, err)
	}
	return rec, nil
}
