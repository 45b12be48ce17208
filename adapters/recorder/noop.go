// Package recorder persists analysis runs.
package recorder

import (
	"context"

	"choicelab/domain/core"
	"choicelab/domain/run"
)

// Noop discards runs. It is used when no database is configured.
type Noop struct{}

func (Noop) RecordRun(ctx context.Context, rec *run.Record) error { return nil }

func (Noop) GetRun(ctx context.Context, id core.RunID) (*run.Record, error) {
	return nil, core.ErrRunNotFound
}

func (Noop) ListRuns(ctx context.Context, limit int) ([]run.Record, error) { return nil, nil }

func (Noop) Close() error { return nil }
