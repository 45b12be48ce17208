package ports

import (
	"context"

	"choicelab/domain/core"
	"choicelab/domain/run"
)

// RunRecorder persists analysis runs for later review
type RunRecorder interface {
	RecordRun(ctx context.Context, rec *run.Record) error
	// GetRun returns core.ErrRunNotFound for an unknown id
	GetRun(ctx context.Context, id core.RunID) (*run.Record, error)
	// ListRuns returns the newest runs first
	ListRuns(ctx context.Context, limit int) ([]run.Record, error)
	Close() error
}
