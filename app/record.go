package app

import (
	"context"

	"choicelab/domain/core"
	"choicelab/domain/run"
	"choicelab/internal"
	"choicelab/ports"
)

// record assigns a run ID and time, lets stamp write them into the report
// and persists the stamped report. Recording failures are logged, not returned.
func record(ctx context.Context, recorder ports.RunRecorder, log *internal.Logger, kind run.Kind, inputs []run.Input, stamp func(core.RunID, core.Timestamp) interface{}) {
	id, at := core.NewRunID(), core.Now()
	report := stamp(id, at)
	if recorder == nil {
		return
	}

	rec, err := run.NewRecord(kind, inputs, report)
	if err != nil {
		log.Warn("[Recorder] %s run %s not recorded: %v", kind, id, err)
		return
	}
	rec.ID, rec.CreatedAt = id, at

	if err := recorder.RecordRun(ctx, rec); err != nil {
		log.Warn("[Recorder] %s run %s not recorded: %v", kind, id, err)
		return
	}
	log.Info("[Recorder] %s run %s recorded", kind, id)
}
