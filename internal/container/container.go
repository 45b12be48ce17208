package container

import (
	"context"
	"fmt"
	"os"

	"choicelab/adapters/recorder"
	"choicelab/adapters/tabular"
	"choicelab/app"
	"choicelab/domain/trial"
	"choicelab/internal"
	"choicelab/internal/config"
	"choicelab/internal/errors"
	"choicelab/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Log    *internal.Logger

	// Infrastructure
	Sources  *trial.Registry
	Reader   ports.TableReader
	Recorder ports.RunRecorder

	// Services
	Strategy     *app.StrategyService
	ReactionTime *app.ReactionTimeService
	Parameters   *app.ParameterService
}

// New builds the container: source profiles, table reader, run recorder and
// the services over them. The recorder is a no-op unless a database driver
// is configured.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	log := internal.NewLogger(os.Stderr, internal.ParseLogLevel(cfg.Logging.Level), cfg.Logging.Pretty)
	c := &Container{Config: cfg, Log: log}

	sources, err := config.LoadSources(cfg.Analysis.SourcesFile)
	if err != nil {
		return nil, err
	}
	c.Sources = sources
	c.Reader = tabular.NewReader(log)

	if cfg.Database.Enabled() {
		rec, err := recorder.Open(ctx, cfg.Database.Driver, cfg.Database.URL, log)
		if err != nil {
			return nil, errors.DatabaseError("open run recorder", err)
		}
		c.Recorder = rec
	} else {
		c.Recorder = recorder.Noop{}
	}

	c.Strategy = app.NewStrategyService(c.Reader, c.Sources, c.Recorder, cfg.Analysis.Workers, log)
	c.ReactionTime = app.NewReactionTimeService(c.Reader, c.Sources, c.Recorder, log)
	c.Parameters = app.NewParameterService(c.Reader, c.Recorder, log)

	log.Debug("[Container] sources: %v, recorder: %s", sources.Names(), cfg.Database.Driver)
	return c, nil
}

// Close releases the recorder
func (c *Container) Close() error {
	if c.Recorder != nil {
		return c.Recorder.Close()
	}
	return nil
}
