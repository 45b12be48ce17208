package config

import (
	"os"
	"path/filepath"
	"testing"

	"choicelab/domain/trial"
	"choicelab/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"DATABASE_DRIVER", "DATABASE_URL", "PORT", "TALLY_WORKERS", "ALPHA", "MAX_UPLOAD_MB"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "none", cfg.Database.Driver)
	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 0, cfg.Analysis.Workers)
	assert.Equal(t, 0.05, cfg.Analysis.Alpha)
}

func TestLoadSQLiteDefaultsPath(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TALLY_WORKERS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "choicelab.db", cfg.Database.URL)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, 3, cfg.Analysis.Workers)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	t.Setenv("DATABASE_DRIVER", "mysql")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("DATABASE_DRIVER", "none")
	t.Setenv("ALPHA", "1.5")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sources:
  - name: pilot
    participant_column: pid
    trial_column: t
    choice_column: response
    gain_column: reward
    loss_column: punish
    loss_encoding: negative
  - name: original
    participant_column: Participant.Public.ID
    choice_column: choice
    gain_column: gain
    loss_column: loss
    loss_encoding: 1
`), 0o644))

	reg, err := LoadSources(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"original", "pilot", "simulated"}, reg.Names())

	pilot, err := reg.Lookup("pilot")
	require.NoError(t, err)
	assert.Equal(t, trial.LossNegative, pilot.LossEncoding)
	assert.Equal(t, "response", pilot.ChoiceColumn)

	orig, err := reg.Lookup("original")
	require.NoError(t, err)
	assert.Equal(t, "", orig.RTColumn, "file profile replaces the built-in")
}

func TestLoadSourcesRejectsBadEncoding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sources:
  - name: broken
    participant_column: pid
    choice_column: c
    gain_column: g
    loss_column: l
    loss_encoding: 2
`), 0o644))

	_, err := LoadSources(path)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoadSourcesBuiltinsOnly(t *testing.T) {
	reg, err := LoadSources("")
	require.NoError(t, err)
	assert.Equal(t, []string{"original", "simulated"}, reg.Names())

	_, err = LoadSources(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
