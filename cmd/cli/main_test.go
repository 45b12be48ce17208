package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("OUTPUT_DIR", filepath.Join(dir, "out"))
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", filepath.Join(dir, "runs.db"))
	t.Setenv("SOURCES_FILE", "")
	return dir
}

func TestSimulateThenWSLS(t *testing.T) {
	dir := setupEnv(t)
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")

	_, err := execute(t, "simulate", "--seed", "1", "--id-prefix", "a", "--out", a)
	require.NoError(t, err)
	_, err = execute(t, "simulate", "--seed", "2", "--id-prefix", "s", "--source", "simulated", "--out", b)
	require.NoError(t, err)

	head, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(head), "subjID,trial,choice,gain,loss\n"))

	out, err := execute(t, "wsls", "--a", a, "--b", b, "--b-source", "simulated", "--b-label", "Simulated")
	require.NoError(t, err)
	assert.Contains(t, out, "# Win-Stay / Lose-Shift: Anhedonic vs Simulated")
	assert.Contains(t, out, "at alpha=0.05")

	for _, name := range []string{"wsls_participants_a.csv", "wsls_participants_b.csv", "wsls_summary.csv", "wsls.xlsx", "wsls.md", "wsls.html"} {
		assert.FileExists(t, filepath.Join(dir, "out", name))
	}

	summary, err := os.ReadFile(filepath.Join(dir, "out", "wsls_summary.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(summary), "strategy,Anhedonic mean (SD),Simulated mean (SD),t_statistic,df,p_value\n"))

	list, err := execute(t, "runs", "list")
	require.NoError(t, err)
	assert.Contains(t, list, "strategy")
	assert.Contains(t, list, "Anhedonic, Simulated")
}

func TestRTCommand(t *testing.T) {
	dir := setupEnv(t)
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	_, err := execute(t, "simulate", "--seed", "3", "--out", a)
	require.NoError(t, err)
	_, err = execute(t, "simulate", "--seed", "4", "--out", b)
	require.NoError(t, err)

	out, err := execute(t, "rt", "--a", a, "--b", b, "--out", filepath.Join(dir, "rt"))
	require.NoError(t, err)
	assert.Contains(t, out, "## RT by trial")
	assert.FileExists(t, filepath.Join(dir, "rt", "rt.html"))
}

func TestParamsAndCorrelateCommands(t *testing.T) {
	dir := setupEnv(t)
	params := filepath.Join(dir, "params.csv")
	require.NoError(t, os.WriteFile(params, []byte(
		"Group,Arew,Apun,R,P,DARS\n"+
			"Anhedonic,0.1,0.2,3,4,10\n"+
			"Anhedonic,0.2,0.1,4,3,12\n"+
			"Anhedonic,0.3,0.3,5,5,15\n"+
			"Non-Anhedonic,0.4,0.2,6,2,20\n"+
			"Non-Anhedonic,0.5,0.4,5,3,22\n"+
			"Non-Anhedonic,0.6,0.3,7,1,25\n"), 0o644))

	out, err := execute(t, "params", params)
	require.NoError(t, err)
	assert.Contains(t, out, "# Model parameters: Anhedonic vs Non-Anhedonic")
	assert.Contains(t, out, "| Arew |")

	out, err = execute(t, "correlate", params, "--pair", "Arew:DARS", "--pair", "R:DARS")
	require.NoError(t, err)
	assert.Contains(t, out, "| Arew | DARS | 6 |")

	_, err = execute(t, "correlate", params, "--pair", "Arew")
	assert.Error(t, err)
}

func TestWSLSMissingFile(t *testing.T) {
	setupEnv(t)
	_, err := execute(t, "wsls", "--a", "nope.csv", "--b", "nope.csv")
	assert.Error(t, err)
}

func TestRunsShowUnknown(t *testing.T) {
	setupEnv(t)
	_, err := execute(t, "runs", "show", "does-not-exist")
	assert.Error(t, err)
}

func TestInspectDetectsEncodingMismatch(t *testing.T) {
	dir := setupEnv(t)
	sim := filepath.Join(dir, "sim.csv")
	_, err := execute(t, "simulate", "--source", "simulated", "--out", sim)
	require.NoError(t, err)

	out, err := execute(t, "inspect", sim, "--source", "simulated")
	require.NoError(t, err)
	assert.Contains(t, out, "participants:  20")
	assert.Contains(t, out, "-1=")

	orig := filepath.Join(dir, "orig.csv")
	_, err = execute(t, "simulate", "--out", orig)
	require.NoError(t, err)
	_, err = execute(t, "inspect", orig, "--source", "original")
	require.NoError(t, err)

	// same columns, wrong encoding: rewrite the simulated file in the original layout
	_, err = execute(t, "simulate", "--source", "simulated", "--out", sim)
	require.NoError(t, err)
	data, err := os.ReadFile(sim)
	require.NoError(t, err)
	mixed := strings.Replace(string(data), "subjID,trial,", "Participant.Public.ID,trial_nr,", 1)
	require.NoError(t, os.WriteFile(sim, []byte(mixed), 0o644))
	_, err = execute(t, "inspect", sim, "--source", "original")
	assert.Error(t, err)
}
