package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rnwolfe/tally/internal/backup"
)

func seedBackupData(t *testing.T) {
	t.Helper()
	mustTally(t, "goal", "add", "Fitness")
	mustTally(t, "habit", "add", "Run", "--days", "M,W,F", "--start", "2024-01-01", "--limit", "2", "--goal", "fitness")
	mustTally(t, "habit", "add", "Read", "--start", "2024-01-01")
	mustTally(t, "done", "run", "--date", "2024-01-08")
	mustTally(t, "done", "run", "--date", "2024-01-08")
	mustTally(t, "done", "read", "--date", "2024-01-09")
}

func TestExportImport_RoundTrip(t *testing.T) {
	for _, name := range []string{"tally.json", "tally.yaml"} {
		t.Run(name, func(t *testing.T) {
			configTestEnv(t)
			seedBackupData(t)
			path := filepath.Join(t.TempDir(), name)

			out := mustTally(t, "export", path)
			assert.Contains(t, out, "Exported 2 habits, 1 goal")
			assert.NotContains(t, mustTally(t, "config"), "never")

			// A fresh data directory stands in for another machine.
			configTestEnv(t)
			out = mustTally(t, "import", path)
			assert.Contains(t, out, "Imported 2 habits, 1 goal and 2 completions")

			assert.Equal(t, 2, counterOn(t, "run", "2024-01-08"))
			assert.Equal(t, 1, counterOn(t, "read", "2024-01-09"))
			run := lookup(t, "run")
			assert.Equal(t, "Mon,Wed,Fri", run.Frequency.String())
			require.NotNil(t, run.GoalID)
			assert.Equal(t, lookupGoal(t, "fitness").ID, *run.GoalID)
		})
	}
}

func TestExport_Stdout(t *testing.T) {
	configTestEnv(t)
	seedBackupData(t)

	out := mustTally(t, "export", "--format", "yaml")
	assert.Contains(t, out, "version: 1")
	assert.Contains(t, out, "name: Run")

	out = mustTally(t, "export")
	assert.Contains(t, out, `"name": "Read"`)

	_, err := tally(t, "export", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestExportImport_Encrypted(t *testing.T) {
	configTestEnv(t)
	seedBackupData(t)
	path := filepath.Join(t.TempDir(), "tally.json.age")

	t.Setenv(passphraseEnv, "correct horse")
	mustTally(t, "export", path, "--encrypt")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, backup.IsEncrypted(raw))
	assert.NotContains(t, string(raw), "Run")

	configTestEnv(t)
	t.Setenv(passphraseEnv, "battery staple")
	_, err = tally(t, "import", path)
	assert.ErrorIs(t, err, backup.ErrWrongPassphrase)

	t.Setenv(passphraseEnv, "correct horse")
	out := mustTally(t, "import", path)
	assert.Contains(t, out, "Imported 2 habits")
}

func TestImport_ReportsBadItems(t *testing.T) {
	configTestEnv(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "version": 1,
  "habits": [
    {"id": "h1", "name": "Run", "start_date": "2024-01-01", "frequency": ["Mon"]},
    {"id": "h2", "name": "Broken", "start_date": "someday", "frequency": ["Mon"]}
  ]
}`), 0o600))

	out, err := tally(t, "import", path)
	assert.ErrorContains(t, err, "1 item could not be imported")
	assert.Contains(t, out, "Imported 1 habit")
	assert.Contains(t, out, "Broken")
	lookup(t, "run")
}

func TestImport_WarnsAboutClampedCounters(t *testing.T) {
	configTestEnv(t)
	path := filepath.Join(t.TempDir(), "over.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "version": 1,
  "habits": [
    {"id": "h1", "name": "Water", "start_date": "2024-01-01", "frequency": ["daily"], "limit_counter": 2,
     "completions": [{"date": "2024-01-05", "counter": 7}]}
  ]
}`), 0o600))

	out := mustTally(t, "import", path)
	assert.Contains(t, out, "Imported 1 habit")
	assert.Contains(t, out, "Water on 2024-01-05 had counter 7 above its limit; stored 2")
}

func TestImport_MissingFile(t *testing.T) {
	configTestEnv(t)
	_, err := tally(t, "import", filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorContains(t, err, "reading backup")
}
