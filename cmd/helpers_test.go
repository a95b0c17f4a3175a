package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/rnwolfe/tally/internal/config"
	"github.com/rnwolfe/tally/internal/ui"
)

func init() {
	ui.SetPlain()
}

// testNow is Wednesday 2024-01-10, noon UTC.
var testNow = time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)

// configTestEnv points every XDG directory at a temp dir, pins the clock and
// writes a UTC config.
func configTestEnv(t *testing.T) {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir+"/config")
	t.Setenv("XDG_DATA_HOME", tmpDir+"/data")
	t.Setenv("XDG_CACHE_HOME", tmpDir+"/cache")
	t.Setenv("XDG_STATE_HOME", tmpDir+"/state")
	t.Setenv(passphraseEnv, "")

	oldNow := now
	now = func() time.Time { return testNow }
	t.Cleanup(func() { now = oldNow })

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Habits.Timezone = "UTC"
	require.NoError(t, config.Save(cfg))
}

// resetFlags puts every flag back to its default so runs don't leak state
// into each other through the package-level command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// tally runs the CLI with args and returns what it printed.
func tally(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	oldOut, oldErr := ui.Out, ui.ErrOut
	ui.Out, ui.ErrOut = &out, &errOut
	defer func() { ui.Out, ui.ErrOut = oldOut, oldErr }()

	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	err := rootCmd.Execute()
	return out.String() + errOut.String(), err
}

// mustTally is tally that fails the test on error.
func mustTally(t *testing.T, args ...string) string {
	t.Helper()
	out, err := tally(t, args...)
	require.NoError(t, err, out)
	return out
}

func isInteractive() bool {
	return ui.IsStdinTTY() && ui.IsStdoutTTY()
}
