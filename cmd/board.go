package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/tally/internal/config"
	"github.com/rnwolfe/tally/internal/tui"
	"github.com/rnwolfe/tally/internal/ui"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Work through the day's habits interactively",
	Long: `Open the interactive board. Move with j/k, change the day with h/l,
toggle with space or enter, filter with /. The board reloads when another
tally process writes to the database.`,
	Args: cobra.NoArgs,
	RunE: runBoard,
}

func runBoard(_ *cobra.Command, _ []string) error {
	if !ui.IsStdoutTTY() {
		return errors.New("the board needs a terminal (try `tally` for a plain summary)")
	}
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()
	return tui.RunBoard(e.habits, e.today, e.log, config.GetPaths().DBFile)
}
