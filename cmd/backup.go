package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rnwolfe/tally/internal/backup"
	"github.com/rnwolfe/tally/internal/store"
	"github.com/rnwolfe/tally/internal/ui"
)

// passphraseEnv overrides the interactive passphrase prompt.
const passphraseEnv = "TALLY_PASSPHRASE"

// lastExportKey records when a backup file was last written.
const lastExportKey = "backup.last_export"

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write all goals, habits and completions to a backup file",
	Long: `Write a snapshot of everything tally knows to a file, or to stdout with
no file (or "-"). The format follows the extension (.json, .yaml) unless
--format is given.

With --encrypt the snapshot is sealed with a passphrase using age. The
passphrase is read from $TALLY_PASSPHRASE or prompted for.

  tally export backup.yaml
  tally export backup.json.age --encrypt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Restore goals, habits and completions from a backup file",
	Long: `Restore a snapshot written by ` + "`tally export`" + `. Records are matched by ID:
existing ones are overwritten, new ones are added, nothing is deleted.
Encrypted backups are detected and prompt for the passphrase.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var (
	exportFormat  string
	exportEncrypt bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "json or yaml (default from the file extension)")
	exportCmd.Flags().BoolVarP(&exportEncrypt, "encrypt", "e", false, "Encrypt the backup with a passphrase")
}

func runExport(cmd *cobra.Command, args []string) error {
	path := "-"
	if len(args) == 1 {
		path = args[0]
	}

	format := backup.FormatFromPath(path)
	if exportFormat != "" {
		f, err := backup.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		format = f
	}

	var passphrase string
	if exportEncrypt {
		p, err := readPassphrase(true)
		if err != nil {
			return err
		}
		passphrase = p
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	snap, err := backup.Export(ctxOf(cmd), e.habits, e.goals)
	if err != nil {
		return err
	}

	if path == "-" {
		data, err := backup.Encode(snap, format)
		if err != nil {
			return err
		}
		if passphrase != "" {
			if data, err = backup.Encrypt(data, passphrase); err != nil {
				return err
			}
		}
		_, err = ui.Out.Write(data)
		return err
	}

	if err := backup.WriteFile(path, snap, format, passphrase); err != nil {
		return err
	}
	if err := e.db.SetKV(ctxOf(cmd), lastExportKey, store.FormatTime(snap.ExportedAt)); err != nil {
		e.log.Warn("recording export time", "error", err)
	}
	e.log.Info("backup exported", "path", path, "format", format, "encrypted", passphrase != "",
		"habits", len(snap.Habits), "goals", len(snap.Goals))

	what := fmt.Sprintf("%s, %s", ui.Plural(len(snap.Habits), "habit"), ui.Plural(len(snap.Goals), "goal"))
	if passphrase != "" {
		ui.Ok(fmt.Sprintf("Exported %s to %s %s", what, path, ui.IconLock))
	} else {
		ui.Ok(fmt.Sprintf("Exported %s to %s", what, path))
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	snap, err := backup.ReadFile(path, func() (string, error) { return readPassphrase(false) })
	if err != nil {
		if errors.Is(err, backup.ErrWrongPassphrase) {
			return fmt.Errorf("%w for %s", err, path)
		}
		return err
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	rep, err := backup.Import(ctxOf(cmd), e.habits, e.goals, snap)
	if err != nil {
		return err
	}
	e.log.Info("backup imported", "path", path, "habits", rep.Habits, "goals", rep.Goals,
		"completions", rep.Completions, "duplicates", len(rep.Duplicates), "errors", len(rep.Errors))

	printReport(rep)
	if len(rep.Errors) > 0 {
		return fmt.Errorf("%s could not be imported", ui.Plural(len(rep.Errors), "item"))
	}
	return nil
}

func printReport(rep *backup.Report) {
	ui.Ok(fmt.Sprintf("Imported %s, %s and %s",
		ui.Plural(rep.Habits, "habit"), ui.Plural(rep.Goals, "goal"), ui.Plural(rep.Completions, "completion")))
	for _, d := range rep.Duplicates {
		ui.Warn(fmt.Sprintf("habit %s has more than one record for %s; kept counter %d",
			d.HabitID, d.Date, d.Kept.Counter))
	}
	for _, c := range rep.Clamped {
		ui.Warn(fmt.Sprintf("%s on %s had counter %d above its limit; stored %d",
			c.Name, c.Date, c.Given, c.Kept))
	}
	for _, ie := range rep.Errors {
		ui.Err(ie.Error())
	}
}

// readPassphrase returns $TALLY_PASSPHRASE or prompts on the terminal.
// confirm asks twice.
func readPassphrase(confirm bool) (string, error) {
	if p := os.Getenv(passphraseEnv); p != "" {
		return p, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%w: set %s or run interactively", backup.ErrPassphraseRequired, passphraseEnv)
	}

	fmt.Fprint(ui.ErrOut, ui.Muted.Render("  Backup passphrase: "))
	pass, err := term.ReadPassword(fd)
	fmt.Fprintln(ui.ErrOut)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	passphrase := strings.TrimSpace(string(pass))
	if passphrase == "" {
		return "", errors.New("passphrase can't be empty")
	}

	if confirm {
		fmt.Fprint(ui.ErrOut, ui.Muted.Render("  Confirm passphrase: "))
		again, err := term.ReadPassword(fd)
		fmt.Fprintln(ui.ErrOut)
		if err != nil {
			return "", fmt.Errorf("reading passphrase confirmation: %w", err)
		}
		if strings.TrimSpace(string(again)) != passphrase {
			return "", errors.New("passphrases do not match")
		}
	}
	return passphrase, nil
}
