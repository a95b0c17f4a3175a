package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/tally/internal/config"
	"github.com/rnwolfe/tally/internal/store"
	"github.com/rnwolfe/tally/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and manage configuration",
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configPathCmd, configGetCmd, configSetCmd, configUnsetCmd, configListCmd)
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		ui.Puts(config.GetPaths().ConfigFile)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value. Run ` + "`tally config list`" + ` for the keys.

  tally config set habits.timezone Europe/Berlin
  tally config set habits.week_start mon`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Reset a configuration value to its default",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List every configuration key with its value",
	Args:    cobra.NoArgs,
	RunE:    runConfigList,
}

func lookupKey(key string) (*config.KeyEntry, error) {
	entry, ok := config.LookupKey(key)
	if !ok {
		return nil, fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(config.ValidKeyNames(), ", "))
	}
	return entry, nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	entry, err := lookupKey(key)
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := entry.Set(cfg, value); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	ui.Ok(fmt.Sprintf("%s = %s", key, entry.Get(cfg)))
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	entry, err := lookupKey(args[0])
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	ui.Puts(entry.Get(cfg))
	return nil
}

func runConfigUnset(_ *cobra.Command, args []string) error {
	key := args[0]
	entry, err := lookupKey(key)
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	entry.Unset(cfg)
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	ui.Ok(fmt.Sprintf("%s reset to %q", key, entry.DefaultStr))
	return nil
}

func runConfigList(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	ui.Puts("")
	for _, name := range config.ValidKeyNames() {
		entry, _ := config.LookupKey(name)
		val := entry.Get(cfg)
		if val == "" {
			val = ui.Muted.Render("(unset)")
		}
		ui.Puts(fmt.Sprintf("  %s = %s", ui.KeyStyle.Render(name), val))
		ui.Puts("    " + ui.Muted.Render(fmt.Sprintf("%s [%s, default %q]", entry.Desc, entry.Type, entry.DefaultStr)))
	}
	ui.Puts("")
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	paths := config.GetPaths()

	ui.Header("Configuration")
	ui.Puts("")
	ui.Kv("Name", cfg.User.Name)
	ui.Kv("Timezone", cfg.Habits.Timezone)
	ui.Kv("Default limit", fmt.Sprintf("%d", cfg.Habits.DefaultLimit))
	ui.Kv("Week starts", cfg.Habits.WeekStart)
	ui.Kv("Server", cfg.Server.Addr)
	ui.Kv("Log level", cfg.Log.Level)
	ui.Puts("")
	ui.Kv("Config", paths.ConfigFile)
	ui.Kv("Data", paths.DBFile)
	ui.Kv("Logs", paths.LogFile)
	ui.Kv("Last backup", lastExport(cmd))
	ui.Puts("")
	ui.Tip(fmt.Sprintf("Edit directly: %s", ui.Accent.Render("$EDITOR "+paths.ConfigFile)))
	ui.Puts("")
	return nil
}

func lastExport(cmd *cobra.Command) string {
	db, err := store.Open()
	if err != nil {
		return "unknown"
	}
	defer db.Close()
	v, ok, err := db.GetKV(ctxOf(cmd), lastExportKey)
	if err != nil || !ok {
		return "never"
	}
	return store.ParseTime(v).Local().Format("2006-01-02 15:04")
}
