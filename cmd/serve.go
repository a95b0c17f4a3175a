package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/tally/internal/api"
	"github.com/rnwolfe/tally/internal/ui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve tally's JSON API on --addr (default from config, 127.0.0.1:7777).
The OpenAPI document is at /openapi.json and interactive docs at /docs.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (host:port)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	addr := serveAddr
	if addr == "" {
		addr = e.cfg.Server.Addr
	}

	ctx, stop := signal.NotifyContext(ctxOf(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := api.NewRouter(api.Deps{
		Habits:       e.habits,
		Goals:        e.goals,
		Logger:       e.log,
		Location:     e.loc,
		DefaultLimit: e.cfg.Habits.DefaultLimit,
		Now:          now,
	})

	ui.Puts(fmt.Sprintf("%s Serving on %s", ui.IconServer, ui.Accent.Render("http://"+addr)))
	ui.Puts(ui.Muted.Render(fmt.Sprintf("  API docs at http://%s/docs", addr)))
	return api.ListenAndServe(ctx, addr, handler, e.log)
}
