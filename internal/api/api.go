// Package api serves tally over HTTP: a JSON API under /api/v1 documented
// with OpenAPI 3.1 at /docs.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/rnwolfe/tally/internal/day"
	"github.com/rnwolfe/tally/internal/goal"
	"github.com/rnwolfe/tally/internal/habit"
	"github.com/rnwolfe/tally/internal/version"
)

// Deps are the collaborators the API needs.
type Deps struct {
	Habits *habit.Store
	Goals  *goal.Store
	Logger *slog.Logger
	// Location decides what "today" is. Defaults to time.Local.
	Location *time.Location
	// DefaultLimit is used when a new habit omits limit_counter.
	DefaultLimit int
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// Server holds the handlers' shared state.
type Server struct {
	habits       *habit.Store
	goals        *goal.Store
	log          *slog.Logger
	loc          *time.Location
	defaultLimit int
	now          func() time.Time
}

// NewRouter builds the HTTP handler with middleware, health check and API
// routes registered.
func NewRouter(d Deps) http.Handler {
	s := &Server{
		habits:       d.Habits,
		goals:        d.Goals,
		log:          d.Logger,
		loc:          d.Location,
		defaultLimit: d.DefaultLimit,
		now:          d.Now,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.defaultLimit < 1 {
		s.defaultLimit = habit.DefaultLimit
	}

	router := chi.NewMux()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(RequestLogger(s.log))
	router.Use(Recovery(s.log))
	router.Use(CORS())
	router.Use(chimw.Timeout(30 * time.Second))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			Status string `json:"status"`
			version.Info
		}{Status: "ok", Info: version.Get()})
	})

	config := huma.DefaultConfig("tally", version.Short())
	config.Info.Description = "Local habit tracker: habits, daily completions, streaks and heatmaps."
	api := humachi.New(router, config)

	s.registerHabits(api)
	s.registerGoals(api)
	return router
}

// today is the current calendar day in the configured location.
func (s *Server) today() day.Key {
	return day.FromTime(s.now().In(s.loc))
}

// parseDay reads an optional date; empty means fallback.
func (s *Server) parseDay(field, value string, fallback day.Key) (day.Key, error) {
	if value == "" {
		return fallback, nil
	}
	k, err := day.ParseIn(value, s.loc)
	if err != nil {
		return day.Key{}, huma.Error400BadRequest(fmt.Sprintf("invalid %s", field), err)
	}
	return k, nil
}

// fail maps domain errors to HTTP problems. Unknown errors are logged and
// reported as 500.
func (s *Server) fail(op string, err error) error {
	var nte *habit.NotToggleableError
	switch {
	case errors.As(err, &nte):
		return huma.Error422UnprocessableEntity(nte.Error(), &huma.ErrorDetail{
			Location: "body.date",
			Message:  string(nte.Reason),
			Value:    nte.Date.String(),
		})
	case errors.Is(err, day.ErrInvalidDate):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, habit.ErrNotFound), errors.Is(err, goal.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, habit.ErrAmbiguous):
		return huma.Error409Conflict(err.Error())
	}
	s.log.Error("request failed", slog.String("op", op), slog.String("error", err.Error()))
	return huma.Error500InternalServerError(fmt.Sprintf("failed to %s", op))
}

// ListenAndServe runs handler on addr until ctx is cancelled, then shuts
// down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("addr", addr), slog.String("docs", "http://"+addr+"/docs"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	log.Info("server stopped")
	return nil
}
