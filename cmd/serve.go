package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Hem1234567/laras-07/internal/scraper"
)

var servePort int

// scrapeRunner runs the named scrapers. *scraper.Engine implements it.
type scrapeRunner interface {
	Run(ctx context.Context, names []string) ([]scraper.Outcome, error)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP scrape trigger",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, envOptions{})
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(env.Engine, cfg.Scrape.Sources),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newRouter builds the trigger API. defaultSources is used when a request
// does not name any scrapers. Scrape triggers run one at a time; a request
// arriving mid-run waits for the current run to finish.
func newRouter(runner scrapeRunner, defaultSources []string) *chi.Mux {
	var runMu sync.Mutex

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"authorization", "x-client-info", "apikey", "content-type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/scrape", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Sources []string `json:"sources"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		sources := body.Sources
		if len(sources) == 0 {
			sources = defaultSources
		}

		runMu.Lock()
		outcomes, err := runner.Run(req.Context(), sources)
		runMu.Unlock()
		if err != nil {
			zap.L().Error("scrape trigger failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		if failed := scraper.Failed(outcomes); len(failed) > 0 {
			msgs := make([]string, len(failed))
			for i, o := range failed {
				msgs[i] = o.Name + ": " + o.Err.Error()
			}
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": strings.Join(msgs, "; ")})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"count":   scraper.TotalRows(outcomes),
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
