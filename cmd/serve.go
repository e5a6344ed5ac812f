package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sharppicks/parlay-engine/internal/access"
	"github.com/sharppicks/parlay-engine/internal/generate"
	"github.com/sharppicks/parlay-engine/internal/model"
	"github.com/sharppicks/parlay-engine/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(env *engineEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/parlays/generate", handleGenerate(env))
	r.Post("/api/daily/run", handleDaily(env))
	r.Post("/api/results/check", handleResolve(env))
	r.Get("/api/parlays", handleListParlays(env))

	return r
}

type generateRequest struct {
	model.GenerationRequest
	Tier string `json:"tier,omitempty"`
}

func handleGenerate(env *engineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body generateRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		features := access.Features(access.Tier(body.Tier))
		if !features.CanCustomParlay {
			writeError(w, http.StatusForbidden, "custom parlays require a paid tier")
			return
		}
		if features.MaxLegs > 0 && body.NumLegs > features.MaxLegs {
			writeError(w, http.StatusForbidden,
				fmt.Sprintf("tier allows at most %d legs", features.MaxLegs))
			return
		}

		res, err := env.Generator.Generate(req.Context(), body.GenerationRequest)
		if err != nil {
			writeGenerateError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handleDaily(env *engineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Date   string   `json:"date"`
			Sports []string `json:"sports"`
			Force  bool     `json:"force"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.Date == "" {
			body.Date = time.Now().UTC().Format("2006-01-02")
		}
		if len(body.Sports) == 0 {
			body.Sports = cfg.Daily.Sports
		}

		outcomes, err := env.Generator.RunDaily(req.Context(), body.Sports, body.Date, body.Force)
		if err != nil {
			writeGenerateError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"date":     body.Date,
			"outcomes": outcomes,
		})
	}
}

func handleResolve(env *engineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		summary, err := env.Resolver.Run(req.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "result check failed")
			zap.L().Error("resolve pass failed", zap.Error(err))
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func handleListParlays(env *engineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		filter := store.ParlayFilter{
			UserID:    q.Get("user_id"),
			DailyDate: q.Get("daily_date"),
		}
		if limit := q.Get("limit"); limit != "" {
			n, err := strconv.Atoi(limit)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			filter.Limit = n
		}

		parlays, err := env.DB.ListParlays(req.Context(), filter)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "list parlays failed")
			zap.L().Error("list parlays failed", zap.Error(err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"parlays": parlays})
	}
}

// writeGenerateError maps pipeline errors onto HTTP statuses: bad input is
// the caller's fault, model outage is 503, anything else is 500.
func writeGenerateError(w http.ResponseWriter, err error) {
	var vf *model.ValidationFailure
	switch {
	case eris.As(err, &vf):
		writeError(w, http.StatusBadRequest, vf.Message)
	case eris.Is(err, generate.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
