// Package api exposes the search and history workflows over JSON HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"stocksearch/internal/history"
	"stocksearch/internal/session"
)

// HistoryLoader builds the history view of one symbol.
type HistoryLoader interface {
	Detail(ctx context.Context, symbol string) (history.Detail, error)
}

type Config struct {
	Sessions       *session.Store
	History        HistoryLoader
	AllowedOrigins []string
	// RequestTimeout bounds each request. Zero disables it.
	RequestTimeout time.Duration
	Logger         zerolog.Logger
}

// NewRouter wires the routes and middleware.
func NewRouter(cfg Config) http.Handler {
	h := &Handler{sessions: cfg.Sessions, history: cfg.History, log: cfg.Logger}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(cfg.Logger, "/healthz"))
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(limitBody)
	r.Use(middleware.Compress(5, "application/json"))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", h.CreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Post("/search", h.Search)
			r.Put("/page", h.ChangePage)
			r.Put("/page-size", h.ChangePageSize)
		})
		r.Get("/history/{symbol}", h.History)
	})

	return r
}
