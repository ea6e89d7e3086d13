// Package app assembles the FMP client and the workflows on top of it from config.
package app

import (
	"github.com/rs/zerolog"

	"stocksearch/internal/config"
	"stocksearch/internal/enrich"
	"stocksearch/internal/fmp"
	"stocksearch/internal/history"
	"stocksearch/internal/httpx"
	"stocksearch/internal/logger"
	"stocksearch/internal/ratelimit"
	"stocksearch/internal/search"
)

type App struct {
	Config   config.Config
	Client   *fmp.Client
	Enricher *enrich.Enricher
	History  *history.Loader
	Logger   zerolog.Logger
}

// New builds the shared pieces. A missing API key is logged, not fatal:
// every upstream call then fails with fmp.ErrMissingAPIKey.
func New(cfg config.Config, log zerolog.Logger) *App {
	if cfg.FMP.APIKey == "" {
		log.Warn().Msg("FMP_API_KEY not set; upstream calls will fail")
	}

	httpClient := httpx.New(cfg.HTTPTimeout())
	httpClient.Logger = log.With().Str("component", "httpx").Logger()
	paced := ratelimit.Wrap(httpClient, cfg.FMP.MaxRequestsPerMinute, cfg.FMP.Burst, cfg.MinRequestInterval())

	opts := []fmp.ClientOption{fmp.WithHTTPClient(paced)}
	if cfg.FMP.BaseURL != "" {
		opts = append(opts, fmp.WithBaseURL(cfg.FMP.BaseURL))
	}
	client := fmp.NewClient(cfg.FMP.APIKey, opts...)

	return &App{
		Config: cfg,
		Client: client,
		Enricher: &enrich.Enricher{
			Source:         client,
			MaxConcurrency: cfg.Enrich.MaxConcurrency,
			Timeout:        cfg.EnrichTimeout(),
			Logger:         log.With().Str("component", "enrich").Logger(),
		},
		History: &history.Loader{
			Series:     client,
			Quotes:     client,
			WindowDays: cfg.History.WindowDays,
			Logger:     log.With().Str("component", "history").Logger(),
		},
		Logger: log,
	}
}

// NewController returns a search controller with the configured page size.
func (a *App) NewController() *search.Controller {
	return search.NewController(a.Client, a.Enricher, a.Config.Search.DefaultPageSize,
		a.Logger.With().Str("component", "search").Logger())
}

// LoggerConfig maps the log section onto the logger settings.
func LoggerConfig(cfg config.Config, service string) logger.Config {
	return logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		File:        cfg.Log.File,
		MaxSizeMB:   cfg.Log.MaxSizeMB,
		MaxAgeDays:  cfg.Log.MaxAgeDays,
		ServiceName: service,
	}
}
