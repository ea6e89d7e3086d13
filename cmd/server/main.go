package main

import (
    "context"
    "errors"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/rs/zerolog/log"

    "stocksearch/internal/api"
    "stocksearch/internal/app"
    "stocksearch/internal/config"
    "stocksearch/internal/logger"
    "stocksearch/internal/session"
)

func main() {
    // Config
    cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
    if err != nil {
        log.Fatal().Err(err).Msg("config")
    }
    lg, err := logger.Init(app.LoggerConfig(cfg, "stocksearch-server"))
    if err != nil {
        log.Fatal().Err(err).Msg("logger")
    }

    a := app.New(cfg, lg)
    sessions := session.NewStore(a.NewController, cfg.SessionTTL(), lg.With().Str("component", "session").Logger())

    handler := api.NewRouter(api.Config{
        Sessions:       sessions,
        History:        a.History,
        AllowedOrigins: cfg.Server.AllowedOrigins,
        RequestTimeout: cfg.RequestTimeout(),
        Logger:         lg.With().Str("component", "http").Logger(),
    })

    srv := &http.Server{
        Addr:              ":" + cfg.Server.Port,
        Handler:           handler,
        ReadHeaderTimeout: 5 * time.Second,
        ReadTimeout:       15 * time.Second,
        WriteTimeout:      cfg.RequestTimeout() + 5*time.Second,
        IdleTimeout:       60 * time.Second,
    }

    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()

    go sessions.Run(ctx, time.Minute)

    go func() {
        lg.Info().Str("addr", srv.Addr).Msg("server listening")
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            lg.Fatal().Err(err).Msg("server")
        }
    }()

    // graceful shutdown
    <-ctx.Done()
    lg.Info().Msg("shutting down")
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := srv.Shutdown(shutdownCtx); err != nil {
        lg.Error().Err(err).Msg("shutdown")
    }
}
