package config

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    "github.com/joho/godotenv"
    "gopkg.in/yaml.v3"
)

type Server struct {
    Port              string   `json:"port" yaml:"port"`
    RequestTimeoutSec int      `json:"request_timeout_sec" yaml:"request_timeout_sec"`
    SessionTTLSec     int      `json:"session_ttl_sec" yaml:"session_ttl_sec"`
    AllowedOrigins    []string `json:"allowed_origins" yaml:"allowed_origins"`
}

type FMP struct {
    APIKey                string `json:"api_key" yaml:"api_key"`
    BaseURL               string `json:"base_url" yaml:"base_url"`
    HTTPTimeoutSec        int    `json:"http_timeout_sec" yaml:"http_timeout_sec"`
    MaxRequestsPerMinute  int    `json:"max_requests_per_minute" yaml:"max_requests_per_minute"`
    MinRequestIntervalSec int    `json:"min_request_interval_sec" yaml:"min_request_interval_sec"`
    Burst                 int    `json:"burst" yaml:"burst"`
}

type Enrich struct {
    MaxConcurrency int `json:"max_concurrency" yaml:"max_concurrency"`
    TimeoutSec     int `json:"timeout_sec" yaml:"timeout_sec"`
}

type Search struct {
    DefaultPageSize int `json:"default_page_size" yaml:"default_page_size"`
}

type History struct {
    WindowDays int `json:"window_days" yaml:"window_days"`
}

type Log struct {
    Level      string `json:"level" yaml:"level"`
    Format     string `json:"format" yaml:"format"`
    File       string `json:"file" yaml:"file"`
    MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb"`
    MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days"`
}

type Config struct {
    Server  Server  `json:"server" yaml:"server"`
    FMP     FMP     `json:"fmp" yaml:"fmp"`
    Enrich  Enrich  `json:"enrich" yaml:"enrich"`
    Search  Search  `json:"search" yaml:"search"`
    History History `json:"history" yaml:"history"`
    Log     Log     `json:"log" yaml:"log"`
}

func Default() Config {
    return Config{
        Server: Server{Port: "8080", RequestTimeoutSec: 15, SessionTTLSec: 1800, AllowedOrigins: []string{"*"}},
        FMP: FMP{
            BaseURL:        "https://financialmodelingprep.com/api/v3",
            HTTPTimeoutSec: 10,
            Burst:          1,
        },
        Enrich:  Enrich{MaxConcurrency: 15, TimeoutSec: 10},
        Search:  Search{DefaultPageSize: 10},
        History: History{WindowDays: 30},
        Log:     Log{Level: "info", Format: "json", MaxSizeMB: 50, MaxAgeDays: 7},
    }
}

// Load reads a JSON or YAML config from path, chosen by extension. If path is
// empty it looks for config.json then config.yaml in the working directory and
// falls back to defaults. A .env file, when present, is loaded into the process
// environment before environment variables override select fields.
func Load(path string) (Config, error) {
    cfg := Default()
    if path == "" {
        for _, candidate := range []string{"config.json", "config.yaml", "config.yml"} {
            if _, err := os.Stat(candidate); err == nil {
                path = candidate
                break
            }
        }
    }
    if path != "" {
        b, err := os.ReadFile(path)
        if err != nil && !errors.Is(err, os.ErrNotExist) {
            return cfg, fmt.Errorf("read config: %w", err)
        }
        if err == nil {
            if err := decode(path, b, &cfg); err != nil {
                return cfg, fmt.Errorf("parse config: %w", err)
            }
        }
    }
    if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
        return cfg, fmt.Errorf("load .env: %w", err)
    }
    applyEnv(&cfg)
    return cfg, cfg.Validate()
}

func decode(path string, b []byte, cfg *Config) error {
    switch strings.ToLower(filepath.Ext(path)) {
    case ".yaml", ".yml":
        return yaml.Unmarshal(b, cfg)
    default:
        return json.Unmarshal(b, cfg)
    }
}

// Validate rejects values no component can run with. A missing API key is not
// an error here: every upstream call reports it instead.
func (c Config) Validate() error {
    switch c.Search.DefaultPageSize {
    case 5, 10, 15:
    default:
        return fmt.Errorf("search.default_page_size must be 5, 10 or 15, got %d", c.Search.DefaultPageSize)
    }
    if c.History.WindowDays <= 0 {
        return fmt.Errorf("history.window_days must be positive, got %d", c.History.WindowDays)
    }
    if c.Enrich.MaxConcurrency <= 0 {
        return fmt.Errorf("enrich.max_concurrency must be positive, got %d", c.Enrich.MaxConcurrency)
    }
    return nil
}

func (c Config) RequestTimeout() time.Duration { return seconds(c.Server.RequestTimeoutSec) }
func (c Config) SessionTTL() time.Duration     { return seconds(c.Server.SessionTTLSec) }
func (c Config) HTTPTimeout() time.Duration    { return seconds(c.FMP.HTTPTimeoutSec) }
func (c Config) EnrichTimeout() time.Duration  { return seconds(c.Enrich.TimeoutSec) }
func (c Config) MinRequestInterval() time.Duration {
    return seconds(c.FMP.MinRequestIntervalSec)
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func applyEnv(cfg *Config) {
    if v := os.Getenv("PORT"); v != "" { cfg.Server.Port = v }
    if x, ok := envInt("REQUEST_TIMEOUT_SEC"); ok && x > 0 { cfg.Server.RequestTimeoutSec = x }
    if x, ok := envInt("SESSION_TTL_SEC"); ok && x > 0 { cfg.Server.SessionTTLSec = x }
    if v := os.Getenv("ALLOWED_ORIGINS"); v != "" { cfg.Server.AllowedOrigins = splitCSV(v) }

    // FINANCE_API_KEY is the name the browser front-end used.
    if v := os.Getenv("FINANCE_API_KEY"); v != "" { cfg.FMP.APIKey = v }
    if v := os.Getenv("FMP_API_KEY"); v != "" { cfg.FMP.APIKey = v }
    if v := os.Getenv("FMP_BASE_URL"); v != "" { cfg.FMP.BaseURL = v }
    if x, ok := envInt("FMP_HTTP_TIMEOUT_SEC"); ok && x > 0 { cfg.FMP.HTTPTimeoutSec = x }
    if x, ok := envInt("FMP_MAX_RPM"); ok && x >= 0 { cfg.FMP.MaxRequestsPerMinute = x }
    if x, ok := envInt("FMP_MIN_INTERVAL_SEC"); ok && x >= 0 { cfg.FMP.MinRequestIntervalSec = x }
    if x, ok := envInt("FMP_BURST"); ok && x > 0 { cfg.FMP.Burst = x }

    if x, ok := envInt("ENRICH_MAX_CONCURRENCY"); ok && x > 0 { cfg.Enrich.MaxConcurrency = x }
    if x, ok := envInt("ENRICH_TIMEOUT_SEC"); ok && x > 0 { cfg.Enrich.TimeoutSec = x }
    if x, ok := envInt("DEFAULT_PAGE_SIZE"); ok && x > 0 { cfg.Search.DefaultPageSize = x }
    if x, ok := envInt("HISTORY_WINDOW_DAYS"); ok && x > 0 { cfg.History.WindowDays = x }

    if v := os.Getenv("LOG_LEVEL"); v != "" { cfg.Log.Level = strings.ToLower(v) }
    if v := os.Getenv("LOG_FORMAT"); v != "" { cfg.Log.Format = strings.ToLower(v) }
    if v := os.Getenv("LOG_FILE"); v != "" { cfg.Log.File = v }
}

func envInt(key string) (int, bool) {
    v := os.Getenv(key)
    if v == "" { return 0, false }
    var x int
    if _, err := fmt.Sscanf(v, "%d", &x); err != nil { return 0, false }
    return x, true
}

func splitCSV(s string) []string {
    parts := strings.Split(s, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        p = strings.TrimSpace(p)
        if p != "" { out = append(out, p) }
    }
    return out
}
