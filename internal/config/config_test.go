package config

import (
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
    t.Chdir(t.TempDir())
    t.Setenv("FMP_API_KEY", "")
    t.Setenv("FINANCE_API_KEY", "")

    cfg, err := Load("")
    require.NoError(t, err)
    require.Equal(t, "8080", cfg.Server.Port)
    require.Equal(t, 10, cfg.Search.DefaultPageSize)
    require.Equal(t, 30, cfg.History.WindowDays)
    require.Equal(t, 10*time.Second, cfg.EnrichTimeout())
    require.Empty(t, cfg.FMP.APIKey)
}

func TestLoad_JSONFile(t *testing.T) {
    dir := t.TempDir()
    t.Chdir(dir)
    t.Setenv("FMP_API_KEY", "")
    t.Setenv("FINANCE_API_KEY", "")
    path := filepath.Join(dir, "custom.json")
    require.NoError(t, os.WriteFile(path, []byte(`{"fmp":{"api_key":"from-json"},"search":{"default_page_size":5}}`), 0600))

    cfg, err := Load(path)
    require.NoError(t, err)
    require.Equal(t, "from-json", cfg.FMP.APIKey)
    require.Equal(t, 5, cfg.Search.DefaultPageSize)
    // untouched sections keep defaults
    require.Equal(t, 30, cfg.History.WindowDays)
}

func TestLoad_YAMLFile(t *testing.T) {
    dir := t.TempDir()
    t.Chdir(dir)
    t.Setenv("FMP_API_KEY", "")
    t.Setenv("FINANCE_API_KEY", "")
    require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("fmp:\n  api_key: from-yaml\nhistory:\n  window_days: 14\nenrich:\n  max_concurrency: 3\n"), 0600))

    cfg, err := Load("")
    require.NoError(t, err)
    require.Equal(t, "from-yaml", cfg.FMP.APIKey)
    require.Equal(t, 14, cfg.History.WindowDays)
    require.Equal(t, 3, cfg.Enrich.MaxConcurrency)
}

func TestLoad_EnvOverrides(t *testing.T) {
    t.Chdir(t.TempDir())
    t.Setenv("FINANCE_API_KEY", "legacy")
    t.Setenv("FMP_API_KEY", "preferred")
    t.Setenv("PORT", "9090")
    t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://app.example.com")
    t.Setenv("FMP_MAX_RPM", "300")
    t.Setenv("LOG_LEVEL", "DEBUG")

    cfg, err := Load("")
    require.NoError(t, err)
    require.Equal(t, "preferred", cfg.FMP.APIKey)
    require.Equal(t, "9090", cfg.Server.Port)
    require.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.Server.AllowedOrigins)
    require.Equal(t, 300, cfg.FMP.MaxRequestsPerMinute)
    require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_DotEnv(t *testing.T) {
    dir := t.TempDir()
    t.Chdir(dir)
    t.Setenv("FMP_API_KEY", "")
    // godotenv never overrides a set variable; Setenv restores it afterwards
    t.Setenv("FINANCE_API_KEY", "")
    require.NoError(t, os.Unsetenv("FINANCE_API_KEY"))
    require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FINANCE_API_KEY=from-dotenv\n"), 0600))

    cfg, err := Load("")
    require.NoError(t, err)
    require.Equal(t, "from-dotenv", cfg.FMP.APIKey)
}

func TestLoad_InvalidPageSize(t *testing.T) {
    t.Chdir(t.TempDir())
    t.Setenv("DEFAULT_PAGE_SIZE", "7")

    _, err := Load("")
    require.Error(t, err)
}

func TestLoad_BadFile(t *testing.T) {
    dir := t.TempDir()
    t.Chdir(dir)
    path := filepath.Join(dir, "broken.json")
    require.NoError(t, os.WriteFile(path, []byte("{"), 0600))

    _, err := Load(path)
    require.Error(t, err)
}
