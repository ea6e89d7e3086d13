package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_JSONWithService(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", ServiceName: "stocksearch"}, &buf)
	require.NoError(t, err)

	l.Debug().Msg("hidden")
	l.Info().Str("symbol", "AAPL").Msg("quote fetched")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	require.Equal(t, "quote fetched", line["message"])
	require.Equal(t, "AAPL", line["symbol"])
	require.Equal(t, "stocksearch", line["service"])
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	l, err := New(Config{File: path, MaxSizeMB: 1}, &bytes.Buffer{})
	require.NoError(t, err)

	l.Warn().Msg("to file")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), "to file")
}
