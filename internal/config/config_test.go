package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, 30*time.Second, cfg.DataSource.Timeout)
	assert.Equal(t, 20, cfg.Indicators.SMAWindow)
	assert.Equal(t, 20, cfg.Indicators.EMASpan)
	assert.Equal(t, 14, cfg.Indicators.RSIWindow)
	assert.True(t, cfg.FillNeutral())
	assert.Equal(t, 5, cfg.Recommender.TopN)
	assert.Equal(t, 3, cfg.Recommender.Neighbors)
	assert.Equal(t, "average", cfg.Recommender.DuplicatePolicy)
	assert.Equal(t, []Symbol{{Ticker: "AAPL", Name: "Apple"}}, cfg.Watchlist)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileValues(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `
data_source:
  provider: AlphaVantage
  api_key: demo
  timeout: 5s
watchlist:
  - {ticker: MSFT, name: Microsoft}
  - {ticker: TSLA, name: Tesla}
indicators:
  sma_window: 50
  rsi_fill_neutral: false
recommender:
  duplicate_policy: last
export:
  format: parquet
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "alphavantage", cfg.DataSource.Provider)
	assert.Equal(t, 5*time.Second, cfg.DataSource.Timeout)
	assert.Equal(t, 5.0, cfg.DataSource.RequestsPerMinute)
	assert.Len(t, cfg.Watchlist, 2)
	assert.Equal(t, 50, cfg.Indicators.SMAWindow)
	assert.False(t, cfg.FillNeutral())
	assert.Equal(t, "last", cfg.Recommender.DuplicatePolicy)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, "database:\n  sqlite_path: file.db\n")
	t.Setenv("SQLITE_PATH", "env.db")
	t.Setenv("MARKETLENS_WATCHLIST", "aapl, nvda ,")
	t.Setenv("RSI_WINDOW", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.Database.SQLitePath)
	assert.Equal(t, []Symbol{{Ticker: "AAPL"}, {Ticker: "NVDA"}}, cfg.Watchlist)
	assert.Equal(t, 7, cfg.Indicators.RSIWindow)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\n"), 0o644))
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_BadYAML(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load(writeConfig(t, "data_source: [\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	tests := map[string]func(c *Config){
		"unknown provider":     func(c *Config) { c.DataSource.Provider = "bloomberg" },
		"alphavantage w/o key": func(c *Config) { c.DataSource.Provider = "alphavantage"; c.DataSource.APIKey = "" },
		"empty ticker":         func(c *Config) { c.Watchlist = []Symbol{{Ticker: " "}} },
		"zero window":          func(c *Config) { c.Indicators.RSIWindow = 0 },
		"bad duplicates":       func(c *Config) { c.Recommender.DuplicatePolicy = "sum" },
		"bad export":           func(c *Config) { c.Export.Format = "xlsx" },
		"inverted scores":      func(c *Config) { c.Recommender.MinScore, c.Recommender.MaxScore = 5, 1 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			require.NoError(t, err)
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
