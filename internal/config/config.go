package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider          string        `yaml:"provider"` // "yahoo" or "alphavantage"
		BaseURL           string        `yaml:"base_url"`
		APIKey            string        `yaml:"api_key"`
		Timeout           time.Duration `yaml:"timeout"`
		Retries           int           `yaml:"retries"`
		RequestsPerMinute float64       `yaml:"requests_per_minute"`
	} `yaml:"data_source"`
	Watchlist  []Symbol `yaml:"watchlist"`
	Indicators struct {
		SMAWindow           int   `yaml:"sma_window"`
		EMASpan             int   `yaml:"ema_span"`
		RSIWindow           int   `yaml:"rsi_window"`
		RSIFillNeutral      *bool `yaml:"rsi_fill_neutral"`
		DefaultLookbackDays int   `yaml:"default_lookback_days"`
	} `yaml:"indicators"`
	Recommender struct {
		CatalogPath     string   `yaml:"catalog_path"`
		TopN            int      `yaml:"top_n"`
		Neighbors       int      `yaml:"neighbors"`
		UnratedValue    float64  `yaml:"unrated_value"`
		DuplicatePolicy string   `yaml:"duplicate_policy"`
		MinScore        int      `yaml:"min_score"`
		MaxScore        int      `yaml:"max_score"`
		IncludeKnown    bool     `yaml:"include_known"`
		ExtraStopWords  []string `yaml:"extra_stop_words"`
	} `yaml:"recommender"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		StateFile   string `yaml:"state_file"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Export struct {
		Dir    string `yaml:"dir"`
		Format string `yaml:"format"` // csv, json or parquet
	} `yaml:"export"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Metrics struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Symbol is one watchlist entry.
type Symbol struct {
	Ticker string `yaml:"ticker"`
	Name   string `yaml:"name"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides and fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env only fills variables not already set in the environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("MARKETLENS_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("MARKETLENS_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("MARKETLENS_WATCHLIST"); v != "" {
		cfg.Watchlist = nil
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				cfg.Watchlist = append(cfg.Watchlist, Symbol{Ticker: strings.ToUpper(t)})
			}
		}
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("REFRESH_CRON"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("EXPORT_DIR"); v != "" {
		cfg.Export.Dir = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.ListenAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("RSI_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Indicators.RSIWindow = n
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	cfg.DataSource.Provider = strings.ToLower(cfg.DataSource.Provider)
	if cfg.DataSource.Timeout == 0 {
		cfg.DataSource.Timeout = 30 * time.Second
	}
	if cfg.DataSource.Retries == 0 {
		cfg.DataSource.Retries = 2
	}
	if cfg.DataSource.RequestsPerMinute == 0 {
		if cfg.DataSource.Provider == "alphavantage" {
			cfg.DataSource.RequestsPerMinute = 5 // free tier
		} else {
			cfg.DataSource.RequestsPerMinute = 60
		}
	}
	if len(cfg.Watchlist) == 0 {
		cfg.Watchlist = []Symbol{{Ticker: "AAPL", Name: "Apple"}}
	}
	if cfg.Indicators.SMAWindow == 0 {
		cfg.Indicators.SMAWindow = 20
	}
	if cfg.Indicators.EMASpan == 0 {
		cfg.Indicators.EMASpan = 20
	}
	if cfg.Indicators.RSIWindow == 0 {
		cfg.Indicators.RSIWindow = 14
	}
	if cfg.Indicators.RSIFillNeutral == nil {
		fill := true
		cfg.Indicators.RSIFillNeutral = &fill
	}
	if cfg.Indicators.DefaultLookbackDays == 0 {
		cfg.Indicators.DefaultLookbackDays = 182
	}
	if cfg.Recommender.CatalogPath == "" {
		cfg.Recommender.CatalogPath = "configs/catalog.yaml"
	}
	if cfg.Recommender.TopN == 0 {
		cfg.Recommender.TopN = 5
	}
	if cfg.Recommender.Neighbors == 0 {
		cfg.Recommender.Neighbors = 3
	}
	if cfg.Recommender.DuplicatePolicy == "" {
		cfg.Recommender.DuplicatePolicy = "average"
	}
	if cfg.Recommender.MinScore == 0 && cfg.Recommender.MaxScore == 0 {
		cfg.Recommender.MinScore, cfg.Recommender.MaxScore = 1, 5
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 30 22 * * 1-5"
	}
	if cfg.Schedule.StateFile == "" {
		cfg.Schedule.StateFile = "data/alert_state.json"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/marketlens.db"
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "data/export"
	}
	if cfg.Export.Format == "" {
		cfg.Export.Format = "csv"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo":
	case "alphavantage":
		if c.DataSource.APIKey == "" {
			return fmt.Errorf("data_source.api_key is required for alphavantage")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.DataSource.Retries < 0 {
		return fmt.Errorf("data_source.retries must not be negative")
	}
	if c.DataSource.RequestsPerMinute <= 0 {
		return fmt.Errorf("data_source.requests_per_minute must be positive")
	}
	for i, s := range c.Watchlist {
		if strings.TrimSpace(s.Ticker) == "" {
			return fmt.Errorf("watchlist[%d].ticker is required", i)
		}
	}
	if c.Indicators.SMAWindow <= 0 || c.Indicators.EMASpan <= 0 || c.Indicators.RSIWindow <= 0 {
		return fmt.Errorf("indicators windows must be positive")
	}
	if c.Recommender.TopN <= 0 {
		return fmt.Errorf("recommender.top_n must be positive")
	}
	if c.Recommender.MinScore > c.Recommender.MaxScore {
		return fmt.Errorf("recommender.min_score must not exceed max_score")
	}
	switch c.Recommender.DuplicatePolicy {
	case "average", "last":
	default:
		return fmt.Errorf("recommender.duplicate_policy %q is not supported", c.Recommender.DuplicatePolicy)
	}
	switch c.Export.Format {
	case "csv", "json", "parquet":
	default:
		return fmt.Errorf("export.format %q is not supported", c.Export.Format)
	}
	return nil
}

// FillNeutral reports the configured RSI fill policy.
func (c *Config) FillNeutral() bool {
	return c.Indicators.RSIFillNeutral == nil || *c.Indicators.RSIFillNeutral
}
