package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"MarketLens/internal/calculator"
	"MarketLens/internal/catalog"
	"MarketLens/internal/collector"
	"MarketLens/internal/config"
	"MarketLens/internal/logger"
	"MarketLens/internal/metrics"
	"MarketLens/internal/recommend"
	"MarketLens/internal/recorder"
)

const usage = `usage: marketlens [-config PATH] <command> [flags]

commands:
  analyze     fetch a symbol and print its indicators and signal
  recommend   content or collaborative recommendations from the catalog
  catalog     write the sample catalog as YAML
  daemon      refresh the watchlist on a schedule and serve /metrics
`

func main() {
	global := flag.NewFlagSet("marketlens", flag.ExitOnError)
	cfgPath := global.String("config", "", "config file (default $CONFIG_PATH or configs/config.yaml)")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = global.Parse(os.Args[1:])

	if global.NArg() == 0 {
		global.Usage()
		os.Exit(2)
	}

	path := *cfgPath
	if path == "" {
		path = "configs/config.yaml"
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path = v
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("config validation: %v", err)
	}
	log := logger.New(cfg.Log.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd, args := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "analyze":
		err = runAnalyze(ctx, cfg, log, args)
	case "recommend":
		err = runRecommend(ctx, cfg, log, args)
	case "catalog":
		err = runCatalog(args)
	case "daemon":
		err = runDaemon(ctx, cfg, log)
	default:
		global.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.WithField("command", cmd).Error(err)
		os.Exit(1)
	}
}

func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	opts := collector.HTTPOptions{
		BaseURL:           cfg.DataSource.BaseURL,
		Timeout:           cfg.DataSource.Timeout,
		Proxy:             cfg.Proxy,
		RequestsPerMinute: cfg.DataSource.RequestsPerMinute,
	}
	switch cfg.DataSource.Provider {
	case "yahoo":
		return collector.NewYahooFetcher(opts), nil
	case "alphavantage":
		return collector.NewAlphaVantageFetcher(cfg.DataSource.APIKey, opts), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.DataSource.Provider)
	}
}

func newCollector(cfg *config.Config, log logrus.FieldLogger, m *metrics.Metrics) (*collector.Collector, error) {
	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}
	log.WithField("source", fetcher.Name()).Info("data source selected")

	col := collector.NewCollector(fetcher, calculator.Params{
		SMAWindow:   cfg.Indicators.SMAWindow,
		EMASpan:     cfg.Indicators.EMASpan,
		RSIWindow:   cfg.Indicators.RSIWindow,
		FillNeutral: cfg.FillNeutral(),
	}, log)
	if days := cfg.Indicators.DefaultLookbackDays; days > 0 {
		col.Lookback = time.Duration(days) * 24 * time.Hour
	}
	col.Retries = cfg.DataSource.Retries
	col.Metrics = m
	return col, nil
}

// loadEngine builds the recommender over the configured catalog, falling back
// to the sample catalog when the file does not exist.
func loadEngine(cfg *config.Config, log logrus.FieldLogger) (*recommend.Engine, error) {
	rc := cfg.Recommender
	cat, err := catalog.Load(rc.CatalogPath)
	if errors.Is(err, fs.ErrNotExist) {
		log.WithField("path", rc.CatalogPath).Warn("catalog not found, using sample catalog")
		cat, err = catalog.Sample(sampleSeed), nil
	}
	if err != nil {
		return nil, err
	}

	collab := recommend.DefaultCollabOptions()
	collab.MinScore = rc.MinScore
	collab.MaxScore = rc.MaxScore
	collab.Unrated = rc.UnratedValue
	collab.Duplicates = recommend.DuplicatePolicy(strings.ToLower(rc.DuplicatePolicy))
	collab.Neighbors = rc.Neighbors
	collab.ExcludeKnown = !rc.IncludeKnown

	return recommend.NewEngine(cat.Items, cat.Ratings,
		recommend.ContentOptions{ExtraStopWords: rc.ExtraStopWords}, collab)
}

func openRecorder(cfg *config.Config, log logrus.FieldLogger) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
		log.WithError(err).Warn("create database dir failed, using noop recorder")
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
	if err != nil {
		log.WithError(err).Warn("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}
