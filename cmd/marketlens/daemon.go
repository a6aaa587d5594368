package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"MarketLens/internal/config"
	"MarketLens/internal/export"
	"MarketLens/internal/metrics"
	"MarketLens/internal/notifier"
	"MarketLens/internal/scheduler"
)

func runDaemon(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	log.Info("MarketLens daemon starting...")
	m := metrics.New()

	col, err := newCollector(cfg, log, m)
	if err != nil {
		return err
	}
	engine, err := loadEngine(cfg, log)
	if err != nil {
		return err
	}
	exporter, err := export.NewSeriesExporter(cfg.Export.Format)
	if err != nil {
		return err
	}

	rec := openRecorder(cfg, log)
	defer rec.Close()

	var n notifier.Notifier = notifier.NoopNotifier{}
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		n = tn
	} else {
		log.Info("telegram not configured, alerts disabled")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.NewScheduler(ctx, col, engine, n, rec, log)
	sched.Exporter = exporter
	sched.ExportDir = cfg.Export.Dir
	sched.TopN = cfg.Recommender.TopN
	sched.Metrics = m
	sched.StatePath = cfg.Schedule.StateFile
	if err := sched.RestoreState(); err != nil {
		log.WithError(err).Warn("restore alert state failed, starting fresh")
	}
	for _, s := range cfg.Watchlist {
		sched.Watchlist = append(sched.Watchlist, strings.ToUpper(s.Ticker))
	}
	if err := sched.Register(cfg.Schedule.RefreshCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	}

	var srv *http.Server
	if cfg.Metrics.ListenAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		srv = &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("metrics server")
			}
		}()
		log.WithField("addr", cfg.Metrics.ListenAddr).Info("metrics server listening")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info("RUN_ON_START enabled, refreshing watchlist now")
		go sched.RunNow()
	}

	log.WithField("cron", cfg.Schedule.RefreshCron).Info("MarketLens is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping...")
	cancel()
	if srv != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}
	log.Info("MarketLens stopped")
	return nil
}
