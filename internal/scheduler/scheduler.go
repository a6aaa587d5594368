package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"MarketLens/internal/collector"
	"MarketLens/internal/export"
	"MarketLens/internal/metrics"
	"MarketLens/internal/model"
	"MarketLens/internal/notifier"
	"MarketLens/internal/recommend"
	"MarketLens/internal/recorder"
)

// retrySender is implemented by notifiers that can retry on their own.
type retrySender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the watchlist refresh on a cron schedule and answers chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Engine    *recommend.Engine
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Exporter  export.SeriesExporter // nil disables export
	ExportDir string
	Watchlist []string
	TopN      int
	StatePath string // empty keeps alert state in memory only
	Metrics   *metrics.Metrics
	Log       logrus.FieldLogger
	Ctx       context.Context

	mu    sync.Mutex
	zones map[string]model.RSIZone
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, engine *recommend.Engine, n notifier.Notifier, rec recorder.Recorder, log logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Engine:    engine,
		Notifier:  n,
		Recorder:  rec,
		TopN:      5,
		Log:       log,
		Ctx:       ctx,
		zones:     map[string]model.RSIZone{},
	}
}

// RestoreState loads the persisted alert state from StatePath.
func (s *Scheduler) RestoreState() error {
	if s.StatePath == "" {
		return nil
	}
	state, err := LoadState(s.StatePath)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.zones = state.Zones
	s.mu.Unlock()
	s.Log.WithFields(logrus.Fields{"path": s.StatePath, "symbols": len(state.Zones)}).Info("alert state restored")
	return nil
}

// Register schedules the watchlist refresh.
func (s *Scheduler) Register(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running refresh.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// RunNow executes the refresh immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	s.Log.WithField("symbols", len(s.Watchlist)).Info("running watchlist refresh")
	if failed := s.Refresh(s.Ctx); failed > 0 {
		s.Log.WithField("failed", failed).Warn("watchlist refresh finished with errors")
	}
}

// Refresh analyzes every watchlist symbol in order and returns how many failed.
// One symbol failing does not stop the others.
func (s *Scheduler) Refresh(ctx context.Context) int {
	failed := 0
	for _, symbol := range s.Watchlist {
		if ctx.Err() != nil {
			return failed + 1
		}
		if err := s.refreshSymbol(ctx, symbol); err != nil {
			failed++
			s.Log.WithField("symbol", symbol).WithError(err).Error("refresh symbol")
		}
	}
	return failed
}

func (s *Scheduler) refreshSymbol(ctx context.Context, symbol string) error {
	a, err := s.Collector.Analyze(ctx, symbol, model.DateRange{})
	if err != nil {
		return err
	}
	log := s.Log.WithField("symbol", symbol)

	runID, err := s.Recorder.RecordAnalysis(ctx, a)
	if err != nil {
		log.WithError(err).Error("record analysis")
	} else if runID != "" {
		log = log.WithField("run_id", runID)
	}

	if s.Exporter != nil {
		path, err := export.WriteAnalysis(s.ExportDir, a, s.Exporter)
		if err != nil {
			log.WithError(err).Error("export analysis")
		} else {
			log.WithField("path", path).Debug("analysis exported")
		}
	}

	s.checkZone(ctx, symbol, a)
	log.WithField("bars", a.Summary.Bars).Info("symbol refreshed")
	return nil
}

// checkZone alerts when a symbol moves into the overbought or oversold zone.
// Staying in a zone does not repeat the alert.
func (s *Scheduler) checkZone(ctx context.Context, symbol string, a *model.Analysis) {
	if a.Signal == nil {
		return
	}
	last, _ := a.Indicators.Last()

	s.mu.Lock()
	prev, seen := s.zones[symbol]
	s.zones[symbol] = a.Signal.Zone
	var snapshot *AlertState
	if s.StatePath != "" && (!seen || prev != a.Signal.Zone) {
		snapshot = &AlertState{Zones: make(map[string]model.RSIZone, len(s.zones))}
		for k, v := range s.zones {
			snapshot.Zones[k] = v
		}
	}
	s.mu.Unlock()

	if snapshot != nil {
		if err := SaveState(s.StatePath, snapshot); err != nil {
			s.Log.WithError(err).Error("save alert state")
		}
	}

	if a.Signal.Zone == model.ZoneNeutral || (seen && prev == a.Signal.Zone) {
		return
	}
	s.trySend(ctx, notifier.FormatZoneAlert(symbol, last, a.Signal))
}

// Zone returns the last zone seen for symbol.
func (s *Scheduler) Zone(symbol string) (model.RSIZone, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	z, ok := s.zones[symbol]
	return z, ok
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	arg := strings.TrimSpace(strings.TrimPrefix(command, fields[0]))

	switch strings.ToLower(fields[0]) {
	case "/analyze":
		if arg == "" {
			return "usage: /analyze SYMBOL"
		}
		a, err := s.Collector.Analyze(ctx, strings.ToUpper(arg), model.DateRange{})
		if err != nil {
			return fmt.Sprintf("❌ analyze %s: %v", arg, err)
		}
		return notifier.FormatAnalysis(a)
	case "/similar":
		return s.similar(arg)
	case "/user":
		id, err := strconv.Atoi(arg)
		if err != nil {
			return "usage: /user USER_ID"
		}
		recs, err := s.Engine.ForUser(id, s.TopN)
		if err != nil {
			return fmt.Sprintf("❌ recommend for user %d: %v", id, err)
		}
		s.Metrics.ObserveRecommendation("collaborative")
		return notifier.FormatRecommendations(fmt.Sprintf("Picks for user %d", id), recs)
	case "/watchlist":
		return "Watchlist: " + strings.Join(s.Watchlist, ", ")
	default:
		return helpText
	}
}

func (s *Scheduler) similar(arg string) string {
	if arg == "" {
		return "usage: /similar ITEM_ID|NAME"
	}
	var (
		recs []model.Recommendation
		err  error
	)
	if id, convErr := strconv.Atoi(arg); convErr == nil {
		recs, err = s.Engine.SimilarTo(id, s.TopN)
	} else {
		recs, err = s.Engine.SimilarToName(arg, s.TopN)
	}
	if err != nil {
		return fmt.Sprintf("❌ similar to %s: %v", arg, err)
	}
	s.Metrics.ObserveRecommendation("content")
	return notifier.FormatRecommendations("Similar to "+arg, recs)
}

const helpText = "Commands:\n• /analyze SYMBOL\n• /similar ITEM_ID|NAME\n• /user USER_ID\n• /watchlist"

func (s *Scheduler) trySend(ctx context.Context, text string) {
	var err error
	if rs, ok := s.Notifier.(retrySender); ok {
		err = rs.SendWithRetry(ctx, text, 3)
	} else {
		err = s.Notifier.Send(ctx, text)
	}
	if err != nil {
		s.Log.WithError(err).Error("send notification")
	}
}
