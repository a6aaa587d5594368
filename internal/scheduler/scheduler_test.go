package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketLens/internal/calculator"
	"MarketLens/internal/collector"
	"MarketLens/internal/export"
	"MarketLens/internal/logger"
	"MarketLens/internal/model"
	"MarketLens/internal/recommend"
	"MarketLens/internal/recorder"
)

type captureNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (c *captureNotifier) Send(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, text)
	return nil
}

func (c *captureNotifier) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.msgs...)
}

func risingBars(n int) []model.OHLCV {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, n)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 10}
	}
	return bars
}

func testEngine(t *testing.T) *recommend.Engine {
	items := []model.Item{
		{ID: 1, Name: "Laptop", Category: "Electronics"},
		{ID: 2, Name: "Phone", Category: "Electronics"},
		{ID: 3, Name: "Jacket", Category: "Fashion"},
	}
	ratings := []model.Rating{
		{UserID: 1, ItemID: 1, Score: 5},
		{UserID: 2, ItemID: 1, Score: 5},
		{UserID: 2, ItemID: 2, Score: 4},
	}
	e, err := recommend.NewEngine(items, ratings, recommend.ContentOptions{}, recommend.DefaultCollabOptions())
	require.NoError(t, err)
	return e
}

func newTestScheduler(t *testing.T, f collector.Fetcher) (*Scheduler, *captureNotifier) {
	t.Helper()
	col := collector.NewCollector(f, calculator.DefaultParams(), logger.Discard())
	col.Backoff = time.Millisecond
	col.Retries = 0
	n := &captureNotifier{}
	s := NewScheduler(context.Background(), col, testEngine(t), n, recorder.NewNoopRecorder(), logger.Discard())
	s.Watchlist = []string{"AAPL"}
	return s, n
}

func TestRefresh_RecordsExportsAndAlertsOnce(t *testing.T) {
	s, n := newTestScheduler(t, &collector.MockFetcher{DailyData: risingBars(30)})

	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"), logger.Discard())
	require.NoError(t, err)
	defer rec.Close()
	s.Recorder = rec
	s.Exporter = export.CSVExporter{}
	s.ExportDir = t.TempDir()

	assert.Zero(t, s.Refresh(context.Background()))

	msgs := n.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "AAPL OVERBOUGHT")
	z, ok := s.Zone("AAPL")
	require.True(t, ok)
	assert.Equal(t, model.ZoneOverbought, z)

	_, err = os.Stat(filepath.Join(s.ExportDir, "AAPL_20240101_20240130.csv"))
	assert.NoError(t, err)

	runID, _, err := rec.LatestRun(context.Background(), "AAPL")
	require.NoError(t, err)
	points, err := rec.IndicatorHistory(context.Background(), runID)
	require.NoError(t, err)
	assert.Len(t, points, 30)

	// staying overbought does not alert again
	assert.Zero(t, s.Refresh(context.Background()))
	assert.Len(t, n.messages(), 1)
}

func TestRefresh_CountsFailures(t *testing.T) {
	s, n := newTestScheduler(t, &collector.MockFetcher{Err: errors.New("down")})
	s.Watchlist = []string{"AAPL", "MSFT"}

	assert.Equal(t, 2, s.Refresh(context.Background()))
	assert.Empty(t, n.messages())
}

func TestRegister(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{Price: 100})
	assert.NoError(t, s.Register("0 30 22 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)
	assert.Error(t, s.Register("not a cron"))
}

func TestHandleCommand(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{DailyData: risingBars(30)})
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/analyze aapl"), "<b>AAPL</b>")
	assert.Contains(t, s.HandleCommand(ctx, "/similar 1"), "1. Phone [Electronics]")
	assert.Contains(t, s.HandleCommand(ctx, "/similar laptop"), "Phone")
	assert.Contains(t, s.HandleCommand(ctx, "/similar Toaster"), "not found")
	assert.Contains(t, s.HandleCommand(ctx, "/user 1"), "1. Phone [Electronics] 4.000")
	assert.Contains(t, s.HandleCommand(ctx, "/user x"), "usage")
	assert.Equal(t, "Watchlist: AAPL", s.HandleCommand(ctx, "/watchlist"))
	assert.Equal(t, helpText, s.HandleCommand(ctx, "hello"))
	assert.Equal(t, helpText, s.HandleCommand(ctx, ""))
}

func TestAlertStateSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "alerts.json")

	s, n := newTestScheduler(t, &collector.MockFetcher{DailyData: risingBars(30)})
	s.StatePath = path
	require.NoError(t, s.RestoreState())
	assert.Zero(t, s.Refresh(context.Background()))
	require.Len(t, n.messages(), 1)

	state, err := LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, model.ZoneOverbought, state.Zones["AAPL"])
	assert.False(t, state.UpdatedAt.IsZero())

	restarted, n2 := newTestScheduler(t, &collector.MockFetcher{DailyData: risingBars(30)})
	restarted.StatePath = path
	require.NoError(t, restarted.RestoreState())
	assert.Zero(t, restarted.Refresh(context.Background()))
	assert.Empty(t, n2.messages())
}

func TestLoadState_Missing(t *testing.T) {
	state, err := LoadState(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Empty(t, state.Zones)
}
