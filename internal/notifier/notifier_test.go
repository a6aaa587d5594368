package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketLens/internal/logger"
	"MarketLens/internal/model"
)

func newTestNotifier(url string) *TelegramNotifier {
	n := NewTelegramNotifier("TOKEN", "42", "", logger.Discard())
	n.BaseURL = url
	n.Backoff = time.Millisecond
	return n
}

func TestSend(t *testing.T) {
	var got map[string]string
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv.URL).Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, "/botTOKEN/sendMessage", path)
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "<b>hi</b>", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestSendWithRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv.URL).SendWithRetry(context.Background(), "x", 3))
	assert.EqualValues(t, 3, calls.Load())
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newTestNotifier(srv.URL).SendWithRetry(context.Background(), "x", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 retries exhausted")
	assert.EqualValues(t, 2, calls.Load())
}

func TestStartPolling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	replies := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			if r.URL.Query().Get("offset") == "0" {
				fmt.Fprint(w, `{"ok":true,"result":[{"update_id":7,"message":{"text":" /analyze AAPL "}}]}`)
				return
			}
			<-r.Context().Done()
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			replies <- body["text"]
			fmt.Fprint(w, `{"ok":true}`)
		}
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL)
	done := make(chan struct{})
	go func() {
		n.StartPolling(ctx, func(_ context.Context, cmd string) string { return "got " + cmd })
		close(done)
	}()

	select {
	case reply := <-replies:
		assert.Equal(t, "got /analyze AAPL", reply)
	case <-time.After(5 * time.Second):
		t.Fatal("no reply sent")
	}
	cancel()
	<-done
}

func TestFormatAnalysis(t *testing.T) {
	d := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	a := &model.Analysis{
		Series: &model.PriceSeries{Symbol: "AAPL", Bars: []model.OHLCV{{Time: d, Close: 100}, {Time: d.AddDate(0, 0, 1), Close: 110}}},
		Indicators: model.IndicatorSeries{
			{Time: d, Close: 100, EMA: 100},
			{Time: d.AddDate(0, 0, 1), Close: 110, EMA: 101, RSI: null.FloatFrom(75)},
		},
		Summary: model.Summary{StartPrice: 100, EndPrice: 110, ReturnPct: 10, High: 110, Low: 100, Position: 1},
		Signal: &model.Signal{
			Factors:    []model.FactorScore{{Name: "RSI", RawScore: -1.5, Weight: 0.4, Weighted: -0.6, Commentary: "RSI=75"}},
			TotalScore: -0.6,
			Tier:       model.SignalTier{Label: "Sell"},
			Zone:       model.ZoneOverbought,
			WarningMsg: "overbought",
		},
	}
	out := FormatAnalysis(a)
	assert.Contains(t, out, "<b>AAPL</b> | 2024-05-01 ~ 2024-05-02")
	assert.Contains(t, out, "+10.00%")
	assert.Contains(t, out, "SMA: n/a | EMA: 101.00 | RSI: 75.0")
	assert.Contains(t, out, "RSI(RSI=75): -1.5 (×0.40) = -0.600")
	assert.Contains(t, out, "<b>Signal:</b> Sell")
	assert.Contains(t, out, "⚠️ overbought")
	assert.Equal(t, "no data", FormatAnalysis(nil))
}

func TestFormatRecommendations(t *testing.T) {
	out := FormatRecommendations("Similar to <Shoes>", []model.Recommendation{
		{Item: model.Item{ID: 5, Name: "Sandals", Category: "Shoes"}, Score: 0.612},
		{Item: model.Item{ID: 6, Name: "Boots", Category: "Shoes"}},
	})
	assert.Contains(t, out, "Similar to &lt;Shoes&gt;")
	assert.Contains(t, out, "1. Sandals [Shoes] 0.612\n")
	assert.Contains(t, out, "2. Boots [Shoes]\n")
	assert.Contains(t, FormatRecommendations("x", nil), "No recommendations.")
}

func TestFormatZoneAlert(t *testing.T) {
	p := model.IndicatorPoint{Time: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), Close: 110, RSI: null.FloatFrom(75)}
	out := FormatZoneAlert("AAPL", p, &model.Signal{Zone: model.ZoneOverbought, Tier: model.SignalTier{Label: "Sell"}, TotalScore: -0.6})
	assert.True(t, strings.HasPrefix(out, "🔺 <b>AAPL OVERBOUGHT</b> | 2024-05-02"))
	assert.Contains(t, out, "RSI 75.0")
}

func TestNoopNotifier(t *testing.T) {
	var n Notifier = NoopNotifier{}
	assert.NoError(t, n.Send(context.Background(), "x"))
}
