package collector

import (
	"context"
	"time"

	"MarketLens/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData []model.OHLCV
	Err       error
	Calls     int
}

func (m *MockFetcher) Name() string { return "mock" }

// FetchDailyBars returns DailyData when set, otherwise one generated bar per
// weekday in r. Err, when set, is returned on every call.
func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, r model.DateRange) ([]model.OHLCV, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	return generateMockBars(m.Price, r), nil
}

func generateMockBars(basePrice float64, r model.DateRange) []model.OHLCV {
	to := r.To
	if to.IsZero() {
		to = time.Now()
	}
	from := r.From
	if from.IsZero() {
		from = to.AddDate(0, -6, 0)
	}
	var bars []model.OHLCV
	i := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		p := basePrice * (1 + float64(i%20-10)*0.002 + float64(i)*0.0005)
		bars = append(bars, model.OHLCV{
			Time:   d,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		})
		i++
	}
	return bars
}
