package calculator

import (
	"fmt"

	"MarketLens/internal/model"
)

// PeriodReturn returns the percentage change from the first to the last price.
func PeriodReturn(prices []float64) (float64, error) {
	if len(prices) < 2 {
		return 0, fmt.Errorf("period return needs 2 prices, got %d: %w", len(prices), model.ErrInsufficientData)
	}
	first, last := prices[0], prices[len(prices)-1]
	if first == 0 {
		return 0, fmt.Errorf("period return with zero first price: %w", model.ErrInsufficientData)
	}
	return (last/first - 1) * 100, nil
}
