package recorder

import (
	"context"

	"MarketLens/internal/model"
)

// RecommendationRun is one answered recommendation query.
type RecommendationRun struct {
	Mode  string // "content" or "collaborative"
	Query string // item id, item name or user id as given
	Items []model.Recommendation
}

// Recorder persists run history for later analysis.
// Record methods return the generated run id.
type Recorder interface {
	RecordAnalysis(ctx context.Context, a *model.Analysis) (string, error)
	RecordRecommendations(ctx context.Context, run *RecommendationRun) (string, error)
	Close() error
}
