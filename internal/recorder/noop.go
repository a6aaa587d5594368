package recorder

import (
	"context"

	"MarketLens/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAnalysis(_ context.Context, _ *model.Analysis) (string, error) {
	return "", nil
}

func (n *NoopRecorder) RecordRecommendations(_ context.Context, _ *RecommendationRun) (string, error) {
	return "", nil
}

func (n *NoopRecorder) Close() error { return nil }
