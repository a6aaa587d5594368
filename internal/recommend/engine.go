package recommend

import "MarketLens/internal/model"

// Engine bundles the content and collaborative indexes built over one catalog.
type Engine struct {
	Content *ContentIndex
	Collab  *CollabIndex
}

// NewEngine builds both indexes.
func NewEngine(items []model.Item, ratings []model.Rating, content ContentOptions, collab CollabOptions) (*Engine, error) {
	ci, err := BuildContentIndex(items, content)
	if err != nil {
		return nil, err
	}
	cf, err := BuildCollaborativeIndex(ratings, items, collab)
	if err != nil {
		return nil, err
	}
	return &Engine{Content: ci, Collab: cf}, nil
}

// SimilarTo ranks items by content similarity to itemID.
func (e *Engine) SimilarTo(itemID, topN int) ([]model.Recommendation, error) {
	return e.Content.RecommendBySimilarity(itemID, topN)
}

// SimilarToName ranks items by content similarity to the item named name.
func (e *Engine) SimilarToName(name string, topN int) ([]model.Recommendation, error) {
	return e.Content.RecommendByName(name, topN)
}

// ForUser returns collaborative picks for userID, ascending by item id.
// Score is the item's mean rating across all users who rated it.
func (e *Engine) ForUser(userID, topN int) ([]model.Recommendation, error) {
	items, err := e.Collab.RecommendForUser(userID, topN)
	if err != nil {
		return nil, err
	}
	recs := make([]model.Recommendation, len(items))
	for i, it := range items {
		recs[i] = model.Recommendation{Item: it, Score: e.Collab.meanRating(it.ID)}
	}
	return recs, nil
}
