package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"MarketLens/internal/model"
)

// ContentOptions tunes the content index build.
type ContentOptions struct {
	ExtraStopWords []string
}

// ContentIndex ranks catalog items by TF-IDF cosine similarity of their text.
// It is immutable after BuildContentIndex and safe for concurrent readers.
type ContentIndex struct {
	items      []model.Item
	position   map[int]int
	vocabulary []string
	sim        [][]float64
}

// BuildContentIndex builds TF-IDF vectors for every item and precomputes the
// pairwise similarity matrix. Item order is kept as the tie-break order.
func BuildContentIndex(items []model.Item, opts ContentOptions) (*ContentIndex, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("content index over empty catalog: %w", model.ErrInvalidInput)
	}
	position := make(map[int]int, len(items))
	for i, it := range items {
		if _, dup := position[it.ID]; dup {
			return nil, fmt.Errorf("duplicate item id %d: %w", it.ID, model.ErrInvalidInput)
		}
		position[it.ID] = i
	}

	stop := stopWordSet(opts.ExtraStopWords)
	docs := make([][]string, len(items))
	docFreq := map[string]int{}
	for i, it := range items {
		docs[i] = tokenize(it.Text(), stop)
		seen := map[string]bool{}
		for _, tok := range docs[i] {
			if !seen[tok] {
				seen[tok] = true
				docFreq[tok]++
			}
		}
	}

	vocab := make([]string, 0, len(docFreq))
	for term := range docFreq {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)
	column := make(map[string]int, len(vocab))
	for i, term := range vocab {
		column[term] = i
	}

	n := float64(len(items))
	vectors := make([][]float64, len(items))
	for i, doc := range docs {
		vec := make([]float64, len(vocab))
		for _, tok := range doc {
			vec[column[tok]]++
		}
		var norm float64
		for c, term := range vocab {
			if vec[c] == 0 {
				continue
			}
			idf := math.Log((1+n)/(1+float64(docFreq[term]))) + 1
			vec[c] *= idf
			norm += vec[c] * vec[c]
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for c := range vec {
				vec[c] /= norm
			}
		}
		vectors[i] = vec
	}

	catalog := make([]model.Item, len(items))
	copy(catalog, items)
	return &ContentIndex{
		items:      catalog,
		position:   position,
		vocabulary: vocab,
		sim:        similarityMatrix(vectors),
	}, nil
}

// Vocabulary returns the sorted terms the index was built with.
func (ci *ContentIndex) Vocabulary() []string {
	out := make([]string, len(ci.vocabulary))
	copy(out, ci.vocabulary)
	return out
}

// Similarity returns the cosine similarity between two catalog items.
func (ci *ContentIndex) Similarity(a, b int) (float64, error) {
	ia, ok := ci.position[a]
	if !ok {
		return 0, fmt.Errorf("item %d: %w", a, model.ErrNotFound)
	}
	ib, ok := ci.position[b]
	if !ok {
		return 0, fmt.Errorf("item %d: %w", b, model.ErrNotFound)
	}
	return ci.sim[ia][ib], nil
}

// RecommendBySimilarity ranks every other item by similarity to itemID,
// descending, with ties in catalog order, and returns at most topN.
func (ci *ContentIndex) RecommendBySimilarity(itemID, topN int) ([]model.Recommendation, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("top n %d: %w", topN, model.ErrInvalidInput)
	}
	idx, ok := ci.position[itemID]
	if !ok {
		return nil, fmt.Errorf("item %d: %w", itemID, model.ErrNotFound)
	}

	recs := make([]model.Recommendation, 0, len(ci.items)-1)
	for j, it := range ci.items {
		if j == idx {
			continue
		}
		recs = append(recs, model.Recommendation{Item: it, Score: ci.sim[idx][j]})
	}
	sort.SliceStable(recs, func(a, b int) bool { return recs[a].Score > recs[b].Score })
	if len(recs) > topN {
		recs = recs[:topN]
	}
	return recs, nil
}

// RecommendByName looks the query item up by case-insensitive name.
func (ci *ContentIndex) RecommendByName(name string, topN int) ([]model.Recommendation, error) {
	for _, it := range ci.items {
		if strings.EqualFold(it.Name, strings.TrimSpace(name)) {
			return ci.RecommendBySimilarity(it.ID, topN)
		}
	}
	return nil, fmt.Errorf("item %q: %w", name, model.ErrNotFound)
}
