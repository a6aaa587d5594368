package recommend

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketLens/internal/model"
)

func testRatings() []model.Rating {
	return []model.Rating{
		{UserID: 1, ItemID: 1, Score: 5},
		{UserID: 1, ItemID: 2, Score: 4},
		{UserID: 2, ItemID: 1, Score: 5},
		{UserID: 2, ItemID: 2, Score: 4},
		{UserID: 2, ItemID: 3, Score: 5},
		{UserID: 3, ItemID: 1, Score: 4},
		{UserID: 3, ItemID: 4, Score: 2},
		{UserID: 3, ItemID: 5, Score: 3},
		{UserID: 4, ItemID: 6, Score: 5},
	}
}

func itemIDs(items []model.Item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestRecommendForUser_ExcludesKnown(t *testing.T) {
	ci, err := BuildCollaborativeIndex(testRatings(), testCatalog(), DefaultCollabOptions())
	require.NoError(t, err)

	// neighbors of user 1: 2, 3, 4. Their top-2 rated items are
	// {1,3}, {1,5}, {6}; item 1 is already known to user 1.
	got, err := ci.RecommendForUser(1, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 5}, itemIDs(got))

	// with topN=5 user 3 contributes item 4 as well.
	got, err = ci.RecommendForUser(1, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4, 5, 6}, itemIDs(got))
}

func TestRecommendForUser_IncludeKnown(t *testing.T) {
	opts := DefaultCollabOptions()
	opts.ExcludeKnown = false
	ci, err := BuildCollaborativeIndex(testRatings(), testCatalog(), opts)
	require.NoError(t, err)

	got, err := ci.RecommendForUser(1, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, itemIDs(got))
}

func TestRecommendForUser_NeighborLimit(t *testing.T) {
	opts := DefaultCollabOptions()
	opts.Neighbors = 1
	ci, err := BuildCollaborativeIndex(testRatings(), testCatalog(), opts)
	require.NoError(t, err)

	got, err := ci.RecommendForUser(1, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, itemIDs(got))
}

func TestRecommendForUser_UnknownUserIsEmpty(t *testing.T) {
	ci, err := BuildCollaborativeIndex(testRatings(), testCatalog(), DefaultCollabOptions())
	require.NoError(t, err)

	got, err := ci.RecommendForUser(42, 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRecommendForUser_NoNeighbors(t *testing.T) {
	ci, err := BuildCollaborativeIndex([]model.Rating{{UserID: 1, ItemID: 1, Score: 3}}, testCatalog(), DefaultCollabOptions())
	require.NoError(t, err)

	got, err := ci.RecommendForUser(1, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecommendForUser_SkipsItemsMissingFromCatalog(t *testing.T) {
	ratings := append(testRatings(), model.Rating{UserID: 2, ItemID: 99, Score: 5})
	ci, err := BuildCollaborativeIndex(ratings, testCatalog(), DefaultCollabOptions())
	require.NoError(t, err)

	got, err := ci.RecommendForUser(1, 5)
	require.NoError(t, err)
	assert.NotContains(t, itemIDs(got), 99)
}

func TestRecommendForUser_InvalidTopN(t *testing.T) {
	ci, err := BuildCollaborativeIndex(testRatings(), testCatalog(), DefaultCollabOptions())
	require.NoError(t, err)

	_, err = ci.RecommendForUser(1, 0)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestBuildCollaborativeIndex_DuplicatePolicy(t *testing.T) {
	ratings := []model.Rating{
		{UserID: 1, ItemID: 1, Score: 2},
		{UserID: 1, ItemID: 1, Score: 4},
		{UserID: 2, ItemID: 1, Score: 1},
	}

	avg, err := BuildCollaborativeIndex(ratings, testCatalog(), DefaultCollabOptions())
	require.NoError(t, err)
	score, ok := avg.Score(1, 1)
	assert.True(t, ok)
	assert.Equal(t, 3.0, score)

	opts := DefaultCollabOptions()
	opts.Duplicates = DuplicatesLast
	last, err := BuildCollaborativeIndex(ratings, testCatalog(), opts)
	require.NoError(t, err)
	score, ok = last.Score(1, 1)
	assert.True(t, ok)
	assert.Equal(t, 4.0, score)

	opts.Duplicates = "median"
	_, err = BuildCollaborativeIndex(ratings, testCatalog(), opts)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestBuildCollaborativeIndex_UnratedSentinel(t *testing.T) {
	opts := DefaultCollabOptions()
	opts.Unrated = -1
	ci, err := BuildCollaborativeIndex(testRatings(), testCatalog(), opts)
	require.NoError(t, err)

	score, ok := ci.Score(1, 6)
	assert.False(t, ok)
	assert.Equal(t, -1.0, score)

	score, ok = ci.Score(42, 1)
	assert.False(t, ok)
	assert.Equal(t, -1.0, score)
}

func TestBuildCollaborativeIndex_ScoreRange(t *testing.T) {
	ratings := []model.Rating{{UserID: 1, ItemID: 1, Score: 9}}
	_, err := BuildCollaborativeIndex(ratings, testCatalog(), DefaultCollabOptions())
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	opts := DefaultCollabOptions()
	opts.MinScore, opts.MaxScore = 5, 1
	_, err = BuildCollaborativeIndex(nil, testCatalog(), opts)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestBuildCollaborativeIndex_UsersSorted(t *testing.T) {
	ratings := []model.Rating{
		{UserID: 7, ItemID: 1, Score: 3},
		{UserID: 2, ItemID: 2, Score: 3},
		{UserID: 5, ItemID: 1, Score: 3},
	}
	ci, err := BuildCollaborativeIndex(ratings, testCatalog(), DefaultCollabOptions())
	require.NoError(t, err)
	assert.Equal(t, []int{2, 5, 7}, ci.Users())
}

func TestCollabIndex_ConcurrentReaders(t *testing.T) {
	ci, err := BuildCollaborativeIndex(testRatings(), testCatalog(), DefaultCollabOptions())
	require.NoError(t, err)

	want, err := ci.RecommendForUser(1, 5)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := ci.RecommendForUser(1, 5)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}
