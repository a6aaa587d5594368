package recommend

import (
	"fmt"
	"sort"

	"MarketLens/internal/model"
)

// DuplicatePolicy decides how repeated ratings for one (user, item) pair combine.
type DuplicatePolicy string

const (
	// DuplicatesAverage keeps the mean of all scores for the pair.
	DuplicatesAverage DuplicatePolicy = "average"
	// DuplicatesLast keeps the score that appears last in the input.
	DuplicatesLast DuplicatePolicy = "last"
)

// CollabOptions tunes the collaborative index build.
type CollabOptions struct {
	MinScore int
	MaxScore int
	// Unrated fills matrix cells with no rating. The default 0 sits below
	// every valid score, so "unrated" weighs like a very low rating in the
	// similarity math.
	Unrated    float64
	Duplicates DuplicatePolicy
	Neighbors  int
	// ExcludeKnown drops items the query user already rated.
	ExcludeKnown bool
}

// DefaultCollabOptions returns scores in [1,5], unrated as 0, averaged
// duplicates, three neighbors and known items excluded.
func DefaultCollabOptions() CollabOptions {
	return CollabOptions{
		MinScore:     1,
		MaxScore:     5,
		Unrated:      0,
		Duplicates:   DuplicatesAverage,
		Neighbors:    3,
		ExcludeKnown: true,
	}
}

// CollabIndex recommends items from the ratings of similar users.
// It is immutable after BuildCollaborativeIndex and safe for concurrent readers.
type CollabIndex struct {
	opts    CollabOptions
	users   []int
	userRow map[int]int
	itemIDs []int
	matrix  [][]float64
	rated   [][]bool
	sim     [][]float64
	catalog map[int]model.Item
}

// BuildCollaborativeIndex builds the dense user-by-item matrix and the
// user-user cosine similarity matrix. Users and items are ordered by ascending id.
func BuildCollaborativeIndex(ratings []model.Rating, items []model.Item, opts CollabOptions) (*CollabIndex, error) {
	if opts.MinScore > opts.MaxScore {
		return nil, fmt.Errorf("score range [%d,%d]: %w", opts.MinScore, opts.MaxScore, model.ErrInvalidInput)
	}
	switch opts.Duplicates {
	case "":
		opts.Duplicates = DuplicatesAverage
	case DuplicatesAverage, DuplicatesLast:
	default:
		return nil, fmt.Errorf("duplicate policy %q: %w", opts.Duplicates, model.ErrInvalidInput)
	}
	if opts.Neighbors <= 0 {
		opts.Neighbors = 3
	}

	catalog := make(map[int]model.Item, len(items))
	for _, it := range items {
		if _, dup := catalog[it.ID]; dup {
			return nil, fmt.Errorf("duplicate item id %d: %w", it.ID, model.ErrInvalidInput)
		}
		catalog[it.ID] = it
	}

	type cell struct {
		sum   float64
		count int
		last  float64
	}
	cells := map[[2]int]*cell{}
	userSet := map[int]struct{}{}
	itemSet := map[int]struct{}{}
	for i, r := range ratings {
		if r.Score < opts.MinScore || r.Score > opts.MaxScore {
			return nil, fmt.Errorf("rating %d score %d outside [%d,%d]: %w",
				i, r.Score, opts.MinScore, opts.MaxScore, model.ErrInvalidInput)
		}
		key := [2]int{r.UserID, r.ItemID}
		c, ok := cells[key]
		if !ok {
			c = &cell{}
			cells[key] = c
		}
		c.sum += float64(r.Score)
		c.count++
		c.last = float64(r.Score)
		userSet[r.UserID] = struct{}{}
		itemSet[r.ItemID] = struct{}{}
	}

	users := sortedKeys(userSet)
	itemIDs := sortedKeys(itemSet)
	userRow := make(map[int]int, len(users))
	for i, u := range users {
		userRow[u] = i
	}
	itemCol := make(map[int]int, len(itemIDs))
	for j, it := range itemIDs {
		itemCol[it] = j
	}

	matrix := make([][]float64, len(users))
	rated := make([][]bool, len(users))
	for i := range matrix {
		matrix[i] = make([]float64, len(itemIDs))
		rated[i] = make([]bool, len(itemIDs))
		for j := range matrix[i] {
			matrix[i][j] = opts.Unrated
		}
	}
	for key, c := range cells {
		i, j := userRow[key[0]], itemCol[key[1]]
		switch opts.Duplicates {
		case DuplicatesLast:
			matrix[i][j] = c.last
		default:
			matrix[i][j] = c.sum / float64(c.count)
		}
		rated[i][j] = true
	}

	return &CollabIndex{
		opts:    opts,
		users:   users,
		userRow: userRow,
		itemIDs: itemIDs,
		matrix:  matrix,
		rated:   rated,
		sim:     similarityMatrix(matrix),
		catalog: catalog,
	}, nil
}

// Users returns the user ids in matrix row order.
func (ci *CollabIndex) Users() []int {
	out := make([]int, len(ci.users))
	copy(out, ci.users)
	return out
}

// Score returns the matrix cell for a (user, item) pair and whether it holds a real rating.
func (ci *CollabIndex) Score(userID, itemID int) (float64, bool) {
	i, ok := ci.userRow[userID]
	if !ok {
		return ci.opts.Unrated, false
	}
	j := sort.SearchInts(ci.itemIDs, itemID)
	if j == len(ci.itemIDs) || ci.itemIDs[j] != itemID {
		return ci.opts.Unrated, false
	}
	return ci.matrix[i][j], ci.rated[i][j]
}

// RecommendForUser unions the top rated items of the most similar users and
// returns at most topN catalog items ascending by id. An unknown user yields
// an empty result.
func (ci *CollabIndex) RecommendForUser(userID, topN int) ([]model.Item, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("top n %d: %w", topN, model.ErrInvalidInput)
	}
	row, ok := ci.userRow[userID]
	if !ok {
		return []model.Item{}, nil
	}

	neighbors := make([]int, 0, len(ci.users)-1)
	for i := range ci.users {
		if i != row {
			neighbors = append(neighbors, i)
		}
	}
	sort.SliceStable(neighbors, func(a, b int) bool {
		return ci.sim[row][neighbors[a]] > ci.sim[row][neighbors[b]]
	})
	if len(neighbors) > ci.opts.Neighbors {
		neighbors = neighbors[:ci.opts.Neighbors]
	}

	picked := map[int]struct{}{}
	for _, n := range neighbors {
		for _, j := range ci.topRated(n, topN) {
			if ci.opts.ExcludeKnown && ci.rated[row][j] {
				continue
			}
			picked[ci.itemIDs[j]] = struct{}{}
		}
	}

	out := []model.Item{}
	for _, id := range sortedKeys(picked) {
		it, ok := ci.catalog[id]
		if !ok {
			continue
		}
		out = append(out, it)
		if len(out) == topN {
			break
		}
	}
	return out, nil
}

// meanRating averages the real ratings in an item's column; 0 when nobody rated it.
func (ci *CollabIndex) meanRating(itemID int) float64 {
	j := sort.SearchInts(ci.itemIDs, itemID)
	if j == len(ci.itemIDs) || ci.itemIDs[j] != itemID {
		return 0
	}
	var sum float64
	var n int
	for i := range ci.users {
		if ci.rated[i][j] {
			sum += ci.matrix[i][j]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// topRated returns the column indexes of a user's n highest rated items,
// ties in ascending item id.
func (ci *CollabIndex) topRated(row, n int) []int {
	cols := make([]int, 0, len(ci.itemIDs))
	for j, ok := range ci.rated[row] {
		if ok {
			cols = append(cols, j)
		}
	}
	sort.SliceStable(cols, func(a, b int) bool {
		return ci.matrix[row][cols[a]] > ci.matrix[row][cols[b]]
	})
	if len(cols) > n {
		cols = cols[:n]
	}
	return cols
}

func sortedKeys(set map[int]struct{}) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
