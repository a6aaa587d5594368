package model

// Item is a catalog entry. IDs are unique within a catalog.
type Item struct {
	ID         int    `yaml:"id" json:"id"`
	Name       string `yaml:"name" json:"name"`
	Category   string `yaml:"category" json:"category"`
	Attributes string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

// Text returns the concatenated text attributes used for content similarity.
func (it Item) Text() string {
	text := it.Name + " " + it.Category
	if it.Attributes != "" {
		text += " " + it.Attributes
	}
	return text
}

// Rating is one user's score for one item.
type Rating struct {
	UserID int `yaml:"user_id" json:"user_id"`
	ItemID int `yaml:"item_id" json:"item_id"`
	Score  int `yaml:"score" json:"score"`
}

// Recommendation pairs an item with its ranking score.
type Recommendation struct {
	Item  Item
	Score float64
}
