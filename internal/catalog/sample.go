package catalog

import (
	"math/rand/v2"

	"MarketLens/internal/model"
)

var sampleProducts = []struct {
	name     string
	category string
}{
	{"Laptop", "Electronics"},
	{"Phone", "Electronics"},
	{"Headphones", "Electronics"},
	{"Camera", "Electronics"},
	{"Smartwatch", "Wearable"},
	{"Tablet", "Electronics"},
	{"Bluetooth Speaker", "Electronics"},
	{"Gaming Console", "Gaming"},
	{"TV", "Electronics"},
	{"Microwave", "Appliance"},
	{"Refrigerator", "Appliance"},
	{"Washing Machine", "Appliance"},
	{"Air Conditioner", "Appliance"},
	{"Oven", "Appliance"},
	{"Mixer Grinder", "Appliance"},
	{"Shoes", "Fashion"},
	{"Backpack", "Fashion"},
	{"Sunglasses", "Fashion"},
	{"Wrist Watch", "Fashion"},
	{"Jacket", "Fashion"},
}

const (
	sampleUsers       = 10
	sampleRatingsEach = 8
	sampleMinScore    = 2
	sampleMaxScore    = 5
)

// Sample returns the 20-product demo catalog with ratings from 10 users,
// each scoring 8 distinct products in [2,5]. The same seed always yields
// the same ratings.
func Sample(seed uint64) *Catalog {
	items := make([]model.Item, len(sampleProducts))
	for i, p := range sampleProducts {
		items[i] = model.Item{ID: i + 1, Name: p.name, Category: p.category}
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	ratings := make([]model.Rating, 0, sampleUsers*sampleRatingsEach)
	for user := 1; user <= sampleUsers; user++ {
		perm := rng.Perm(len(items))
		for _, idx := range perm[:sampleRatingsEach] {
			ratings = append(ratings, model.Rating{
				UserID: user,
				ItemID: items[idx].ID,
				Score:  sampleMinScore + rng.IntN(sampleMaxScore-sampleMinScore+1),
			})
		}
	}
	return &Catalog{Items: items, Ratings: ratings}
}
