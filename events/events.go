// Package events defines the geolocated event record the engine clusters,
// plus fixture generation and snapshot persistence.
package events

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/conorlee8/Eppy-Events-sub001/geo"
)

// Category is the closed set of event categories.
type Category uint8

const (
	CategoryMusic Category = iota
	CategoryFood
	CategoryArt
	CategorySports
	CategoryNightlife
	CategoryTheater
	CategoryMarket
	CategoryFestival
	numCategories
)

var categoryNames = [...]string{
	"music", "food", "art", "sports", "nightlife", "theater", "market", "festival",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// Categories returns all categories in declaration order.
func Categories() []Category {
	cats := make([]Category, numCategories)
	for i := range cats {
		cats[i] = Category(i)
	}
	return cats
}

// Event is one geolocated event. Records are immutable for the duration of a
// clustering pass; the data source guarantees finite, valid coordinates.
type Event struct {
	ID         uint32
	Position   geo.Point
	Category   Category
	Popularity float64
	StartTime  time.Time
	EndTime    time.Time
	PriceMin   float32
	PriceMax   float32
}

// GenerateTestEvents creates n random events inside bounds. Popularity is
// drawn so that most events are quiet and a few are very popular, matching
// the observed 0-200 range.
func GenerateTestEvents(n int, bounds geo.Bounds) []Event {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return generateEvents(n, bounds, rng)
}

// GenerateSeededEvents is GenerateTestEvents with a fixed seed, for
// reproducible profiling and tests.
func GenerateSeededEvents(n int, bounds geo.Bounds, seed int64) []Event {
	rng := rand.New(rand.NewSource(seed))
	return generateEvents(n, bounds, rng)
}

func generateEvents(n int, bounds geo.Bounds, rng *rand.Rand) []Event {
	evts := make([]Event, n)
	now := time.Now()

	for i := 0; i < n; i++ {
		start := now.Add(time.Duration(rng.Intn(7*24)) * time.Hour)
		priceMin := rng.Float32() * 50

		// Squaring the draw skews popularity low with a long tail.
		u := rng.Float64()
		popularity := u * u * 200

		evts[i] = Event{
			ID: uint32(i + 1),
			Position: geo.Point{
				Lat: bounds.South + rng.Float64()*(bounds.North-bounds.South),
				Lng: bounds.West + rng.Float64()*(bounds.East-bounds.West),
			},
			Category:   Category(rng.Intn(int(numCategories))),
			Popularity: popularity,
			StartTime:  start,
			EndTime:    start.Add(time.Duration(1+rng.Intn(5)) * time.Hour),
			PriceMin:   priceMin,
			PriceMax:   priceMin + rng.Float32()*100,
		}
	}

	return evts
}
