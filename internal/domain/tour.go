package domain

import "time"

// Difficulty grades a tour.
type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyMedium    Difficulty = "medium"
	DifficultyDifficult Difficulty = "difficult"
)

// Tour is a bookable tour.
type Tour struct {
	ID              string
	Name            string
	Slug            string
	Duration        int
	MaxGroupSize    int
	Difficulty      Difficulty
	RatingsAverage  float64
	RatingsQuantity int
	Price           float64
	PriceDiscount   *float64
	Summary         string
	Description     string
	ImageCover      string
	Images          []string
	StartDates      []time.Time
	SecretTour      bool
	Version         int
	CreatedAt       time.Time
}

// DurationWeeks is derived from Duration in days.
func (t *Tour) DurationWeeks() float64 {
	return float64(t.Duration) / 7
}
