package dto

import (
	"time"

	"github.com/spec-kit/tour-service/internal/domain"
)

// CreateTourRequest payload. Cross-field rules such as the discount bound are checked by
// the service so they also hold on patches.
type CreateTourRequest struct {
	Name          *string     `json:"name" validate:"required,min=10,max=40"`
	Duration      *int        `json:"duration" validate:"required,gt=0"`
	MaxGroupSize  *int        `json:"maxGroupSize" validate:"required,gt=0"`
	Difficulty    *string     `json:"difficulty" validate:"required,oneof=easy medium difficult"`
	Price         *float64    `json:"price" validate:"required,gt=0"`
	PriceDiscount *float64    `json:"priceDiscount" validate:"omitempty,gt=0"`
	Summary       *string     `json:"summary" validate:"required"`
	Description   *string     `json:"description"`
	ImageCover    *string     `json:"imageCover" validate:"required"`
	Images        []string    `json:"images"`
	StartDates    []time.Time `json:"startDates"`
	SecretTour    *bool       `json:"secretTour"`
}

// UpdateTourRequest payload; absent fields are left unchanged.
type UpdateTourRequest struct {
	Name          *string     `json:"name" validate:"omitempty,min=10,max=40"`
	Duration      *int        `json:"duration" validate:"omitempty,gt=0"`
	MaxGroupSize  *int        `json:"maxGroupSize" validate:"omitempty,gt=0"`
	Difficulty    *string     `json:"difficulty" validate:"omitempty,oneof=easy medium difficult"`
	Price         *float64    `json:"price" validate:"omitempty,gt=0"`
	PriceDiscount *float64    `json:"priceDiscount" validate:"omitempty,gt=0"`
	Summary       *string     `json:"summary"`
	Description   *string     `json:"description"`
	ImageCover    *string     `json:"imageCover"`
	Images        []string    `json:"images"`
	StartDates    []time.Time `json:"startDates"`
	SecretTour    *bool       `json:"secretTour"`
}

// TourResponse is the full view of a tour.
type TourResponse struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Slug            string            `json:"slug"`
	Duration        int               `json:"duration"`
	DurationWeeks   float64           `json:"durationWeeks"`
	MaxGroupSize    int               `json:"maxGroupSize"`
	Difficulty      domain.Difficulty `json:"difficulty"`
	RatingsAverage  float64           `json:"ratingsAverage"`
	RatingsQuantity int               `json:"ratingsQuantity"`
	Price           float64           `json:"price"`
	PriceDiscount   *float64          `json:"priceDiscount,omitempty"`
	Summary         string            `json:"summary"`
	Description     string            `json:"description,omitempty"`
	ImageCover      string            `json:"imageCover"`
	Images          []string          `json:"images"`
	StartDates      []time.Time       `json:"startDates"`
	CreatedAt       time.Time         `json:"createdAt"`
	Reviews         []ReviewResponse  `json:"reviews,omitempty"`
}

// NewTourResponse maps a tour and, when given, its reviews.
func NewTourResponse(t *domain.Tour, reviews []domain.Review) TourResponse {
	resp := TourResponse{
		ID:              t.ID,
		Name:            t.Name,
		Slug:            t.Slug,
		Duration:        t.Duration,
		DurationWeeks:   t.DurationWeeks(),
		MaxGroupSize:    t.MaxGroupSize,
		Difficulty:      t.Difficulty,
		RatingsAverage:  t.RatingsAverage,
		RatingsQuantity: t.RatingsQuantity,
		Price:           t.Price,
		PriceDiscount:   t.PriceDiscount,
		Summary:         t.Summary,
		Description:     t.Description,
		ImageCover:      t.ImageCover,
		Images:          t.Images,
		StartDates:      t.StartDates,
		CreatedAt:       t.CreatedAt,
	}
	if resp.Images == nil {
		resp.Images = []string{}
	}
	if resp.StartDates == nil {
		resp.StartDates = []time.Time{}
	}
	for i := range reviews {
		resp.Reviews = append(resp.Reviews, NewReviewResponse(&reviews[i]))
	}
	return resp
}
