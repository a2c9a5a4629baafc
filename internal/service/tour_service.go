package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/spec-kit/tour-service/internal/domain"
	"github.com/spec-kit/tour-service/internal/query"
	"github.com/spec-kit/tour-service/internal/repository"
	apperrors "github.com/spec-kit/tour-service/pkg/util"
)

// TopCheapPreset is merged over the request for the top-5-cheap alias.
var TopCheapPreset = query.Params{
	query.KeyLimit:  "5",
	query.KeySort:   "-ratingsAverage,price",
	query.KeyFields: "name,price,ratingsAverage,summary,difficulty",
}

// TourInput carries tour fields; nil pointers are left unchanged on update.
type TourInput struct {
	Name          *string
	Duration      *int
	MaxGroupSize  *int
	Difficulty    *domain.Difficulty
	Price         *float64
	PriceDiscount *float64
	Summary       *string
	Description   *string
	ImageCover    *string
	Images        []string
	StartDates    []time.Time
	SecretTour    *bool
}

// TourDetail is a tour with its reviews.
type TourDetail struct {
	Tour    *domain.Tour
	Reviews []domain.Review
}

// TourService manages the tour catalogue.
type TourService struct {
	tours   repository.TourRepository
	reviews repository.ReviewRepository
}

// NewTourService creates the service.
func NewTourService(tours repository.TourRepository, reviews repository.ReviewRepository) *TourService {
	return &TourService{tours: tours, reviews: reviews}
}

// List shapes the catalogue listing with the request parameters.
func (s *TourService) List(ctx context.Context, params query.Params) ([]repository.Document, error) {
	q, err := query.New(params).All().Build()
	if err != nil {
		return nil, err
	}
	return s.tours.List(ctx, q)
}

// TopCheap lists the best rated, cheapest tours.
func (s *TourService) TopCheap(ctx context.Context, params query.Params) ([]repository.Document, error) {
	merged := params.Clone()
	for k, v := range TopCheapPreset {
		merged[k] = v
	}
	return s.List(ctx, merged)
}

// Overview returns every visible tour for the landing page.
func (s *TourService) Overview(ctx context.Context) ([]domain.Tour, error) {
	return s.tours.ListAll(ctx)
}

// Get returns a tour with its reviews.
func (s *TourService) Get(ctx context.Context, id string) (*TourDetail, error) {
	tour, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, tour)
}

// GetBySlug backs the tour page.
func (s *TourService) GetBySlug(ctx context.Context, slugValue string) (*TourDetail, error) {
	tour, err := s.tours.GetBySlug(ctx, slugValue)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, tour)
}

func (s *TourService) detail(ctx context.Context, tour *domain.Tour) (*TourDetail, error) {
	reviews, err := s.reviews.ListByTour(ctx, tour.ID)
	if err != nil {
		return nil, err
	}
	return &TourDetail{Tour: tour, Reviews: reviews}, nil
}

// Create adds a tour.
func (s *TourService) Create(ctx context.Context, in TourInput) (*domain.Tour, error) {
	tour := &domain.Tour{}
	applyTour(tour, in)
	if err := validateTour(tour); err != nil {
		return nil, err
	}
	if err := s.tours.Create(ctx, tour); err != nil {
		return nil, err
	}
	return tour, nil
}

// Update patches a tour.
func (s *TourService) Update(ctx context.Context, id string, in TourInput) (*domain.Tour, error) {
	tour, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyTour(tour, in)
	if err := validateTour(tour); err != nil {
		return nil, err
	}
	if err := s.tours.Update(ctx, tour); err != nil {
		return nil, err
	}
	return tour, nil
}

// Delete removes a tour.
func (s *TourService) Delete(ctx context.Context, id string) error {
	return s.tours.Delete(ctx, id)
}

func applyTour(t *domain.Tour, in TourInput) {
	if in.Name != nil {
		t.Name = strings.TrimSpace(*in.Name)
		t.Slug = slug.Make(t.Name)
	}
	if in.Duration != nil {
		t.Duration = *in.Duration
	}
	if in.MaxGroupSize != nil {
		t.MaxGroupSize = *in.MaxGroupSize
	}
	if in.Difficulty != nil {
		t.Difficulty = *in.Difficulty
	}
	if in.Price != nil {
		t.Price = *in.Price
	}
	if in.PriceDiscount != nil {
		t.PriceDiscount = in.PriceDiscount
	}
	if in.Summary != nil {
		t.Summary = strings.TrimSpace(*in.Summary)
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	if in.ImageCover != nil {
		t.ImageCover = *in.ImageCover
	}
	if in.Images != nil {
		t.Images = in.Images
	}
	if in.StartDates != nil {
		t.StartDates = in.StartDates
	}
	if in.SecretTour != nil {
		t.SecretTour = *in.SecretTour
	}
}

// validateTour checks the cross-field rules the request validator cannot see on a patch.
func validateTour(t *domain.Tour) error {
	details := map[string]any{}
	if n := len([]rune(t.Name)); n < 10 || n > 40 {
		details["name"] = "A tour name must have between 10 and 40 characters"
	}
	switch t.Difficulty {
	case domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyDifficult:
	default:
		details["difficulty"] = "Difficulty is either: easy, medium, difficult"
	}
	if t.PriceDiscount != nil && *t.PriceDiscount >= t.Price {
		details["priceDiscount"] = fmt.Sprintf("Discount price (%v) should be below regular price", *t.PriceDiscount)
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("Invalid input data.", details)
	}
	return nil
}
