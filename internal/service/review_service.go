package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/tour-service/internal/domain"
	"github.com/spec-kit/tour-service/internal/query"
	"github.com/spec-kit/tour-service/internal/repository"
	apperrors "github.com/spec-kit/tour-service/pkg/util"
)

// Review messages.
const (
	MsgNoTourForReview  = "No tour found with that ID."
	MsgReviewNotOwned   = "You can only change your own reviews."
	MsgRatingOutOfRange = "Rating must be between 1 and 5."
	MsgReviewEmpty      = "Review can not be empty!"
)

// ReviewInput carries review fields; nil pointers are left unchanged on update.
type ReviewInput struct {
	Review *string
	Rating *int
}

// ReviewService manages reviews and keeps tour ratings current.
type ReviewService struct {
	reviews repository.ReviewRepository
	tours   repository.TourRepository
}

// NewReviewService creates the service.
func NewReviewService(reviews repository.ReviewRepository, tours repository.TourRepository) *ReviewService {
	return &ReviewService{reviews: reviews, tours: tours}
}

// List shapes the review listing, optionally scoped to one tour.
func (s *ReviewService) List(ctx context.Context, params query.Params, tourID string) ([]repository.Document, error) {
	q, err := query.New(params).All().Build()
	if err != nil {
		return nil, err
	}
	var scope []query.Condition
	if tourID != "" {
		scope = append(scope, query.Condition{Field: "tour", Op: query.OpEq, Value: tourID})
	}
	return s.reviews.List(ctx, q, scope...)
}

// Get returns one review.
func (s *ReviewService) Get(ctx context.Context, id string) (*domain.Review, error) {
	return s.reviews.GetByID(ctx, id)
}

// Create records the author's review of a tour. One review per user and tour.
func (s *ReviewService) Create(ctx context.Context, author *domain.User, tourID string, in ReviewInput) (*domain.Review, error) {
	if _, err := s.tours.GetByID(ctx, tourID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound(MsgNoTourForReview)
		}
		return nil, err
	}

	review := &domain.Review{TourID: tourID, UserID: author.ID, UserName: author.Name, UserPhoto: author.Photo}
	applyReview(review, in)
	if err := validateReview(review); err != nil {
		return nil, err
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, s.tours.RecomputeRatings(ctx, tourID)
}

// Update changes a review. Only its author or an admin may do so.
func (s *ReviewService) Update(ctx context.Context, actor *domain.User, id string, in ReviewInput) (*domain.Review, error) {
	review, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	applyReview(review, in)
	if err := validateReview(review); err != nil {
		return nil, err
	}
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, s.tours.RecomputeRatings(ctx, review.TourID)
}

// Delete removes a review. Only its author or an admin may do so.
func (s *ReviewService) Delete(ctx context.Context, actor *domain.User, id string) error {
	review, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}
	return s.tours.RecomputeRatings(ctx, review.TourID)
}

func (s *ReviewService) owned(ctx context.Context, actor *domain.User, id string) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && review.UserID != actor.ID {
		return nil, apperrors.NewForbidden(MsgReviewNotOwned)
	}
	return review, nil
}

func applyReview(r *domain.Review, in ReviewInput) {
	if in.Review != nil {
		r.Review = strings.TrimSpace(*in.Review)
	}
	if in.Rating != nil {
		r.Rating = *in.Rating
	}
}

func validateReview(r *domain.Review) error {
	if r.Review == "" {
		return apperrors.NewValidationError(MsgReviewEmpty, nil)
	}
	if r.Rating < 1 || r.Rating > 5 {
		return apperrors.NewValidationError(MsgRatingOutOfRange, nil)
	}
	return nil
}
