package dto

import (
	"time"

	"github.com/spec-kit/tour-service/internal/domain"
)

// CreateReviewRequest payload. Tour may be omitted on the nested route.
type CreateReviewRequest struct {
	Review string `json:"review" validate:"required"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Tour   string `json:"tour" validate:"omitempty,uuid"`
}

// UpdateReviewRequest payload.
type UpdateReviewRequest struct {
	Review *string `json:"review"`
	Rating *int    `json:"rating" validate:"omitempty,min=1,max=5"`
}

// ReviewResponse shows a review with its author.
type ReviewResponse struct {
	ID        string       `json:"id"`
	Review    string       `json:"review"`
	Rating    int          `json:"rating"`
	Tour      string       `json:"tour"`
	User      ReviewAuthor `json:"user"`
	CreatedAt time.Time    `json:"createdAt"`
}

// ReviewAuthor is the populated author of a review.
type ReviewAuthor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

func NewReviewResponse(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		Review:    r.Review,
		Rating:    r.Rating,
		Tour:      r.TourID,
		User:      ReviewAuthor{ID: r.UserID, Name: r.UserName, Photo: r.UserPhoto},
		CreatedAt: r.CreatedAt,
	}
}
