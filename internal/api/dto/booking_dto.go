package dto

import (
	"time"

	"github.com/spec-kit/tour-service/internal/domain"
)

// CreateBookingRequest payload. User defaults to the caller.
type CreateBookingRequest struct {
	Tour  string   `json:"tour" validate:"required,uuid"`
	User  string   `json:"user" validate:"omitempty,uuid"`
	Price *float64 `json:"price" validate:"omitempty,gt=0"`
	Paid  *bool    `json:"paid"`
}

// BookingResponse view.
type BookingResponse struct {
	ID        string    `json:"id"`
	Tour      string    `json:"tour"`
	TourName  string    `json:"tourName,omitempty"`
	User      string    `json:"user"`
	Price     float64   `json:"price"`
	Paid      bool      `json:"paid"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:        b.ID,
		Tour:      b.TourID,
		TourName:  b.TourName,
		User:      b.UserID,
		Price:     b.Price,
		Paid:      b.Paid,
		CreatedAt: b.CreatedAt,
	}
}
