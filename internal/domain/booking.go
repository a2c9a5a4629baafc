package domain

import "time"

// Booking records a paid seat on a tour.
type Booking struct {
	ID        string
	TourID    string
	TourName  string
	UserID    string
	Price     float64
	Paid      bool
	CreatedAt time.Time
}
