package domain

import "time"

// Review is a user's rating of a tour.
type Review struct {
	ID        string
	Review    string
	Rating    int
	TourID    string
	UserID    string
	UserName  string
	UserPhoto string
	CreatedAt time.Time
}
