package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/tour-service/internal/domain"
	"github.com/spec-kit/tour-service/internal/events"
	"github.com/spec-kit/tour-service/internal/query"
	"github.com/spec-kit/tour-service/internal/repository"
	apperrors "github.com/spec-kit/tour-service/pkg/util"
)

// BookingInput carries a new booking. Price defaults to the tour price.
type BookingInput struct {
	TourID string
	UserID string
	Price  *float64
	Paid   *bool
}

// BookingService manages bookings.
type BookingService struct {
	bookings   repository.BookingRepository
	tours      repository.TourRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewBookingService creates the service.
func NewBookingService(bookings repository.BookingRepository, tours repository.TourRepository, users repository.UserRepository,
	dispatcher events.Dispatcher, logger *zap.Logger) *BookingService {
	return &BookingService{bookings: bookings, tours: tours, users: users, dispatcher: dispatcher, logger: logger}
}

// List shapes the booking listing with the request parameters.
func (s *BookingService) List(ctx context.Context, params query.Params) ([]repository.Document, error) {
	q, err := query.New(params).All().Build()
	if err != nil {
		return nil, err
	}
	return s.bookings.List(ctx, q)
}

// Get returns one booking.
func (s *BookingService) Get(ctx context.Context, id string) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

// Create books a seat for an existing user on a visible tour.
func (s *BookingService) Create(ctx context.Context, in BookingInput) (*domain.Booking, error) {
	tour, err := s.tours.GetByID(ctx, in.TourID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound(MsgNoTourForReview)
	}
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("No user found with that ID.")
		}
		return nil, err
	}

	booking := &domain.Booking{TourID: tour.ID, TourName: tour.Name, UserID: in.UserID, Price: tour.Price, Paid: true}
	if in.Price != nil {
		booking.Price = *in.Price
	}
	if in.Paid != nil {
		booking.Paid = *in.Paid
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		event := events.NewEvent(events.EventBookingCreated, booking.UserID, events.BookingCreatedPayload{
			BookingID: booking.ID, TourID: booking.TourID, Price: booking.Price,
		})
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("publish event", zap.Error(err))
		}
	}
	return booking, nil
}

// Delete removes a booking.
func (s *BookingService) Delete(ctx context.Context, id string) error {
	return s.bookings.Delete(ctx, id)
}

// ToursBookedBy lists the tours a user holds bookings for.
func (s *BookingService) ToursBookedBy(ctx context.Context, userID string) ([]domain.Tour, error) {
	ids, err := s.bookings.TourIDsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.tours.ListByIDs(ctx, ids)
}
