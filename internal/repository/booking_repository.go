package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/tour-service/internal/domain"
	"github.com/spec-kit/tour-service/internal/query"
)

// BookingSchema lists bookings with the tour name populated.
var BookingSchema = query.NewSchema("bookings b JOIN tours t ON t.id = b.tour_id", []query.Field{
	{Name: "id", Column: "b.id", Kind: query.KindUUID},
	{Name: "tour", Column: "b.tour_id", Kind: query.KindUUID},
	{Name: "tourName", Column: "t.name", Kind: query.KindText},
	{Name: "user", Column: "b.user_id", Kind: query.KindUUID},
	{Name: "price", Column: "b.price", Kind: query.KindFloat},
	{Name: "paid", Column: "b.paid", Kind: query.KindBool},
	{Name: "createdAt", Column: "b.created_at", Kind: query.KindTime},
	{Name: "__v", Column: "b.version", Kind: query.KindInt},
}).WithBookkeeping("__v")

// BookingRepository defines persistence access for bookings.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	TourIDsForUser(ctx context.Context, userID string) ([]string, error)
	List(ctx context.Context, q query.Query) ([]Document, error)
}

type bookingRepository struct {
	pool *pgxpool.Pool
}

// NewBookingRepository returns a Postgres-backed implementation.
func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

func (r *bookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	const query = `
        INSERT INTO bookings (tour_id, user_id, price, paid)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		booking.TourID,
		booking.UserID,
		booking.Price,
		booking.Paid,
	).Scan(&booking.ID, &booking.CreatedAt)
}

func (r *bookingRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	const query = `
        SELECT b.id, b.tour_id, t.name, b.user_id, b.price, b.paid, b.created_at
        FROM bookings b JOIN tours t ON t.id = b.tour_id
        WHERE b.id=$1`

	var booking domain.Booking
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.TourID,
		&booking.TourName,
		&booking.UserID,
		&booking.Price,
		&booking.Paid,
		&booking.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) TourIDsForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT tour_id::text FROM bookings WHERE user_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *bookingRepository) List(ctx context.Context, q query.Query) ([]Document, error) {
	return listDocuments(ctx, r.pool, BookingSchema, q)
}
