package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/tour-service/internal/domain"
	"github.com/spec-kit/tour-service/internal/query"
)

// ReviewSchema lists reviews with their author populated.
var ReviewSchema = query.NewSchema("reviews r JOIN users u ON u.id = r.user_id", []query.Field{
	{Name: "id", Column: "r.id", Kind: query.KindUUID},
	{Name: "review", Column: "r.review", Kind: query.KindText},
	{Name: "rating", Column: "r.rating", Kind: query.KindInt},
	{Name: "tour", Column: "r.tour_id", Kind: query.KindUUID},
	{Name: "user", Column: "r.user_id", Kind: query.KindUUID},
	{Name: "userName", Column: "u.name", Kind: query.KindText},
	{Name: "userPhoto", Column: "u.photo", Kind: query.KindText},
	{Name: "createdAt", Column: "r.created_at", Kind: query.KindTime},
	{Name: "__v", Column: "r.version", Kind: query.KindInt},
}).WithBookkeeping("__v")

// ReviewRepository defines persistence access for reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	ListByTour(ctx context.Context, tourID string) ([]domain.Review, error)
	List(ctx context.Context, q query.Query, scope ...query.Condition) ([]Document, error)
}

type reviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository returns a Postgres-backed implementation.
func NewReviewRepository(pool *pgxpool.Pool) ReviewRepository {
	return &reviewRepository{pool: pool}
}

const reviewSelect = `
        SELECT r.id, r.review, r.rating, r.tour_id, r.user_id, u.name, u.photo, r.created_at
        FROM reviews r JOIN users u ON u.id = r.user_id`

func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	const query = `
        INSERT INTO reviews (review, rating, tour_id, user_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		review.Review,
		review.Rating,
		review.TourID,
		review.UserID,
	).Scan(&review.ID, &review.CreatedAt)
}

func (r *reviewRepository) Update(ctx context.Context, review *domain.Review) error {
	const query = `UPDATE reviews SET review=$1, rating=$2, version=version+1 WHERE id=$3`

	cmd, err := r.pool.Exec(ctx, query, review.Review, review.Rating, review.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	rows, err := r.pool.Query(ctx, reviewSelect+` WHERE r.id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reviews, err := scanReviews(rows)
	if err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &reviews[0], nil
}

func (r *reviewRepository) ListByTour(ctx context.Context, tourID string) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, reviewSelect+` WHERE r.tour_id=$1 ORDER BY r.created_at DESC`, tourID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReviews(rows)
}

func (r *reviewRepository) List(ctx context.Context, q query.Query, scope ...query.Condition) ([]Document, error) {
	return listDocuments(ctx, r.pool, ReviewSchema, q, scope...)
}

func scanReviews(rows pgx.Rows) ([]domain.Review, error) {
	var result []domain.Review
	for rows.Next() {
		var review domain.Review
		if err := rows.Scan(
			&review.ID,
			&review.Review,
			&review.Rating,
			&review.TourID,
			&review.UserID,
			&review.UserName,
			&review.UserPhoto,
			&review.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, review)
	}
	return result, rows.Err()
}
