package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/tour-service/internal/domain"
	"github.com/spec-kit/tour-service/internal/query"
)

// TourSchema is the listable surface of tours. Secret tours are never matched.
var TourSchema = query.NewSchema("tours", []query.Field{
	{Name: "id", Column: "id", Kind: query.KindUUID},
	{Name: "name", Column: "name", Kind: query.KindText},
	{Name: "slug", Column: "slug", Kind: query.KindText},
	{Name: "duration", Column: "duration", Kind: query.KindInt},
	{Name: "durationWeeks", Column: "duration::float8 / 7", Kind: query.KindFloat},
	{Name: "maxGroupSize", Column: "max_group_size", Kind: query.KindInt},
	{Name: "difficulty", Column: "difficulty", Kind: query.KindText},
	{Name: "ratingsAverage", Column: "ratings_average", Kind: query.KindFloat},
	{Name: "ratingsQuantity", Column: "ratings_quantity", Kind: query.KindInt},
	{Name: "price", Column: "price", Kind: query.KindFloat},
	{Name: "priceDiscount", Column: "price_discount", Kind: query.KindFloat},
	{Name: "summary", Column: "summary", Kind: query.KindText},
	{Name: "description", Column: "description", Kind: query.KindText},
	{Name: "imageCover", Column: "image_cover", Kind: query.KindText},
	{Name: "images", Column: "images", Kind: query.KindTextArray},
	{Name: "startDates", Column: "start_dates", Kind: query.KindTimeArray},
	{Name: "createdAt", Column: "created_at", Kind: query.KindTime},
	{Name: "__v", Column: "version", Kind: query.KindInt},
}).WithBase("secret_tour = FALSE").WithBookkeeping("__v")

// DefaultRatingsAverage applies to tours without reviews.
const DefaultRatingsAverage = 4.5

// TourRepository defines persistence access for tours.
type TourRepository interface {
	Create(ctx context.Context, tour *domain.Tour) error
	Update(ctx context.Context, tour *domain.Tour) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Tour, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Tour, error)
	ListAll(ctx context.Context) ([]domain.Tour, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Tour, error)
	List(ctx context.Context, q query.Query) ([]Document, error)
	RecomputeRatings(ctx context.Context, tourID string) error
}

type tourRepository struct {
	pool *pgxpool.Pool
}

// NewTourRepository returns a Postgres-backed implementation.
func NewTourRepository(pool *pgxpool.Pool) TourRepository {
	return &tourRepository{pool: pool}
}

const tourColumns = `id, name, slug, duration, max_group_size, difficulty, ratings_average,
        ratings_quantity, price, price_discount, summary, description, image_cover, images,
        start_dates, secret_tour, version, created_at`

func (r *tourRepository) Create(ctx context.Context, tour *domain.Tour) error {
	const query = `
        INSERT INTO tours (name, slug, duration, max_group_size, difficulty, price, price_discount,
            summary, description, image_cover, images, start_dates, secret_tour)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING id, ratings_average, ratings_quantity, version, created_at`

	return r.pool.QueryRow(ctx, query,
		tour.Name,
		tour.Slug,
		tour.Duration,
		tour.MaxGroupSize,
		string(tour.Difficulty),
		tour.Price,
		tour.PriceDiscount,
		tour.Summary,
		tour.Description,
		tour.ImageCover,
		nonNilStrings(tour.Images),
		nonNilTimes(tour.StartDates),
		tour.SecretTour,
	).Scan(&tour.ID, &tour.RatingsAverage, &tour.RatingsQuantity, &tour.Version, &tour.CreatedAt)
}

func (r *tourRepository) Update(ctx context.Context, tour *domain.Tour) error {
	const query = `
        UPDATE tours SET name=$1, slug=$2, duration=$3, max_group_size=$4, difficulty=$5,
            price=$6, price_discount=$7, summary=$8, description=$9, image_cover=$10,
            images=$11, start_dates=$12, secret_tour=$13, version=version+1
        WHERE id=$14
        RETURNING version`

	return r.pool.QueryRow(ctx, query,
		tour.Name,
		tour.Slug,
		tour.Duration,
		tour.MaxGroupSize,
		string(tour.Difficulty),
		tour.Price,
		tour.PriceDiscount,
		tour.Summary,
		tour.Description,
		tour.ImageCover,
		nonNilStrings(tour.Images),
		nonNilTimes(tour.StartDates),
		tour.SecretTour,
		tour.ID,
	).Scan(&tour.Version)
}

func (r *tourRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tours WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *tourRepository) GetByID(ctx context.Context, id string) (*domain.Tour, error) {
	return r.fetchSingle(ctx, "id=$1", id)
}

func (r *tourRepository) GetBySlug(ctx context.Context, slug string) (*domain.Tour, error) {
	return r.fetchSingle(ctx, "slug=$1", slug)
}

func (r *tourRepository) ListAll(ctx context.Context) ([]domain.Tour, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+tourColumns+` FROM tours WHERE secret_tour = FALSE ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTours(rows)
}

func (r *tourRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Tour, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+tourColumns+` FROM tours WHERE secret_tour = FALSE AND id = ANY($1::uuid[]) ORDER BY created_at DESC, id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTours(rows)
}

func (r *tourRepository) List(ctx context.Context, q query.Query) ([]Document, error) {
	return listDocuments(ctx, r.pool, TourSchema, q)
}

// RecomputeRatings refreshes the tour's average (rounded to one decimal) and count from
// its reviews. A tour without reviews falls back to the default average.
func (r *tourRepository) RecomputeRatings(ctx context.Context, tourID string) error {
	const query = `
        UPDATE tours t SET
            ratings_quantity = s.n,
            ratings_average = COALESCE(ROUND(s.avg::numeric, 1)::float8, $2)
        FROM (SELECT COUNT(*) AS n, AVG(rating) AS avg FROM reviews WHERE tour_id=$1) s
        WHERE t.id=$1`
	_, err := r.pool.Exec(ctx, query, tourID, DefaultRatingsAverage)
	return err
}

func (r *tourRepository) fetchSingle(ctx context.Context, where string, arg any) (*domain.Tour, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+tourColumns+` FROM tours WHERE secret_tour = FALSE AND `+where, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tours, err := scanTours(rows)
	if err != nil {
		return nil, err
	}
	if len(tours) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &tours[0], nil
}

func scanTours(rows pgx.Rows) ([]domain.Tour, error) {
	var result []domain.Tour
	for rows.Next() {
		var (
			tour       domain.Tour
			difficulty string
		)
		if err := rows.Scan(
			&tour.ID,
			&tour.Name,
			&tour.Slug,
			&tour.Duration,
			&tour.MaxGroupSize,
			&difficulty,
			&tour.RatingsAverage,
			&tour.RatingsQuantity,
			&tour.Price,
			&tour.PriceDiscount,
			&tour.Summary,
			&tour.Description,
			&tour.ImageCover,
			&tour.Images,
			&tour.StartDates,
			&tour.SecretTour,
			&tour.Version,
			&tour.CreatedAt,
		); err != nil {
			return nil, err
		}
		tour.Difficulty = domain.Difficulty(difficulty)
		result = append(result, tour)
	}
	return result, rows.Err()
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilTimes(t []time.Time) []time.Time {
	if t == nil {
		return []time.Time{}
	}
	return t
}
