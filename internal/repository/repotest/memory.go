// Package repotest provides in-memory repositories for tests. They keep the Postgres
// behaviour callers rely on: pgx.ErrNoRows for misses, unique violations as *pgconn.PgError,
// inactive users and secret tours hidden. List calls validate the query against the real
// schema but only apply pagination, not filtering or ordering.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/tour-service/internal/domain"
	"github.com/spec-kit/tour-service/internal/query"
	"github.com/spec-kit/tour-service/internal/repository"
)

const uniqueViolation = "23505"

func duplicate(constraint string) error {
	return &pgconn.PgError{Code: uniqueViolation, ConstraintName: constraint}
}

func page[T any](items []T, q query.Query) []T {
	if q.Skip >= len(items) {
		return nil
	}
	items = items[q.Skip:]
	if q.Limit > 0 && q.Limit < len(items) {
		items = items[:q.Limit]
	}
	return items
}

// Store bundles the four repositories over shared state so joins (review authors,
// booking tour names, ratings) behave.
type Store struct {
	mu       sync.Mutex
	users    map[string]domain.User
	tours    map[string]domain.Tour
	reviews  map[string]domain.Review
	bookings map[string]domain.Booking
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:    map[string]domain.User{},
		tours:    map[string]domain.Tour{},
		reviews:  map[string]domain.Review{},
		bookings: map[string]domain.Booking{},
		now:      time.Now,
	}
}

func (s *Store) Users() repository.UserRepository       { return &users{s} }
func (s *Store) Tours() repository.TourRepository       { return &tours{s} }
func (s *Store) Reviews() repository.ReviewRepository   { return &reviews{s} }
func (s *Store) Bookings() repository.BookingRepository { return &bookings{s} }

type users struct{ s *Store }

func (r *users) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return duplicate("users_email_key")
		}
	}
	u.ID = uuid.NewString()
	if u.Photo == "" {
		u.Photo = domain.DefaultPhoto
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	u.Active = true
	u.CreatedAt = r.s.now()
	r.s.users[u.ID] = *u
	return nil
}

func (r *users) Update(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[u.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Email = strings.ToLower(u.Email)
	for id, existing := range r.s.users {
		if id != u.ID && existing.Email == u.Email {
			return duplicate("users_email_key")
		}
	}
	next := *u
	if next.PasswordHash == "" {
		next.PasswordHash = stored.PasswordHash
	}
	next.Version = stored.Version + 1
	u.Version = next.Version
	r.s.users[u.ID] = next
	return nil
}

func (r *users) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.users, id)
	return nil
}

func (r *users) find(match func(domain.User) bool, withPassword bool) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Active && match(u) {
			if !withPassword {
				u.PasswordHash = ""
			}
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *users) GetByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ID == id }, false)
}

func (r *users) GetByIDWithPassword(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ID == id }, true)
}

func (r *users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(email)
	return r.find(func(u domain.User) bool { return u.Email == email }, false)
}

func (r *users) GetByEmailWithPassword(_ context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(email)
	return r.find(func(u domain.User) bool { return u.Email == email }, true)
}

func (r *users) GetByResetToken(_ context.Context, hashed string, now time.Time) (*domain.User, error) {
	return r.find(func(u domain.User) bool {
		return u.PasswordResetToken != nil && *u.PasswordResetToken == hashed &&
			u.PasswordResetExpires != nil && u.PasswordResetExpires.After(now)
	}, false)
}

func (r *users) List(_ context.Context, q query.Query) ([]repository.Document, error) {
	if _, err := repository.UserSchema.Select(q); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var docs []repository.Document
	for _, u := range r.s.users {
		if !u.Active {
			continue
		}
		docs = append(docs, repository.Document{
			"id": u.ID, "name": u.Name, "email": u.Email, "photo": u.Photo,
			"role": string(u.Role), "createdAt": u.CreatedAt,
		})
	}
	sortDocs(docs)
	return page(docs, q), nil
}

type tours struct{ s *Store }

func (r *tours) Create(_ context.Context, t *domain.Tour) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.tours {
		if existing.Name == t.Name {
			return duplicate("tours_name_key")
		}
	}
	t.ID = uuid.NewString()
	if t.RatingsAverage == 0 {
		t.RatingsAverage = repository.DefaultRatingsAverage
	}
	t.CreatedAt = r.s.now()
	r.s.tours[t.ID] = *t
	return nil
}

func (r *tours) Update(_ context.Context, t *domain.Tour) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.tours[t.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	for id, existing := range r.s.tours {
		if id != t.ID && existing.Name == t.Name {
			return duplicate("tours_name_key")
		}
	}
	t.Version = stored.Version + 1
	r.s.tours[t.ID] = *t
	return nil
}

func (r *tours) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tours[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.tours, id)
	for rid, rv := range r.s.reviews {
		if rv.TourID == id {
			delete(r.s.reviews, rid)
		}
	}
	return nil
}

func (r *tours) find(match func(domain.Tour) bool) (*domain.Tour, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tours {
		if !t.SecretTour && match(t) {
			return &t, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *tours) GetByID(_ context.Context, id string) (*domain.Tour, error) {
	return r.find(func(t domain.Tour) bool { return t.ID == id })
}

func (r *tours) GetBySlug(_ context.Context, slug string) (*domain.Tour, error) {
	return r.find(func(t domain.Tour) bool { return t.Slug == slug })
}

func (r *tours) visible(keep func(domain.Tour) bool) []domain.Tour {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Tour
	for _, t := range r.s.tours {
		if !t.SecretTour && keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *tours) ListAll(_ context.Context) ([]domain.Tour, error) {
	return r.visible(func(domain.Tour) bool { return true }), nil
}

func (r *tours) ListByIDs(_ context.Context, ids []string) ([]domain.Tour, error) {
	set := map[string]bool{}
	for _, id := range ids {
		set[id] = true
	}
	return r.visible(func(t domain.Tour) bool { return set[t.ID] }), nil
}

func (r *tours) List(ctx context.Context, q query.Query) ([]repository.Document, error) {
	if _, err := repository.TourSchema.Select(q); err != nil {
		return nil, err
	}
	all, _ := r.ListAll(ctx)
	docs := make([]repository.Document, 0, len(all))
	for _, t := range all {
		docs = append(docs, repository.Document{
			"id": t.ID, "name": t.Name, "slug": t.Slug, "price": t.Price,
			"ratingsAverage": t.RatingsAverage, "difficulty": string(t.Difficulty),
			"summary": t.Summary, "createdAt": t.CreatedAt,
		})
	}
	return page(docs, q), nil
}

func (r *tours) RecomputeRatings(_ context.Context, tourID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tours[tourID]
	if !ok {
		return nil
	}
	var sum, n int
	for _, rv := range r.s.reviews {
		if rv.TourID == tourID {
			sum += rv.Rating
			n++
		}
	}
	t.RatingsQuantity = n
	t.RatingsAverage = repository.DefaultRatingsAverage
	if n > 0 {
		t.RatingsAverage = float64(int(float64(sum)/float64(n)*10+0.5)) / 10
	}
	r.s.tours[tourID] = t
	return nil
}

type reviews struct{ s *Store }

func (r *reviews) Create(_ context.Context, rv *domain.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.reviews {
		if existing.TourID == rv.TourID && existing.UserID == rv.UserID {
			return duplicate("reviews_tour_id_user_id_key")
		}
	}
	rv.ID = uuid.NewString()
	rv.CreatedAt = r.s.now()
	r.s.reviews[rv.ID] = *rv
	return nil
}

func (r *reviews) Update(_ context.Context, rv *domain.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.reviews[rv.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Review, stored.Rating = rv.Review, rv.Rating
	r.s.reviews[rv.ID] = stored
	return nil
}

func (r *reviews) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reviews[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.reviews, id)
	return nil
}

func (r *reviews) populate(rv domain.Review) domain.Review {
	if u, ok := r.s.users[rv.UserID]; ok {
		rv.UserName, rv.UserPhoto = u.Name, u.Photo
	}
	return rv
}

func (r *reviews) GetByID(_ context.Context, id string) (*domain.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rv, ok := r.s.reviews[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	rv = r.populate(rv)
	return &rv, nil
}

func (r *reviews) ListByTour(_ context.Context, tourID string) ([]domain.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Review
	for _, rv := range r.s.reviews {
		if rv.TourID == tourID {
			out = append(out, r.populate(rv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// List honours equality scope conditions on tour and user.
func (r *reviews) List(_ context.Context, q query.Query, scope ...query.Condition) ([]repository.Document, error) {
	if _, err := repository.ReviewSchema.Select(q, scope...); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var docs []repository.Document
	for _, rv := range r.s.reviews {
		if !matchesScope(map[string]string{"tour": rv.TourID, "user": rv.UserID}, scope) {
			continue
		}
		rv = r.populate(rv)
		docs = append(docs, repository.Document{
			"id": rv.ID, "review": rv.Review, "rating": rv.Rating, "tour": rv.TourID,
			"user": rv.UserID, "userName": rv.UserName, "userPhoto": rv.UserPhoto, "createdAt": rv.CreatedAt,
		})
	}
	sortDocs(docs)
	return page(docs, q), nil
}

type bookings struct{ s *Store }

func (r *bookings) Create(_ context.Context, b *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b.ID = uuid.NewString()
	b.CreatedAt = r.s.now()
	r.s.bookings[b.ID] = *b
	return nil
}

func (r *bookings) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.bookings, id)
	return nil
}

func (r *bookings) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	b.TourName = r.s.tours[b.TourID].Name
	return &b, nil
}

func (r *bookings) TourIDsForUser(_ context.Context, userID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[string]bool{}
	var ids []string
	for _, b := range r.s.bookings {
		if b.UserID == userID && !seen[b.TourID] {
			seen[b.TourID] = true
			ids = append(ids, b.TourID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *bookings) List(_ context.Context, q query.Query) ([]repository.Document, error) {
	if _, err := repository.BookingSchema.Select(q); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var docs []repository.Document
	for _, b := range r.s.bookings {
		docs = append(docs, repository.Document{
			"id": b.ID, "tour": b.TourID, "tourName": r.s.tours[b.TourID].Name, "user": b.UserID,
			"price": b.Price, "paid": b.Paid, "createdAt": b.CreatedAt,
		})
	}
	sortDocs(docs)
	return page(docs, q), nil
}

func matchesScope(values map[string]string, scope []query.Condition) bool {
	for _, c := range scope {
		if c.Op == query.OpEq && values[c.Field] != c.Value {
			return false
		}
	}
	return true
}

func sortDocs(docs []repository.Document) {
	sort.Slice(docs, func(i, j int) bool {
		return docs[i]["id"].(string) < docs[j]["id"].(string)
	})
}
