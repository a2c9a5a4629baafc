package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/tour-service/internal/domain"
	"github.com/spec-kit/tour-service/internal/query"
	apperrors "github.com/spec-kit/tour-service/pkg/util"
)

func tourInput(name string, price float64) TourInput {
	return TourInput{
		Name:         ptr(name),
		Duration:     ptr(5),
		MaxGroupSize: ptr(25),
		Difficulty:   ptr(domain.DifficultyEasy),
		Price:        ptr(price),
		Summary:      ptr("Breathtaking hike through the Canadian Banff National Park"),
		ImageCover:   ptr("tour-1-cover.jpg"),
		StartDates:   []time.Time{time.Date(2025, 4, 25, 9, 0, 0, 0, time.UTC)},
	}
}

func TestTourService_CreateAndUpdate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	tour, err := f.tours.Create(ctx, tourInput("The Forest Hiker", 397))
	require.NoError(t, err)
	assert.Equal(t, "the-forest-hiker", tour.Slug)
	assert.Equal(t, 4.5, tour.RatingsAverage)

	updated, err := f.tours.Update(ctx, tour.ID, TourInput{Name: ptr("The Sea Explorer Deluxe"), PriceDiscount: ptr(100.0)})
	require.NoError(t, err)
	assert.Equal(t, "the-sea-explorer-deluxe", updated.Slug)
	assert.Equal(t, 397.0, updated.Price)

	_, err = f.tours.Update(ctx, tour.ID, TourInput{PriceDiscount: ptr(500.0)})
	de := requireCode(t, err, apperrors.CodeValidationFailed)
	assert.Contains(t, de.Details, "priceDiscount")

	_, err = f.tours.Create(ctx, tourInput("Short", 10))
	de = requireCode(t, err, apperrors.CodeValidationFailed)
	assert.Contains(t, de.Details, "name")

	_, err = f.tours.Create(ctx, tourInput("The Sea Explorer Deluxe", 10))
	requireCode(t, err, apperrors.CodeConflict)
}

func TestTourService_SecretToursHidden(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	in := tourInput("The Hidden Valley Tour", 200)
	in.SecretTour = ptr(true)
	secret, err := f.tours.Create(ctx, in)
	require.NoError(t, err)

	_, err = f.tours.Get(ctx, secret.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	docs, err := f.tours.List(ctx, query.Params{})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestTourService_TopCheapOverridesRequest(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"The Forest Hiker", "The Sea Explorer", "The Snow Adventurer", "The City Wanderer",
		"The Park Camper", "The Sports Lover"} {
		_, err := f.tours.Create(ctx, tourInput(name, 100))
		require.NoError(t, err)
	}

	docs, err := f.tours.TopCheap(ctx, query.Params{"limit": "50"})
	require.NoError(t, err)
	assert.Len(t, docs, 5)

	_, err = f.tours.TopCheap(ctx, query.Params{"price[lt]": "oops"})
	requireCode(t, err, apperrors.CodeValidationFailed)
}

func TestTourService_ListPaginates(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	for _, name := range []string{"The Forest Hiker", "The Sea Explorer", "The Snow Adventurer"} {
		_, err := f.tours.Create(ctx, tourInput(name, 100))
		require.NoError(t, err)
	}

	docs, err := f.tours.List(ctx, query.Params{"page": "2", "limit": "2"})
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	_, err = f.tours.List(ctx, query.Params{"sort": "password"})
	requireCode(t, err, apperrors.CodeValidationFailed)
}

func TestReviewService_RatingsFollowReviews(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	tour, err := f.tours.Create(ctx, tourInput("The Forest Hiker", 397))
	require.NoError(t, err)
	ann := f.signup(t, "Ann Lee", "ann@example.com").User
	bob := f.signup(t, "Bob Ray", "bob@example.com").User

	r1, err := f.reviews.Create(ctx, ann, tour.ID, ReviewInput{Review: ptr("Great"), Rating: ptr(4)})
	require.NoError(t, err)
	_, err = f.reviews.Create(ctx, bob, tour.ID, ReviewInput{Review: ptr("Okay"), Rating: ptr(3)})
	require.NoError(t, err)

	detail, err := f.tours.Get(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.5, detail.Tour.RatingsAverage)
	assert.Equal(t, 2, detail.Tour.RatingsQuantity)
	assert.Len(t, detail.Reviews, 2)

	_, err = f.reviews.Create(ctx, ann, tour.ID, ReviewInput{Review: ptr("Again"), Rating: ptr(5)})
	requireCode(t, err, apperrors.CodeConflict)

	_, err = f.reviews.Update(ctx, bob, r1.ID, ReviewInput{Rating: ptr(1)})
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.reviews.Update(ctx, ann, r1.ID, ReviewInput{Rating: ptr(5)})
	require.NoError(t, err)
	detail, err = f.tours.Get(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, detail.Tour.RatingsAverage)

	admin := &domain.User{ID: "admin", Role: domain.RoleAdmin}
	require.NoError(t, f.reviews.Delete(ctx, admin, r1.ID))

	docs, err := f.reviews.List(ctx, query.Params{}, tour.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Bob Ray", docs[0]["userName"])
}

func TestReviewService_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	tour, err := f.tours.Create(ctx, tourInput("The Forest Hiker", 397))
	require.NoError(t, err)
	ann := f.signup(t, "Ann Lee", "ann@example.com").User

	_, err = f.reviews.Create(ctx, ann, "6f1c2b3a-1111-4a2b-9c3d-000000000000", ReviewInput{Review: ptr("x"), Rating: ptr(3)})
	de := requireCode(t, err, apperrors.CodeNotFound)
	assert.Equal(t, MsgNoTourForReview, de.Message)

	_, err = f.reviews.Create(ctx, ann, tour.ID, ReviewInput{Review: ptr("x"), Rating: ptr(6)})
	requireCode(t, err, apperrors.CodeValidationFailed)

	_, err = f.reviews.Create(ctx, ann, tour.ID, ReviewInput{Review: ptr("  "), Rating: ptr(3)})
	requireCode(t, err, apperrors.CodeValidationFailed)
}

func TestBookingService(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	tour, err := f.tours.Create(ctx, tourInput("The Forest Hiker", 397))
	require.NoError(t, err)
	other, err := f.tours.Create(ctx, tourInput("The Sea Explorer", 497))
	require.NoError(t, err)
	ann := f.signup(t, "Ann Lee", "ann@example.com").User

	b, err := f.bookings.Create(ctx, BookingInput{TourID: tour.ID, UserID: ann.ID})
	require.NoError(t, err)
	assert.Equal(t, 397.0, b.Price)
	assert.True(t, b.Paid)

	_, err = f.bookings.Create(ctx, BookingInput{TourID: tour.ID, UserID: ann.ID, Price: ptr(300.0)})
	require.NoError(t, err)

	booked, err := f.bookings.ToursBookedBy(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, booked, 1)
	assert.Equal(t, tour.ID, booked[0].ID)
	assert.NotEqual(t, other.ID, booked[0].ID)

	got, err := f.bookings.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Forest Hiker", got.TourName)

	_, err = f.bookings.Create(ctx, BookingInput{TourID: tour.ID, UserID: "6f1c2b3a-1111-4a2b-9c3d-000000000000"})
	requireCode(t, err, apperrors.CodeNotFound)

	require.NoError(t, f.bookings.Delete(ctx, b.ID))
	_, err = f.bookings.Get(ctx, b.ID)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestUserService(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	s := f.signup(t, "Ann Lee", "ann@example.com")

	u, err := f.users.UpdateMe(ctx, s.User.ID, ProfileUpdate{Name: ptr("Ann Marie Lee"), Email: ptr("ANN.M@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "ann.m@example.com", u.Email)

	_, err = f.users.Update(ctx, s.User.ID, AdminUserUpdate{Role: ptr(domain.Role("root"))})
	requireCode(t, err, apperrors.CodeValidationFailed)

	u, err = f.users.Update(ctx, s.User.ID, AdminUserUpdate{Role: ptr(domain.RoleGuide)})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleGuide, u.Role)

	docs, err := f.users.List(ctx, query.Params{})
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	require.NoError(t, f.users.DeleteMe(ctx, s.User.ID))
	_, err = f.users.Get(ctx, s.User.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	docs, err = f.users.List(ctx, query.Params{})
	require.NoError(t, err)
	assert.Empty(t, docs)

	_, err = f.gate.Verify(ctx, s.Credential.Token)
	requireCode(t, err, apperrors.CodeUnauthenticated)

	_, err = f.auth.Login(ctx, "ann.m@example.com", "pass1234")
	requireCode(t, err, apperrors.CodeUnauthenticated)
}
