package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/tour-service/internal/auth"
	"github.com/spec-kit/tour-service/internal/config"
	"github.com/spec-kit/tour-service/internal/events"
	"github.com/spec-kit/tour-service/internal/mail"
	"github.com/spec-kit/tour-service/internal/repository/repotest"
	apperrors "github.com/spec-kit/tour-service/pkg/util"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Now().Truncate(time.Second)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sentMail struct {
	template string
	to       mail.Recipient
	url      string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendWelcome(_ context.Context, to mail.Recipient, url string) error {
	return m.record(mail.TemplateWelcome, to, url)
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to mail.Recipient, url string) error {
	return m.record(mail.TemplatePasswordReset, to, url)
}

func (m *fakeMailer) record(template string, to mail.Recipient, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{template: template, to: to, url: url})
	return nil
}

func (m *fakeMailer) last(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

type fixture struct {
	store      *repotest.Store
	clock      *testClock
	mailer     *fakeMailer
	dispatcher *events.InMemoryDispatcher
	gate       *auth.Gate
	auth       *AuthService
	users      *UserService
	tours      *TourService
	reviews    *ReviewService
	bookings   *BookingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:      repotest.NewStore(),
		clock:      newTestClock(),
		mailer:     &fakeMailer{},
		dispatcher: events.NewInMemoryDispatcher(zap.NewNop()),
	}
	cfg := config.Config{Auth: config.AuthConfig{
		PasswordResetTTL:   10 * time.Minute,
		PasswordChangeSkew: time.Second,
	}}

	userRepo := f.store.Users()
	tokens := auth.NewTokenManager("test-secret", time.Hour).WithClock(f.clock.Now)
	f.gate = auth.NewGate(tokens, userRepo)
	NewNotificationService(f.dispatcher, f.mailer, zap.NewNop()).RegisterHandlers()

	f.auth = NewAuthService(cfg, AuthDependencies{
		UserRepo:   userRepo,
		Gate:       f.gate,
		Hasher:     auth.NewHasher(bcrypt.MinCost, 4),
		Mailer:     f.mailer,
		Dispatcher: f.dispatcher,
		Clock:      f.clock.Now,
	})
	f.users = NewUserService(userRepo, f.dispatcher, zap.NewNop())
	f.tours = NewTourService(f.store.Tours(), f.store.Reviews())
	f.reviews = NewReviewService(f.store.Reviews(), f.store.Tours())
	f.bookings = NewBookingService(f.store.Bookings(), f.store.Tours(), userRepo, f.dispatcher, zap.NewNop())
	return f
}

func (f *fixture) signup(t *testing.T, name, email string) *Session {
	t.Helper()
	s, err := f.auth.Signup(context.Background(), SignupInput{Name: name, Email: email, Password: "pass1234"}, "http://localhost:3000")
	require.NoError(t, err)
	return s
}

func requireCode(t *testing.T, err error, code string) *apperrors.DomainError {
	t.Helper()
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, code, de.Code, err.Error())
	return de
}

var errSMTP = errors.New("smtp unavailable")

func ptr[T any](v T) *T { return &v }
