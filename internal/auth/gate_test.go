package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/tour-service/internal/domain"
	apperrors "github.com/spec-kit/tour-service/pkg/util"
)

type stubStore struct {
	users map[string]*domain.User
	err   error
}

func (s *stubStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func newTestGate(users ...*domain.User) (*Gate, *stubStore) {
	store := &stubStore{users: map[string]*domain.User{}}
	for _, u := range users {
		store.users[u.ID] = u
	}
	return NewGate(NewTokenManager("test-secret", time.Hour), store), store
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperrors.ToDomainError(err).Code, err.Error())
}

func TestGate_VerifySuccess(t *testing.T) {
	user := &domain.User{ID: "u1", Role: domain.RoleUser}
	gate, _ := newTestGate(user)

	cred, err := gate.Issue("u1")
	require.NoError(t, err)

	got, err := gate.Verify(context.Background(), cred.Token)
	require.NoError(t, err)
	assert.Same(t, user, got)
}

func TestGate_VerifyFailures(t *testing.T) {
	issued := time.Now().Add(-time.Minute)
	changedLater := issued.Add(30 * time.Second)
	changedEarlier := issued.Add(-time.Hour)

	tests := []struct {
		name    string
		user    *domain.User
		token   func(g *Gate) string
		wantMsg string
	}{
		{
			name:    "missing token",
			token:   func(*Gate) string { return "" },
			wantMsg: MsgNotLoggedIn,
		},
		{
			name:  "garbage token",
			token: func(*Gate) string { return "garbage" },
		},
		{
			name: "wrong secret",
			token: func(*Gate) string {
				cred, _ := NewTokenManager("other", time.Hour).Issue("u1")
				return cred.Token
			},
		},
		{
			name: "subject deleted",
			token: func(g *Gate) string {
				cred, _ := g.Issue("ghost")
				return cred.Token
			},
			wantMsg: MsgSubjectGone,
		},
		{
			name: "password changed after issuance",
			user: &domain.User{ID: "u1", PasswordChangedAt: &changedLater},
			token: func(g *Gate) string {
				cred, _ := g.tokens.WithClock(fixedClock(issued)).Issue("u1")
				return cred.Token
			},
			wantMsg: MsgPasswordChanged,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var users []*domain.User
			if tt.user != nil {
				users = append(users, tt.user)
			}
			gate, _ := newTestGate(users...)

			_, err := gate.Verify(context.Background(), tt.token(gate))
			requireCode(t, err, apperrors.CodeUnauthenticated)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, apperrors.ToDomainError(err).Message)
			}
		})
	}

	t.Run("password changed before issuance", func(t *testing.T) {
		gate, _ := newTestGate(&domain.User{ID: "u1", PasswordChangedAt: &changedEarlier})
		cred, err := gate.tokens.WithClock(fixedClock(issued)).Issue("u1")
		require.NoError(t, err)
		_, err = gate.Verify(context.Background(), cred.Token)
		assert.NoError(t, err)
	})
}

func TestGate_VerifySubSecondPasswordChange(t *testing.T) {
	issued := time.Now().Add(-time.Minute).Truncate(time.Second)
	user := &domain.User{ID: "u1"}
	gate, _ := newTestGate(user)

	old, err := gate.tokens.WithClock(fixedClock(issued)).Issue("u1")
	require.NoError(t, err)

	changeAt := issued.Add(1900 * time.Millisecond)
	MarkPasswordChanged(user, "new-hash", changeAt, time.Second)

	_, err = gate.Verify(context.Background(), old.Token)
	requireCode(t, err, apperrors.CodeUnauthenticated)
	assert.Equal(t, MsgPasswordChanged, apperrors.ToDomainError(err).Message)

	fresh, err := gate.tokens.WithClock(fixedClock(changeAt)).Issue("u1")
	require.NoError(t, err)
	got, err := gate.Verify(context.Background(), fresh.Token)
	require.NoError(t, err)
	assert.Same(t, user, got)
}

func TestGate_VerifyStoreFailurePropagates(t *testing.T) {
	gate, store := newTestGate()
	cred, err := gate.Issue("u1")
	require.NoError(t, err)

	store.err = errors.New("db down")
	_, err = gate.Verify(context.Background(), cred.Token)
	requireCode(t, err, apperrors.CodeInternal)
}

func TestGate_OptionalIdentity(t *testing.T) {
	user := &domain.User{ID: "u1"}
	gate, _ := newTestGate(user)
	cred, err := gate.Issue("u1")
	require.NoError(t, err)

	assert.Same(t, user, gate.OptionalIdentity(context.Background(), cred.Token))
	assert.Nil(t, gate.OptionalIdentity(context.Background(), ""))
	assert.Nil(t, gate.OptionalIdentity(context.Background(), "garbage"))
}

func TestRequireRole(t *testing.T) {
	admin := &domain.User{Role: domain.RoleAdmin}
	guide := &domain.User{Role: domain.RoleGuide}

	assert.NoError(t, RequireRole(admin, domain.RoleAdmin, domain.RoleLeadGuide))
	requireCode(t, RequireRole(guide, domain.RoleAdmin, domain.RoleLeadGuide), apperrors.CodeForbidden)
	requireCode(t, RequireRole(guide), apperrors.CodeForbidden)
	requireCode(t, RequireRole(nil, domain.RoleAdmin), apperrors.CodeUnauthenticated)
}

func newMiddlewareApp(gate *Gate) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Message)
		},
	})
	app.Get("/protected", gate.Protect(), func(c *fiber.Ctx) error {
		user, _ := IdentityFromContext(c)
		return c.SendString(user.ID)
	})
	app.Get("/admin", gate.Protect(), RestrictTo(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/optional", gate.IsLoggedIn(), func(c *fiber.Ctx) error {
		if user, ok := IdentityFromContext(c); ok {
			return c.SendString(user.ID)
		}
		return c.SendString("anonymous")
	})
	app.Get("/nocache", NoCache(), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
	return app
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestMiddleware_TokenSources(t *testing.T) {
	gate, _ := newTestGate(&domain.User{ID: "header-user"}, &domain.User{ID: "cookie-user"})
	app := newMiddlewareApp(gate)

	headerCred, err := gate.Issue("header-user")
	require.NoError(t, err)
	cookieCred, err := gate.Issue("cookie-user")
	require.NoError(t, err)

	t.Run("header wins over cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+headerCred.Token)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: cookieCred.Token})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "header-user", body(t, resp))
	})

	t.Run("cookie fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: cookieCred.Token})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "cookie-user", body(t, resp))
	})

	t.Run("logged out cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: loggedOutValue})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, MsgNotLoggedIn, body(t, resp))
	})
}

func TestMiddleware_RestrictTo(t *testing.T) {
	gate, _ := newTestGate(&domain.User{ID: "a", Role: domain.RoleAdmin}, &domain.User{ID: "u", Role: domain.RoleUser})
	app := newMiddlewareApp(gate)

	for id, want := range map[string]int{"a": http.StatusOK, "u": http.StatusForbidden} {
		cred, err := gate.Issue(id)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+cred.Token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, id)
	}
}

func TestMiddleware_IsLoggedInNeverFails(t *testing.T) {
	gate, _ := newTestGate(&domain.User{ID: "u1"})
	app := newMiddlewareApp(gate)

	req := httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "broken"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "anonymous", body(t, resp))

	cred, err := gate.Issue("u1")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: cred.Token})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "u1", body(t, resp))
}

func TestNoCache(t *testing.T) {
	gate, _ := newTestGate()
	resp, err := newMiddlewareApp(gate).Test(httptest.NewRequest(http.MethodGet, "/nocache", nil))
	require.NoError(t, err)
	assert.Equal(t, "no-cache, no-store, must-revalidate", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "0", resp.Header.Get("Expires"))
}
