package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/tour-service/internal/domain"
	apperrors "github.com/spec-kit/tour-service/pkg/util"
)

// Messages returned for rejected credentials.
const (
	MsgNotLoggedIn     = "You are not logged in! Please log in to get access."
	MsgSubjectGone     = "The user belonging to this token no longer exists."
	MsgPasswordChanged = "User recently changed password! Please log in again."
	MsgAccessDenied    = "You do not have permission to perform this action."
)

// IdentityStore resolves credential subjects.
type IdentityStore interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Gate verifies credentials and enforces role restrictions.
type Gate struct {
	tokens *TokenManager
	users  IdentityStore
}

// NewGate constructs a gate.
func NewGate(tokens *TokenManager, users IdentityStore) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Issue signs a credential for the subject.
func (g *Gate) Issue(subjectID string) (domain.Credential, error) {
	return g.tokens.Issue(subjectID)
}

// Verify resolves the identity behind token. All credential failures are reported as
// Unauthenticated; store failures other than "not found" propagate unchanged.
func (g *Gate) Verify(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, apperrors.NewUnauthorized(MsgNotLoggedIn)
	}

	claims, err := g.tokens.Parse(token)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}

	user, err := g.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized(MsgSubjectGone)
		}
		return nil, err
	}

	if user.ChangedPasswordAfter(claims.IssuedAt.Time) {
		return nil, apperrors.NewUnauthorized(MsgPasswordChanged)
	}
	return user, nil
}

// OptionalIdentity is Verify without failure: any problem yields nil.
func (g *Gate) OptionalIdentity(ctx context.Context, token string) *domain.User {
	if token == "" {
		return nil
	}
	user, err := g.Verify(ctx, token)
	if err != nil {
		return nil
	}
	return user
}

// RequireRole fails with Forbidden unless the identity holds one of allowed.
func RequireRole(user *domain.User, allowed ...domain.Role) error {
	if user == nil {
		return apperrors.NewUnauthorized(MsgNotLoggedIn)
	}
	for _, role := range allowed {
		if user.Role == role {
			return nil
		}
	}
	return apperrors.NewForbidden(MsgAccessDenied)
}
