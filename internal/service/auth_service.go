package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/tour-service/internal/auth"
	"github.com/spec-kit/tour-service/internal/config"
	"github.com/spec-kit/tour-service/internal/domain"
	"github.com/spec-kit/tour-service/internal/events"
	"github.com/spec-kit/tour-service/internal/mail"
	"github.com/spec-kit/tour-service/internal/repository"
	apperrors "github.com/spec-kit/tour-service/pkg/util"
)

// Auth flow messages.
const (
	MsgMissingCredentials  = "Please provide email and password!"
	MsgIncorrectLogin      = "Incorrect email or password."
	MsgIncorrectPassword   = "Incorrect Password."
	MsgNoUserWithEmail     = "There is no user with that email address."
	MsgResetTokenInvalid   = "Token is invalid or has expired."
	MsgResetMailFailed     = "There was an error sending the email. Try again later!"
	MsgResetTokenSent      = "Token sent to email!"
	resetPasswordPathFmt   = "%s/api/v1/users/resetPassword/%s"
	accountPathFmt         = "%s/me"
	passwordChangedByReset = "reset"
	passwordChangedByUser  = "update"
)

// SignupInput carries validated registration fields.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// Session is an authenticated user with a freshly issued credential.
type Session struct {
	User       *domain.User
	Credential domain.Credential
}

// AuthService coordinates registration, login and password flows.
type AuthService struct {
	users      repository.UserRepository
	gate       *auth.Gate
	hasher     *auth.Hasher
	mailer     mail.Mailer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
	resetTTL   time.Duration
	skew       time.Duration
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Gate       *auth.Gate
	Hasher     *auth.Hasher
	Mailer     mail.Mailer
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		gate:       deps.Gate,
		hasher:     deps.Hasher,
		mailer:     deps.Mailer,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
		resetTTL:   cfg.Auth.PasswordResetTTL,
		skew:       cfg.Auth.PasswordChangeSkew,
	}
}

// Signup creates an account with the default role and signs it in. The welcome mail is
// sent through the dispatcher so delivery problems never fail registration.
func (s *AuthService) Signup(ctx context.Context, in SignupInput, baseURL string) (*Session, error) {
	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Role:         domain.RoleUser,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	user.PasswordHash = ""

	s.publish(ctx, events.NewEvent(events.EventUserSignedUp, user.ID, events.UserSignedUpPayload{
		Email:      user.Email,
		FirstName:  user.FirstName(),
		AccountURL: fmt.Sprintf(accountPathFmt, baseURL),
	}))
	return s.session(user)
}

// Login checks email and password. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError(MsgMissingCredentials, nil)
	}

	user, err := s.users.GetByEmailWithPassword(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewUnauthorized(MsgIncorrectLogin)
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewUnauthorized(MsgIncorrectLogin)
	}
	user.PasswordHash = ""
	return s.session(user)
}

// ForgotPassword stores a reset token and mails the plaintext link. When the mail cannot
// be sent the stored token is discarded.
func (s *AuthService) ForgotPassword(ctx context.Context, email, baseURL string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(MsgNoUserWithEmail)
	}
	if err != nil {
		return err
	}

	plain, err := auth.CreatePasswordResetToken(user, s.resetTTL, s.now())
	if err != nil {
		return err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	url := fmt.Sprintf(resetPasswordPathFmt, baseURL, plain)
	if err := s.mailer.SendPasswordReset(ctx, mail.Recipient{Email: user.Email, FirstName: user.FirstName()}, url); err != nil {
		user.ClearPasswordReset()
		if rollbackErr := s.users.Update(ctx, user); rollbackErr != nil {
			s.logger.Error("clear password reset", zap.String("user_id", user.ID), zap.Error(rollbackErr))
		}
		return apperrors.NewOperationalInternal(MsgResetMailFailed, err)
	}
	return nil
}

// ResetPassword redeems an unexpired reset token and signs the user in.
func (s *AuthService) ResetPassword(ctx context.Context, plainToken, password string) (*Session, error) {
	user, err := s.users.GetByResetToken(ctx, auth.HashResetToken(plainToken), s.now())
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewValidationError(MsgResetTokenInvalid, nil)
	}
	if err != nil {
		return nil, err
	}
	if err := s.changePassword(ctx, user, password, passwordChangedByReset); err != nil {
		return nil, err
	}
	return s.session(user)
}

// UpdatePassword requires the current password before setting a new one.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, current, next string) (*Session, error) {
	user, err := s.users.GetByIDWithPassword(ctx, userID)
	if err != nil {
		return nil, err
	}
	ok, err := s.hasher.Verify(ctx, current, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewUnauthorized(MsgIncorrectPassword)
	}
	if err := s.changePassword(ctx, user, next, passwordChangedByUser); err != nil {
		return nil, err
	}
	return s.session(user)
}

func (s *AuthService) changePassword(ctx context.Context, user *domain.User, password, via string) error {
	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return err
	}
	auth.MarkPasswordChanged(user, hash, s.now(), s.skew)
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	user.PasswordHash = ""
	s.publish(ctx, events.NewEvent(events.EventPasswordChanged, user.ID, events.PasswordChangedPayload{Via: via}))
	return nil
}

func (s *AuthService) session(user *domain.User) (*Session, error) {
	cred, err := s.gate.Issue(user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{User: user, Credential: cred}, nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
