package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/tour-service/internal/domain"
	"github.com/spec-kit/tour-service/internal/events"
	"github.com/spec-kit/tour-service/internal/query"
	"github.com/spec-kit/tour-service/internal/repository"
	apperrors "github.com/spec-kit/tour-service/pkg/util"
)

// MsgInvalidRole rejects role changes outside the known set.
const MsgInvalidRole = "Invalid role."

// ProfileUpdate carries the fields a user may change on their own account.
type ProfileUpdate struct {
	Name  *string
	Email *string
	Photo *string
}

// AdminUserUpdate carries the fields an admin may change on any account.
type AdminUserUpdate struct {
	ProfileUpdate
	Role *domain.Role
}

// UserService manages accounts outside of the credential flows.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewUserService creates the service.
func NewUserService(users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	return &UserService{users: users, dispatcher: dispatcher, logger: logger}
}

// Get returns an active account.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// List shapes the admin listing with the request parameters.
func (s *UserService) List(ctx context.Context, params query.Params) ([]repository.Document, error) {
	q, err := query.New(params).All().Build()
	if err != nil {
		return nil, err
	}
	return s.users.List(ctx, q)
}

// UpdateMe changes profile fields of the caller.
func (s *UserService) UpdateMe(ctx context.Context, id string, in ProfileUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProfile(user, in)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteMe deactivates the caller. The account disappears from every lookup and its
// credentials stop verifying.
func (s *UserService) DeleteMe(ctx context.Context, id string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	user.Active = false
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	if s.dispatcher != nil {
		if err := s.dispatcher.Publish(ctx, events.NewEvent(events.EventUserDeactivated, id, nil)); err != nil {
			s.logger.Warn("publish event", zap.Error(err))
		}
	}
	return nil
}

// Update applies an admin change. Passwords are never changed here.
func (s *UserService) Update(ctx context.Context, id string, in AdminUserUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProfile(user, in.ProfileUpdate)
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, apperrors.NewValidationError(MsgInvalidRole, nil)
		}
		user.Role = *in.Role
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes an account permanently.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

func applyProfile(user *domain.User, in ProfileUpdate) {
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Photo != nil {
		user.Photo = *in.Photo
	}
}
