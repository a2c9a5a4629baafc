package dto

import (
	"time"

	"github.com/spec-kit/tour-service/internal/domain"
)

// SignupRequest payload for new accounts.
type SignupRequest struct {
	Name            string `json:"name" form:"name" validate:"required,max=60"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Password        string `json:"password" form:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" form:"passwordConfirm" validate:"required,eqfield=Password"`
}

// LoginRequest payload for login. Missing fields are reported by the service.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// ForgotPasswordRequest payload.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest payload; the token travels in the path.
type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// UpdatePasswordRequest payload for a signed-in password change.
type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// UpdateMeRequest payload. Password fields are only decoded so they can be refused.
type UpdateMeRequest struct {
	Name            *string `json:"name" validate:"omitempty,max=60"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Photo           *string `json:"photo"`
	Password        *string `json:"password"`
	PasswordConfirm *string `json:"passwordConfirm"`
}

// WantsPasswordChange reports whether the caller tried to change credentials here.
func (r UpdateMeRequest) WantsPasswordChange() bool {
	return r.Password != nil || r.PasswordConfirm != nil
}

// AdminUserUpdateRequest payload for admin edits.
type AdminUserUpdateRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=60"`
	Email *string `json:"email" validate:"omitempty,email"`
	Photo *string `json:"photo"`
	Role  *string `json:"role" validate:"omitempty,oneof=user guide lead-guide admin"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Photo     string      `json:"photo"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

// NewUserResponse maps a user, never exposing credential fields.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Photo:     u.Photo,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
