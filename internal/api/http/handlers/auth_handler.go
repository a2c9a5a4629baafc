package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tour-service/internal/api/dto"
	"github.com/spec-kit/tour-service/internal/auth"
	"github.com/spec-kit/tour-service/internal/config"
	"github.com/spec-kit/tour-service/internal/service"
)

// AuthHandler exposes signup, login and password endpoints.
type AuthHandler struct {
	auth *service.AuthService
	cfg  config.Config
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cfg config.Config) *AuthHandler {
	return &AuthHandler{auth: authService, cfg: cfg}
}

// Signup handles POST /api/v1/users/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	session, err := h.auth.Signup(c.UserContext(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}, h.baseURL(c))
	if err != nil {
		return err
	}
	return h.sendSession(c, http.StatusCreated, session)
}

// Login handles POST /api/v1/users/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.sendSession(c, http.StatusOK, session)
}

// Logout handles GET /api/v1/users/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	auth.ClearCredentialCookie(c, h.cfg.IsProduction())
	return c.JSON(fiber.Map{"status": "success"})
}

// ForgotPassword handles POST /api/v1/users/forgotPassword.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.auth.ForgotPassword(c.UserContext(), req.Email, h.baseURL(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "message": service.MsgResetTokenSent})
}

// ResetPassword handles PATCH /api/v1/users/resetPassword/:token.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	session, err := h.auth.ResetPassword(c.UserContext(), c.Params("token"), req.Password)
	if err != nil {
		return err
	}
	return h.sendSession(c, http.StatusOK, session)
}

// UpdatePassword handles PATCH /api/v1/users/updateMyPassword.
func (h *AuthHandler) UpdatePassword(c *fiber.Ctx) error {
	user, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.UpdatePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	session, err := h.auth.UpdatePassword(c.UserContext(), user.ID, req.PasswordCurrent, req.Password)
	if err != nil {
		return err
	}
	return h.sendSession(c, http.StatusOK, session)
}

func (h *AuthHandler) sendSession(c *fiber.Ctx, status int, session *service.Session) error {
	auth.SetCredentialCookie(c, session.Credential, h.cfg.Auth.CookieTTL(), h.cfg.IsProduction())
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"token":  session.Credential.Token,
		"data":   fiber.Map{"user": dto.NewUserResponse(session.User)},
	})
}

func (h *AuthHandler) baseURL(c *fiber.Ctx) string {
	if h.cfg.App.BaseURL != "" {
		return h.cfg.App.BaseURL
	}
	return c.BaseURL()
}
