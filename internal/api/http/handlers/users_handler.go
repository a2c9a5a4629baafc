package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tour-service/internal/api/dto"
	"github.com/spec-kit/tour-service/internal/domain"
	"github.com/spec-kit/tour-service/internal/service"
	apperrors "github.com/spec-kit/tour-service/pkg/util"
)

// MsgNotForPasswords rejects password fields on the profile route.
const MsgNotForPasswords = "This route is not for password updates. Please use /updateMyPassword."

// UsersHandler exposes account endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// Me handles GET /api/v1/users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.UserContext(), caller.ID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fiber.Map{"user": dto.NewUserResponse(user)})
}

// UpdateMe handles PATCH /api/v1/users/updateMe.
func (h *UsersHandler) UpdateMe(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.UpdateMeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.WantsPasswordChange() {
		return apperrors.NewValidationError(MsgNotForPasswords, nil)
	}
	user, err := h.users.UpdateMe(c.UserContext(), caller.ID, service.ProfileUpdate{
		Name:  req.Name,
		Email: req.Email,
		Photo: req.Photo,
	})
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fiber.Map{"user": dto.NewUserResponse(user)})
}

// DeleteMe handles DELETE /api/v1/users/deleteMe.
func (h *UsersHandler) DeleteMe(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	if err := h.users.DeleteMe(c.UserContext(), caller.ID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// List handles GET /api/v1/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	docs, err := h.users.List(c.UserContext(), params(c))
	if err != nil {
		return err
	}
	return listed(c, "users", docs)
}

// Get handles GET /api/v1/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fiber.Map{"user": dto.NewUserResponse(user)})
}

// Update handles PATCH /api/v1/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var req dto.AdminUserUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	in := service.AdminUserUpdate{ProfileUpdate: service.ProfileUpdate{
		Name:  req.Name,
		Email: req.Email,
		Photo: req.Photo,
	}}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		in.Role = &role
	}
	user, err := h.users.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fiber.Map{"user": dto.NewUserResponse(user)})
}

// Delete handles DELETE /api/v1/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	if err := h.users.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
