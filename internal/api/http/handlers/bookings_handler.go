package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tour-service/internal/api/dto"
	"github.com/spec-kit/tour-service/internal/service"
)

// BookingsHandler exposes booking administration.
type BookingsHandler struct {
	bookings *service.BookingService
}

// NewBookingsHandler constructs handler.
func NewBookingsHandler(bookings *service.BookingService) *BookingsHandler {
	return &BookingsHandler{bookings: bookings}
}

// List handles GET /api/v1/bookings.
func (h *BookingsHandler) List(c *fiber.Ctx) error {
	docs, err := h.bookings.List(c.UserContext(), params(c))
	if err != nil {
		return err
	}
	return listed(c, "bookings", docs)
}

// Get handles GET /api/v1/bookings/:id.
func (h *BookingsHandler) Get(c *fiber.Ctx) error {
	booking, err := h.bookings.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fiber.Map{"booking": dto.NewBookingResponse(booking)})
}

// Create handles POST /api/v1/bookings. The booking is for the caller unless a user is
// named.
func (h *BookingsHandler) Create(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.CreateBookingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	userID := req.User
	if userID == "" {
		userID = caller.ID
	}
	booking, err := h.bookings.Create(c.UserContext(), service.BookingInput{
		TourID: req.Tour,
		UserID: userID,
		Price:  req.Price,
		Paid:   req.Paid,
	})
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, fiber.Map{"booking": dto.NewBookingResponse(booking)})
}

// Delete handles DELETE /api/v1/bookings/:id.
func (h *BookingsHandler) Delete(c *fiber.Ctx) error {
	if err := h.bookings.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
