package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/tour-service/internal/auth"
	"github.com/spec-kit/tour-service/internal/service"
	apperrors "github.com/spec-kit/tour-service/pkg/util"
)

// LayoutBase wraps every page.
const LayoutBase = "layouts/base"

// MsgTourMissing is shown when a tour page slug matches nothing.
const MsgTourMissing = "Tour does not exist."

// ViewsHandler renders the server-side pages.
type ViewsHandler struct {
	tours    *service.TourService
	bookings *service.BookingService
}

// NewViewsHandler constructs handler.
func NewViewsHandler(tours *service.TourService, bookings *service.BookingService) *ViewsHandler {
	return &ViewsHandler{tours: tours, bookings: bookings}
}

// Overview renders GET /.
func (h *ViewsHandler) Overview(c *fiber.Ctx) error {
	tours, err := h.tours.Overview(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, "overview", "All Tours", fiber.Map{"Tours": tours})
}

// Tour renders GET /tour/:slug.
func (h *ViewsHandler) Tour(c *fiber.Ctx) error {
	detail, err := h.tours.GetBySlug(c.UserContext(), c.Params("slug"))
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(MsgTourMissing)
	}
	if err != nil {
		return err
	}
	return render(c, "tour", fmt.Sprintf("%s Tour", detail.Tour.Name), fiber.Map{
		"Tour":    detail.Tour,
		"Reviews": detail.Reviews,
	})
}

// Login renders GET /login.
func (h *ViewsHandler) Login(c *fiber.Ctx) error {
	return render(c, "login", "Log into your account", nil)
}

// Signup renders GET /signup.
func (h *ViewsHandler) Signup(c *fiber.Ctx) error {
	return render(c, "signup", "Create a new account", nil)
}

// Account renders GET /me.
func (h *ViewsHandler) Account(c *fiber.Ctx) error {
	return render(c, "account", "My Account", nil)
}

// MyBookings renders GET /my-bookings with the tours the caller booked.
func (h *ViewsHandler) MyBookings(c *fiber.Ctx) error {
	user, err := identity(c)
	if err != nil {
		return err
	}
	tours, err := h.bookings.ToursBookedBy(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return render(c, "overview", "My Bookings", fiber.Map{"Tours": tours})
}

func render(c *fiber.Ctx, name, title string, data fiber.Map) error {
	vars := fiber.Map{"Title": title}
	for k, v := range data {
		vars[k] = v
	}
	if user, ok := auth.IdentityFromContext(c); ok {
		vars["User"] = user
	}
	return c.Status(http.StatusOK).Render(name, vars, LayoutBase)
}
