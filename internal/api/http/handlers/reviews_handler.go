package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tour-service/internal/api/dto"
	"github.com/spec-kit/tour-service/internal/service"
	apperrors "github.com/spec-kit/tour-service/pkg/util"
)

// MsgReviewNeedsTour is returned when neither the path nor the body names a tour.
const MsgReviewNeedsTour = "Review must belong to a tour."

// ReviewsHandler exposes reviews, top-level and nested under a tour.
type ReviewsHandler struct {
	reviews *service.ReviewService
}

// NewReviewsHandler constructs handler.
func NewReviewsHandler(reviews *service.ReviewService) *ReviewsHandler {
	return &ReviewsHandler{reviews: reviews}
}

// List handles GET /api/v1/reviews and GET /api/v1/tours/:tourId/reviews.
func (h *ReviewsHandler) List(c *fiber.Ctx) error {
	docs, err := h.reviews.List(c.UserContext(), params(c), c.Params("tourId"))
	if err != nil {
		return err
	}
	return listed(c, "reviews", docs)
}

// Get handles GET /api/v1/reviews/:id.
func (h *ReviewsHandler) Get(c *fiber.Ctx) error {
	review, err := h.reviews.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fiber.Map{"review": dto.NewReviewResponse(review)})
}

// Create handles POST on both review routes.
func (h *ReviewsHandler) Create(c *fiber.Ctx) error {
	author, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.CreateReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	tourID := c.Params("tourId")
	if tourID == "" {
		tourID = req.Tour
	}
	if tourID == "" {
		return apperrors.NewValidationError(MsgReviewNeedsTour, nil)
	}

	review, err := h.reviews.Create(c.UserContext(), author, tourID, service.ReviewInput{
		Review: &req.Review,
		Rating: &req.Rating,
	})
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, fiber.Map{"review": dto.NewReviewResponse(review)})
}

// Update handles PATCH /api/v1/reviews/:id.
func (h *ReviewsHandler) Update(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.UpdateReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	review, err := h.reviews.Update(c.UserContext(), actor, c.Params("id"), service.ReviewInput{
		Review: req.Review,
		Rating: req.Rating,
	})
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fiber.Map{"review": dto.NewReviewResponse(review)})
}

// Delete handles DELETE /api/v1/reviews/:id.
func (h *ReviewsHandler) Delete(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	if err := h.reviews.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
