package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tour-service/internal/api/dto"
	"github.com/spec-kit/tour-service/internal/domain"
	"github.com/spec-kit/tour-service/internal/service"
)

// ToursHandler exposes the tour catalogue.
type ToursHandler struct {
	tours *service.TourService
}

// NewToursHandler constructs handler.
func NewToursHandler(tours *service.TourService) *ToursHandler {
	return &ToursHandler{tours: tours}
}

// List handles GET /api/v1/tours.
func (h *ToursHandler) List(c *fiber.Ctx) error {
	docs, err := h.tours.List(c.UserContext(), params(c))
	if err != nil {
		return err
	}
	return listed(c, "tours", docs)
}

// TopCheap handles GET /api/v1/tours/top-5-cheap.
func (h *ToursHandler) TopCheap(c *fiber.Ctx) error {
	docs, err := h.tours.TopCheap(c.UserContext(), params(c))
	if err != nil {
		return err
	}
	return listed(c, "tours", docs)
}

// Get handles GET /api/v1/tours/:id.
func (h *ToursHandler) Get(c *fiber.Ctx) error {
	detail, err := h.tours.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fiber.Map{"tour": dto.NewTourResponse(detail.Tour, detail.Reviews)})
}

// Create handles POST /api/v1/tours.
func (h *ToursHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTourRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	tour, err := h.tours.Create(c.UserContext(), tourInput(dto.UpdateTourRequest(req)))
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, fiber.Map{"tour": dto.NewTourResponse(tour, nil)})
}

// Update handles PATCH /api/v1/tours/:id.
func (h *ToursHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateTourRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	tour, err := h.tours.Update(c.UserContext(), c.Params("id"), tourInput(req))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fiber.Map{"tour": dto.NewTourResponse(tour, nil)})
}

// Delete handles DELETE /api/v1/tours/:id.
func (h *ToursHandler) Delete(c *fiber.Ctx) error {
	if err := h.tours.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func tourInput(req dto.UpdateTourRequest) service.TourInput {
	in := service.TourInput{
		Name:          req.Name,
		Duration:      req.Duration,
		MaxGroupSize:  req.MaxGroupSize,
		Price:         req.Price,
		PriceDiscount: req.PriceDiscount,
		Summary:       req.Summary,
		Description:   req.Description,
		ImageCover:    req.ImageCover,
		Images:        req.Images,
		StartDates:    req.StartDates,
		SecretTour:    req.SecretTour,
	}
	if req.Difficulty != nil {
		d := domain.Difficulty(*req.Difficulty)
		in.Difficulty = &d
	}
	return in
}
