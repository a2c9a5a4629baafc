package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tour-service/internal/api/dto"
	"github.com/spec-kit/tour-service/internal/auth"
	"github.com/spec-kit/tour-service/internal/domain"
	"github.com/spec-kit/tour-service/internal/query"
	"github.com/spec-kit/tour-service/internal/repository"
	apperrors "github.com/spec-kit/tour-service/pkg/util"
)

// MsgInvalidBody is returned when the payload cannot be decoded.
const MsgInvalidBody = "Invalid request body."

// bind decodes the body into req and validates it.
func bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError(MsgInvalidBody, nil)
	}
	return dto.Validate(req)
}

func identity(c *fiber.Ctx) (*domain.User, error) {
	user, ok := auth.IdentityFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized(auth.MsgNotLoggedIn)
	}
	return user, nil
}

func params(c *fiber.Ctx) query.Params {
	return query.Params(c.Queries())
}

func success(c *fiber.Ctx, status int, data fiber.Map) error {
	return c.Status(status).JSON(fiber.Map{"status": "success", "data": data})
}

func listed(c *fiber.Ctx, name string, docs []repository.Document) error {
	if docs == nil {
		docs = []repository.Document{}
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"results": len(docs),
		"data":    fiber.Map{name: docs},
	})
}
