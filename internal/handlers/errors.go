package handlers

import (
	"errors"

	"closet/internal/imaging"
	"closet/internal/repositories"
	"closet/internal/services"

	"github.com/gofiber/fiber/v2"
)

// statusFromError maps service-layer failures onto HTTP statuses. Unknown
// errors are treated as server faults.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, imaging.ErrInvalidUpload),
		errors.Is(err, imaging.ErrUnsupportedImage):
		return fiber.StatusBadRequest
	case errors.Is(err, repositories.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// fail renders the uniform error envelope used by every handler.
func fail(c *fiber.Ctx, message string, err error) error {
	return c.Status(statusFromError(err)).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
