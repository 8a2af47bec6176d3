package handlers

import (
	"fmt"
	"log"

	"closet/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// TryOnHandler handles HTTP requests for try-on composition and recorded
// outfits.
type TryOnHandler struct {
	tryOnService *services.TryOnService
	validate     *validator.Validate
}

// NewTryOnHandler creates a new TryOnHandler.
func NewTryOnHandler(tryOnService *services.TryOnService) *TryOnHandler {
	return &TryOnHandler{
		tryOnService: tryOnService,
		validate:     validator.New(),
	}
}

// RegisterRoutes registers try-on routes with the Fiber app.
func (h *TryOnHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/tryon", h.HandleTryOn)
	router.Get("/outfits/:ownerID", h.HandleListOutfits)
}

// HandleTryOn composes one outfit: validates the garment selection, invokes
// the generation provider and records the result.
func (h *TryOnHandler) HandleTryOn(c *fiber.Ctx) error {
	var req services.TryOnRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	outfit, err := h.tryOnService.TryOn(c.Context(), req)
	if err != nil {
		log.Printf("Error generating try-on for user %d: %v", req.UserID, err)
		return fail(c, "Could not generate try-on", err)
	}

	return c.JSON(fiber.Map{
		"outfit_id":           outfit.ID,
		"generated_image_url": outfit.GeneratedImageURL,
		"message":             "Try-on generated successfully",
	})
}

// HandleListOutfits returns a user's recorded outfits, newest first.
func (h *TryOnHandler) HandleListOutfits(c *fiber.Ctx) error {
	ownerID, err := c.ParamsInt("ownerID")
	if err != nil || ownerID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid owner ID",
		})
	}

	outfits, err := h.tryOnService.ListOutfits(uint(ownerID))
	if err != nil {
		log.Printf("Error listing outfits for owner %d: %v", ownerID, err)
		return fail(c, "Could not list outfits", err)
	}
	return c.JSON(outfits)
}
