package handlers

import (
	"fmt"
	"log"

	"closet/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	userService *services.UserService
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/bootstrap", h.HandleBootstrap)
	userRoutes.Get("/:id", h.HandleGetUser)
}

// BootstrapRequest is the body for user bootstrap.
type BootstrapRequest struct {
	Email          string  `json:"email" validate:"required,email"`
	FullName       string  `json:"full_name" validate:"required"`
	AvatarImageURL *string `json:"avatar_image_url"`
}

// HandleBootstrap returns the existing user for the given email or creates
// one. Idempotent on email.
func (h *UserHandler) HandleBootstrap(c *fiber.Ctx) error {
	var req BootstrapRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing bootstrap request body: %v", err)
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

	user, err := h.userService.Bootstrap(req.Email, req.FullName, req.AvatarImageURL)
	if err != nil {
		log.Printf("Error bootstrapping user %s: %v", req.Email, err)
		return fail(c, "Could not bootstrap user", err)
	}
	return c.JSON(user)
}

// HandleGetUser retrieves a single user by ID.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid user ID",
		})
	}

	user, err := h.userService.GetUser(uint(id))
	if err != nil {
		log.Printf("Error getting user %d: %v", id, err)
		return fail(c, "Could not retrieve user", err)
	}
	return c.JSON(user)
}
