package handlers

import (
	"io"
	"log"
	"mime/multipart"
	"strconv"

	"closet/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ClosetHandler handles HTTP requests for uploads, photos and closet
// listings.
type ClosetHandler struct {
	closetService *services.ClosetService
}

// NewClosetHandler creates a new ClosetHandler.
func NewClosetHandler(closetService *services.ClosetService) *ClosetHandler {
	return &ClosetHandler{closetService: closetService}
}

// RegisterRoutes registers closet routes with the Fiber app.
func (h *ClosetHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/upload", h.HandleUpload)
	router.Get("/closet/:ownerID", h.HandleListCloset)

	itemRoutes := router.Group("/items")
	itemRoutes.Post("/:id/photos", h.HandleAddPhotos)
	itemRoutes.Patch("/:id", h.HandleRename)
	itemRoutes.Delete("/:id", h.HandleDelete)
}

// readUpload drains one multipart file into an Upload.
func readUpload(fh *multipart.FileHeader) (services.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return services.Upload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return services.Upload{}, err
	}
	return services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// HandleUpload runs the full upload pipeline: validation, background
// removal, categorization, asset storage and item creation.
func (h *ClosetHandler) HandleUpload(c *fiber.Ctx) error {
	ownerID, err := strconv.ParseUint(c.FormValue("owner_id"), 10, 32)
	if err != nil || ownerID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "A numeric owner_id form field is required",
		})
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "A file form field is required",
			"error":   err.Error(),
		})
	}
	upload, err := readUpload(fh)
	if err != nil {
		log.Printf("Error reading uploaded file: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not read uploaded file",
			"error":   err.Error(),
		})
	}

	item, message, err := h.closetService.CreateItem(uint(ownerID), c.FormValue("item_name"), upload)
	if err != nil {
		log.Printf("Error creating item for owner %d: %v", ownerID, err)
		return fail(c, "Could not create clothing item", err)
	}

	return c.JSON(fiber.Map{
		"item":    item,
		"message": message,
	})
}

// HandleAddPhotos appends one or more photos to an existing item. All files
// share the optional angle_label form field.
func (h *ClosetHandler) HandleAddPhotos(c *fiber.Ctx) error {
	itemID, err := c.ParamsInt("id")
	if err != nil || itemID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid item ID",
		})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid multipart form",
			"error":   err.Error(),
		})
	}

	var uploads []services.Upload
	for _, fh := range form.File["files"] {
		upload, err := readUpload(fh)
		if err != nil {
			log.Printf("Error reading uploaded photo: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Could not read uploaded file",
				"error":   err.Error(),
			})
		}
		uploads = append(uploads, upload)
	}

	item, err := h.closetService.AddPhotos(uint(itemID), uploads, c.FormValue("angle_label"))
	if err != nil {
		log.Printf("Error adding photos to item %d: %v", itemID, err)
		return fail(c, "Could not add photos", err)
	}
	return c.JSON(item)
}

// RenameRequest is the body for item renames.
type RenameRequest struct {
	Name string `json:"name"`
}

// HandleRename overwrites an item's name.
func (h *ClosetHandler) HandleRename(c *fiber.Ctx) error {
	itemID, err := c.ParamsInt("id")
	if err != nil || itemID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid item ID",
		})
	}

	var req RenameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	item, err := h.closetService.RenameItem(uint(itemID), req.Name)
	if err != nil {
		log.Printf("Error renaming item %d: %v", itemID, err)
		return fail(c, "Could not rename item", err)
	}
	return c.JSON(item)
}

// HandleDelete removes an item, its photos and its stored assets.
func (h *ClosetHandler) HandleDelete(c *fiber.Ctx) error {
	itemID, err := c.ParamsInt("id")
	if err != nil || itemID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid item ID",
		})
	}

	if err := h.closetService.DeleteItem(uint(itemID)); err != nil {
		log.Printf("Error deleting item %d: %v", itemID, err)
		return fail(c, "Could not delete item", err)
	}
	return c.JSON(fiber.Map{
		"message": "Item deleted successfully",
	})
}

// HandleListCloset returns an owner's items, newest first.
func (h *ClosetHandler) HandleListCloset(c *fiber.Ctx) error {
	ownerID, err := c.ParamsInt("ownerID")
	if err != nil || ownerID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid owner ID",
		})
	}

	items, err := h.closetService.ListCloset(uint(ownerID))
	if err != nil {
		log.Printf("Error listing closet for owner %d: %v", ownerID, err)
		return fail(c, "Could not list closet", err)
	}
	return c.JSON(items)
}
