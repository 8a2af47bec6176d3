package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"closet/internal/database"
	"closet/internal/handlers"
	"closet/internal/imaging"
	"closet/internal/models"
	"closet/internal/repositories"
	"closet/internal/services"
	"closet/internal/storage"
	"closet/internal/vton"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dbCounter atomic.Int64

// setupApp boots a Fiber app on a fresh in-memory SQLite database with a
// temp-dir asset store and the mock generation client.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := database.Open(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	assets, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	userRepo := repositories.NewGORMUserRepository(db)
	itemRepo := repositories.NewGORMItemRepository(db)
	outfitRepo := repositories.NewGORMOutfitRepository(db)

	processor := imaging.NewProcessor(imaging.NewHeuristicRemover(), 2)
	generator := &vton.MockClient{Delay: 10 * time.Millisecond}

	userService := services.NewUserService(userRepo)
	closetService := services.NewClosetService(userRepo, itemRepo, processor, assets, nil)
	tryOnService := services.NewTryOnService(userRepo, itemRepo, outfitRepo, generator, "http://localhost:8000", nil)

	app := fiber.New()
	api := app.Group("/api")
	handlers.NewUserHandler(userService).RegisterRoutes(api)
	handlers.NewClosetHandler(closetService).RegisterRoutes(api)
	handlers.NewTryOnHandler(tryOnService).RegisterRoutes(api)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	return app
}

// TestMain suppresses handler logging for cleaner test output.
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func sampleImageBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 120, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 120; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

type filePart struct {
	field    string
	filename string
	data     []byte
}

// multipartRequest builds a multipart POST with form fields and file parts.
func multipartRequest(t *testing.T, url string, fields map[string]string, files ...filePart) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, url, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, url string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func bootstrapUser(t *testing.T, app *fiber.App, email string) models.User {
	t.Helper()
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/users/bootstrap", map[string]any{
		"email":     email,
		"full_name": "Demo",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decodeJSON[models.User](t, resp)
}

func TestHealthcheck(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	payload := decodeJSON[map[string]string](t, resp)
	assert.Equal(t, "ok", payload["status"])
}

func TestBootstrapIsIdempotentOnEmail(t *testing.T) {
	app := setupApp(t)

	first := bootstrapUser(t, app, "demo@x.com")
	second := bootstrapUser(t, app, "demo@x.com")
	assert.Equal(t, first.ID, second.ID)

	// Malformed email is rejected by validation.
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/users/bootstrap", map[string]any{
		"email":     "not-an-email",
		"full_name": "Demo",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestGetUserNotFound(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/users/999", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestBootstrapUploadClosetTryOnFlow(t *testing.T) {
	app := setupApp(t)
	user := bootstrapUser(t, app, "demo@x.com")

	// Upload one JPEG with an explicit name.
	imageBytes := sampleImageBytes(t)
	resp, err := app.Test(multipartRequest(t, "/api/upload",
		map[string]string{
			"owner_id":  fmt.Sprint(user.ID),
			"item_name": "Black Hoodie",
		},
		filePart{field: "file", filename: "item.jpg", data: imageBytes},
	), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	uploadPayload := decodeJSON[struct {
		Item    models.ClothingItem `json:"item"`
		Message string              `json:"message"`
	}](t, resp)
	item := uploadPayload.Item
	assert.Equal(t, user.ID, item.OwnerID)
	require.NotNil(t, item.Name)
	assert.Equal(t, "Black Hoodie", *item.Name)
	assert.Contains(t, models.Categories, item.Category)
	assert.True(t, strings.HasPrefix(item.ImageURL, "/static/"))
	require.Len(t, item.Photos, 1)
	require.NotNil(t, item.Photos[0].AngleLabel)
	assert.Equal(t, "front", *item.Photos[0].AngleLabel)
	assert.Contains(t, uploadPayload.Message, "background removed")

	// Add one more photo with a shared angle label.
	resp, err = app.Test(multipartRequest(t, fmt.Sprintf("/api/items/%d/photos", item.ID),
		map[string]string{"angle_label": "side"},
		filePart{field: "files", filename: "angle2.jpg", data: imageBytes},
	), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	updated := decodeJSON[models.ClothingItem](t, resp)
	require.Len(t, updated.Photos, 2)
	require.NotNil(t, updated.Photos[1].AngleLabel)
	assert.Equal(t, "side", *updated.Photos[1].AngleLabel)

	// Rename the item.
	resp, err = app.Test(jsonRequest(t, http.MethodPatch, fmt.Sprintf("/api/items/%d", item.ID),
		map[string]string{"name": "Black Hoodie - Oversized"}), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	renamed := decodeJSON[models.ClothingItem](t, resp)
	require.NotNil(t, renamed.Name)
	assert.Equal(t, "Black Hoodie - Oversized", *renamed.Name)

	// Closet listing reflects the rename and both photos.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/closet/%d", user.ID), nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	closet := decodeJSON[[]models.ClothingItem](t, resp)
	require.NotEmpty(t, closet)
	require.NotNil(t, closet[0].Name)
	assert.Equal(t, "Black Hoodie - Oversized", *closet[0].Name)
	assert.Len(t, closet[0].Photos, 2)

	// Try on the item as the top slot.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/tryon", map[string]any{
		"user_id": user.ID,
		"top_id":  item.ID,
	}), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	tryOn := decodeJSON[struct {
		OutfitID          uint   `json:"outfit_id"`
		GeneratedImageURL string `json:"generated_image_url"`
		Message           string `json:"message"`
	}](t, resp)
	assert.GreaterOrEqual(t, tryOn.OutfitID, uint(1))
	assert.True(t, strings.HasPrefix(tryOn.GeneratedImageURL, "http"))

	// The recorded outfit shows up in the outfit listing.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/outfits/%d", user.ID), nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	outfits := decodeJSON[[]models.Outfit](t, resp)
	require.Len(t, outfits, 1)
	assert.Equal(t, tryOn.OutfitID, outfits[0].ID)
}

func TestUploadRejections(t *testing.T) {
	app := setupApp(t)
	user := bootstrapUser(t, app, "uploader@x.com")

	// Not an image: wrong content type and extension.
	resp, err := app.Test(multipartRequest(t, "/api/upload",
		map[string]string{"owner_id": fmt.Sprint(user.ID)},
		filePart{field: "file", filename: "notes.txt", data: []byte("plain text")},
	), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Empty payload.
	resp, err = app.Test(multipartRequest(t, "/api/upload",
		map[string]string{"owner_id": fmt.Sprint(user.ID)},
		filePart{field: "file", filename: "item.jpg", data: nil},
	), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Unknown owner.
	resp, err = app.Test(multipartRequest(t, "/api/upload",
		map[string]string{"owner_id": "9999"},
		filePart{field: "file", filename: "item.jpg", data: sampleImageBytes(t)},
	), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAddPhotosEmptyBatchRejected(t *testing.T) {
	app := setupApp(t)
	user := bootstrapUser(t, app, "batch@x.com")

	resp, err := app.Test(multipartRequest(t, "/api/upload",
		map[string]string{"owner_id": fmt.Sprint(user.ID)},
		filePart{field: "file", filename: "shirt.jpg", data: sampleImageBytes(t)},
	), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	payload := decodeJSON[struct {
		Item models.ClothingItem `json:"item"`
	}](t, resp)

	// No files at all in the batch.
	resp, err = app.Test(multipartRequest(t, fmt.Sprintf("/api/items/%d/photos", payload.Item.ID),
		map[string]string{"angle_label": "side"},
	), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestTryOnRejections(t *testing.T) {
	app := setupApp(t)
	owner := bootstrapUser(t, app, "owner@x.com")
	other := bootstrapUser(t, app, "other@x.com")

	resp, err := app.Test(multipartRequest(t, "/api/upload",
		map[string]string{"owner_id": fmt.Sprint(owner.ID)},
		filePart{field: "file", filename: "jacket.jpg", data: sampleImageBytes(t)},
	), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	payload := decodeJSON[struct {
		Item models.ClothingItem `json:"item"`
	}](t, resp)

	// No garment slot populated.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/tryon", map[string]any{
		"user_id": owner.ID,
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Another user's garment.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/tryon", map[string]any{
		"user_id": other.ID,
		"top_id":  payload.Item.ID,
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestDeleteItemNullsOutfitReferences(t *testing.T) {
	app := setupApp(t)
	user := bootstrapUser(t, app, "delete@x.com")

	resp, err := app.Test(multipartRequest(t, "/api/upload",
		map[string]string{"owner_id": fmt.Sprint(user.ID)},
		filePart{field: "file", filename: "boots.jpg", data: sampleImageBytes(t)},
	), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	payload := decodeJSON[struct {
		Item models.ClothingItem `json:"item"`
	}](t, resp)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/tryon", map[string]any{
		"user_id":  user.ID,
		"shoes_id": payload.Item.ID,
	}), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/items/%d", payload.Item.ID), nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The outfit survives the item deletion with its slot nulled.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/outfits/%d", user.ID), nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	outfits := decodeJSON[[]models.Outfit](t, resp)
	require.Len(t, outfits, 1)
	assert.Nil(t, outfits[0].ShoesID)

	// And the closet no longer lists the item.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/closet/%d", user.ID), nil), -1)
	require.NoError(t, err)
	closet := decodeJSON[[]models.ClothingItem](t, resp)
	assert.Empty(t, closet)
}
