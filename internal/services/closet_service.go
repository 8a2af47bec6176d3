package services

import (
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"closet/internal/imaging"
	"closet/internal/models"
	"closet/internal/repositories"
	"closet/internal/storage"
	"closet/pkg/rabbitmq"
)

// Upload describes one incoming file: its declared metadata plus raw bytes.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ClosetService runs the upload-processing pipeline and manages a user's
// clothing items and photos.
type ClosetService struct {
	userRepo  repositories.UserRepository
	itemRepo  repositories.ItemRepository
	processor *imaging.Processor
	assets    storage.AssetStore
	mqClient  *rabbitmq.Client
}

// NewClosetService creates a new ClosetService. mqClient may be nil; events
// are then skipped.
func NewClosetService(
	userRepo repositories.UserRepository,
	itemRepo repositories.ItemRepository,
	processor *imaging.Processor,
	assets storage.AssetStore,
	mqClient *rabbitmq.Client,
) *ClosetService {
	return &ClosetService{
		userRepo:  userRepo,
		itemRepo:  itemRepo,
		processor: processor,
		assets:    assets,
		mqClient:  mqClient,
	}
}

// CreateItem validates an upload, derives its processed artifacts and
// persists a new item with exactly one initial photo. The returned message
// reflects whether background removal actually ran or the upload was stored
// as-is because the format could not be decoded.
func (s *ClosetService) CreateItem(ownerID uint, name string, upload Upload) (*models.ClothingItem, string, error) {
	if err := imaging.ValidateUpload(upload.ContentType, upload.Filename, upload.Data); err != nil {
		return nil, "", err
	}

	if _, err := s.userRepo.GetByID(ownerID); err != nil {
		return nil, "", err
	}

	// Unsupported formats degrade to a pass-through of the raw bytes rather
	// than failing the upload; background removal is best effort here.
	result, err := s.processor.ProcessLenient(upload.Data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to process image: %w", err)
	}

	category := imaging.Categorize(upload.Data)

	origURL, procURL, err := s.assets.Save(filepath.Ext(upload.Filename), upload.Data, result.PNG)
	if err != nil {
		return nil, "", err
	}

	angle := "front"
	item := &models.ClothingItem{
		OwnerID:          ownerID,
		Name:             normalizeName(name, upload.Filename),
		ImageURL:         procURL,
		OriginalImageURL: &origURL,
		Category:         category,
		Photos: []models.ClothingItemPhoto{{
			ImageURL:         procURL,
			OriginalImageURL: &origURL,
			AngleLabel:       &angle,
		}},
	}
	if err := s.itemRepo.Create(item); err != nil {
		if cleanupErr := s.assets.Remove(origURL, procURL); cleanupErr != nil {
			log.Printf("failed to clean up assets after item create error: %v", cleanupErr)
		}
		return nil, "", err
	}

	s.publish("item.created", map[string]any{
		"item_id":  item.ID,
		"owner_id": item.OwnerID,
		"category": item.Category,
	})

	message := "Image uploaded, background removed, and categorized successfully"
	if result.Degraded {
		message = "Image uploaded and categorized; " + result.Note
	}
	return item, message, nil
}

// AddPhotos appends one processed photo per upload, in order. An empty batch
// is a client error, and any upload that fails validation or decoding aborts
// the whole batch before anything is stored.
func (s *ClosetService) AddPhotos(itemID uint, uploads []Upload, angleLabel string) (*models.ClothingItem, error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: at least one photo file is required", ErrInvalidInput)
	}

	if _, err := s.itemRepo.GetByID(itemID); err != nil {
		return nil, err
	}

	// Process everything up front so a bad file in the middle of the batch
	// cannot leave a partial photo set behind.
	results := make([]imaging.Result, len(uploads))
	for i, up := range uploads {
		if err := imaging.ValidateUpload(up.ContentType, up.Filename, up.Data); err != nil {
			return nil, err
		}
		res, err := s.processor.Process(up.Data)
		if err != nil {
			return nil, fmt.Errorf("photo %q: %w", up.Filename, err)
		}
		results[i] = res
	}

	angle := optionalString(angleLabel)
	photos := make([]models.ClothingItemPhoto, len(uploads))
	var saved []string
	for i, up := range uploads {
		origURL, procURL, err := s.assets.Save(filepath.Ext(up.Filename), up.Data, results[i].PNG)
		if err != nil {
			s.cleanup(saved)
			return nil, err
		}
		saved = append(saved, origURL, procURL)
		photos[i] = models.ClothingItemPhoto{
			ImageURL:         procURL,
			OriginalImageURL: &origURL,
			AngleLabel:       angle,
		}
	}

	item, err := s.itemRepo.AddPhotos(itemID, photos)
	if err != nil {
		s.cleanup(saved)
		return nil, err
	}
	return item, nil
}

// RenameItem overwrites an item's name. A trimmed-empty name is a client
// error.
func (s *ClosetService) RenameItem(itemID uint, name string) (*models.ClothingItem, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: item name must not be empty", ErrInvalidInput)
	}
	return s.itemRepo.UpdateName(itemID, trimmed)
}

// ListCloset returns the owner's items, newest first, each with its full
// ordered photo list.
func (s *ClosetService) ListCloset(ownerID uint) ([]models.ClothingItem, error) {
	return s.itemRepo.ListByOwner(ownerID)
}

// DeleteItem removes an item with its photos and best-effort deletes the
// stored asset files. Outfits that referenced the item keep existing with
// the slot nulled out.
func (s *ClosetService) DeleteItem(itemID uint) error {
	item, err := s.itemRepo.GetByID(itemID)
	if err != nil {
		return err
	}

	if err := s.itemRepo.Delete(itemID); err != nil {
		return err
	}

	var urls []string
	for _, photo := range item.Photos {
		urls = append(urls, photo.ImageURL)
		if photo.OriginalImageURL != nil {
			urls = append(urls, *photo.OriginalImageURL)
		}
	}
	s.cleanup(urls)
	return nil
}

func (s *ClosetService) cleanup(urls []string) {
	if len(urls) == 0 {
		return
	}
	if err := s.assets.Remove(urls...); err != nil {
		log.Printf("failed to remove stored assets: %v", err)
	}
}

func (s *ClosetService) publish(event string, payload map[string]any) {
	if s.mqClient == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", event, err)
		return
	}
	if err := s.mqClient.Publish(event, body); err != nil {
		log.Printf("warning: failed to publish %s event: %v", event, err)
	}
}

// normalizeName trims the explicit name, falls back to the filename stem and
// leaves the name unset when both are blank.
func normalizeName(explicit, filename string) *string {
	if trimmed := strings.TrimSpace(explicit); trimmed != "" {
		return &trimmed
	}
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if trimmed := strings.TrimSpace(stem); trimmed != "" && trimmed != "." {
		return &trimmed
	}
	return nil
}

func optionalString(v string) *string {
	if trimmed := strings.TrimSpace(v); trimmed != "" {
		return &trimmed
	}
	return nil
}
