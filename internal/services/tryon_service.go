package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"closet/internal/models"
	"closet/internal/repositories"
	"closet/internal/vton"
	"closet/pkg/rabbitmq"
)

// PlaceholderAvatarURL stands in for users who never stored a base photo.
const PlaceholderAvatarURL = "https://via.placeholder.com/400x600.png?text=Avatar"

// generationCategory is the fixed label handed to the provider. The provider
// contract wants a body-region hint, not our closet category.
const generationCategory = "upper_body"

// TryOnRequest selects up to four garments by role. At least one slot must
// be populated.
type TryOnRequest struct {
	UserID      uint  `json:"user_id" validate:"required"`
	TopID       *uint `json:"top_id"`
	BottomID    *uint `json:"bottom_id"`
	ShoesID     *uint `json:"shoes_id"`
	AccessoryID *uint `json:"accessory_id"`
}

// slots returns the garment references in the fixed priority order used for
// validation: top, bottom, shoes, accessory.
func (r TryOnRequest) slots() []*uint {
	return []*uint{r.TopID, r.BottomID, r.ShoesID, r.AccessoryID}
}

// firstPopulated returns the highest-priority garment reference, or nil when
// every slot is empty.
func (r TryOnRequest) firstPopulated() *uint {
	for _, id := range r.slots() {
		if id != nil {
			return id
		}
	}
	return nil
}

// TryOnService composes outfits: it validates a try-on request, invokes the
// generation capability and records the result. A request moves through
// requested, validated, generating and recorded; any generator error is
// terminal for the request and nothing is persisted.
type TryOnService struct {
	userRepo      repositories.UserRepository
	itemRepo      repositories.ItemRepository
	outfitRepo    repositories.OutfitRepository
	generator     vton.Generator
	staticBaseURL string
	mqClient      *rabbitmq.Client
}

// NewTryOnService creates a new TryOnService. mqClient may be nil.
func NewTryOnService(
	userRepo repositories.UserRepository,
	itemRepo repositories.ItemRepository,
	outfitRepo repositories.OutfitRepository,
	generator vton.Generator,
	staticBaseURL string,
	mqClient *rabbitmq.Client,
) *TryOnService {
	return &TryOnService{
		userRepo:      userRepo,
		itemRepo:      itemRepo,
		outfitRepo:    outfitRepo,
		generator:     generator,
		staticBaseURL: staticBaseURL,
		mqClient:      mqClient,
	}
}

// TryOn runs one composition end to end and returns the recorded outfit.
func (s *TryOnService) TryOn(ctx context.Context, req TryOnRequest) (*models.Outfit, error) {
	garmentID := req.firstPopulated()
	if garmentID == nil {
		return nil, fmt.Errorf("%w: must provide at least one garment to try on", ErrInvalidInput)
	}

	user, err := s.userRepo.GetByID(req.UserID)
	if err != nil {
		return nil, err
	}

	// Ownership is checked against the first populated slot only; the
	// remaining slots are recorded as supplied.
	garment, err := s.itemRepo.GetByID(*garmentID)
	if err != nil {
		return nil, err
	}
	if garment.OwnerID != req.UserID {
		return nil, fmt.Errorf("clothing item %d is not owned by user %d: %w",
			garment.ID, req.UserID, repositories.ErrNotFound)
	}

	avatarURL := PlaceholderAvatarURL
	if user.AvatarImageURL != nil && *user.AvatarImageURL != "" {
		avatarURL = *user.AvatarImageURL
	}
	garmentURL := s.staticBaseURL + garment.ImageURL

	resultURL, err := s.generator.Generate(ctx, avatarURL, garmentURL, generationCategory)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	outfit := &models.Outfit{
		OwnerID:           req.UserID,
		TopID:             req.TopID,
		BottomID:          req.BottomID,
		ShoesID:           req.ShoesID,
		AccessoryID:       req.AccessoryID,
		GeneratedImageURL: resultURL,
	}
	if err := s.outfitRepo.Create(outfit); err != nil {
		return nil, err
	}

	s.publishOutfitCreated(outfit)
	return outfit, nil
}

// ListOutfits returns a user's recorded outfits, newest first.
func (s *TryOnService) ListOutfits(ownerID uint) ([]models.Outfit, error) {
	if _, err := s.userRepo.GetByID(ownerID); err != nil {
		return nil, err
	}
	return s.outfitRepo.ListByOwner(ownerID)
}

func (s *TryOnService) publishOutfitCreated(outfit *models.Outfit) {
	if s.mqClient == nil {
		return
	}
	body, err := json.Marshal(map[string]any{
		"outfit_id": outfit.ID,
		"owner_id":  outfit.OwnerID,
		"image_url": outfit.GeneratedImageURL,
	})
	if err != nil {
		log.Printf("failed to marshal outfit.created event: %v", err)
		return
	}
	if err := s.mqClient.Publish("outfit.created", body); err != nil {
		log.Printf("warning: failed to publish outfit.created event: %v", err)
	}
}
