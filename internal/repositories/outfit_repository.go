package repositories

import (
	"fmt"

	"closet/internal/models"

	"gorm.io/gorm"
)

// OutfitRepository defines the interface for outfit data access. Outfits are
// append-only in this service: they are created by a successful try-on and
// never updated.
type OutfitRepository interface {
	Create(outfit *models.Outfit) error
	ListByOwner(ownerID uint) ([]models.Outfit, error)
}

// GORMOutfitRepository is a GORM implementation of OutfitRepository.
type GORMOutfitRepository struct {
	db *gorm.DB
}

// NewGORMOutfitRepository creates a new instance of GORMOutfitRepository.
func NewGORMOutfitRepository(db *gorm.DB) *GORMOutfitRepository {
	return &GORMOutfitRepository{db: db}
}

// Create inserts a new outfit.
func (r *GORMOutfitRepository) Create(outfit *models.Outfit) error {
	if err := r.db.Create(outfit).Error; err != nil {
		return fmt.Errorf("failed to create outfit: %w", err)
	}
	return nil
}

// ListByOwner retrieves a user's outfits, newest first.
func (r *GORMOutfitRepository) ListByOwner(ownerID uint) ([]models.Outfit, error) {
	var outfits []models.Outfit
	err := r.db.
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&outfits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list outfits for owner %d: %w", ownerID, err)
	}
	return outfits, nil
}
