package repositories

import (
	"errors"
	"fmt"

	"closet/internal/models"

	"gorm.io/gorm"
)

// GORMItemRepository is a GORM implementation of ItemRepository.
type GORMItemRepository struct {
	db *gorm.DB
}

// NewGORMItemRepository creates a new instance of GORMItemRepository.
func NewGORMItemRepository(db *gorm.DB) *GORMItemRepository {
	return &GORMItemRepository{db: db}
}

// withPhotos preloads photos in insertion (chronological) order.
func withPhotos(db *gorm.DB) *gorm.DB {
	return db.Preload("Photos", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	})
}

// Create inserts a new item together with its initial photos.
func (r *GORMItemRepository) Create(item *models.ClothingItem) error {
	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create clothing item: %w", err)
	}
	return nil
}

// GetByID retrieves a single item with its ordered photo list.
func (r *GORMItemRepository) GetByID(id uint) (*models.ClothingItem, error) {
	var item models.ClothingItem
	if err := withPhotos(r.db).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("clothing item %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get clothing item %d: %w", id, err)
	}
	return &item, nil
}

// ListByOwner retrieves all items of one owner, newest first.
func (r *GORMItemRepository) ListByOwner(ownerID uint) ([]models.ClothingItem, error) {
	var items []models.ClothingItem
	err := withPhotos(r.db).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list items for owner %d: %w", ownerID, err)
	}
	return items, nil
}

// AddPhotos appends photos to an item inside a single transaction so a
// failure never leaves a partial photo set behind.
func (r *GORMItemRepository) AddPhotos(itemID uint, photos []models.ClothingItemPhoto) (*models.ClothingItem, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var item models.ClothingItem
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("clothing item %d: %w", itemID, ErrNotFound)
			}
			return fmt.Errorf("failed to get clothing item %d: %w", itemID, err)
		}
		for i := range photos {
			photos[i].ItemID = itemID
			if err := tx.Create(&photos[i]).Error; err != nil {
				return fmt.Errorf("failed to add photo to item %d: %w", itemID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(itemID)
}

// UpdateName overwrites an item's name.
func (r *GORMItemRepository) UpdateName(itemID uint, name string) (*models.ClothingItem, error) {
	res := r.db.Model(&models.ClothingItem{}).Where("id = ?", itemID).Update("name", name)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to rename item %d: %w", itemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("clothing item %d: %w", itemID, ErrNotFound)
	}
	return r.GetByID(itemID)
}

// Delete removes an item, cascades to its photos and nulls any outfit slot
// that referenced it. Outfits themselves are never deleted here.
func (r *GORMItemRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.ClothingItem{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete clothing item %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("clothing item %d: %w", id, ErrNotFound)
		}
		if err := tx.Delete(&models.ClothingItemPhoto{}, "item_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete photos of item %d: %w", id, err)
		}
		for _, slot := range []string{"top_id", "bottom_id", "shoes_id", "accessory_id"} {
			if err := tx.Model(&models.Outfit{}).
				Where(slot+" = ?", id).
				Update(slot, gorm.Expr("NULL")).Error; err != nil {
				return fmt.Errorf("failed to clear outfit %s references for item %d: %w", slot, id, err)
			}
		}
		return nil
	})
}
