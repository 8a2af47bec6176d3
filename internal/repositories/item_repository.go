package repositories

import "closet/internal/models"

// ItemRepository defines the interface for clothing item data access.
// Every returned item carries its photos in chronological order.
type ItemRepository interface {
	Create(item *models.ClothingItem) error
	GetByID(id uint) (*models.ClothingItem, error)
	ListByOwner(ownerID uint) ([]models.ClothingItem, error)
	AddPhotos(itemID uint, photos []models.ClothingItemPhoto) (*models.ClothingItem, error)
	UpdateName(itemID uint, name string) (*models.ClothingItem, error)
	Delete(id uint) error
}
