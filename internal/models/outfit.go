package models

import "time"

// Outfit records one successful try-on composition. The four garment slots
// are non-owning references: deleting an item nulls the slot, never the
// outfit, and one item may appear in any number of outfits.
type Outfit struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	OwnerID           uint      `json:"owner_id" gorm:"not null;index"`
	TopID             *uint     `json:"top_id,omitempty"`
	BottomID          *uint     `json:"bottom_id,omitempty"`
	ShoesID           *uint     `json:"shoes_id,omitempty"`
	AccessoryID       *uint     `json:"accessory_id,omitempty"`
	GeneratedImageURL string    `json:"generated_image_url"`
	CreatedAt         time.Time `json:"created_at"`

	Top       *ClothingItem `json:"-" gorm:"foreignKey:TopID;constraint:OnDelete:SET NULL"`
	Bottom    *ClothingItem `json:"-" gorm:"foreignKey:BottomID;constraint:OnDelete:SET NULL"`
	Shoes     *ClothingItem `json:"-" gorm:"foreignKey:ShoesID;constraint:OnDelete:SET NULL"`
	Accessory *ClothingItem `json:"-" gorm:"foreignKey:AccessoryID;constraint:OnDelete:SET NULL"`
}
