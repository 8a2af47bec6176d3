package models

import "time"

// Category is the garment category assigned to an item at creation time.
type Category string

const (
	CategoryTop       Category = "top"
	CategoryBottom    Category = "bottom"
	CategoryOuterwear Category = "outerwear"
	CategoryShoes     Category = "shoes"
	CategoryAccessory Category = "accessory"
)

// Categories lists every valid garment category, in classifier order.
var Categories = []Category{
	CategoryTop,
	CategoryBottom,
	CategoryOuterwear,
	CategoryShoes,
	CategoryAccessory,
}

// ClothingItem is a garment in a user's closet. The item-level URLs mirror
// the first photo so closet listings don't need a join to render a thumbnail.
type ClothingItem struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	OwnerID          uint      `json:"owner_id" gorm:"not null;index"`
	Name             *string   `json:"name,omitempty"`
	ImageURL         string    `json:"processed_url" gorm:"not null"`
	OriginalImageURL *string   `json:"original_url,omitempty"`
	Category         Category  `json:"category" gorm:"type:varchar(32);not null"`
	Color            *string   `json:"color,omitempty"`
	CreatedAt        time.Time `json:"created_at"`

	Photos []ClothingItemPhoto `json:"photos" gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
}

// ClothingItemPhoto is one angle shot of an item. Photos are append-only;
// they are removed only when the owning item is deleted.
type ClothingItemPhoto struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	ItemID           uint      `json:"item_id" gorm:"not null;index"`
	ImageURL         string    `json:"processed_url" gorm:"not null"`
	OriginalImageURL *string   `json:"original_url,omitempty"`
	AngleLabel       *string   `json:"angle_label,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
