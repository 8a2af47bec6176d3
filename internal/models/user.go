package models

import "time"

// User owns clothing items and outfits. Created once at bootstrap and
// immutable afterwards.
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Email          string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null" validate:"required,email"`
	FullName       string    `json:"full_name" gorm:"type:varchar(255);not null" validate:"required"`
	AvatarImageURL *string   `json:"avatar_image_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`

	ClothingItems []ClothingItem `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Outfits       []Outfit       `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
}
