package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MediaURLPrefix is the public URL prefix of stored files.
const MediaURLPrefix = "/media/"

// Property is a listing owned by an agent.
type Property struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Status      PropertyStatus  `gorm:"size:20;not null;default:available;index" json:"status"`
	Address     string          `gorm:"size:255;not null" json:"address"`
	Latitude    *float64        `json:"latitude"`
	Longitude   *float64        `json:"longitude"`
	OwnerID     uint64          `gorm:"not null;index" json:"owner"`
	Owner       *User           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Images      []PropertyImage `gorm:"constraint:OnDelete:CASCADE" json:"images"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PropertyImage is a stored picture attached to a property.
type PropertyImage struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID uint64    `gorm:"not null;index" json:"-"`
	Path       string    `gorm:"size:255;not null" json:"-"`
	URL        string    `gorm:"-" json:"image"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

// AfterFind fills the public URL of the image
func (i *PropertyImage) AfterFind(tx *gorm.DB) error {
	i.URL = MediaURLPrefix + i.Path
	return nil
}

// TableName overrides the table name for Property
func (Property) TableName() string {
	return "properties"
}

// TableName overrides the table name for PropertyImage
func (PropertyImage) TableName() string {
	return "property_images"
}
