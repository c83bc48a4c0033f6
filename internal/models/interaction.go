package models

import "time"

// Favorite is a viewer's bookmark of a property.
type Favorite struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint64    `gorm:"not null;uniqueIndex:idx_favorite_user_property" json:"-"`
	User       *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PropertyID uint64    `gorm:"not null;uniqueIndex:idx_favorite_user_property" json:"-"`
	Property   *Property `gorm:"constraint:OnDelete:CASCADE" json:"property"`
	CreatedAt  time.Time `json:"created_at"`
}

// ContactForm is an enquiry about a property, written once.
type ContactForm struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Email      string    `gorm:"size:254;not null" json:"email"`
	Phone      *string   `gorm:"size:50" json:"phone"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	PropertyID uint64    `gorm:"not null;index" json:"property"`
	Property   *Property `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName overrides the table name for Favorite
func (Favorite) TableName() string {
	return "favorites"
}

// TableName overrides the table name for ContactForm
func (ContactForm) TableName() string {
	return "contact_forms"
}
