package models

import "time"

// Visit is a scheduled viewing of a property with a client.
type Visit struct {
	ID         uint64      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID uint64      `gorm:"not null;index" json:"property"`
	Property   *Property   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ClientID   uint64      `gorm:"not null;index" json:"client"`
	Client     *Client     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AgentID    uint64      `gorm:"not null;index" json:"agent"`
	Agent      *User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Date       time.Time   `gorm:"not null;index" json:"date"`
	Status     VisitStatus `gorm:"size:50;not null;index" json:"status"`
	Notes      *string     `gorm:"type:text" json:"notes"`
}

// TableName overrides the table name for Visit
func (Visit) TableName() string {
	return "visits"
}
