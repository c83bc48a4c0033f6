package models

// Client is a customer of the brokerage, owned by one agent.
type Client struct {
	ID      uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string  `gorm:"size:255;not null" json:"name"`
	Email   string  `gorm:"size:254;not null;uniqueIndex" json:"email"`
	Phone   string  `gorm:"size:50;not null" json:"phone"`
	Notes   *string `gorm:"type:text" json:"notes"`
	AgentID uint64  `gorm:"not null;index" json:"agent"`
	Agent   *User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name for Client
func (Client) TableName() string {
	return "clients"
}
