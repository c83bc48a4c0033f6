package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Contract binds a property and a client through the agent who wrote it.
type Contract struct {
	ID         uint64          `gorm:"primaryKey;autoIncrement"`
	PropertyID uint64          `gorm:"not null;index"`
	Property   *Property       `gorm:"constraint:OnDelete:CASCADE"`
	ClientID   uint64          `gorm:"not null;index"`
	Client     *Client         `gorm:"constraint:OnDelete:CASCADE"`
	AgentID    uint64          `gorm:"not null;index"`
	Agent      *User           `gorm:"constraint:OnDelete:CASCADE"`
	Type       ContractType    `gorm:"size:10;not null"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StartDate  datatypes.Date  `gorm:"not null"`
	EndDate    *datatypes.Date
	Document   string         `gorm:"size:255;not null"`
	Status     ContractStatus `gorm:"size:10;not null;default:draft;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName overrides the table name for Contract
func (Contract) TableName() string {
	return "contracts"
}

type propertySummary struct {
	ID     uint64         `json:"id"`
	Title  string         `json:"title"`
	Status PropertyStatus `json:"status"`
}

type clientSummary struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MarshalJSON renders dates as YYYY-MM-DD and embeds summaries of the
// property and client when they were preloaded.
func (c Contract) MarshalJSON() ([]byte, error) {
	out := struct {
		ID              uint64           `json:"id"`
		Property        uint64           `json:"property"`
		PropertySummary *propertySummary `json:"property_summary"`
		Client          uint64           `json:"client"`
		ClientSummary   *clientSummary   `json:"client_summary"`
		Agent           uint64           `json:"agent"`
		Type            ContractType     `json:"type"`
		Price           decimal.Decimal  `json:"price"`
		StartDate       string           `json:"start_date"`
		EndDate         *string          `json:"end_date"`
		Document        string           `json:"document"`
		Status          ContractStatus   `json:"status"`
		CreatedAt       time.Time        `json:"created_at"`
		UpdatedAt       time.Time        `json:"updated_at"`
	}{
		ID:        c.ID,
		Property:  c.PropertyID,
		Client:    c.ClientID,
		Agent:     c.AgentID,
		Type:      c.Type,
		Price:     c.Price,
		StartDate: formatDate(c.StartDate),
		Document:  MediaURLPrefix + c.Document,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.EndDate != nil {
		end := formatDate(*c.EndDate)
		out.EndDate = &end
	}
	if c.Property != nil {
		out.PropertySummary = &propertySummary{ID: c.Property.ID, Title: c.Property.Title, Status: c.Property.Status}
	}
	if c.Client != nil {
		out.ClientSummary = &clientSummary{ID: c.Client.ID, Name: c.Client.Name, Email: c.Client.Email}
	}
	return json.Marshal(out)
}

func formatDate(d datatypes.Date) string {
	return time.Time(d).Format("2006-01-02")
}
