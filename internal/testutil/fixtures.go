package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/localnerve/brokerdb/internal/models"
	"github.com/localnerve/brokerdb/internal/policy"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var seq atomic.Uint64

func next() uint64 {
	return seq.Add(1)
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("Failed to create fixture %T: %v", value, err)
	}
}

// CreateUser adds an active user with the given role.
func CreateUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()
	n := next()
	user := &models.User{
		Email:     fmt.Sprintf("%s%d@example.com", role, n),
		FirstName: string(role),
		LastName:  fmt.Sprint(n),
		Role:      role,
		IsActive:  true,
	}
	mustCreate(t, db, user)
	return user
}

// Deactivate marks user inactive.
func Deactivate(t *testing.T, db *gorm.DB, user *models.User) {
	t.Helper()
	if err := db.Model(user).Update("is_active", false).Error; err != nil {
		t.Fatalf("Failed to deactivate user: %v", err)
	}
}

// Requester returns the policy identity of user.
func Requester(user *models.User) policy.Requester {
	return policy.ForUser(user)
}

// CreateProperty adds a property owned by owner.
func CreateProperty(t *testing.T, db *gorm.DB, owner *models.User, status models.PropertyStatus) *models.Property {
	t.Helper()
	n := next()
	property := &models.Property{
		Title:       fmt.Sprintf("Property %d", n),
		Description: "A fine place",
		Price:       decimal.RequireFromString("250000.00"),
		Status:      status,
		Address:     fmt.Sprintf("%d Main Street", n),
		OwnerID:     owner.ID,
	}
	mustCreate(t, db, property)
	return property
}

// CreateClient adds a client owned by agent.
func CreateClient(t *testing.T, db *gorm.DB, agent *models.User) *models.Client {
	t.Helper()
	n := next()
	client := &models.Client{
		Name:    fmt.Sprintf("Client %d", n),
		Email:   fmt.Sprintf("client%d@example.com", n),
		Phone:   "555-0100",
		AgentID: agent.ID,
	}
	mustCreate(t, db, client)
	return client
}

// CreateContract adds a contract directly, bypassing validation and side
// effects.
func CreateContract(t *testing.T, db *gorm.DB, property *models.Property, client *models.Client, agent *models.User, typ models.ContractType, status models.ContractStatus) *models.Contract {
	t.Helper()
	contract := &models.Contract{
		PropertyID: property.ID,
		ClientID:   client.ID,
		AgentID:    agent.ID,
		Type:       typ,
		Price:      decimal.RequireFromString("1000.00"),
		StartDate:  datatypes.Date(time.Now().UTC()),
		Document:   "contracts/fixture.pdf",
		Status:     status,
	}
	mustCreate(t, db, contract)
	return contract
}

// CreateVisit adds a visit at date.
func CreateVisit(t *testing.T, db *gorm.DB, property *models.Property, client *models.Client, agent *models.User, date time.Time, status models.VisitStatus) *models.Visit {
	t.Helper()
	visit := &models.Visit{
		PropertyID: property.ID,
		ClientID:   client.ID,
		AgentID:    agent.ID,
		Date:       date.UTC(),
		Status:     status,
	}
	mustCreate(t, db, visit)
	return visit
}

// CreateContactForm adds a contact form about property.
func CreateContactForm(t *testing.T, db *gorm.DB, property *models.Property) *models.ContactForm {
	t.Helper()
	n := next()
	form := &models.ContactForm{
		Name:       fmt.Sprintf("Visitor %d", n),
		Email:      fmt.Sprintf("visitor%d@example.com", n),
		Message:    "Is it still available?",
		PropertyID: property.ID,
	}
	mustCreate(t, db, form)
	return form
}

// Reload reads the current row for value by primary key.
func Reload(t *testing.T, db *gorm.DB, value interface{}, id uint64) {
	t.Helper()
	if err := db.First(value, "id = ?", id).Error; err != nil {
		t.Fatalf("Failed to reload %T %d: %v", value, id, err)
	}
}

// Count returns the number of rows of model matching the query.
func Count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("Failed to count %T: %v", model, err)
	}
	return n
}
