package policy

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/localnerve/brokerdb/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupScopeDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))

	users := []models.User{
		{ID: 1, Email: "admin@example.com", Role: models.RoleAdmin, IsActive: true},
		{ID: 2, Email: "a1@example.com", Role: models.RoleAgent, IsActive: true},
		{ID: 3, Email: "a2@example.com", Role: models.RoleAgent, IsActive: true},
		{ID: 4, Email: "viewer@example.com", Role: models.RoleViewer, IsActive: true},
	}
	require.NoError(t, db.Create(&users).Error)

	props := []models.Property{
		{ID: 10, Title: "One", Description: "d", Address: "a", Price: decimal.NewFromInt(1), OwnerID: 2, Status: models.PropertyAvailable},
		{ID: 11, Title: "Two", Description: "d", Address: "a", Price: decimal.NewFromInt(1), OwnerID: 3, Status: models.PropertyAvailable},
	}
	require.NoError(t, db.Create(&props).Error)

	forms := []models.ContactForm{
		{Name: "x", Email: "x@example.com", Message: "m", PropertyID: 10},
		{Name: "y", Email: "y@example.com", Message: "m", PropertyID: 11},
		{Name: "z", Email: "z@example.com", Message: "m", PropertyID: 11},
	}
	require.NoError(t, db.Create(&forms).Error)

	favs := []models.Favorite{
		{UserID: 4, PropertyID: 10},
		{UserID: 2, PropertyID: 11},
	}
	require.NoError(t, db.Create(&favs).Error)
	return db
}

func countScoped(t *testing.T, db *gorm.DB, model interface{}, req Requester, res Resource) int64 {
	var n int64
	require.NoError(t, db.Model(model).Scopes(Scope(req, res)).Count(&n).Error)
	return n
}

func TestScope(t *testing.T) {
	db := setupScopeDB(t)

	admin := Requester{UserID: 1, Role: Admin, Authenticated: true}
	agent1 := Requester{UserID: 2, Role: Agent, Authenticated: true}
	agent2 := Requester{UserID: 3, Role: Agent, Authenticated: true}
	viewer := Requester{UserID: 4, Role: Viewer, Authenticated: true}

	assert.EqualValues(t, 2, countScoped(t, db, &models.Property{}, admin, Property))
	assert.EqualValues(t, 1, countScoped(t, db, &models.Property{}, agent1, Property))
	assert.EqualValues(t, 0, countScoped(t, db, &models.Property{}, viewer, Property))
	assert.EqualValues(t, 0, countScoped(t, db, &models.Property{}, Anonymous(), Property))

	assert.EqualValues(t, 3, countScoped(t, db, &models.ContactForm{}, admin, ContactForm))
	assert.EqualValues(t, 1, countScoped(t, db, &models.ContactForm{}, agent1, ContactForm))
	assert.EqualValues(t, 2, countScoped(t, db, &models.ContactForm{}, agent2, ContactForm))
	assert.EqualValues(t, 0, countScoped(t, db, &models.ContactForm{}, viewer, ContactForm))

	// favorites are per requester, admins included
	assert.EqualValues(t, 0, countScoped(t, db, &models.Favorite{}, admin, Favorite))
	assert.EqualValues(t, 1, countScoped(t, db, &models.Favorite{}, viewer, Favorite))
	assert.EqualValues(t, 1, countScoped(t, db, &models.Favorite{}, agent1, Favorite))
}
