package services

import (
	"context"
	"errors"
	"strings"

	"github.com/localnerve/brokerdb/internal/models"
	"github.com/localnerve/brokerdb/internal/policy"
	"github.com/localnerve/brokerdb/internal/types"
	"gorm.io/gorm"
)

// UserInput describes a user created through the administrative path.
type UserInput struct {
	Email     string      `json:"email" validate:"required,email,max=254"`
	FirstName string      `json:"first_name" validate:"max=30"`
	LastName  string      `json:"last_name" validate:"max=30"`
	Role      models.Role `json:"role" validate:"required,oneof=admin agent viewer"`
}

// Me returns the requester's own account
func Me(ctx context.Context, db *gorm.DB, req policy.Requester) (*models.User, error) {
	if err := policy.CanAccess(req, policy.Account, policy.Read); err != nil {
		return nil, err
	}
	var user models.User
	if err := db.WithContext(ctx).First(&user, "id = ?", req.UserID).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// FindUser returns an active or inactive user by id
func FindUser(ctx context.Context, db *gorm.DB, id uint64) (*models.User, error) {
	var user models.User
	if err := db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// FindByEmail returns the user with the given email
func FindByEmail(ctx context.Context, db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).First(&user, "email = ?", normalizeEmail(email)).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// CreateUser adds an active user. Roles are only assigned here and in
// SetRole, never through the HTTP API.
func CreateUser(ctx context.Context, db *gorm.DB, in UserInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if in.Role == "" {
		in.Role = models.RoleViewer
	}
	if verr := checkStruct(in); !verr.Empty() {
		return nil, verr
	}

	user := models.User{
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      in.Role,
		IsActive:  true,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, types.NewValidationError("email", "A user with this email already exists.")
		}
		return nil, err
	}
	return &user, nil
}

// SetRole changes the role of the user with the given email
func SetRole(ctx context.Context, db *gorm.DB, email string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, types.NewValidationError("role", "\""+string(role)+"\" is not a valid choice.")
	}
	user, err := FindByEmail(ctx, db, email)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(user).Update("role", role).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// SetActive enables or disables the user with the given email
func SetActive(ctx context.Context, db *gorm.DB, email string, active bool) (*models.User, error) {
	user, err := FindByEmail(ctx, db, email)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(user).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
