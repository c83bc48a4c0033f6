package services

import (
	"context"
	"errors"

	"github.com/localnerve/brokerdb/internal/models"
	"github.com/localnerve/brokerdb/internal/policy"
	"github.com/localnerve/brokerdb/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrPropertyNotFound is returned when toggling a favorite on a missing
// property.
var ErrPropertyNotFound = errors.New("property not found")

const msgUnknownProperty = "Property with this ID does not exist."

// Favorite toggle outcomes.
const (
	FavoriteAdded   = "added"
	FavoriteRemoved = "removed"
)

// ContactFormInput is an enquiry about a property.
type ContactFormInput struct {
	Name       *string           `json:"name" form:"name" validate:"omitempty,max=255"`
	Email      *string           `json:"email" form:"email" validate:"omitempty,email,max=254"`
	Phone      *string           `json:"phone" form:"phone" validate:"omitempty,max=50"`
	Message    *string           `json:"message" form:"message"`
	PropertyID *types.FlexUint64 `json:"property_id" form:"property_id"`
}

// ListFavorites returns the requester's favorites with their properties
func ListFavorites(ctx context.Context, db *gorm.DB, req policy.Requester) ([]models.Favorite, error) {
	if err := policy.CanAccess(req, policy.Favorite, policy.Read); err != nil {
		return nil, err
	}
	var favorites []models.Favorite
	err := db.WithContext(ctx).
		Scopes(policy.Scope(req, policy.Favorite)).
		Preload("Property").
		Preload("Property.Images", orderByID).
		Order("favorites.id").
		Find(&favorites).Error
	return favorites, err
}

// ToggleFavorite adds the property to the requester's favorites, or removes
// it when already there. It returns FavoriteAdded or FavoriteRemoved.
func ToggleFavorite(ctx context.Context, db *gorm.DB, req policy.Requester, propertyID uint64) (string, error) {
	if err := policy.CanAccess(req, policy.Favorite, policy.Create); err != nil {
		return "", err
	}

	var result string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var property models.Property
		if err := tx.Select("id").First(&property, "id = ?", propertyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPropertyNotFound
			}
			return err
		}

		var favorite models.Favorite
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND property_id = ?", req.UserID, propertyID).
			First(&favorite).Error
		switch {
		case err == nil:
			result = FavoriteRemoved
			return tx.Delete(&favorite).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			result = FavoriteAdded
			favorite = models.Favorite{UserID: req.UserID, PropertyID: propertyID}
			return tx.Omit(clause.Associations).Create(&favorite).Error
		default:
			return err
		}
	})
	if err != nil {
		return "", err
	}

	logMutation(policy.Favorite, propertyID, req, result)
	return result, nil
}

// ListContactForms returns the contact forms visible to req
func ListContactForms(ctx context.Context, db *gorm.DB, req policy.Requester) ([]models.ContactForm, error) {
	if err := policy.CanAccess(req, policy.ContactForm, policy.Read); err != nil {
		return nil, err
	}
	var forms []models.ContactForm
	err := db.WithContext(ctx).
		Scopes(policy.Scope(req, policy.ContactForm)).
		Order("contact_forms.created_at DESC").
		Order("contact_forms.id DESC").
		Find(&forms).Error
	return forms, err
}

// GetContactForm returns one visible contact form
func GetContactForm(ctx context.Context, db *gorm.DB, req policy.Requester, id uint64) (*models.ContactForm, error) {
	if err := policy.CanAccess(req, policy.ContactForm, policy.Read); err != nil {
		return nil, err
	}
	var form models.ContactForm
	err := db.WithContext(ctx).
		Scopes(policy.Scope(req, policy.ContactForm)).
		First(&form, "contact_forms.id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &form, nil
}

// CreateContactForm records an enquiry about an existing property
func CreateContactForm(ctx context.Context, db *gorm.DB, req policy.Requester, in ContactFormInput) (*models.ContactForm, error) {
	if err := policy.CanAccess(req, policy.ContactForm, policy.Create); err != nil {
		return nil, err
	}

	verr := checkStruct(in)
	checkText(verr, "name", in.Name, true)
	checkText(verr, "email", in.Email, true)
	checkText(verr, "message", in.Message, true)
	requireField(verr, "property_id", in.PropertyID == nil)
	if !verr.Empty() {
		return nil, verr
	}

	form := models.ContactForm{
		Name:       *in.Name,
		Email:      *in.Email,
		Phone:      in.Phone,
		Message:    *in.Message,
		PropertyID: in.PropertyID.Uint64(),
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Property{}).Where("id = ?", form.PropertyID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return types.NewValidationError("property_id", msgUnknownProperty)
		}
		return tx.Omit(clause.Associations).Create(&form).Error
	})
	if err != nil {
		return nil, err
	}

	logMutation(policy.ContactForm, form.ID, req, "created")
	return &form, nil
}

// DeleteContactForm removes a visible contact form
func DeleteContactForm(ctx context.Context, db *gorm.DB, req policy.Requester, id uint64) error {
	if err := policy.CanAccess(req, policy.ContactForm, policy.Delete); err != nil {
		return err
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var form models.ContactForm
		if err := tx.Scopes(policy.Scope(req, policy.ContactForm)).
			First(&form, "contact_forms.id = ?", id).Error; err != nil {
			return notFound(err)
		}
		return tx.Delete(&form).Error
	})
	if err != nil {
		return err
	}

	logMutation(policy.ContactForm, id, req, "deleted")
	return nil
}
