// properties.go
//
// Real-estate brokerage back office data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of brokerdb.
// brokerdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// brokerdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with brokerdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"mime/multipart"

	"github.com/localnerve/brokerdb/internal/models"
	"github.com/localnerve/brokerdb/internal/policy"
	"github.com/localnerve/brokerdb/internal/storage"
	"github.com/localnerve/brokerdb/internal/types"
	"github.com/localnerve/brokerdb/internal/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const msgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

// PropertyInput is the writable part of a property. Nil fields are absent.
type PropertyInput struct {
	Title        *string                          `json:"title" form:"title" validate:"omitempty,max=255"`
	Description  *string                          `json:"description" form:"description"`
	Price        *decimal.Decimal                 `json:"price" form:"price"`
	Status       *models.PropertyStatus           `json:"status" form:"status" validate:"omitempty,oneof=available sold rented reserved"`
	Address      *string                          `json:"address" form:"address" validate:"omitempty,max=255"`
	Latitude     *float64                         `json:"latitude" form:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64                         `json:"longitude" form:"longitude" validate:"omitempty,gte=-180,lte=180"`
	DeleteImages types.FlexList[types.FlexUint64] `json:"delete_images" form:"-"`
	Images       []*multipart.FileHeader          `json:"-" form:"-"`
}

// ListProperties returns the properties visible to req, optionally
// filtered by status
func ListProperties(ctx context.Context, db *gorm.DB, req policy.Requester, status string) ([]models.Property, error) {
	if err := policy.CanAccess(req, policy.Property, policy.Read); err != nil {
		return nil, err
	}
	q := db.WithContext(ctx).
		Scopes(policy.Scope(req, policy.Property)).
		Preload("Images", orderByID)
	if status != "" {
		q = q.Where("properties.status = ?", status)
	}

	var properties []models.Property
	err := q.Order("properties.id").Find(&properties).Error
	return properties, err
}

// GetProperty returns one visible property with its images
func GetProperty(ctx context.Context, db *gorm.DB, req policy.Requester, id uint64) (*models.Property, error) {
	if err := policy.CanAccess(req, policy.Property, policy.Read); err != nil {
		return nil, err
	}
	return loadProperty(db.WithContext(ctx), req, id)
}

func loadProperty(tx *gorm.DB, req policy.Requester, id uint64) (*models.Property, error) {
	var property models.Property
	err := tx.Scopes(policy.Scope(req, policy.Property)).
		Preload("Images", orderByID).
		First(&property, "properties.id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &property, nil
}

func findPropertyForUpdate(tx *gorm.DB, req policy.Requester, id uint64) (*models.Property, error) {
	var property models.Property
	err := tx.Scopes(policy.Scope(req, policy.Property)).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&property, "properties.id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &property, nil
}

// CreateProperty creates a property owned by the requester and stores its
// images
func CreateProperty(ctx context.Context, db *gorm.DB, store storage.Store, req policy.Requester, in PropertyInput) (*models.Property, error) {
	if err := policy.CanAccess(req, policy.Property, policy.Create); err != nil {
		return nil, err
	}

	verr := validateProperty(in, true)
	if !verr.Empty() {
		return nil, verr
	}

	property := models.Property{
		Title:       *in.Title,
		Description: *in.Description,
		Price:       *in.Price,
		Status:      models.PropertyAvailable,
		Address:     *in.Address,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		OwnerID:     req.UserID,
	}
	if in.Status != nil {
		property.Status = *in.Status
	}

	var saved []string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&property).Error; err != nil {
			return err
		}
		var err error
		saved, err = attachImages(ctx, tx, store, property.ID, in.Images)
		return err
	})
	if err != nil {
		removeFiles(ctx, store, saved)
		return nil, err
	}

	logMutation(policy.Property, property.ID, req, "created")
	return loadProperty(db.WithContext(ctx), req, property.ID)
}

// UpdateProperty applies a partial update, removes the images listed in
// delete_images and stores new images
func UpdateProperty(ctx context.Context, db *gorm.DB, store storage.Store, req policy.Requester, id uint64, in PropertyInput) (*models.Property, error) {
	if err := policy.CanAccess(req, policy.Property, policy.Update); err != nil {
		return nil, err
	}

	verr := validateProperty(in, false)
	if !verr.Empty() {
		return nil, verr
	}

	var saved, removed []string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property, err := findPropertyForUpdate(tx, req, id)
		if err != nil {
			return err
		}
		if !policy.OwnsRow(req, property.OwnerID) {
			return ErrNotFound
		}

		if removed, err = detachImages(tx, property.ID, in.DeleteImages.Slice()); err != nil {
			return err
		}
		if saved, err = attachImages(ctx, tx, store, property.ID, in.Images); err != nil {
			return err
		}

		if in.Title != nil {
			property.Title = *in.Title
		}
		if in.Description != nil {
			property.Description = *in.Description
		}
		if in.Price != nil {
			property.Price = *in.Price
		}
		if in.Status != nil {
			property.Status = *in.Status
		}
		if in.Address != nil {
			property.Address = *in.Address
		}
		if in.Latitude != nil {
			property.Latitude = in.Latitude
		}
		if in.Longitude != nil {
			property.Longitude = in.Longitude
		}
		return tx.Omit(clause.Associations).Save(property).Error
	})
	if err != nil {
		removeFiles(ctx, store, saved)
		return nil, err
	}

	removeFiles(ctx, store, removed)
	logMutation(policy.Property, id, req, "updated")
	return loadProperty(db.WithContext(ctx), req, id)
}

// DeleteProperty removes a property with everything that references it
func DeleteProperty(ctx context.Context, db *gorm.DB, store storage.Store, req policy.Requester, id uint64) error {
	if err := policy.CanAccess(req, policy.Property, policy.Delete); err != nil {
		return err
	}

	var files []string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property, err := findPropertyForUpdate(tx, req, id)
		if err != nil {
			return err
		}
		if !policy.OwnsRow(req, property.OwnerID) {
			return ErrNotFound
		}

		var images, documents []string
		if err := tx.Model(&models.PropertyImage{}).Where("property_id = ?", id).
			Pluck("path", &images).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Contract{}).Where("property_id = ?", id).
			Pluck("document", &documents).Error; err != nil {
			return err
		}
		files = append(images, documents...)

		for _, model := range []interface{}{
			&models.Contract{},
			&models.Visit{},
			&models.Favorite{},
			&models.ContactForm{},
			&models.PropertyImage{},
		} {
			if err := tx.Where("property_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(property).Error
	})
	if err != nil {
		return err
	}

	removeFiles(ctx, store, files)
	logMutation(policy.Property, id, req, "deleted")
	return nil
}

func validateProperty(in PropertyInput, create bool) *types.ValidationError {
	verr := checkStruct(in)
	checkText(verr, "title", in.Title, create)
	checkText(verr, "description", in.Description, create)
	checkText(verr, "address", in.Address, create)
	requireField(verr, "price", create && in.Price == nil)
	checkPrice(verr, "price", in.Price)

	// every image is checked before anything is stored
	for _, fh := range in.Images {
		if err := storage.CheckImage(fh); err != nil {
			verr.Add("images", msgInvalidImage)
			break
		}
	}
	return verr
}

// attachImages stores files and records them against the property. It
// returns the stored paths, including those saved before a failure.
func attachImages(ctx context.Context, tx *gorm.DB, store storage.Store, propertyID uint64, files []*multipart.FileHeader) ([]string, error) {
	var saved []string
	for _, fh := range files {
		path, err := store.Save(ctx, storage.PropertyImagesDir, fh)
		if err != nil {
			return saved, err
		}
		saved = append(saved, path)

		image := models.PropertyImage{PropertyID: propertyID, Path: path}
		if err := tx.Create(&image).Error; err != nil {
			return saved, err
		}
	}
	return saved, nil
}

// detachImages deletes the image rows listed in ids. Every id must belong
// to the property.
func detachImages(tx *gorm.DB, propertyID uint64, ids []types.FlexUint64) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	unique := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		unique[id.Uint64()] = struct{}{}
	}
	keys := make([]uint64, 0, len(unique))
	for id := range unique {
		keys = append(keys, id)
	}

	var images []models.PropertyImage
	if err := tx.Where("id IN ? AND property_id = ?", keys, propertyID).Find(&images).Error; err != nil {
		return nil, err
	}
	if len(images) != len(keys) {
		return nil, policy.ErrForbidden
	}

	paths := make([]string, 0, len(images))
	for _, image := range images {
		paths = append(paths, image.Path)
	}
	if err := tx.Delete(&images).Error; err != nil {
		return nil, err
	}
	return paths, nil
}

// removeFiles deletes stored files, logging failures.
func removeFiles(ctx context.Context, store storage.Store, paths []string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := store.Delete(context.WithoutCancel(ctx), path); err != nil {
			utils.Logger.WithError(err).WithField("path", path).Warn("failed to remove stored file")
		}
	}
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}
