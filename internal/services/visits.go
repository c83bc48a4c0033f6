package services

import (
	"context"
	"time"

	"github.com/localnerve/brokerdb/internal/models"
	"github.com/localnerve/brokerdb/internal/policy"
	"github.com/localnerve/brokerdb/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Visit validation messages.
const (
	MsgVisitInPast   = "Visit date cannot be in the past."
	MsgVisitClient   = "Client does not exist or does not belong to you."
	MsgVisitProperty = "Property does not exist or does not belong to you."
)

// VisitInput is the writable part of a visit. Nil fields are absent.
type VisitInput struct {
	Property *types.FlexUint64   `json:"property" form:"property"`
	Client   *types.FlexUint64   `json:"client" form:"client"`
	Date     *time.Time          `json:"date" form:"date"`
	Status   *models.VisitStatus `json:"status" form:"status" validate:"omitempty,oneof=scheduled completed canceled"`
	Notes    *string             `json:"notes" form:"notes"`
}

// Now is the clock used for date checks.
var Now = time.Now

// ListVisits returns the visits visible to req
func ListVisits(ctx context.Context, db *gorm.DB, req policy.Requester) ([]models.Visit, error) {
	if err := policy.CanAccess(req, policy.Visit, policy.Read); err != nil {
		return nil, err
	}
	var visits []models.Visit
	err := db.WithContext(ctx).
		Scopes(policy.Scope(req, policy.Visit)).
		Order("visits.date").
		Order("visits.id").
		Find(&visits).Error
	return visits, err
}

// GetVisit returns one visible visit
func GetVisit(ctx context.Context, db *gorm.DB, req policy.Requester, id uint64) (*models.Visit, error) {
	if err := policy.CanAccess(req, policy.Visit, policy.Read); err != nil {
		return nil, err
	}
	return findVisit(db.WithContext(ctx), req, id, false)
}

func findVisit(tx *gorm.DB, req policy.Requester, id uint64, lock bool) (*models.Visit, error) {
	var visit models.Visit
	q := tx.Scopes(policy.Scope(req, policy.Visit))
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&visit, "visits.id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &visit, nil
}

// CreateVisit schedules a visit run by the requester
func CreateVisit(ctx context.Context, db *gorm.DB, req policy.Requester, in VisitInput) (*models.Visit, error) {
	if err := policy.CanAccess(req, policy.Visit, policy.Create); err != nil {
		return nil, err
	}

	verr := checkStruct(in)
	requireField(verr, "property", in.Property == nil)
	requireField(verr, "client", in.Client == nil)
	requireField(verr, "date", in.Date == nil)
	requireField(verr, "status", in.Status == nil)
	if !verr.Empty() {
		return nil, verr
	}

	visit := models.Visit{
		PropertyID: in.Property.Uint64(),
		ClientID:   in.Client.Uint64(),
		AgentID:    req.UserID,
		Date:       in.Date.UTC(),
		Status:     *in.Status,
		Notes:      in.Notes,
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := validateVisit(tx, req, in); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&visit).Error
	})
	if err != nil {
		return nil, err
	}

	logMutation(policy.Visit, visit.ID, req, "created")
	return &visit, nil
}

// UpdateVisit applies a partial update to a visit the requester owns
func UpdateVisit(ctx context.Context, db *gorm.DB, req policy.Requester, id uint64, in VisitInput) (*models.Visit, error) {
	if err := policy.CanAccess(req, policy.Visit, policy.Update); err != nil {
		return nil, err
	}

	verr := checkStruct(in)
	if !verr.Empty() {
		return nil, verr
	}

	var visit *models.Visit
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		visit, err = findVisit(tx, req, id, true)
		if err != nil {
			return err
		}
		if !policy.OwnsRow(req, visit.AgentID) {
			return ErrNotFound
		}
		if err := validateVisit(tx, req, in); err != nil {
			return err
		}

		if in.Property != nil {
			visit.PropertyID = in.Property.Uint64()
		}
		if in.Client != nil {
			visit.ClientID = in.Client.Uint64()
		}
		if in.Date != nil {
			visit.Date = in.Date.UTC()
		}
		if in.Status != nil {
			visit.Status = *in.Status
		}
		if in.Notes != nil {
			visit.Notes = in.Notes
		}
		return tx.Omit(clause.Associations).Save(visit).Error
	})
	if err != nil {
		return nil, err
	}

	logMutation(policy.Visit, id, req, "updated")
	return visit, nil
}

// DeleteVisit removes a visit the requester owns
func DeleteVisit(ctx context.Context, db *gorm.DB, req policy.Requester, id uint64) error {
	if err := policy.CanAccess(req, policy.Visit, policy.Delete); err != nil {
		return err
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		visit, err := findVisit(tx, req, id, false)
		if err != nil {
			return err
		}
		if !policy.OwnsRow(req, visit.AgentID) {
			return ErrNotFound
		}
		return tx.Delete(visit).Error
	})
	if err != nil {
		return err
	}

	logMutation(policy.Visit, id, req, "deleted")
	return nil
}

// validateVisit applies the visit rules in order to the fields present in
// in; the first failure wins.
func validateVisit(tx *gorm.DB, req policy.Requester, in VisitInput) error {
	if in.Date != nil && in.Date.Before(Now()) {
		return types.NewValidationError("date", MsgVisitInPast)
	}

	if in.Client != nil {
		q := tx.Model(&models.Client{}).Where("id = ?", in.Client.Uint64())
		if !req.IsAdmin() {
			q = q.Where("agent_id = ?", req.UserID)
		}
		if err := exists(q, invalidPKError("client", in.Client.Uint64()), MsgVisitClient, req); err != nil {
			return err
		}
	}

	if in.Property != nil {
		q := tx.Model(&models.Property{}).Where("id = ?", in.Property.Uint64())
		if !req.IsAdmin() {
			q = q.Where("owner_id = ?", req.UserID)
		}
		if err := exists(q, invalidPKError("property", in.Property.Uint64()), MsgVisitProperty, req); err != nil {
			return err
		}
	}
	return nil
}

// exists fails unless q matches a row. Admins get the missing-row error,
// everyone else the ownership message.
func exists(q *gorm.DB, missing error, msg string, req policy.Requester) error {
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if req.IsAdmin() {
		return missing
	}
	return types.NewValidationError(types.NonFieldErrors, msg)
}

func invalidPKError(field string, id uint64) error {
	return types.NewValidationError(field, invalidPK(id))
}

