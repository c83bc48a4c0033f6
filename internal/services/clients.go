package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/localnerve/brokerdb/internal/models"
	"github.com/localnerve/brokerdb/internal/policy"
	"github.com/localnerve/brokerdb/internal/storage"
	"github.com/localnerve/brokerdb/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const msgClientEmailTaken = "A client with this email already exists."

// ClientInput is the writable part of a client. Nil fields are absent.
type ClientInput struct {
	Name  *string           `json:"name" form:"name" validate:"omitempty,max=255"`
	Email *string           `json:"email" form:"email" validate:"omitempty,email,max=254"`
	Phone *string           `json:"phone" form:"phone" validate:"omitempty,max=50"`
	Notes *string           `json:"notes" form:"notes"`
	Agent *types.FlexUint64 `json:"agent" form:"agent"`
}

// ListClients returns the clients visible to req
func ListClients(ctx context.Context, db *gorm.DB, req policy.Requester) ([]models.Client, error) {
	if err := policy.CanAccess(req, policy.Client, policy.Read); err != nil {
		return nil, err
	}
	var clients []models.Client
	err := db.WithContext(ctx).
		Scopes(policy.Scope(req, policy.Client)).
		Order("clients.id").
		Find(&clients).Error
	return clients, err
}

// GetClient returns one visible client
func GetClient(ctx context.Context, db *gorm.DB, req policy.Requester, id uint64) (*models.Client, error) {
	if err := policy.CanAccess(req, policy.Client, policy.Read); err != nil {
		return nil, err
	}
	return findClient(db.WithContext(ctx), req, id, false)
}

func findClient(tx *gorm.DB, req policy.Requester, id uint64, lock bool) (*models.Client, error) {
	var client models.Client
	q := tx.Scopes(policy.Scope(req, policy.Client))
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&client, "clients.id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &client, nil
}

// CreateClient creates a client owned by the requester
func CreateClient(ctx context.Context, db *gorm.DB, req policy.Requester, in ClientInput) (*models.Client, error) {
	if err := policy.CanAccess(req, policy.Client, policy.Create); err != nil {
		return nil, err
	}

	verr := validateClient(in, true)
	if !verr.Empty() {
		return nil, verr
	}

	client := models.Client{
		Name:    *in.Name,
		Email:   *in.Email,
		Phone:   *in.Phone,
		Notes:   in.Notes,
		AgentID: req.UserID,
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkClientEmail(tx, client.Email, 0); err != nil {
			return err
		}
		if err := tx.Create(&client).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return types.NewValidationError("email", msgClientEmailTaken)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logMutation(policy.Client, client.ID, req, "created")
	return &client, nil
}

// UpdateClient applies a partial update to a client the requester owns
func UpdateClient(ctx context.Context, db *gorm.DB, req policy.Requester, id uint64, in ClientInput) (*models.Client, error) {
	if err := policy.CanAccess(req, policy.Client, policy.Update); err != nil {
		return nil, err
	}

	verr := validateClient(in, false)
	if !verr.Empty() {
		return nil, verr
	}

	var client *models.Client
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		client, err = findClient(tx, req, id, true)
		if err != nil {
			return err
		}
		if !policy.OwnsRow(req, client.AgentID) {
			return ErrNotFound
		}

		if in.Email != nil {
			if err := checkClientEmail(tx, *in.Email, client.ID); err != nil {
				return err
			}
			client.Email = *in.Email
		}
		if in.Agent != nil {
			agentID := in.Agent.Uint64()
			if err := checkAssignableAgent(tx, agentID); err != nil {
				return err
			}
			client.AgentID = agentID
		}
		if in.Name != nil {
			client.Name = *in.Name
		}
		if in.Phone != nil {
			client.Phone = *in.Phone
		}
		if in.Notes != nil {
			client.Notes = in.Notes
		}

		if err := tx.Save(client).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return types.NewValidationError("email", msgClientEmailTaken)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logMutation(policy.Client, client.ID, req, "updated")
	return client, nil
}

// DeleteClient removes a client with its contracts and visits
func DeleteClient(ctx context.Context, db *gorm.DB, store storage.Store, req policy.Requester, id uint64) error {
	if err := policy.CanAccess(req, policy.Client, policy.Delete); err != nil {
		return err
	}

	var documents []string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		client, err := findClient(tx, req, id, true)
		if err != nil {
			return err
		}
		if !policy.OwnsRow(req, client.AgentID) {
			return ErrNotFound
		}

		if err := tx.Model(&models.Contract{}).Where("client_id = ?", client.ID).
			Pluck("document", &documents).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", client.ID).Delete(&models.Contract{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", client.ID).Delete(&models.Visit{}).Error; err != nil {
			return err
		}
		return tx.Delete(client).Error
	})
	if err != nil {
		return err
	}

	removeFiles(ctx, store, documents)
	logMutation(policy.Client, id, req, "deleted")
	return nil
}

func validateClient(in ClientInput, create bool) *types.ValidationError {
	verr := checkStruct(in)
	checkText(verr, "name", in.Name, create)
	checkText(verr, "email", in.Email, create)
	checkText(verr, "phone", in.Phone, create)
	return verr
}

// checkClientEmail fails when another client already uses email.
func checkClientEmail(tx *gorm.DB, email string, exceptID uint64) error {
	var count int64
	q := tx.Model(&models.Client{}).Where("email = ?", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return types.NewValidationError("email", msgClientEmailTaken)
	}
	return nil
}

// checkAssignableAgent fails unless id is an active agent or admin.
func checkAssignableAgent(tx *gorm.DB, id uint64) error {
	var user models.User
	err := tx.Where("id = ? AND is_active = ? AND role IN ?", id, true,
		[]models.Role{models.RoleAgent, models.RoleAdmin}).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.NewValidationError("agent", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
	}
	return err
}
