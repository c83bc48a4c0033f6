// contracts.go
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
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/localnerve/brokerdb/internal/models"
	"github.com/localnerve/brokerdb/internal/policy"
	"github.com/localnerve/brokerdb/internal/storage"
	"github.com/localnerve/brokerdb/internal/types"
	"github.com/localnerve/brokerdb/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Contract validation messages.
const (
	MsgEndBeforeStart       = "End date cannot be before start date."
	MsgForeignProperty      = "You can only create contracts for your own properties."
	MsgForeignClient        = "You can only create contracts for your own clients."
	MsgPropertyNotAvailable = "Property must be available to create a contract."
	MsgAlreadySigned        = "There is already a signed contract for this property."
	msgNoFile               = "No file was submitted."
)

// ContractInput is the writable part of a contract. Nil fields are absent.
type ContractInput struct {
	Property  *types.FlexUint64      `json:"property" form:"property"`
	Client    *types.FlexUint64      `json:"client" form:"client"`
	Type      *models.ContractType   `json:"type" form:"type" validate:"omitempty,oneof=rental sale"`
	Price     *decimal.Decimal       `json:"price" form:"price"`
	StartDate *types.Date            `json:"start_date" form:"start_date"`
	EndDate   *types.Date            `json:"end_date" form:"end_date"`
	Status    *models.ContractStatus `json:"status" form:"status" validate:"omitempty,oneof=draft signed cancelled"`
	Document  *multipart.FileHeader  `json:"-" form:"-"`
}

// contractState is a contract as it would be after the write, with the
// rows it references.
type contractState struct {
	contract *models.Contract
	property *models.Property
	client   *models.Client

	propertyGiven   bool
	clientGiven     bool
	propertyChanged bool
	previous        models.ContractStatus
	create          bool
}

// ListContracts returns the contracts visible to req
func ListContracts(ctx context.Context, db *gorm.DB, req policy.Requester) ([]models.Contract, error) {
	if err := policy.CanAccess(req, policy.Contract, policy.Read); err != nil {
		return nil, err
	}
	var contracts []models.Contract
	err := db.WithContext(ctx).
		Scopes(policy.Scope(req, policy.Contract)).
		Preload("Property").
		Preload("Client").
		Order("contracts.id").
		Find(&contracts).Error
	return contracts, err
}

// GetContract returns one visible contract
func GetContract(ctx context.Context, db *gorm.DB, req policy.Requester, id uint64) (*models.Contract, error) {
	if err := policy.CanAccess(req, policy.Contract, policy.Read); err != nil {
		return nil, err
	}
	return loadContract(db.WithContext(ctx), req, id)
}

func loadContract(tx *gorm.DB, req policy.Requester, id uint64) (*models.Contract, error) {
	var contract models.Contract
	err := tx.Scopes(policy.Scope(req, policy.Contract)).
		Preload("Property").
		Preload("Client").
		First(&contract, "contracts.id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &contract, nil
}

// CreateContract validates and stores a contract written by the requester,
// then propagates a signed status to the property
func CreateContract(ctx context.Context, db *gorm.DB, store storage.Store, req policy.Requester, in ContractInput) (*models.Contract, error) {
	if err := policy.CanAccess(req, policy.Contract, policy.Create); err != nil {
		return nil, err
	}

	verr := checkContractInput(in, true)
	if !verr.Empty() {
		return nil, verr
	}

	contract := &models.Contract{
		PropertyID: in.Property.Uint64(),
		ClientID:   in.Client.Uint64(),
		AgentID:    req.UserID,
		Type:       *in.Type,
		Price:      *in.Price,
		StartDate:  in.StartDate.Datatype(),
		Status:     models.ContractDraft,
	}
	if in.EndDate != nil {
		end := in.EndDate.Datatype()
		contract.EndDate = &end
	}
	if in.Status != nil {
		contract.Status = *in.Status
	}

	var saved string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state := &contractState{
			contract:        contract,
			propertyGiven:   true,
			clientGiven:     true,
			propertyChanged: true,
			create:          true,
		}
		if err := state.load(tx); err != nil {
			return err
		}
		if err := validateContract(tx, req, state); err != nil {
			return err
		}

		path, err := store.Save(ctx, storage.ContractsDir, in.Document)
		if err != nil {
			return err
		}
		saved = path
		contract.Document = path

		if err := tx.Omit(clause.Associations).Create(contract).Error; err != nil {
			return signedConflict(err)
		}
		return propagateSigned(tx, state)
	})
	if err != nil {
		removeFiles(ctx, store, []string{saved})
		return nil, err
	}

	logMutation(policy.Contract, contract.ID, req, "created")
	return loadContract(db.WithContext(ctx), req, contract.ID)
}

// UpdateContract applies a partial update to a contract the requester owns
func UpdateContract(ctx context.Context, db *gorm.DB, store storage.Store, req policy.Requester, id uint64, in ContractInput) (*models.Contract, error) {
	if err := policy.CanAccess(req, policy.Contract, policy.Update); err != nil {
		return nil, err
	}

	verr := checkContractInput(in, false)
	if !verr.Empty() {
		return nil, verr
	}

	var saved, replaced string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contract models.Contract
		err := tx.Scopes(policy.Scope(req, policy.Contract)).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&contract, "contracts.id = ?", id).Error
		if err != nil {
			return notFound(err)
		}
		if !policy.OwnsRow(req, contract.AgentID) {
			return ErrNotFound
		}

		state := &contractState{contract: &contract, previous: contract.Status}
		if in.Property != nil {
			state.propertyGiven = true
			state.propertyChanged = in.Property.Uint64() != contract.PropertyID
			contract.PropertyID = in.Property.Uint64()
		}
		if in.Client != nil {
			state.clientGiven = true
			contract.ClientID = in.Client.Uint64()
		}
		if in.Type != nil {
			contract.Type = *in.Type
		}
		if in.Price != nil {
			contract.Price = *in.Price
		}
		if in.StartDate != nil {
			contract.StartDate = in.StartDate.Datatype()
		}
		if in.EndDate != nil {
			end := in.EndDate.Datatype()
			contract.EndDate = &end
		}
		if in.Status != nil {
			contract.Status = *in.Status
		}

		if err := state.load(tx); err != nil {
			return err
		}
		if err := validateContract(tx, req, state); err != nil {
			return err
		}

		if in.Document != nil {
			path, err := store.Save(ctx, storage.ContractsDir, in.Document)
			if err != nil {
				return err
			}
			saved, replaced = path, contract.Document
			contract.Document = path
		}

		if err := tx.Omit(clause.Associations).Save(&contract).Error; err != nil {
			return signedConflict(err)
		}
		return propagateSigned(tx, state)
	})
	if err != nil {
		removeFiles(ctx, store, []string{saved})
		return nil, err
	}

	removeFiles(ctx, store, []string{replaced})
	logMutation(policy.Contract, id, req, "updated")
	return loadContract(db.WithContext(ctx), req, id)
}

// DeleteContract removes a contract. The property status is left as is.
func DeleteContract(ctx context.Context, db *gorm.DB, store storage.Store, req policy.Requester, id uint64) error {
	if err := policy.CanAccess(req, policy.Contract, policy.Delete); err != nil {
		return err
	}

	var document string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contract models.Contract
		err := tx.Scopes(policy.Scope(req, policy.Contract)).
			First(&contract, "contracts.id = ?", id).Error
		if err != nil {
			return notFound(err)
		}
		if !policy.OwnsRow(req, contract.AgentID) {
			return ErrNotFound
		}
		document = contract.Document
		return tx.Delete(&contract).Error
	})
	if err != nil {
		return err
	}

	removeFiles(ctx, store, []string{document})
	logMutation(policy.Contract, id, req, "deleted")
	return nil
}

// checkContractInput runs the per-field checks.
func checkContractInput(in ContractInput, create bool) *types.ValidationError {
	verr := checkStruct(in)
	requireField(verr, "property", create && in.Property == nil)
	requireField(verr, "client", create && in.Client == nil)
	requireField(verr, "type", create && in.Type == nil)
	requireField(verr, "price", create && in.Price == nil)
	requireField(verr, "start_date", create && in.StartDate == nil)
	checkPrice(verr, "price", in.Price)

	if in.Document == nil {
		if create {
			verr.Add("document", msgNoFile)
		}
	} else if err := storage.CheckDocument(in.Document); err != nil {
		verr.Add("document", err.Error())
	}
	return verr
}

// load reads the property and client the contract references, locking the
// property row.
func (s *contractState) load(tx *gorm.DB) error {
	verr := &types.ValidationError{}

	var property models.Property
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&property, "id = ?", s.contract.PropertyID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		verr.Add("property", invalidPK(s.contract.PropertyID))
	case err != nil:
		return err
	default:
		s.property = &property
	}

	var client models.Client
	err = tx.First(&client, "id = ?", s.contract.ClientID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		verr.Add("client", invalidPK(s.contract.ClientID))
	case err != nil:
		return err
	default:
		s.client = &client
	}

	return verr.OrNil()
}

// validateContract applies the cross-field rules in order; the first
// failure wins.
func validateContract(tx *gorm.DB, req policy.Requester, s *contractState) error {
	c := s.contract

	if c.EndDate != nil && types.FromDatatype(*c.EndDate).Before(types.FromDatatype(c.StartDate)) {
		return types.NewValidationError("end_date", MsgEndBeforeStart)
	}

	if req.Role == policy.Agent {
		if s.propertyGiven && s.property.OwnerID != req.UserID {
			return types.NewValidationError(types.NonFieldErrors, MsgForeignProperty)
		}
		if s.clientGiven && s.client.AgentID != req.UserID {
			return types.NewValidationError(types.NonFieldErrors, MsgForeignClient)
		}
	}

	// A signed conflict is reported ahead of availability.
	if c.Status == models.ContractSigned && (s.create || s.previous != models.ContractSigned || s.propertyChanged) {
		var count int64
		q := tx.Model(&models.Contract{}).
			Where("property_id = ? AND status = ?", c.PropertyID, models.ContractSigned)
		if c.ID != 0 {
			q = q.Where("id <> ?", c.ID)
		}
		if err := q.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return types.NewValidationError(types.NonFieldErrors, MsgAlreadySigned)
		}
	}

	if (s.create || s.propertyChanged) && s.property.Status != models.PropertyAvailable {
		return types.NewValidationError(types.NonFieldErrors, MsgPropertyNotAvailable)
	}
	return nil
}

// propagateSigned moves the property to rented or sold when the contract
// has just become signed.
func propagateSigned(tx *gorm.DB, s *contractState) error {
	c := s.contract
	if c.Status != models.ContractSigned || (!s.create && s.previous == models.ContractSigned) {
		return nil
	}

	var status models.PropertyStatus
	switch c.Type {
	case models.ContractRental:
		status = models.PropertyRented
	case models.ContractSale:
		status = models.PropertySold
	default:
		return fmt.Errorf("unknown contract type %q", c.Type)
	}

	if err := tx.Model(&models.Property{}).Where("id = ?", c.PropertyID).
		Update("status", status).Error; err != nil {
		return err
	}
	s.property.Status = status

	utils.Logger.WithFields(logrus.Fields{
		"contract": c.ID,
		"property": c.PropertyID,
		"status":   status,
	}).Info("property status changed by signed contract")
	return nil
}

// signedConflict reports a violation of the one-signed-contract index as
// the same validation failure the explicit check produces.
func signedConflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return types.NewValidationError(types.NonFieldErrors, MsgAlreadySigned)
	}
	return err
}

func invalidPK(id uint64) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}
