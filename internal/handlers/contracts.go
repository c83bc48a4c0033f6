package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/brokerdb/internal/services"
	"github.com/localnerve/brokerdb/internal/storage"
	"github.com/localnerve/brokerdb/internal/utils"
	"gorm.io/gorm"
)

// ContractHandler handles contract routes
type ContractHandler struct {
	DB    *gorm.DB
	Store storage.Store
}

// List handles GET /api/contracts
// @Summary List contracts
// @Tags Contracts
// @Produce json
// @Success 200 {array} models.Contract
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /contracts [get]
func (h *ContractHandler) List(c *fiber.Ctx) error {
	contracts, err := services.ListContracts(c.UserContext(), h.DB, requester(c))
	if err != nil {
		return respondError(c, err, "contracts.list")
	}
	return c.JSON(contracts)
}

// Get handles GET /api/contracts/:id
// @Summary Get a contract
// @Tags Contracts
// @Produce json
// @Param id path int true "Contract ID"
// @Success 200 {object} models.Contract
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /contracts/{id} [get]
func (h *ContractHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err, "contracts.get")
	}
	contract, err := services.GetContract(c.UserContext(), h.DB, requester(c), id)
	if err != nil {
		return respondError(c, err, "contracts.get")
	}
	return c.JSON(contract)
}

// Create handles POST /api/contracts
// @Summary Create a contract
// @Description Multipart form with a "document" file. A signed contract marks the property rented or sold.
// @Tags Contracts
// @Accept mpfd
// @Produce json
// @Param contract body services.ContractInput true "Contract"
// @Success 201 {object} models.Contract
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /contracts [post]
func (h *ContractHandler) Create(c *fiber.Ctx) error {
	in, err := h.bind(c)
	if err != nil {
		return respondError(c, err, "contracts.create")
	}
	contract, err := services.CreateContract(c.UserContext(), h.DB, h.Store, requester(c), in)
	if err != nil {
		return respondError(c, err, "contracts.create")
	}
	return utils.SuccessResponse(c, contract, fiber.StatusCreated)
}

// Update handles PATCH /api/contracts/:id
// @Summary Update a contract
// @Description Partial update. Moving to signed marks the property rented or sold.
// @Tags Contracts
// @Accept json,mpfd
// @Produce json
// @Param id path int true "Contract ID"
// @Param contract body services.ContractInput true "Fields to change"
// @Success 200 {object} models.Contract
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /contracts/{id} [patch]
func (h *ContractHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err, "contracts.update")
	}
	in, err := h.bind(c)
	if err != nil {
		return respondError(c, err, "contracts.update")
	}
	contract, err := services.UpdateContract(c.UserContext(), h.DB, h.Store, requester(c), id, in)
	if err != nil {
		return respondError(c, err, "contracts.update")
	}
	return c.JSON(contract)
}

// Delete handles DELETE /api/contracts/:id
// @Summary Delete a contract
// @Tags Contracts
// @Param id path int true "Contract ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /contracts/{id} [delete]
func (h *ContractHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err, "contracts.delete")
	}
	if err := services.DeleteContract(c.UserContext(), h.DB, h.Store, requester(c), id); err != nil {
		return respondError(c, err, "contracts.delete")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ContractHandler) bind(c *fiber.Ctx) (services.ContractInput, error) {
	var in services.ContractInput
	if err := bindInput(c, &in); err != nil {
		return in, err
	}
	document, err := formFile(c, "document")
	if err != nil {
		return in, err
	}
	in.Document = document
	return in, nil
}
