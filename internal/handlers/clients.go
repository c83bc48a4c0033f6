package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/brokerdb/internal/services"
	"github.com/localnerve/brokerdb/internal/storage"
	"github.com/localnerve/brokerdb/internal/utils"
	"gorm.io/gorm"
)

// ClientHandler handles client routes
type ClientHandler struct {
	DB    *gorm.DB
	Store storage.Store
}

// List handles GET /api/clients
// @Summary List clients
// @Description Admins see every client, agents their own
// @Tags Clients
// @Produce json
// @Success 200 {array} models.Client
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /clients [get]
func (h *ClientHandler) List(c *fiber.Ctx) error {
	clients, err := services.ListClients(c.UserContext(), h.DB, requester(c))
	if err != nil {
		return respondError(c, err, "clients.list")
	}
	return c.JSON(clients)
}

// Get handles GET /api/clients/:id
// @Summary Get a client
// @Tags Clients
// @Produce json
// @Param id path int true "Client ID"
// @Success 200 {object} models.Client
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /clients/{id} [get]
func (h *ClientHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err, "clients.get")
	}
	client, err := services.GetClient(c.UserContext(), h.DB, requester(c), id)
	if err != nil {
		return respondError(c, err, "clients.get")
	}
	return c.JSON(client)
}

// Create handles POST /api/clients
// @Summary Create a client
// @Description The requester becomes the owning agent
// @Tags Clients
// @Accept json
// @Produce json
// @Param client body services.ClientInput true "Client"
// @Success 201 {object} models.Client
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /clients [post]
func (h *ClientHandler) Create(c *fiber.Ctx) error {
	var in services.ClientInput
	if err := bindInput(c, &in); err != nil {
		return respondError(c, err, "clients.create")
	}
	client, err := services.CreateClient(c.UserContext(), h.DB, requester(c), in)
	if err != nil {
		return respondError(c, err, "clients.create")
	}
	return utils.SuccessResponse(c, client, fiber.StatusCreated)
}

// Update handles PATCH /api/clients/:id
// @Summary Update a client
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path int true "Client ID"
// @Param client body services.ClientInput true "Fields to change"
// @Success 200 {object} models.Client
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /clients/{id} [patch]
func (h *ClientHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err, "clients.update")
	}
	var in services.ClientInput
	if err := bindInput(c, &in); err != nil {
		return respondError(c, err, "clients.update")
	}
	client, err := services.UpdateClient(c.UserContext(), h.DB, requester(c), id, in)
	if err != nil {
		return respondError(c, err, "clients.update")
	}
	return c.JSON(client)
}

// Delete handles DELETE /api/clients/:id
// @Summary Delete a client
// @Description Also deletes the client's contracts and visits
// @Tags Clients
// @Param id path int true "Client ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /clients/{id} [delete]
func (h *ClientHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err, "clients.delete")
	}
	if err := services.DeleteClient(c.UserContext(), h.DB, h.Store, requester(c), id); err != nil {
		return respondError(c, err, "clients.delete")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
