package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/brokerdb/internal/services"
	"github.com/localnerve/brokerdb/internal/storage"
	"github.com/localnerve/brokerdb/internal/types"
	"github.com/localnerve/brokerdb/internal/utils"
	"gorm.io/gorm"
)

// PropertyHandler handles property routes
type PropertyHandler struct {
	DB    *gorm.DB
	Store storage.Store
}

// List handles GET /api/properties?status=...
// @Summary List properties
// @Tags Properties
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {array} models.Property
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /properties [get]
func (h *PropertyHandler) List(c *fiber.Ctx) error {
	properties, err := services.ListProperties(c.UserContext(), h.DB, requester(c), c.Query("status"))
	if err != nil {
		return respondError(c, err, "properties.list")
	}
	return c.JSON(properties)
}

// Get handles GET /api/properties/:id
// @Summary Get a property
// @Tags Properties
// @Produce json
// @Param id path int true "Property ID"
// @Success 200 {object} models.Property
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /properties/{id} [get]
func (h *PropertyHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err, "properties.get")
	}
	property, err := services.GetProperty(c.UserContext(), h.DB, requester(c), id)
	if err != nil {
		return respondError(c, err, "properties.get")
	}
	return c.JSON(property)
}

// Create handles POST /api/properties
// @Summary Create a property
// @Description JSON, or multipart with any number of "images" files
// @Tags Properties
// @Accept json,mpfd
// @Produce json
// @Param property body services.PropertyInput true "Property"
// @Success 201 {object} models.Property
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /properties [post]
func (h *PropertyHandler) Create(c *fiber.Ctx) error {
	in, err := h.bind(c)
	if err != nil {
		return respondError(c, err, "properties.create")
	}
	property, err := services.CreateProperty(c.UserContext(), h.DB, h.Store, requester(c), in)
	if err != nil {
		return respondError(c, err, "properties.create")
	}
	return utils.SuccessResponse(c, property, fiber.StatusCreated)
}

// Update handles PATCH /api/properties/:id
// @Summary Update a property
// @Description Partial update; "delete_images" lists image ids to remove, "images" adds files
// @Tags Properties
// @Accept json,mpfd
// @Produce json
// @Param id path int true "Property ID"
// @Param property body services.PropertyInput true "Fields to change"
// @Success 200 {object} models.Property
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /properties/{id} [patch]
func (h *PropertyHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err, "properties.update")
	}
	in, err := h.bind(c)
	if err != nil {
		return respondError(c, err, "properties.update")
	}
	property, err := services.UpdateProperty(c.UserContext(), h.DB, h.Store, requester(c), id, in)
	if err != nil {
		return respondError(c, err, "properties.update")
	}
	return c.JSON(property)
}

// Delete handles DELETE /api/properties/:id
// @Summary Delete a property
// @Description Also deletes its images, contracts, visits, favorites and contact forms
// @Tags Properties
// @Param id path int true "Property ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /properties/{id} [delete]
func (h *PropertyHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err, "properties.delete")
	}
	if err := services.DeleteProperty(c.UserContext(), h.DB, h.Store, requester(c), id); err != nil {
		return respondError(c, err, "properties.delete")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PropertyHandler) bind(c *fiber.Ctx) (services.PropertyInput, error) {
	var in services.PropertyInput
	if err := bindInput(c, &in); err != nil {
		return in, err
	}
	images, err := formFiles(c, "images")
	if err != nil {
		return in, err
	}
	in.Images = images

	// Repeated delete_images fields each carry one or more ids.
	values, err := formValues(c, "delete_images")
	if err != nil {
		return in, err
	}
	if len(values) > 0 {
		in.DeleteImages = nil
		for _, value := range values {
			if err := in.DeleteImages.UnmarshalText([]byte(value)); err != nil {
				return in, types.NewValidationError("delete_images", "A valid integer is required.")
			}
		}
	}
	return in, nil
}
