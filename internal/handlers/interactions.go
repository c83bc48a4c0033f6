package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/brokerdb/internal/services"
	"github.com/localnerve/brokerdb/internal/utils"
	"gorm.io/gorm"
)

// InteractionHandler handles favorites and contact forms
type InteractionHandler struct {
	DB *gorm.DB
}

// ListFavorites handles GET /api/interactions/favorites
// @Summary List my favorites
// @Tags Interactions
// @Produce json
// @Success 200 {array} models.Favorite
// @Security BearerAuth
// @Router /interactions/favorites [get]
func (h *InteractionHandler) ListFavorites(c *fiber.Ctx) error {
	favorites, err := services.ListFavorites(c.UserContext(), h.DB, requester(c))
	if err != nil {
		return respondError(c, err, "favorites.list")
	}
	return c.JSON(favorites)
}

// ToggleFavorite handles POST /api/interactions/favorites/:id/toggle
// @Summary Add or remove a favorite
// @Tags Interactions
// @Produce json
// @Param id path int true "Property ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /interactions/favorites/{id}/toggle [post]
func (h *InteractionHandler) ToggleFavorite(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, services.ErrPropertyNotFound, "favorites.toggle")
	}
	result, err := services.ToggleFavorite(c.UserContext(), h.DB, requester(c), id)
	if err != nil {
		return respondError(c, err, "favorites.toggle")
	}
	return c.JSON(fiber.Map{"status": result})
}

// ListContactForms handles GET /api/interactions/contact-forms
// @Summary List contact forms
// @Description Agents see forms about their own properties
// @Tags Interactions
// @Produce json
// @Success 200 {array} models.ContactForm
// @Security BearerAuth
// @Router /interactions/contact-forms [get]
func (h *InteractionHandler) ListContactForms(c *fiber.Ctx) error {
	forms, err := services.ListContactForms(c.UserContext(), h.DB, requester(c))
	if err != nil {
		return respondError(c, err, "contactforms.list")
	}
	return c.JSON(forms)
}

// GetContactForm handles GET /api/interactions/contact-forms/:id
// @Summary Get a contact form
// @Tags Interactions
// @Produce json
// @Param id path int true "Contact form ID"
// @Success 200 {object} models.ContactForm
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /interactions/contact-forms/{id} [get]
func (h *InteractionHandler) GetContactForm(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err, "contactforms.get")
	}
	form, err := services.GetContactForm(c.UserContext(), h.DB, requester(c), id)
	if err != nil {
		return respondError(c, err, "contactforms.get")
	}
	return c.JSON(form)
}

// CreateContactForm handles POST /api/interactions/contact-forms
// @Summary Send a contact form
// @Tags Interactions
// @Accept json
// @Produce json
// @Param form body services.ContactFormInput true "Contact form"
// @Success 201 {object} models.ContactForm
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /interactions/contact-forms [post]
func (h *InteractionHandler) CreateContactForm(c *fiber.Ctx) error {
	var in services.ContactFormInput
	if err := bindInput(c, &in); err != nil {
		return respondError(c, err, "contactforms.create")
	}
	form, err := services.CreateContactForm(c.UserContext(), h.DB, requester(c), in)
	if err != nil {
		return respondError(c, err, "contactforms.create")
	}
	return utils.SuccessResponse(c, form, fiber.StatusCreated)
}

// DeleteContactForm handles DELETE /api/interactions/contact-forms/:id
// @Summary Delete a contact form
// @Tags Interactions
// @Param id path int true "Contact form ID"
// @Success 204
// @Security BearerAuth
// @Router /interactions/contact-forms/{id} [delete]
func (h *InteractionHandler) DeleteContactForm(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err, "contactforms.delete")
	}
	if err := services.DeleteContactForm(c.UserContext(), h.DB, requester(c), id); err != nil {
		return respondError(c, err, "contactforms.delete")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
