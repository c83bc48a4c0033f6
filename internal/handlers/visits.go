package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/brokerdb/internal/services"
	"github.com/localnerve/brokerdb/internal/utils"
	"gorm.io/gorm"
)

// VisitHandler handles visit routes
type VisitHandler struct {
	DB *gorm.DB
}

// List handles GET /api/visits
// @Summary List visits
// @Tags Visits
// @Produce json
// @Success 200 {array} models.Visit
// @Security BearerAuth
// @Router /visits [get]
func (h *VisitHandler) List(c *fiber.Ctx) error {
	visits, err := services.ListVisits(c.UserContext(), h.DB, requester(c))
	if err != nil {
		return respondError(c, err, "visits.list")
	}
	return c.JSON(visits)
}

// Get handles GET /api/visits/:id
// @Summary Get a visit
// @Tags Visits
// @Produce json
// @Param id path int true "Visit ID"
// @Success 200 {object} models.Visit
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /visits/{id} [get]
func (h *VisitHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err, "visits.get")
	}
	visit, err := services.GetVisit(c.UserContext(), h.DB, requester(c), id)
	if err != nil {
		return respondError(c, err, "visits.get")
	}
	return c.JSON(visit)
}

// Create handles POST /api/visits
// @Summary Schedule a visit
// @Tags Visits
// @Accept json
// @Produce json
// @Param visit body services.VisitInput true "Visit"
// @Success 201 {object} models.Visit
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /visits [post]
func (h *VisitHandler) Create(c *fiber.Ctx) error {
	var in services.VisitInput
	if err := bindInput(c, &in); err != nil {
		return respondError(c, err, "visits.create")
	}
	visit, err := services.CreateVisit(c.UserContext(), h.DB, requester(c), in)
	if err != nil {
		return respondError(c, err, "visits.create")
	}
	return utils.SuccessResponse(c, visit, fiber.StatusCreated)
}

// Update handles PATCH /api/visits/:id
// @Summary Update a visit
// @Tags Visits
// @Accept json
// @Produce json
// @Param id path int true "Visit ID"
// @Param visit body services.VisitInput true "Fields to change"
// @Success 200 {object} models.Visit
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /visits/{id} [patch]
func (h *VisitHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err, "visits.update")
	}
	var in services.VisitInput
	if err := bindInput(c, &in); err != nil {
		return respondError(c, err, "visits.update")
	}
	visit, err := services.UpdateVisit(c.UserContext(), h.DB, requester(c), id, in)
	if err != nil {
		return respondError(c, err, "visits.update")
	}
	return c.JSON(visit)
}

// Delete handles DELETE /api/visits/:id
// @Summary Delete a visit
// @Tags Visits
// @Param id path int true "Visit ID"
// @Success 204
// @Security BearerAuth
// @Router /visits/{id} [delete]
func (h *VisitHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err, "visits.delete")
	}
	if err := services.DeleteVisit(c.UserContext(), h.DB, requester(c), id); err != nil {
		return respondError(c, err, "visits.delete")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
