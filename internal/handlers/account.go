package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/brokerdb/internal/config"
	"github.com/localnerve/brokerdb/internal/services"
	"github.com/localnerve/brokerdb/internal/storage"
	"gorm.io/gorm"
)

// AccountHandler serves the requester's own account and the dashboard
type AccountHandler struct {
	DB *gorm.DB
}

// Me handles GET /api/accounts/me
// @Summary Current user
// @Tags Accounts
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /accounts/me [get]
func (h *AccountHandler) Me(c *fiber.Ctx) error {
	user, err := services.Me(c.UserContext(), h.DB, requester(c))
	if err != nil {
		return respondError(c, err, "accounts.me")
	}
	return c.JSON(user)
}

// Dashboard handles GET /api/dashboard
// @Summary Dashboard summary
// @Description Counts over the rows visible to the requester; agents also get my_* totals
// @Tags Dashboard
// @Produce json
// @Success 200 {object} services.DashboardSummary
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /dashboard [get]
func (h *AccountHandler) Dashboard(c *fiber.Ctx) error {
	summary, err := services.Summary(c.UserContext(), h.DB, requester(c))
	if err != nil {
		return respondError(c, err, "dashboard")
	}
	return c.JSON(summary)
}

// HealthHandler reports service health
type HealthHandler struct {
	Config *config.Config
	DB     *gorm.DB
	Store  storage.Store
}

// Health handles GET /api/health
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(h.Config, h.DB, h.Store)
	if !result.Healthy() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(result)
	}
	return c.JSON(result)
}
