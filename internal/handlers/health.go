package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lumenworks/sitecms/internal/cache"
	"github.com/lumenworks/sitecms/internal/config"
	"github.com/lumenworks/sitecms/internal/services"
	"gorm.io/gorm"
)

// HealthHandler handles the service health route
type HealthHandler struct {
	Cfg   *config.Config
	DB    *gorm.DB
	Cache cache.Cache
}

// Health handles GET /health
// @Summary Service health
// @Description Report database and cache connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(h.Cfg, h.DB, h.Cache)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
