package controller

import (
	"docstream-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Live(ctx *fiber.Ctx) error
	Ready(ctx *fiber.Ctx) error
}

type healthController struct {
	db *gorm.DB
}

func NewHealthController(db *gorm.DB) IHealthController {
	return &healthController{db: db}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Live)
	r.Get("/ready", c.Ready)
}

func (c *healthController) Live(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("ok", fiber.Map{"status": "up"}))
}

func (c *healthController) Ready(ctx *fiber.Ctx) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return serverutils.ServiceUnavailableError("Database unavailable")
	}
	if err := sqlDB.PingContext(ctx.Context()); err != nil {
		return serverutils.ServiceUnavailableError("Database unavailable")
	}
	return ctx.JSON(serverutils.SuccessResponse("ok", fiber.Map{"status": "ready"}))
}
