package controller

import (
	"soulscript-be/internal/dto"
	"soulscript-be/internal/pkg/serverutils"
	"soulscript-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IModerationController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type moderationController struct {
	logService service.IModerationLogService
}

func NewModerationController(logService service.IModerationLogService) IModerationController {
	return &moderationController{
		logService: logService,
	}
}

func (c *moderationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/moderation/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("logs", c.List)
	h.Get("stats", c.Stats)
}

func (c *moderationController) List(ctx *fiber.Ctx) error {
	var req dto.ModerationLogListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return err
	}

	res, err := c.logService.List(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Moderation logs", res))
}

func (c *moderationController) Stats(ctx *fiber.Ctx) error {
	res, err := c.logService.Stats(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Moderation stats", res))
}
