package controller

import (
	"soulscript-be/internal/dto"
	"soulscript-be/internal/pkg/apperror"
	"soulscript-be/internal/pkg/serverutils"
	"soulscript-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IFeatureFlagController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	ListActive(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Toggle(ctx *fiber.Ctx) error
}

type featureFlagController struct {
	flagService service.IFeatureFlagService
}

func NewFeatureFlagController(flagService service.IFeatureFlagService) IFeatureFlagController {
	return &featureFlagController{
		flagService: flagService,
	}
}

func (c *featureFlagController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/feature-flags/v1")
	h.Get("active", c.ListActive)
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
	h.Post(":id/toggle", c.Toggle)
}

func parseFlagId(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.Validation("Invalid feature flag id")
	}
	return id, nil
}

func (c *featureFlagController) List(ctx *fiber.Ctx) error {
	res, err := c.flagService.GetAll(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Feature flags", res))
}

func (c *featureFlagController) ListActive(ctx *fiber.Ctx) error {
	res, err := c.flagService.GetActive(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Active feature flags", res))
}

func (c *featureFlagController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateFeatureFlagRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.flagService.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Feature flag created", res))
}

func (c *featureFlagController) Update(ctx *fiber.Ctx) error {
	id, err := parseFlagId(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateFeatureFlagRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.flagService.Update(ctx.Context(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Feature flag updated", res))
}

func (c *featureFlagController) Delete(ctx *fiber.Ctx) error {
	id, err := parseFlagId(ctx)
	if err != nil {
		return err
	}

	if err := c.flagService.Delete(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Feature flag deleted", nil))
}

func (c *featureFlagController) Toggle(ctx *fiber.Ctx) error {
	id, err := parseFlagId(ctx)
	if err != nil {
		return err
	}

	res, err := c.flagService.Toggle(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Feature flag toggled", res))
}
