package controller

import (
	"soulscript-be/internal/dto"
	"soulscript-be/internal/entity"
	"soulscript-be/internal/pkg/apperror"
	"soulscript-be/internal/pkg/serverutils"
	"soulscript-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	ListMessages(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	UpdateTitle(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	SessionSummary(ctx *fiber.Ctx) error
	CreateAnonSession(ctx *fiber.Ctx) error
	ListAnonMessages(ctx *fiber.Ctx) error
	SendAnonMessage(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")

	// Anonymous routes carry the token in the request instead of a JWT.
	anon := h.Group("/anon")
	anon.Post("session", c.CreateAnonSession)
	anon.Get("session/messages", c.ListAnonMessages)
	anon.Post("session/message", c.SendAnonMessage)

	h.Use(serverutils.JwtMiddleware)
	h.Post("sessions", c.CreateSession)
	h.Get("sessions", c.ListSessions)
	h.Get("sessions/:id/messages", c.ListMessages)
	h.Post("sessions/:id/messages", c.SendMessage)
	h.Put("sessions/:id", c.UpdateTitle)
	h.Delete("sessions/:id", c.DeleteSession)
	h.Get("sessions/:id/summary", c.SessionSummary)
}

func actorFromCtx(ctx *fiber.Ctx) (entity.Actor, error) {
	userIdStr, ok := ctx.Locals("user_id").(string)
	if !ok {
		return entity.Actor{}, apperror.Unauthorized("Authentication required")
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return entity.Actor{}, apperror.Unauthorized("Invalid user identity")
	}
	return entity.Actor{UserId: &userId}, nil
}

func parseIdParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.Validation("Invalid session id")
	}
	return id, nil
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	actor, err := actorFromCtx(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil && len(ctx.Body()) > 0 {
		return apperror.Validation("Invalid request body")
	}

	res, err := c.chatService.CreateSession(ctx.Context(), actor, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session created", res))
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	actor, err := actorFromCtx(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.GetSessions(ctx.Context(), actor)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat sessions", res))
}

func (c *chatController) ListMessages(ctx *fiber.Ctx) error {
	actor, err := actorFromCtx(ctx)
	if err != nil {
		return err
	}
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.GetMessages(ctx.Context(), actor, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session messages", res))
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	actor, err := actorFromCtx(ctx)
	if err != nil {
		return err
	}
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SendMessage(ctx.Context(), actor, id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Message sent", res))
}

func (c *chatController) UpdateTitle(ctx *fiber.Ctx) error {
	actor, err := actorFromCtx(ctx)
	if err != nil {
		return err
	}
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateSessionTitleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.UpdateTitle(ctx.Context(), actor, id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session updated", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	actor, err := actorFromCtx(ctx)
	if err != nil {
		return err
	}
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	if err := c.chatService.DeleteSession(ctx.Context(), actor, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Session deleted", nil))
}

func (c *chatController) SessionSummary(ctx *fiber.Ctx) error {
	actor, err := actorFromCtx(ctx)
	if err != nil {
		return err
	}
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.GetSessionSummary(ctx.Context(), actor, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session summary", res))
}

// --- Anonymous ---

func (c *chatController) CreateAnonSession(ctx *fiber.Ctx) error {
	var req dto.CreateAnonSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.CreateAnonSession(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session created", res))
}

func anonActorFromQuery(ctx *fiber.Ctx) (entity.Actor, error) {
	token := ctx.Query("anon_token")
	if token == "" {
		return entity.Actor{}, apperror.Validation("anon_token is required")
	}
	return entity.Actor{AnonToken: token}, nil
}

func (c *chatController) ListAnonMessages(ctx *fiber.Ctx) error {
	actor, err := anonActorFromQuery(ctx)
	if err != nil {
		return err
	}

	sessions, err := c.chatService.GetSessions(ctx.Context(), actor)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		return apperror.NotFound("Chat session not found")
	}

	res, err := c.chatService.GetMessages(ctx.Context(), actor, sessions[0].Id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session messages", res))
}

func (c *chatController) SendAnonMessage(ctx *fiber.Ctx) error {
	var req struct {
		AnonToken string `json:"anon_token" validate:"required,min=8,max=64"`
		Content   string `json:"content" validate:"required,min=1,max=10000"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	actor := entity.Actor{AnonToken: req.AnonToken}
	sessions, err := c.chatService.GetSessions(ctx.Context(), actor)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		return apperror.NotFound("Chat session not found")
	}

	res, err := c.chatService.SendMessage(ctx.Context(), actor, sessions[0].Id, &dto.SendMessageRequest{Content: req.Content})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Message sent", res))
}
