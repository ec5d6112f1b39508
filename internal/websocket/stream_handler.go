package websocket

import (
	"context"
	"encoding/json"
	"os"

	"soulscript-be/internal/constant"
	"soulscript-be/internal/dto"
	"soulscript-be/internal/entity"
	"soulscript-be/internal/pkg/apperror"
	"soulscript-be/internal/pkg/logger"
	"soulscript-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Frame types sent to the client during a streamed reply.
const (
	FrameFragment = "fragment" // partial model output
	FrameReplace  = "replace"  // moderation rewrote the streamed text
	FrameError    = "error"
	FrameDone     = "done"
)

type streamFrame struct {
	Type    string                   `json:"type"`
	Content string                   `json:"content,omitempty"`
	Result  *dto.SendMessageResponse `json:"result,omitempty"`
}

type inboundMessage struct {
	SessionId string `json:"session_id"`
	AnonToken string `json:"anon_token,omitempty"`
	Content   string `json:"content"`
}

// StreamHandler upgrades chat clients to a websocket and streams model
// replies frame by frame. The full reply is still moderated and
// persisted before the done frame; a blocked reply sends a replace
// frame so the client discards everything it rendered.
type StreamHandler struct {
	chatService service.IChatService
	logger      logger.ILogger
}

func NewStreamHandler(chatService service.IChatService, log logger.ILogger) *StreamHandler {
	return &StreamHandler{
		chatService: chatService,
		logger:      log,
	}
}

func (h *StreamHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/chat/v1/stream", h.Handle)
}

func (h *StreamHandler) Handle(c *fiber.Ctx) error {
	actor, err := h.authenticate(c)
	if err != nil {
		return err
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("stream", "websocket session started", nil)
		h.serve(conn, actor)
		h.logger.Info("stream", "websocket session ended", nil)
	})(c)
}

// authenticate accepts either a Bearer token (registered users) or an
// anon_token query parameter.
func (h *StreamHandler) authenticate(c *fiber.Ctx) (entity.Actor, error) {
	if anonToken := c.Query("anon_token"); anonToken != "" {
		return entity.Actor{AnonToken: anonToken}, nil
	}

	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) >= 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return entity.Actor{}, apperror.Unauthorized("Missing token")
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return entity.Actor{}, apperror.Unauthorized("Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return entity.Actor{}, apperror.Unauthorized("Invalid token claims")
	}
	userIdStr, ok := claims["user_id"].(string)
	if !ok {
		return entity.Actor{}, apperror.Unauthorized("Token missing user_id")
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return entity.Actor{}, apperror.Unauthorized("Invalid user ID format in token")
	}
	return entity.Actor{UserId: &userId}, nil
}

func (h *StreamHandler) serve(conn *websocket.Conn, actor entity.Actor) {
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}

		sessionId, err := uuid.Parse(inbound.SessionId)
		if err != nil {
			h.writeFrame(conn, streamFrame{Type: FrameError, Content: "Invalid session id"})
			continue
		}

		req := &dto.SendMessageRequest{Content: inbound.Content}
		onDelta := func(delta string) error {
			return h.writeFrame(conn, streamFrame{Type: FrameFragment, Content: delta})
		}

		result, err := h.chatService.SendMessageStream(context.Background(), actor, sessionId, req, onDelta)
		if err != nil {
			message := "Failed to process message"
			if appErr, ok := apperror.As(err); ok {
				message = appErr.Message
				// A blocked input produced no fragments; show the
				// supportive notice in their place.
				if appErr.Kind == apperror.KindContentBlocked {
					h.writeFrame(conn, streamFrame{Type: FrameReplace, Content: constant.BlockedContentMessage})
				}
			} else {
				h.logger.Error("stream", "send message failed", map[string]interface{}{"error": err.Error()})
			}
			h.writeFrame(conn, streamFrame{Type: FrameError, Content: message})
			continue
		}

		// A blocked reply invalidates whatever fragments the client has
		// already rendered.
		if result.Blocked {
			h.writeFrame(conn, streamFrame{Type: FrameReplace, Content: result.SafetyMessage})
		}
		h.writeFrame(conn, streamFrame{Type: FrameDone, Result: result})
	}
}

func (h *StreamHandler) writeFrame(conn *websocket.Conn, frame streamFrame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}
