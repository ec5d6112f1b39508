package service

import (
	"context"
	"encoding/json"
	"time"

	"soulscript-be/internal/constant"
	"soulscript-be/internal/dto"
	"soulscript-be/internal/entity"
	"soulscript-be/internal/pkg/apperror"
	"soulscript-be/internal/pkg/logger"
	"soulscript-be/internal/repository/specification"
	"soulscript-be/internal/repository/unitofwork"
	chatmemory "soulscript-be/pkg/chat/memory"
	"soulscript-be/pkg/chat/prompt"
	"soulscript-be/pkg/llm"
	"soulscript-be/pkg/moderation"
	"soulscript-be/pkg/retrieval"
	"soulscript-be/pkg/store"

	"github.com/google/uuid"
)

type IChatService interface {
	CreateSession(ctx context.Context, actor entity.Actor, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	CreateAnonSession(ctx context.Context, req *dto.CreateAnonSessionRequest) (*dto.SessionResponse, error)
	GetSessions(ctx context.Context, actor entity.Actor) ([]*dto.SessionResponse, error)
	GetMessages(ctx context.Context, actor entity.Actor, sessionId uuid.UUID) ([]*dto.MessageResponse, error)
	UpdateTitle(ctx context.Context, actor entity.Actor, sessionId uuid.UUID, req *dto.UpdateSessionTitleRequest) (*dto.SessionResponse, error)
	DeleteSession(ctx context.Context, actor entity.Actor, sessionId uuid.UUID) error
	GetSessionSummary(ctx context.Context, actor entity.Actor, sessionId uuid.UUID) (*dto.SessionSummaryResponse, error)
	SendMessage(ctx context.Context, actor entity.Actor, sessionId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	SendMessageStream(ctx context.Context, actor entity.Actor, sessionId uuid.UUID, req *dto.SendMessageRequest, onDelta func(delta string) error) (*dto.SendMessageResponse, error)
}

type chatService struct {
	uowFactory         unitofwork.RepositoryFactory
	memory             *chatmemory.Manager
	llmProvider        llm.LLMProvider
	gate               *moderation.Gate
	retriever          retrieval.Retriever
	flagService        IFeatureFlagService
	violationPublisher IPublisherService
	log                logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	memoryManager *chatmemory.Manager,
	llmProvider llm.LLMProvider,
	gate *moderation.Gate,
	retriever retrieval.Retriever,
	flagService IFeatureFlagService,
	violationPublisher IPublisherService,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:         uowFactory,
		memory:             memoryManager,
		llmProvider:        llmProvider,
		gate:               gate,
		retriever:          retriever,
		flagService:        flagService,
		violationPublisher: violationPublisher,
		log:                log,
	}
}

// --- Session CRUD ---

func (s *chatService) CreateSession(ctx context.Context, actor entity.Actor, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	if actor.UserId == nil {
		return nil, apperror.Unauthorized("Authentication required")
	}

	title := req.Title
	if title == "" {
		title = constant.DefaultSessionTitle
	}

	session := entity.ChatSession{
		Id:        uuid.New(),
		OwnerId:   actor.UserId,
		Title:     title,
		IsActive:  true,
		CreatedAt: time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	s.log.Info("chat", "created session", map[string]interface{}{"session_id": session.Id})
	return toSessionResponse(&session), nil
}

// CreateAnonSession is idempotent on the anonymous token: repeated
// calls with the same token return the existing session.
func (s *chatService) CreateAnonSession(ctx context.Context, req *dto.CreateAnonSessionRequest) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByAnonSessionID{Token: req.AnonToken})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return toSessionResponse(existing), nil
	}

	title := req.Title
	if title == "" {
		title = constant.DefaultSessionTitle
	}

	token := req.AnonToken
	session := entity.ChatSession{
		Id:            uuid.New(),
		AnonSessionId: &token,
		Title:         title,
		IsActive:      true,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	s.log.Info("chat", "created anonymous session", map[string]interface{}{"session_id": session.Id})
	return toSessionResponse(&session), nil
}

func (s *chatService) GetSessions(ctx context.Context, actor entity.Actor) ([]*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if actor.IsAnonymous() {
		session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByAnonSessionID{Token: actor.AnonToken})
		if err != nil {
			return nil, err
		}
		if session == nil {
			return []*dto.SessionResponse{}, nil
		}
		return []*dto.SessionResponse{toSessionResponse(session)}, nil
	}

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.OwnedByUser{UserID: *actor.UserId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.SessionResponse, len(sessions))
	for i, session := range sessions {
		responses[i] = toSessionResponse(session)
	}
	return responses, nil
}

func (s *chatService) GetMessages(ctx context.Context, actor entity.Actor, sessionId uuid.UUID) ([]*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.loadOwnedSession(ctx, uow, actor, sessionId)
	if err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: session.Id},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.MessageResponse, len(messages))
	for i, msg := range messages {
		responses[i] = toMessageResponse(msg)
	}
	return responses, nil
}

func (s *chatService) UpdateTitle(ctx context.Context, actor entity.Actor, sessionId uuid.UUID, req *dto.UpdateSessionTitleRequest) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.loadOwnedSession(ctx, uow, actor, sessionId)
	if err != nil {
		return nil, err
	}

	session.Title = req.Title
	now := time.Now()
	session.UpdatedAt = &now
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}
	return toSessionResponse(session), nil
}

// DeleteSession cascades a session away together with its messages and
// moderation logs. Blocked sessions are retained.
func (s *chatService) DeleteSession(ctx context.Context, actor entity.Actor, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.loadOwnedSession(ctx, uow, actor, sessionId)
	if err != nil {
		return err
	}

	if session.IsBlocked {
		return apperror.Forbidden(constant.BlockedSessionDeleteError)
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, session.Id); err != nil {
		return err
	}
	if err := uow.ModerationLogRepository().DeleteByChatSessionId(ctx, session.Id); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, session.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.memory.Clear(session.Id.String())
	s.log.Info("chat", "deleted session", map[string]interface{}{"session_id": session.Id})
	return nil
}

func (s *chatService) GetSessionSummary(ctx context.Context, actor entity.Actor, sessionId uuid.UUID) (*dto.SessionSummaryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.loadOwnedSession(ctx, uow, actor, sessionId)
	if err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: session.Id},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	window := s.memory.Load(session, messages)

	var summaryUpdatedAt *time.Time
	if !session.SummaryUpdatedAt.IsZero() {
		t := session.SummaryUpdatedAt
		summaryUpdatedAt = &t
	}

	return &dto.SessionSummaryResponse{
		SessionId:           session.Id,
		ConversationSummary: session.ConversationSummary,
		SummaryUpdatedAt:    summaryUpdatedAt,
		WindowMessageCount:  len(window.Turns),
	}, nil
}

// --- Message pipeline ---

func (s *chatService) SendMessage(ctx context.Context, actor entity.Actor, sessionId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	return s.sendMessage(ctx, actor, sessionId, req, nil)
}

// SendMessageStream runs the same pipeline with incremental delivery.
// Fragments stream out before moderation; the caller must replace the
// streamed text when the final verdict blocks the reply.
func (s *chatService) SendMessageStream(ctx context.Context, actor entity.Actor, sessionId uuid.UUID, req *dto.SendMessageRequest, onDelta func(delta string) error) (*dto.SendMessageResponse, error) {
	return s.sendMessage(ctx, actor, sessionId, req, onDelta)
}

func (s *chatService) sendMessage(ctx context.Context, actor entity.Actor, sessionId uuid.UUID, req *dto.SendMessageRequest, onDelta func(delta string) error) (*dto.SendMessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.loadOwnedSession(ctx, uow, actor, sessionId)
	if err != nil {
		return nil, err
	}
	if session.IsBlocked {
		return nil, apperror.SessionBlocked("This chat session has been blocked: " + session.BlockedReason)
	}

	// Gate the user's message. Classifier failure allows the content
	// through; the chat must not go down with the moderation backend.
	verdict, modErr := s.gate.Evaluate(ctx, req.Content)
	if modErr != nil {
		s.log.Warn("moderation", "classifier unavailable, allowing content", map[string]interface{}{
			"session_id": session.Id,
			"error":      modErr.Error(),
		})
	}
	if !verdict.Allowed {
		// The blocked message itself is never persisted.
		if err := s.blockSession(ctx, session, entity.ContentTypeUserInput, req.Content, verdict); err != nil {
			return nil, err
		}
		return nil, apperror.ContentBlocked(verdict.Reason)
	}

	// Hydrate the window before this turn enters it; the composed
	// prompt below already carries the current message.
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: session.Id},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}
	s.memory.Load(session, messages)
	history := s.memory.History(session)

	// Persist the raw user message before the model call so it survives
	// a provider failure.
	userMessage := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Content:       req.Content,
		Role:          entity.RoleUser,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, &userMessage); err != nil {
		return nil, err
	}

	if s.llmProvider == nil {
		return nil, apperror.New(apperror.KindServiceUnavailable, "No AI model is configured")
	}

	composed := s.composeModelInput(ctx, session, req.Content)

	modelInput := make([]llm.Message, 0, len(history)+2)
	modelInput = append(modelInput, llm.Message{Role: "system", Content: constant.ChatSystemPrompt})
	modelInput = append(modelInput, history...)
	modelInput = append(modelInput, llm.Message{Role: "user", Content: composed})

	var aiContent string
	if onDelta != nil {
		aiContent, err = s.llmProvider.ChatStream(ctx, modelInput, onDelta)
	} else {
		aiContent, err = s.llmProvider.Chat(ctx, modelInput)
	}
	if err != nil {
		return nil, apperror.Upstream("The AI service is currently unavailable", err)
	}

	// Gate the model's reply with the same fail-open policy.
	aiVerdict, modErr := s.gate.Evaluate(ctx, aiContent)
	if modErr != nil {
		s.log.Warn("moderation", "classifier unavailable, allowing content", map[string]interface{}{
			"session_id": session.Id,
			"error":      modErr.Error(),
		})
	}
	if !aiVerdict.Allowed {
		// The reply is replaced with the fixed safety notice; the real
		// generated text only survives in the moderation log.
		aiMessage := entity.ChatMessage{
			Id:            uuid.New(),
			ChatSessionId: session.Id,
			Content:       constant.AIResponseBlockedMessage,
			Role:          entity.RoleAssistant,
			CreatedAt:     time.Now(),
		}
		if err := uow.ChatMessageRepository().Create(ctx, &aiMessage); err != nil {
			return nil, err
		}
		s.appendToWindow(ctx, session, &userMessage)
		s.appendToWindow(ctx, session, &aiMessage)
		if session.Title == constant.DefaultSessionTitle {
			session.Title = deriveTitle(req.Content)
		}
		// blockSession saves the session, carrying any summary fields
		// the appends above folded in.
		if err := s.blockSession(ctx, session, entity.ContentTypeAIResponse, aiContent, aiVerdict); err != nil {
			s.memory.Clear(session.Id.String())
			return nil, err
		}
		return &dto.SendMessageResponse{
			UserMessage:   toMessageResponse(&userMessage),
			AIMessage:     toMessageResponse(&aiMessage),
			Blocked:       true,
			BlockReason:   aiVerdict.Reason,
			SafetyMessage: constant.AIResponseBlockedMessage,
		}, nil
	}

	aiMessage := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Content:       aiContent,
		Role:          entity.RoleAssistant,
		CreatedAt:     time.Now(),
	}

	// Window appends may fold old turns into the summary, mutating the
	// session's summary fields before it is saved below.
	s.appendToWindow(ctx, session, &userMessage)
	s.appendToWindow(ctx, session, &aiMessage)

	if session.Title == constant.DefaultSessionTitle {
		session.Title = deriveTitle(req.Content)
	}
	now := time.Now()
	session.UpdatedAt = &now

	// On any failure below the cached window is ahead of durable state,
	// so it is dropped and rebuilt from rows on the next load.
	if err := s.commitTurn(ctx, uow, session, &aiMessage); err != nil {
		s.memory.Clear(session.Id.String())
		return nil, err
	}

	return &dto.SendMessageResponse{
		UserMessage: toMessageResponse(&userMessage),
		AIMessage:   toMessageResponse(&aiMessage),
	}, nil
}

// --- helpers ---

// commitTurn writes the assistant message and the updated session in one
// transaction.
func (s *chatService) commitTurn(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession, aiMessage *entity.ChatMessage) error {
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().Create(ctx, aiMessage); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *chatService) loadOwnedSession(ctx context.Context, uow unitofwork.UnitOfWork, actor entity.Actor, sessionId uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil || !session.OwnedBy(actor) {
		return nil, apperror.NotFound("Chat session not found")
	}
	return session, nil
}

// composeModelInput builds the enriched prompt for the current turn.
// Retrieval and flag failures degrade to an unenriched prompt.
func (s *chatService) composeModelInput(ctx context.Context, session *entity.ChatSession, content string) string {
	var flagsBlock string
	if s.flagService != nil {
		text, err := s.flagService.ActiveFlagsPromptText(ctx)
		if err != nil {
			s.log.Warn("chat", "failed to load feature flag prompt", map[string]interface{}{"error": err.Error()})
		} else {
			flagsBlock = text
		}
	}

	var contextBlock string
	if s.retriever != nil {
		excerpts, err := s.retriever.Search(ctx, session.OwnerId, content, constant.RetrievalTopK)
		if err != nil {
			s.log.Warn("chat", "document retrieval failed", map[string]interface{}{
				"session_id": session.Id,
				"error":      err.Error(),
			})
		} else {
			contextBlock = prompt.BuildContext(excerpts)
		}
	}

	return prompt.Compose(flagsBlock, contextBlock, content)
}

// blockSession marks the session blocked and records the violation in
// one transaction, then fans the violation out on the internal bus.
func (s *chatService) blockSession(ctx context.Context, session *entity.ChatSession, contentType entity.ModerationContentType, content string, verdict *moderation.Verdict) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	session.IsBlocked = true
	session.IsActive = false
	session.BlockedReason = verdict.Reason
	now := time.Now()
	session.UpdatedAt = &now
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		return err
	}

	scores := make(map[string]interface{}, len(verdict.Scores))
	for k, v := range verdict.Scores {
		scores[k] = v
	}

	sessionId := session.Id
	logEntry := entity.ModerationLog{
		Id:              uuid.New(),
		UserId:          session.OwnerId,
		AnonSessionId:   session.AnonSessionId,
		ChatSessionId:   &sessionId,
		ContentType:     contentType,
		OriginalContent: content,
		BlockedReason:   verdict.Reason,
		CategoryScores:  scores,
		CreatedAt:       time.Now(),
	}
	if err := uow.ModerationLogRepository().Create(ctx, &logEntry); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.log.Warn("moderation", "session blocked", map[string]interface{}{
		"session_id":   session.Id,
		"content_type": contentType.String(),
		"reason":       verdict.Reason,
	})

	if s.violationPublisher != nil {
		payload := dto.ModerationViolationMessage{
			SessionId:     session.Id,
			UserId:        session.OwnerId,
			AnonSessionId: session.AnonSessionId,
			ContentType:   contentType.String(),
			Reason:        verdict.Reason,
			OccurredAt:    time.Now(),
		}
		msgJson, err := json.Marshal(payload)
		if err == nil {
			if err := s.violationPublisher.Publish(ctx, msgJson); err != nil {
				s.log.Warn("moderation", "failed to publish violation", map[string]interface{}{"error": err.Error()})
			}
		}
	}
	return nil
}

func (s *chatService) appendToWindow(ctx context.Context, session *entity.ChatSession, msg *entity.ChatMessage) {
	turn := store.Turn{
		Id:      msg.Id,
		Role:    msg.Role.String(),
		Content: msg.Content,
	}
	if err := s.memory.Append(ctx, session, turn); err != nil {
		s.log.Warn("chat", "summarization failed, window trimmed without summary", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
	}
}

// deriveTitle truncates on rune boundaries so multi-byte input never
// splits mid-character.
func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) > constant.TitleMaxLength {
		return string(runes[:constant.TitleMaxLength]) + constant.TitleEllipsis
	}
	return content
}

func toSessionResponse(session *entity.ChatSession) *dto.SessionResponse {
	updatedAt := session.CreatedAt
	if session.UpdatedAt != nil {
		updatedAt = *session.UpdatedAt
	}
	return &dto.SessionResponse{
		Id:            session.Id,
		Title:         session.Title,
		IsActive:      session.IsActive,
		IsBlocked:     session.IsBlocked,
		BlockedReason: session.BlockedReason,
		CreatedAt:     session.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func toMessageResponse(msg *entity.ChatMessage) *dto.MessageResponse {
	return &dto.MessageResponse{
		Id:        msg.Id,
		SessionId: msg.ChatSessionId,
		Role:      msg.Role.String(),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}
