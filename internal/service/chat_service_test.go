package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"soulscript-be/internal/constant"
	"soulscript-be/internal/dto"
	"soulscript-be/internal/entity"
	"soulscript-be/internal/pkg/apperror"
	repomemory "soulscript-be/internal/repository/memory"
	chatmemory "soulscript-be/pkg/chat/memory"
	"soulscript-be/pkg/moderation"
	"soulscript-be/pkg/retrieval"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

const blockMarker = "[harmful]"

type chatFixture struct {
	svc       IChatService
	uow       *fakeUnitOfWork
	llm       *stubLLM
	publisher *capturingPublisher
	windows   *repomemory.WindowRepository
}

// newChatFixture wires the chat service against in-memory doubles. The
// classifier blocks any text carrying blockMarker as self-harm.
func newChatFixture(llmStub *stubLLM, retriever retrieval.Retriever) *chatFixture {
	uow := newFakeUnitOfWork()
	factory := &fakeFactory{uow: uow}

	classifier := &scriptedClassifier{classify: func(text string) (*moderation.Result, error) {
		if strings.Contains(text, blockMarker) {
			return &moderation.Result{
				Flagged:    true,
				Categories: map[string]bool{moderation.CategorySelfHarm: true},
				Scores:     map[string]float64{moderation.CategorySelfHarm: 0.97},
			}, nil
		}
		return &moderation.Result{Flagged: false}, nil
	}}

	windows := repomemory.NewWindowRepository()
	manager := chatmemory.NewManager(windows, chatmemory.NewSummarizer(llmStub))
	flagService := NewFeatureFlagService(factory, nil, nopLogger{})
	publisher := &capturingPublisher{}

	svc := NewChatService(
		factory,
		manager,
		llmStub,
		moderation.NewGate(classifier),
		retriever,
		flagService,
		publisher,
		nopLogger{},
	)

	return &chatFixture{svc: svc, uow: uow, llm: llmStub, publisher: publisher, windows: windows}
}

func registeredActor() entity.Actor {
	id := uuid.New()
	return entity.Actor{UserId: &id}
}

func (f *chatFixture) createSession(t *testing.T, actor entity.Actor) uuid.UUID {
	t.Helper()
	resp, err := f.svc.CreateSession(context.Background(), actor, &dto.CreateSessionRequest{})
	assert.NoError(t, err)
	return resp.Id
}

func TestCreateSessionRequiresAuthentication(t *testing.T) {
	f := newChatFixture(&stubLLM{}, &stubRetriever{})

	_, err := f.svc.CreateSession(context.Background(), entity.Actor{AnonToken: "tok-12345678"}, &dto.CreateSessionRequest{})

	appErr, ok := apperror.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.KindUnauthorized, appErr.Kind)
}

func TestCreateSessionDefaultsTitle(t *testing.T) {
	f := newChatFixture(&stubLLM{}, &stubRetriever{})

	resp, err := f.svc.CreateSession(context.Background(), registeredActor(), &dto.CreateSessionRequest{})
	assert.NoError(t, err)
	assert.Equal(t, constant.DefaultSessionTitle, resp.Title)
	assert.True(t, resp.IsActive)
}

func TestCreateAnonSessionIsIdempotent(t *testing.T) {
	f := newChatFixture(&stubLLM{}, &stubRetriever{})
	req := &dto.CreateAnonSessionRequest{AnonToken: "anon-token-123"}

	first, err := f.svc.CreateAnonSession(context.Background(), req)
	assert.NoError(t, err)

	second, err := f.svc.CreateAnonSession(context.Background(), req)
	assert.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)
	assert.Len(t, f.uow.sessions.sessions, 1)
}

func TestGetSessionsScopedToOwner(t *testing.T) {
	f := newChatFixture(&stubLLM{}, &stubRetriever{})
	owner := registeredActor()
	other := registeredActor()
	f.createSession(t, owner)
	f.createSession(t, owner)
	f.createSession(t, other)

	sessions, err := f.svc.GetSessions(context.Background(), owner)
	assert.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestGetSessionsAnonReturnsOwnSessionOnly(t *testing.T) {
	f := newChatFixture(&stubLLM{}, &stubRetriever{})
	created, err := f.svc.CreateAnonSession(context.Background(), &dto.CreateAnonSessionRequest{AnonToken: "anon-token-123"})
	assert.NoError(t, err)

	sessions, err := f.svc.GetSessions(context.Background(), entity.Actor{AnonToken: "anon-token-123"})
	assert.NoError(t, err)
	assert.Len(t, sessions, 1)
	assert.Equal(t, created.Id, sessions[0].Id)

	none, err := f.svc.GetSessions(context.Background(), entity.Actor{AnonToken: "different-token"})
	assert.NoError(t, err)
	assert.Empty(t, none)
}

func TestSessionAccessDeniedForNonOwner(t *testing.T) {
	f := newChatFixture(&stubLLM{}, &stubRetriever{})
	owner := registeredActor()
	sessionId := f.createSession(t, owner)

	_, err := f.svc.GetMessages(context.Background(), registeredActor(), sessionId)

	appErr, ok := apperror.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.KindNotFound, appErr.Kind, "foreign sessions must look nonexistent")
}

func TestSendMessageHappyPath(t *testing.T) {
	llmStub := &stubLLM{reply: "Peace be with you."}
	f := newChatFixture(llmStub, &stubRetriever{})
	actor := registeredActor()
	sessionId := f.createSession(t, actor)

	resp, err := f.svc.SendMessage(context.Background(), actor, sessionId, &dto.SendMessageRequest{Content: "How do I find peace?"})
	assert.NoError(t, err)
	assert.False(t, resp.Blocked)
	assert.Equal(t, "How do I find peace?", resp.UserMessage.Content)
	assert.Equal(t, "Peace be with you.", resp.AIMessage.Content)
	assert.Equal(t, "user", resp.UserMessage.Role)
	assert.Equal(t, "assistant", resp.AIMessage.Role)

	// Both turns persisted.
	messages, err := f.svc.GetMessages(context.Background(), actor, sessionId)
	assert.NoError(t, err)
	assert.Len(t, messages, 2)

	// Title derived from the first user message.
	sessions, _ := f.svc.GetSessions(context.Background(), actor)
	assert.Equal(t, "How do I find peace?", sessions[0].Title)
}

func TestSendMessageDerivesTruncatedTitle(t *testing.T) {
	f := newChatFixture(&stubLLM{reply: "ok"}, &stubRetriever{})
	actor := registeredActor()
	sessionId := f.createSession(t, actor)

	long := strings.Repeat("q", constant.TitleMaxLength+30)
	_, err := f.svc.SendMessage(context.Background(), actor, sessionId, &dto.SendMessageRequest{Content: long})
	assert.NoError(t, err)

	sessions, _ := f.svc.GetSessions(context.Background(), actor)
	assert.Equal(t, long[:constant.TitleMaxLength]+constant.TitleEllipsis, sessions[0].Title)
}

func TestSendMessageKeepsCustomTitle(t *testing.T) {
	f := newChatFixture(&stubLLM{reply: "ok"}, &stubRetriever{})
	actor := registeredActor()
	resp, err := f.svc.CreateSession(context.Background(), actor, &dto.CreateSessionRequest{Title: "My Journey"})
	assert.NoError(t, err)

	_, err = f.svc.SendMessage(context.Background(), actor, resp.Id, &dto.SendMessageRequest{Content: "hello"})
	assert.NoError(t, err)

	sessions, _ := f.svc.GetSessions(context.Background(), actor)
	assert.Equal(t, "My Journey", sessions[0].Title)
}

func TestSendMessageInjectsSystemPromptAndComposedTurn(t *testing.T) {
	llmStub := &stubLLM{reply: "answer"}
	retriever := &stubRetriever{excerpts: []retrieval.Excerpt{
		{Title: "Psalms Study", Content: "Be still and know."},
	}}
	f := newChatFixture(llmStub, retriever)
	actor := registeredActor()
	sessionId := f.createSession(t, actor)

	_, err := f.svc.SendMessage(context.Background(), actor, sessionId, &dto.SendMessageRequest{Content: "What does stillness mean?"})
	assert.NoError(t, err)

	assert.Len(t, llmStub.inputs, 1)
	input := llmStub.inputs[0]
	assert.Equal(t, "system", input[0].Role)
	assert.Equal(t, constant.ChatSystemPrompt, input[0].Content)

	last := input[len(input)-1]
	assert.Equal(t, "user", last.Role)
	assert.Contains(t, last.Content, constant.RetrievalContextHeader)
	assert.Contains(t, last.Content, "From 'Psalms Study': Be still and know.")
	assert.Contains(t, last.Content, constant.RetrievalQuestionLead+"What does stillness mean?")

	// The persisted message carries the raw content, not the composition.
	messages, _ := f.svc.GetMessages(context.Background(), actor, sessionId)
	assert.Equal(t, "What does stillness mean?", messages[0].Content)
}

func TestSendMessageBlocksHarmfulInput(t *testing.T) {
	f := newChatFixture(&stubLLM{reply: "never used"}, &stubRetriever{})
	actor := registeredActor()
	sessionId := f.createSession(t, actor)

	resp, err := f.svc.SendMessage(context.Background(), actor, sessionId, &dto.SendMessageRequest{Content: "some " + blockMarker + " text"})
	assert.Nil(t, resp)
	appErr, ok := apperror.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.KindContentBlocked, appErr.Kind)
	assert.Equal(t, "Self-Harm", appErr.Message)

	// Session is blocked and deactivated.
	session := f.uow.sessions.sessions[sessionId]
	assert.True(t, session.IsBlocked)
	assert.False(t, session.IsActive)
	assert.Equal(t, "Self-Harm", session.BlockedReason)

	// Violation logged with scores.
	assert.Len(t, f.uow.moderation.logs, 1)
	logEntry := f.uow.moderation.logs[0]
	assert.Equal(t, entity.ContentTypeUserInput, logEntry.ContentType)
	assert.Equal(t, "some "+blockMarker+" text", logEntry.OriginalContent)
	assert.Equal(t, 0.97, logEntry.CategoryScores[moderation.CategorySelfHarm])

	// Violation fanned out on the internal bus.
	assert.Len(t, f.publisher.payloads, 1)
	var violation dto.ModerationViolationMessage
	assert.NoError(t, json.Unmarshal(f.publisher.payloads[0], &violation))
	assert.Equal(t, sessionId, violation.SessionId)
	assert.Equal(t, entity.ContentTypeUserInput.String(), violation.ContentType)

	// No message rows were written.
	assert.Empty(t, f.uow.messages.messages)
	assert.Empty(t, f.llm.inputs, "model is never called for blocked input")
}

func TestSendMessageBlocksHarmfulReply(t *testing.T) {
	f := newChatFixture(&stubLLM{reply: "a " + blockMarker + " reply"}, &stubRetriever{})
	actor := registeredActor()
	sessionId := f.createSession(t, actor)

	resp, err := f.svc.SendMessage(context.Background(), actor, sessionId, &dto.SendMessageRequest{Content: "innocent question"})
	assert.NoError(t, err)
	assert.True(t, resp.Blocked)
	assert.Equal(t, constant.AIResponseBlockedMessage, resp.SafetyMessage)
	assert.NotNil(t, resp.UserMessage)
	assert.NotNil(t, resp.AIMessage)
	assert.Equal(t, constant.AIResponseBlockedMessage, resp.AIMessage.Content, "flagged text is never returned")

	// The assistant row carries the safety notice; the flagged text
	// survives only in the moderation log.
	assert.Len(t, f.uow.messages.messages, 2)
	assert.Equal(t, entity.RoleUser, f.uow.messages.messages[0].Role)
	assert.Equal(t, entity.RoleAssistant, f.uow.messages.messages[1].Role)
	assert.Equal(t, constant.AIResponseBlockedMessage, f.uow.messages.messages[1].Content)

	assert.Len(t, f.uow.moderation.logs, 1)
	assert.Equal(t, entity.ContentTypeAIResponse, f.uow.moderation.logs[0].ContentType)
	assert.Equal(t, "a "+blockMarker+" reply", f.uow.moderation.logs[0].OriginalContent)

	// Both turns entered the memory window before the block.
	window, ok := f.windows.Get(sessionId.String())
	assert.True(t, ok)
	assert.Len(t, window.Turns, 2)
	assert.Equal(t, constant.AIResponseBlockedMessage, window.Turns[1].Content)
}

func TestSendMessageRejectedOnBlockedSession(t *testing.T) {
	f := newChatFixture(&stubLLM{reply: "ok"}, &stubRetriever{})
	actor := registeredActor()
	sessionId := f.createSession(t, actor)

	_, err := f.svc.SendMessage(context.Background(), actor, sessionId, &dto.SendMessageRequest{Content: blockMarker})
	assert.Error(t, err)

	_, err = f.svc.SendMessage(context.Background(), actor, sessionId, &dto.SendMessageRequest{Content: "hello again"})
	appErr, ok := apperror.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.KindSessionBlocked, appErr.Kind)
}

func TestSendMessageUpstreamFailureKeepsUserMessage(t *testing.T) {
	f := newChatFixture(&stubLLM{err: assert.AnError}, &stubRetriever{})
	actor := registeredActor()
	sessionId := f.createSession(t, actor)

	_, err := f.svc.SendMessage(context.Background(), actor, sessionId, &dto.SendMessageRequest{Content: "hello"})
	appErr, ok := apperror.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.KindUpstream, appErr.Kind)

	// The user's message was persisted before the model call.
	messages, _ := f.svc.GetMessages(context.Background(), actor, sessionId)
	assert.Len(t, messages, 1)
	assert.Equal(t, "hello", messages[0].Content)
}

func TestSendMessageStreamDeliversFragments(t *testing.T) {
	f := newChatFixture(&stubLLM{reply: "streamed reply"}, &stubRetriever{})
	actor := registeredActor()
	sessionId := f.createSession(t, actor)

	var deltas []string
	resp, err := f.svc.SendMessageStream(context.Background(), actor, sessionId,
		&dto.SendMessageRequest{Content: "hi"},
		func(delta string) error {
			deltas = append(deltas, delta)
			return nil
		})
	assert.NoError(t, err)
	assert.Equal(t, []string{"streamed reply"}, deltas)
	assert.Equal(t, "streamed reply", resp.AIMessage.Content)
}

func TestDeleteSessionCascades(t *testing.T) {
	f := newChatFixture(&stubLLM{reply: "ok"}, &stubRetriever{})
	actor := registeredActor()
	sessionId := f.createSession(t, actor)
	otherSessionId := uuid.New()

	_, err := f.svc.SendMessage(context.Background(), actor, sessionId, &dto.SendMessageRequest{Content: "hello"})
	assert.NoError(t, err)

	// Logs referencing this session go with it; foreign logs stay.
	ownId, foreignId := sessionId, otherSessionId
	f.uow.moderation.logs = append(f.uow.moderation.logs,
		&entity.ModerationLog{Id: uuid.New(), ChatSessionId: &ownId, ContentType: entity.ContentTypeUserInput, CreatedAt: time.Now()},
		&entity.ModerationLog{Id: uuid.New(), ChatSessionId: &foreignId, ContentType: entity.ContentTypeUserInput, CreatedAt: time.Now()},
	)

	assert.NoError(t, f.svc.DeleteSession(context.Background(), actor, sessionId))

	assert.Empty(t, f.uow.sessions.sessions)
	assert.Empty(t, f.uow.messages.messages)
	assert.Len(t, f.uow.moderation.logs, 1)
	assert.Equal(t, otherSessionId, *f.uow.moderation.logs[0].ChatSessionId)
}

func TestDeleteBlockedSessionForbidden(t *testing.T) {
	f := newChatFixture(&stubLLM{reply: "ok"}, &stubRetriever{})
	actor := registeredActor()
	sessionId := f.createSession(t, actor)

	_, err := f.svc.SendMessage(context.Background(), actor, sessionId, &dto.SendMessageRequest{Content: blockMarker})
	assert.Error(t, err)

	err = f.svc.DeleteSession(context.Background(), actor, sessionId)
	appErr, ok := apperror.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.KindForbidden, appErr.Kind)
	assert.Equal(t, constant.BlockedSessionDeleteError, appErr.Message)
	assert.Len(t, f.uow.sessions.sessions, 1, "blocked sessions are retained")
}

func TestGetSessionSummaryReflectsWindow(t *testing.T) {
	f := newChatFixture(&stubLLM{reply: "ok"}, &stubRetriever{})
	actor := registeredActor()
	sessionId := f.createSession(t, actor)

	_, err := f.svc.SendMessage(context.Background(), actor, sessionId, &dto.SendMessageRequest{Content: "hello"})
	assert.NoError(t, err)

	summary, err := f.svc.GetSessionSummary(context.Background(), actor, sessionId)
	assert.NoError(t, err)
	assert.Equal(t, sessionId, summary.SessionId)
	assert.Equal(t, 2, summary.WindowMessageCount)
	assert.Empty(t, summary.ConversationSummary)
	assert.Nil(t, summary.SummaryUpdatedAt)
}

func TestSendMessageCommitFailureDropsCachedWindow(t *testing.T) {
	f := newChatFixture(&stubLLM{reply: "ok"}, &stubRetriever{})
	actor := registeredActor()
	sessionId := f.createSession(t, actor)

	f.uow.commitErr = assert.AnError
	_, err := f.svc.SendMessage(context.Background(), actor, sessionId, &dto.SendMessageRequest{Content: "hello"})
	assert.Error(t, err)

	// A stale window must not outlive the failed commit; the next load
	// rebuilds it from the rows as stored.
	_, cached := f.windows.Get(sessionId.String())
	assert.False(t, cached)
}

func TestDeriveTitleTruncatesOnRuneBoundaries(t *testing.T) {
	long := strings.Repeat("祈", constant.TitleMaxLength+5)

	title := deriveTitle(long)

	assert.True(t, utf8.ValidString(title))
	assert.Equal(t, strings.Repeat("祈", constant.TitleMaxLength)+constant.TitleEllipsis, title)
}

func TestUpdateTitle(t *testing.T) {
	f := newChatFixture(&stubLLM{}, &stubRetriever{})
	actor := registeredActor()
	sessionId := f.createSession(t, actor)

	resp, err := f.svc.UpdateTitle(context.Background(), actor, sessionId, &dto.UpdateSessionTitleRequest{Title: "Renamed"})
	assert.NoError(t, err)
	assert.Equal(t, "Renamed", resp.Title)
	assert.Equal(t, "Renamed", f.uow.sessions.sessions[sessionId].Title)
}
