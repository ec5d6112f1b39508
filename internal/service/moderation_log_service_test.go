package service

import (
	"context"
	"testing"
	"time"

	"soulscript-be/internal/dto"
	"soulscript-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func seedModerationLogs(uow *fakeUnitOfWork, userInput, aiResponse int) {
	for i := 0; i < userInput; i++ {
		uow.moderation.logs = append(uow.moderation.logs, &entity.ModerationLog{
			Id:          uuid.New(),
			ContentType: entity.ContentTypeUserInput,
			CreatedAt:   time.Now(),
		})
	}
	for i := 0; i < aiResponse; i++ {
		uow.moderation.logs = append(uow.moderation.logs, &entity.ModerationLog{
			Id:          uuid.New(),
			ContentType: entity.ContentTypeAIResponse,
			CreatedAt:   time.Now(),
		})
	}
}

func TestModerationLogListDefaultsPagination(t *testing.T) {
	uow := newFakeUnitOfWork()
	svc := NewModerationLogService(&fakeFactory{uow: uow})
	seedModerationLogs(uow, 3, 1)

	resp, err := svc.List(context.Background(), &dto.ModerationLogListRequest{})
	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.Limit)
	assert.Equal(t, int64(4), resp.Total)
	assert.Len(t, resp.Logs, 4)
}

func TestModerationLogListFiltersByContentType(t *testing.T) {
	uow := newFakeUnitOfWork()
	svc := NewModerationLogService(&fakeFactory{uow: uow})
	seedModerationLogs(uow, 2, 5)

	resp, err := svc.List(context.Background(), &dto.ModerationLogListRequest{
		ContentType: entity.ContentTypeAIResponse.String(),
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(5), resp.Total)
	for _, log := range resp.Logs {
		assert.Equal(t, entity.ContentTypeAIResponse.String(), log.ContentType)
	}
}

func TestModerationLogListClampsLimit(t *testing.T) {
	uow := newFakeUnitOfWork()
	svc := NewModerationLogService(&fakeFactory{uow: uow})

	resp, err := svc.List(context.Background(), &dto.ModerationLogListRequest{Page: -2, Limit: 500})
	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.Limit)
}

func TestModerationStats(t *testing.T) {
	uow := newFakeUnitOfWork()
	svc := NewModerationLogService(&fakeFactory{uow: uow})
	seedModerationLogs(uow, 2, 3)

	// One stale log from yesterday and one blocked session.
	uow.moderation.logs = append(uow.moderation.logs, &entity.ModerationLog{
		Id:          uuid.New(),
		ContentType: entity.ContentTypeUserInput,
		CreatedAt:   time.Now().Add(-48 * time.Hour),
	})
	blocked := &entity.ChatSession{Id: uuid.New(), IsBlocked: true}
	uow.sessions.sessions[blocked.Id] = blocked

	stats, err := svc.Stats(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(6), stats.TotalBlocked)
	assert.Equal(t, int64(5), stats.BlockedToday)
	assert.Equal(t, int64(3), stats.UserInputCount)
	assert.Equal(t, int64(3), stats.AIResponseCount)
	assert.Equal(t, int64(1), stats.BlockedSessions)
}
