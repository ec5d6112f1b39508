package service

import (
	"context"
	"time"

	"soulscript-be/internal/dto"
	"soulscript-be/internal/entity"
	"soulscript-be/internal/repository/specification"
	"soulscript-be/internal/repository/unitofwork"
)

type IModerationLogService interface {
	List(ctx context.Context, req *dto.ModerationLogListRequest) (*dto.ModerationLogListResponse, error)
	Stats(ctx context.Context) (*dto.ModerationStatsResponse, error)
}

type moderationLogService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewModerationLogService(uowFactory unitofwork.RepositoryFactory) IModerationLogService {
	return &moderationLogService{
		uowFactory: uowFactory,
	}
}

func (s *moderationLogService) List(ctx context.Context, req *dto.ModerationLogListRequest) (*dto.ModerationLogListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var filters []specification.Specification
	if req.ContentType != "" {
		filters = append(filters, specification.ByContentType{ContentType: req.ContentType})
	}
	if req.UserId != "" {
		filters = append(filters, specification.UserIDLike{Pattern: req.UserId})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	total, err := uow.ModerationLogRepository().Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	listSpecs := append(filters,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	logs, err := uow.ModerationLogRepository().FindAll(ctx, listSpecs...)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ModerationLogResponse, len(logs))
	for i, log := range logs {
		responses[i] = toModerationLogResponse(log)
	}

	return &dto.ModerationLogListResponse{
		Logs:  responses,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func (s *moderationLogService) Stats(ctx context.Context) (*dto.ModerationStatsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	total, err := uow.ModerationLogRepository().Count(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := uow.ModerationLogRepository().Count(ctx, specification.CreatedSince{Since: midnight})
	if err != nil {
		return nil, err
	}
	userInput, err := uow.ModerationLogRepository().Count(ctx,
		specification.ByContentType{ContentType: entity.ContentTypeUserInput.String()})
	if err != nil {
		return nil, err
	}
	aiResponse, err := uow.ModerationLogRepository().Count(ctx,
		specification.ByContentType{ContentType: entity.ContentTypeAIResponse.String()})
	if err != nil {
		return nil, err
	}
	blockedSessions, err := uow.ChatSessionRepository().Count(ctx, specification.Filter("is_blocked", true))
	if err != nil {
		return nil, err
	}

	return &dto.ModerationStatsResponse{
		TotalBlocked:    total,
		BlockedToday:    today,
		UserInputCount:  userInput,
		AIResponseCount: aiResponse,
		BlockedSessions: blockedSessions,
	}, nil
}

func toModerationLogResponse(log *entity.ModerationLog) dto.ModerationLogResponse {
	return dto.ModerationLogResponse{
		Id:              log.Id,
		UserId:          log.UserId,
		AnonSessionId:   log.AnonSessionId,
		ChatSessionId:   log.ChatSessionId,
		ContentType:     log.ContentType.String(),
		OriginalContent: log.OriginalContent,
		BlockedReason:   log.BlockedReason,
		CategoryScores:  log.CategoryScores,
		CreatedAt:       log.CreatedAt,
	}
}
