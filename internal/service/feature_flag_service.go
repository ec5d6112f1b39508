package service

import (
	"context"
	"time"

	"soulscript-be/internal/constant"
	"soulscript-be/internal/dto"
	"soulscript-be/internal/entity"
	"soulscript-be/internal/pkg/apperror"
	"soulscript-be/internal/pkg/logger"
	"soulscript-be/internal/repository/specification"
	"soulscript-be/internal/repository/unitofwork"
	"soulscript-be/pkg/chat/prompt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	flagsPromptCacheKey = "feature_flags:prompt"
	flagsPromptCacheTTL = 60 * time.Second
)

type IFeatureFlagService interface {
	InitializePredefined(ctx context.Context) error
	GetAll(ctx context.Context) ([]*dto.FeatureFlagResponse, error)
	GetActive(ctx context.Context) ([]*dto.FeatureFlagResponse, error)
	Create(ctx context.Context, req *dto.CreateFeatureFlagRequest) (*dto.FeatureFlagResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateFeatureFlagRequest) (*dto.FeatureFlagResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Toggle(ctx context.Context, id uuid.UUID) (*dto.FeatureFlagResponse, error)
	ActiveFlagsPromptText(ctx context.Context) (string, error)
}

type featureFlagService struct {
	uowFactory unitofwork.RepositoryFactory
	redis      *redis.Client
	log        logger.ILogger
}

func NewFeatureFlagService(uowFactory unitofwork.RepositoryFactory, redisClient *redis.Client, log logger.ILogger) IFeatureFlagService {
	return &featureFlagService{
		uowFactory: uowFactory,
		redis:      redisClient,
		log:        log,
	}
}

// InitializePredefined creates missing built-in flags disabled and
// refreshes drifted descriptions. Enabled state of existing rows is
// never touched.
func (s *featureFlagService) InitializePredefined(ctx context.Context) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	for _, predefined := range constant.PredefinedFeatureFlags {
		existing, err := uow.FeatureFlagRepository().FindByName(ctx, predefined.Name)
		if err != nil {
			return err
		}

		if existing == nil {
			flag := entity.FeatureFlag{
				Id:           uuid.New(),
				Name:         predefined.Name,
				Description:  predefined.Description,
				IsEnabled:    false,
				IsPredefined: true,
				CreatedAt:    time.Now(),
			}
			if err := uow.FeatureFlagRepository().Create(ctx, &flag); err != nil {
				return err
			}
			s.log.Info("feature_flag", "created predefined flag", map[string]interface{}{"name": predefined.Name})
			continue
		}

		if existing.Description != predefined.Description {
			existing.Description = predefined.Description
			now := time.Now()
			existing.UpdatedAt = &now
			if err := uow.FeatureFlagRepository().Update(ctx, existing); err != nil {
				return err
			}
			s.log.Info("feature_flag", "updated predefined flag", map[string]interface{}{"name": predefined.Name})
		}
	}

	s.invalidatePromptCache(ctx)
	return nil
}

func (s *featureFlagService) GetAll(ctx context.Context) ([]*dto.FeatureFlagResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	flags, err := uow.FeatureFlagRepository().FindAll(ctx, specification.OrderBy{Field: "name"})
	if err != nil {
		return nil, err
	}
	return toFlagResponses(flags), nil
}

func (s *featureFlagService) GetActive(ctx context.Context) ([]*dto.FeatureFlagResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	flags, err := uow.FeatureFlagRepository().FindAll(ctx,
		specification.EnabledOnly{},
		specification.OrderBy{Field: "name"},
	)
	if err != nil {
		return nil, err
	}
	return toFlagResponses(flags), nil
}

// Create adds a custom flag, enabled immediately.
func (s *featureFlagService) Create(ctx context.Context, req *dto.CreateFeatureFlagRequest) (*dto.FeatureFlagResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.FeatureFlagRepository().FindByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Conflict("A feature flag with this name already exists")
	}

	flag := entity.FeatureFlag{
		Id:           uuid.New(),
		Name:         req.Name,
		Description:  req.Description,
		IsEnabled:    true,
		IsPredefined: false,
		CreatedAt:    time.Now(),
	}
	if err := uow.FeatureFlagRepository().Create(ctx, &flag); err != nil {
		return nil, err
	}

	s.invalidatePromptCache(ctx)
	s.log.Info("feature_flag", "created flag", map[string]interface{}{"name": flag.Name})
	return toFlagResponse(&flag), nil
}

func (s *featureFlagService) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateFeatureFlagRequest) (*dto.FeatureFlagResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	flag, err := uow.FeatureFlagRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if flag == nil {
		return nil, apperror.NotFound("Feature flag not found")
	}

	if req.Name != nil && *req.Name != flag.Name {
		existing, err := uow.FeatureFlagRepository().FindByName(ctx, *req.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperror.Conflict("A feature flag with this name already exists")
		}
		flag.Name = *req.Name
	}
	if req.Description != nil {
		flag.Description = *req.Description
	}
	if req.IsEnabled != nil {
		flag.IsEnabled = *req.IsEnabled
	}

	now := time.Now()
	flag.UpdatedAt = &now
	if err := uow.FeatureFlagRepository().Update(ctx, flag); err != nil {
		return nil, err
	}

	s.invalidatePromptCache(ctx)
	return toFlagResponse(flag), nil
}

// Delete removes a custom flag. Predefined flags cannot be deleted.
func (s *featureFlagService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	flag, err := uow.FeatureFlagRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if flag == nil {
		return apperror.NotFound("Feature flag not found")
	}
	if flag.IsPredefined {
		return apperror.Forbidden("Predefined feature flags cannot be deleted")
	}

	if err := uow.FeatureFlagRepository().Delete(ctx, id); err != nil {
		return err
	}

	s.invalidatePromptCache(ctx)
	s.log.Info("feature_flag", "deleted flag", map[string]interface{}{"name": flag.Name})
	return nil
}

func (s *featureFlagService) Toggle(ctx context.Context, id uuid.UUID) (*dto.FeatureFlagResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	flag, err := uow.FeatureFlagRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if flag == nil {
		return nil, apperror.NotFound("Feature flag not found")
	}

	flag.IsEnabled = !flag.IsEnabled
	now := time.Now()
	flag.UpdatedAt = &now
	if err := uow.FeatureFlagRepository().Update(ctx, flag); err != nil {
		return nil, err
	}

	s.invalidatePromptCache(ctx)
	return toFlagResponse(flag), nil
}

// ActiveFlagsPromptText returns the rendered prompt block for enabled
// flags, cached briefly in Redis. Cache failures fall through to the
// database.
func (s *featureFlagService) ActiveFlagsPromptText(ctx context.Context) (string, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, flagsPromptCacheKey).Result()
		if err == nil {
			return cached, nil
		}
		if err != redis.Nil {
			s.log.Warn("feature_flag", "prompt cache read failed", map[string]interface{}{"error": err.Error()})
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	flags, err := uow.FeatureFlagRepository().FindAll(ctx,
		specification.EnabledOnly{},
		specification.OrderBy{Field: "name"},
	)
	if err != nil {
		return "", err
	}

	text := prompt.BuildFeatureFlagBlock(flags)

	if s.redis != nil {
		if err := s.redis.Set(ctx, flagsPromptCacheKey, text, flagsPromptCacheTTL).Err(); err != nil {
			s.log.Warn("feature_flag", "prompt cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return text, nil
}

func (s *featureFlagService) invalidatePromptCache(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, flagsPromptCacheKey).Err(); err != nil {
		s.log.Warn("feature_flag", "prompt cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}

func toFlagResponse(flag *entity.FeatureFlag) *dto.FeatureFlagResponse {
	return &dto.FeatureFlagResponse{
		Id:           flag.Id,
		Name:         flag.Name,
		Description:  flag.Description,
		IsEnabled:    flag.IsEnabled,
		IsPredefined: flag.IsPredefined,
		CreatedAt:    flag.CreatedAt,
		UpdatedAt:    flag.UpdatedAt,
	}
}

func toFlagResponses(flags []*entity.FeatureFlag) []*dto.FeatureFlagResponse {
	responses := make([]*dto.FeatureFlagResponse, len(flags))
	for i, flag := range flags {
		responses[i] = toFlagResponse(flag)
	}
	return responses
}
