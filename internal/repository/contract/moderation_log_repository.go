package contract

import (
	"context"

	"soulscript-be/internal/entity"
	"soulscript-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ModerationLogRepository interface {
	Create(ctx context.Context, log *entity.ModerationLog) error
	DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ModerationLog, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
