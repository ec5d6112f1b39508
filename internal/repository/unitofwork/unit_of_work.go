package unitofwork

import (
	"context"

	"soulscript-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	ModerationLogRepository() contract.ModerationLogRepository
	FeatureFlagRepository() contract.FeatureFlagRepository
	DocumentChunkRepository() contract.DocumentChunkRepository
}
