package entity

import (
	"time"

	"github.com/google/uuid"
)

// FeatureFlag is a named behavior toggle surfaced to the model as contextual
// instruction. Predefined flags are seed data: they can be toggled but never
// deleted.
type FeatureFlag struct {
	Id           uuid.UUID
	Name         string
	Description  string
	IsEnabled    bool
	IsPredefined bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
