package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateFeatureFlagRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"required,min=1,max=500"`
}

type UpdateFeatureFlagRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,min=1,max=500"`
	IsEnabled   *bool   `json:"is_enabled,omitempty"`
}

type FeatureFlagResponse struct {
	Id           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	IsEnabled    bool       `json:"is_enabled"`
	IsPredefined bool       `json:"is_predefined"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}
