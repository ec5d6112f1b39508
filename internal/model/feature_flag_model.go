package model

import (
	"time"

	"github.com/google/uuid"
)

type FeatureFlag struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Description  string    `gorm:"type:text;not null"`
	IsEnabled    bool      `gorm:"not null;default:false"`
	IsPredefined bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (FeatureFlag) TableName() string {
	return "feature_flags"
}
