package model

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the tenant root. Every domain row carries an
// OrganizationID and every repository query filters by it.
type Organization struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name   string    `gorm:"not null"`
	Slug   string    `gorm:"uniqueIndex;not null"`
	CNPJ   *string   `gorm:"type:varchar(20)"`
	Active bool      `gorm:"not null;default:true"`

	// Onboarding answers collected on first login of the org admin.
	OnboardingCompletedAt *time.Time
	OnboardingAnswers     *string `gorm:"type:jsonb"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
