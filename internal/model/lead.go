package model

import (
	"time"

	"github.com/google/uuid"
)

// Lead is a prospect or customer, scoped to an organization.
type Lead struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name           string    `gorm:"index;not null"`
	// Phone is stored digits-only; lookups match any normalized Brazilian variant.
	Phone        string `gorm:"index;not null"`
	Email        *string
	Street       *string
	Number       *string
	District     *string
	City         *string
	State        *string `gorm:"type:varchar(2)"`
	ZipCode      *string `gorm:"type:varchar(10)"`
	MapLink      *string
	Region       *string
	Source       *string // indicacao | trafego | organico | whatsapp | outro
	SellerUserID *uuid.UUID `gorm:"type:uuid;index"`
	Notes        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Seller  *User               `gorm:"foreignKey:SellerUserID"`
	Answers []KeyQuestionAnswer `gorm:"foreignKey:LeadID"`
}

// KeyQuestionAnswer records a lead's answer to a product's key question.
type KeyQuestionAnswer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LeadID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Question  string    `gorm:"not null"`
	Answer    string
	Position  int `gorm:"not null;default:0"`
	CreatedAt time.Time
}
