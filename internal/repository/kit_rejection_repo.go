package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vendaflow/internal/model"
)

type KitRejectionRepository interface {
	Create(ctx context.Context, r *model.KitRejection) error
	ListByLeadProduct(ctx context.Context, orgID, leadID, productID uuid.UUID) ([]model.KitRejection, error)
}

type kitRejectionRepo struct{ db *gorm.DB }

func NewKitRejectionRepository(db *gorm.DB) KitRejectionRepository {
	return &kitRejectionRepo{db: db}
}

func (r *kitRejectionRepo) Create(ctx context.Context, rej *model.KitRejection) error {
	return r.db.WithContext(ctx).Create(rej).Error
}

func (r *kitRejectionRepo) ListByLeadProduct(ctx context.Context, orgID, leadID, productID uuid.UUID) ([]model.KitRejection, error) {
	var rejections []model.KitRejection
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND lead_id = ? AND product_id = ?", orgID, leadID, productID).
		Order("created_at").
		Find(&rejections).Error
	return rejections, err
}
