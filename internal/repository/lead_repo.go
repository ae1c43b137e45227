package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vendaflow/internal/model"
)

// LeadFilter narrows lead listings. Search matches name or phone prefix.
type LeadFilter struct {
	Search       string `form:"search"`
	SellerUserID string `form:"seller_user_id"`
	Region       string `form:"region"`
	Page         int    `form:"page"`
	Limit        int    `form:"limit"`
}

type LeadRepository interface {
	Create(ctx context.Context, l *model.Lead) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Lead, error)
	FindByPhoneVariants(ctx context.Context, orgID uuid.UUID, variants []string) (*model.Lead, error)
	List(ctx context.Context, orgID uuid.UUID, filter LeadFilter) ([]model.Lead, int64, error)
	Update(ctx context.Context, l *model.Lead) error
	SaveAnswers(ctx context.Context, leadID uuid.UUID, answers []model.KeyQuestionAnswer) error
}

type leadRepo struct{ db *gorm.DB }

func NewLeadRepository(db *gorm.DB) LeadRepository { return &leadRepo{db: db} }

func (r *leadRepo) Create(ctx context.Context, l *model.Lead) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *leadRepo) FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Lead, error) {
	var l model.Lead
	err := r.db.WithContext(ctx).
		Preload("Answers").Preload("Seller").
		Where("organization_id = ?", orgID).
		First(&l, "id = ?", id).Error
	return &l, err
}

func (r *leadRepo) FindByPhoneVariants(ctx context.Context, orgID uuid.UUID, variants []string) (*model.Lead, error) {
	var l model.Lead
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND phone IN ?", orgID, variants).
		First(&l).Error
	return &l, err
}

func (r *leadRepo) List(ctx context.Context, orgID uuid.UUID, filter LeadFilter) ([]model.Lead, int64, error) {
	var leads []model.Lead
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Lead{}).Where("organization_id = ?", orgID)
	if filter.Search != "" {
		q = q.Where("name ILIKE ? OR phone LIKE ?", "%"+filter.Search+"%", filter.Search+"%")
	}
	if filter.SellerUserID != "" {
		q = q.Where("seller_user_id = ?", filter.SellerUserID)
	}
	if filter.Region != "" {
		q = q.Where("region = ?", filter.Region)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&leads).Error
	return leads, total, err
}

func (r *leadRepo) Update(ctx context.Context, l *model.Lead) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *leadRepo) SaveAnswers(ctx context.Context, leadID uuid.UUID, answers []model.KeyQuestionAnswer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range answers {
			answers[i].LeadID = leadID
			if err := tx.Create(&answers[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
