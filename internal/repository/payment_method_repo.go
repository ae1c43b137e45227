package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vendaflow/internal/model"
)

type PaymentMethodRepository interface {
	Create(ctx context.Context, m *model.PaymentMethod) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.PaymentMethod, error)
	List(ctx context.Context, orgID uuid.UUID, includeInactive bool) ([]model.PaymentMethod, error)
	Update(ctx context.Context, m *model.PaymentMethod) error
	SetActive(ctx context.Context, orgID, id uuid.UUID, active bool) error
	ReplaceFees(ctx context.Context, methodID uuid.UUID, fees []model.PaymentMethodFee) error
}

type paymentMethodRepo struct{ db *gorm.DB }

func NewPaymentMethodRepository(db *gorm.DB) PaymentMethodRepository {
	return &paymentMethodRepo{db: db}
}

func (r *paymentMethodRepo) Create(ctx context.Context, m *model.PaymentMethod) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *paymentMethodRepo) FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.PaymentMethod, error) {
	var m model.PaymentMethod
	err := r.db.WithContext(ctx).
		Preload("Fees").
		Where("organization_id = ?", orgID).
		First(&m, "id = ?", id).Error
	return &m, err
}

func (r *paymentMethodRepo) List(ctx context.Context, orgID uuid.UUID, includeInactive bool) ([]model.PaymentMethod, error) {
	var methods []model.PaymentMethod
	q := r.db.WithContext(ctx).Preload("Fees").Where("organization_id = ?", orgID)
	if !includeInactive {
		q = q.Where("active")
	}
	err := q.Order("name").Find(&methods).Error
	return methods, err
}

func (r *paymentMethodRepo) Update(ctx context.Context, m *model.PaymentMethod) error {
	return r.db.WithContext(ctx).Omit("Fees").Save(m).Error
}

func (r *paymentMethodRepo) SetActive(ctx context.Context, orgID, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).Model(&model.PaymentMethod{}).
		Where("id = ? AND organization_id = ?", id, orgID).
		Update("active", active).Error
}

func (r *paymentMethodRepo) ReplaceFees(ctx context.Context, methodID uuid.UUID, fees []model.PaymentMethodFee) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("payment_method_id = ?", methodID).Delete(&model.PaymentMethodFee{}).Error; err != nil {
			return err
		}
		for i := range fees {
			fees[i].PaymentMethodID = methodID
			if err := tx.Create(&fees[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
