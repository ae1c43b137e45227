package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vendaflow/internal/model"
)

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Featured *bool  `form:"featured"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Product, error)
	// FindByIDTx reads a product inside a transaction (stock mutations).
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	FindKit(ctx context.Context, orgID, kitID uuid.UUID) (*model.ProductPriceKit, error)
	List(ctx context.Context, orgID uuid.UUID, filter ProductFilter) ([]model.Product, int64, error)
	Update(ctx context.Context, p *model.Product) error
	SetActive(ctx context.Context, orgID, id uuid.UUID, active bool) error
	ReplaceKits(ctx context.Context, productID uuid.UUID, kits []model.ProductPriceKit) error
	// UpdateCountersTx writes new stock counters inside a transaction.
	UpdateCountersTx(tx *gorm.DB, id uuid.UUID, actual, reserved int) error
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Preload("Kits", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("KeyQuestions", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("organization_id = ?", orgID).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) FindKit(ctx context.Context, orgID, kitID uuid.UUID) (*model.ProductPriceKit, error) {
	var kit model.ProductPriceKit
	err := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = product_price_kits.product_id").
		Where("products.organization_id = ? AND product_price_kits.id = ?", orgID, kitID).
		First(&kit).Error
	return &kit, err
}

func (r *productRepo) List(ctx context.Context, orgID uuid.UUID, filter ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Product{}).Where("organization_id = ?", orgID)
	if filter.Search != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Featured != nil {
		q = q.Where("featured = ?", *filter.Featured)
	}
	if filter.Active != nil {
		q = q.Where("active = ?", *filter.Active)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Kits", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Order("featured DESC, name").
		Offset(offset).Limit(filter.Limit).
		Find(&products).Error
	return products, total, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) SetActive(ctx context.Context, orgID, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND organization_id = ?", id, orgID).
		Update("active", active).Error
}

func (r *productRepo) ReplaceKits(ctx context.Context, productID uuid.UUID, kits []model.ProductPriceKit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&model.ProductPriceKit{}).Error; err != nil {
			return err
		}
		for i := range kits {
			kits[i].ProductID = productID
			if err := tx.Create(&kits[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *productRepo) UpdateCountersTx(tx *gorm.DB, id uuid.UUID, actual, reserved int) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock_actual":   actual,
			"stock_reserved": reserved,
		}).Error
}
