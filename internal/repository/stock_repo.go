package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vendaflow/internal/model"
)

// StockMovementFilter narrows the movement audit listing.
type StockMovementFilter struct {
	ProductID string `form:"product_id"`
	SaleID    string `form:"sale_id"`
	Operation string `form:"operation"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}

type StockRepository interface {
	CreateMovementTx(tx *gorm.DB, m *model.StockMovement) error
	ListMovements(ctx context.Context, orgID uuid.UUID, filter StockMovementFilter) ([]model.StockMovement, int64, error)

	CreateCompensation(ctx context.Context, c *model.StockCompensation) error
	UpdateCompensation(ctx context.Context, c *model.StockCompensation) error
	// ListFailedCompensations returns failed ledger entries due for replay.
	ListFailedCompensations(ctx context.Context, before time.Time, limit int) ([]model.StockCompensation, error)
	ListCompensationsBySale(ctx context.Context, orgID, saleID uuid.UUID) ([]model.StockCompensation, error)
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) CreateMovementTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}

func (r *stockRepo) ListMovements(ctx context.Context, orgID uuid.UUID, filter StockMovementFilter) ([]model.StockMovement, int64, error) {
	var movements []model.StockMovement
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.StockMovement{}).Where("organization_id = ?", orgID)
	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.SaleID != "" {
		q = q.Where("sale_id = ?", filter.SaleID)
	}
	if filter.Operation != "" {
		q = q.Where("operation = ?", filter.Operation)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&movements).Error
	return movements, total, err
}

func (r *stockRepo) CreateCompensation(ctx context.Context, c *model.StockCompensation) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *stockRepo) UpdateCompensation(ctx context.Context, c *model.StockCompensation) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *stockRepo) ListFailedCompensations(ctx context.Context, before time.Time, limit int) ([]model.StockCompensation, error) {
	var entries []model.StockCompensation
	err := r.db.WithContext(ctx).
		Where("status = ? AND (next_retry_at IS NULL OR next_retry_at <= ?)", model.CompensationFailed, before).
		Order("created_at").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *stockRepo) ListCompensationsBySale(ctx context.Context, orgID, saleID uuid.UUID) ([]model.StockCompensation, error) {
	var entries []model.StockCompensation
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND sale_id = ?", orgID, saleID).
		Order("created_at").
		Find(&entries).Error
	return entries, err
}
