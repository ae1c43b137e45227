package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vendaflow/internal/model"
)

// SaleFilter narrows sale listings.
type SaleFilter struct {
	Status         string `form:"status"`
	DeliveryStatus string `form:"delivery_status"`
	SellerUserID   string `form:"seller_user_id"`
	CourierUserID  string `form:"courier_user_id"`
	LeadID         string `form:"lead_id"`
	Date           string `form:"date"` // scheduled date, YYYY-MM-DD
	Page           int    `form:"page"`
	Limit          int    `form:"limit"`
}

type SaleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, orgID uuid.UUID, filter SaleFilter) ([]model.Sale, int64, error)
	// ListForManifest returns the deliverable sales of a day, ordered by sale
	// number, with the associations the manifest renders.
	ListForManifest(ctx context.Context, orgID uuid.UUID, date string, courierID, deliveryType string) ([]model.Sale, error)
	// SaveTx persists the full sale row inside a transition transaction.
	SaveTx(tx *gorm.DB, s *model.Sale) error
	AppendHistoryTx(tx *gorm.DB, h *model.SaleStatusHistory) error
	NextSaleNumber(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) (int, error)

	FindAuthorization(ctx context.Context, orgID, id uuid.UUID) (*model.DiscountAuthorization, error)
	// FindOpenAuthorization returns the oldest unconsumed grant for a
	// lead+product pair.
	FindOpenAuthorization(ctx context.Context, orgID, leadID, productID uuid.UUID) (*model.DiscountAuthorization, error)
	ListAuthorizations(ctx context.Context, orgID uuid.UUID, openOnly bool) ([]model.DiscountAuthorization, error)
	CreateAuthorization(ctx context.Context, a *model.DiscountAuthorization) error
	ConsumeAuthorizationTx(tx *gorm.DB, id, saleID uuid.UUID) error

	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Lead").
		Preload("Seller").
		Preload("Courier").
		Preload("PaymentMethod.Fees").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		Where("organization_id = ?", orgID).
		First(&s, "id = ?", id).Error
	return &s, err
}

func (r *saleRepo) List(ctx context.Context, orgID uuid.UUID, filter SaleFilter) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Sale{}).Where("organization_id = ?", orgID)
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.DeliveryStatus != "" {
		q = q.Where("delivery_status = ?", filter.DeliveryStatus)
	}
	if filter.SellerUserID != "" {
		q = q.Where("seller_user_id = ?", filter.SellerUserID)
	}
	if filter.CourierUserID != "" {
		q = q.Where("courier_user_id = ?", filter.CourierUserID)
	}
	if filter.LeadID != "" {
		q = q.Where("lead_id = ?", filter.LeadID)
	}
	if filter.Date != "" {
		q = q.Where("DATE(scheduled_date) = ?", filter.Date)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Items").Preload("Lead").Preload("Seller").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) ListForManifest(ctx context.Context, orgID uuid.UUID, date string, courierID, deliveryType string) ([]model.Sale, error) {
	var sales []model.Sale
	q := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Where("status IN ?", []string{model.SalePendingExpedition, model.SaleDispatched}).
		Where("DATE(scheduled_date) = ?", date)
	if courierID != "" {
		q = q.Where("courier_user_id = ?", courierID)
	}
	if deliveryType != "" {
		q = q.Where("delivery_type = ?", deliveryType)
	}
	err := q.Preload("Items").Preload("Lead").Preload("Courier").Preload("PaymentMethod.Fees").
		Order("number").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) SaveTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Omit("Items", "Lead", "Seller", "Courier", "PaymentMethod", "StatusHistory").Save(s).Error
}

func (r *saleRepo) AppendHistoryTx(tx *gorm.DB, h *model.SaleStatusHistory) error {
	return tx.Create(h).Error
}

func (r *saleRepo) NextSaleNumber(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) (int, error) {
	// Per-org sequential number; the unique index on (organization_id, number)
	// backs this against races.
	var num int
	err := tx.WithContext(ctx).
		Raw("SELECT COALESCE(MAX(number), 0) + 1 FROM sales WHERE organization_id = ?", orgID).
		Scan(&num).Error
	return num, err
}

func (r *saleRepo) FindAuthorization(ctx context.Context, orgID, id uuid.UUID) (*model.DiscountAuthorization, error) {
	var a model.DiscountAuthorization
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		First(&a, "id = ?", id).Error
	return &a, err
}

func (r *saleRepo) FindOpenAuthorization(ctx context.Context, orgID, leadID, productID uuid.UUID) (*model.DiscountAuthorization, error) {
	var a model.DiscountAuthorization
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND lead_id = ? AND product_id = ? AND consumed_at IS NULL", orgID, leadID, productID).
		Order("created_at").
		First(&a).Error
	return &a, err
}

func (r *saleRepo) ListAuthorizations(ctx context.Context, orgID uuid.UUID, openOnly bool) ([]model.DiscountAuthorization, error) {
	var auths []model.DiscountAuthorization
	q := r.db.WithContext(ctx).Where("organization_id = ?", orgID)
	if openOnly {
		q = q.Where("consumed_at IS NULL")
	}
	err := q.Order("created_at DESC").Find(&auths).Error
	return auths, err
}

func (r *saleRepo) CreateAuthorization(ctx context.Context, a *model.DiscountAuthorization) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *saleRepo) ConsumeAuthorizationTx(tx *gorm.DB, id, saleID uuid.UUID) error {
	return tx.Model(&model.DiscountAuthorization{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Updates(map[string]interface{}{
			"consumed_at":         gorm.Expr("NOW()"),
			"consumed_by_sale_id": saleID,
		}).Error
}
