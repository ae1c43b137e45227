package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vendaflow/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate,
// then applies the few idempotent SQL patches GORM cannot express.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.AutoMigrate(
		&model.Organization{},
		&model.User{},
		&model.Lead{},
		&model.KeyQuestionAnswer{},
		&model.Product{},
		&model.KeyQuestion{},
		&model.ProductPriceKit{},
		&model.KitRejection{},
		&model.Sale{},
		&model.SaleItem{},
		&model.SaleStatusHistory{},
		&model.DiscountAuthorization{},
		&model.PaymentMethod{},
		&model.PaymentMethodFee{},
		&model.StockMovement{},
		&model.StockCompensation{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}

	return db, nil
}

// applySchemaPatches applies idempotent DDL outside AutoMigrate's reach.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Per-org sale numbering must be unique.
		`CREATE UNIQUE INDEX IF NOT EXISTS uni_sales_org_number ON sales (organization_id, number)`,
		// Fast replay scan for the compensation cron.
		`CREATE INDEX IF NOT EXISTS idx_stock_compensations_failed
		   ON stock_compensations (next_retry_at) WHERE status = 'failed'`,
	}
	for _, p := range patches {
		if err := db.Exec(p).Error; err != nil {
			return err
		}
	}
	return nil
}
