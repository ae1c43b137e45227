package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"vendaflow/internal/model"
	"vendaflow/internal/repository"
)

// StockService applies the stock side effects of sale transitions and keeps
// the compensation ledger. Counter semantics:
//
//	reserve    reserved += qty   (requires available >= qty)
//	unreserve  reserved -= qty
//	deduct     actual -= qty, reserved -= qty
//	restore    actual += qty
//
// Apply is soft-fail: a stock error never blocks the sale transition that
// requested it. The failed operation lands in the ledger and the retry cron
// replays it until it succeeds or exhausts its attempts.
type StockService interface {
	Apply(ctx context.Context, op string, orgID, saleID uuid.UUID, items []model.SaleItem)
	// Replay retries a failed ledger entry; returns the final entry state.
	Replay(ctx context.Context, entry *model.StockCompensation, items []model.SaleItem) error
	AdjustManual(ctx context.Context, orgID, productID uuid.UUID, delta int, reason string) error
	ListMovements(ctx context.Context, orgID uuid.UUID, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error)
}

type stockService struct {
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
}

func NewStockService(productRepo repository.ProductRepository, stockRepo repository.StockRepository) StockService {
	return &stockService{productRepo: productRepo, stockRepo: stockRepo}
}

const compensationRetryDelay = 5 * time.Minute

// Apply executes op for every tracked item and records the outcome in the
// compensation ledger. Errors are logged, never returned.
func (s *stockService) Apply(ctx context.Context, op string, orgID, saleID uuid.UUID, items []model.SaleItem) {
	err := s.applyTx(ctx, op, orgID, saleID, items)

	entry := &model.StockCompensation{
		OrganizationID: orgID,
		SaleID:         saleID,
		Operation:      op,
		Status:         model.CompensationApplied,
		Attempts:       1,
	}
	if err != nil {
		msg := err.Error()
		retryAt := time.Now().Add(compensationRetryDelay)
		entry.Status = model.CompensationFailed
		entry.LastError = &msg
		entry.NextRetryAt = &retryAt
		log.Error().Err(err).
			Str("sale_id", saleID.String()).
			Str("operation", op).
			Msg("stock operation failed; recorded for replay")
	}

	if cerr := s.stockRepo.CreateCompensation(ctx, entry); cerr != nil {
		log.Error().Err(cerr).Str("sale_id", saleID.String()).Msg("failed to write stock compensation ledger")
	}
}

func (s *stockService) Replay(ctx context.Context, entry *model.StockCompensation, items []model.SaleItem) error {
	err := s.applyTx(ctx, entry.Operation, entry.OrganizationID, entry.SaleID, items)

	entry.Attempts++
	if err == nil {
		entry.Status = model.CompensationApplied
		entry.LastError = nil
		entry.NextRetryAt = nil
	} else {
		msg := err.Error()
		retryAt := time.Now().Add(compensationRetryDelay * time.Duration(entry.Attempts))
		entry.LastError = &msg
		entry.NextRetryAt = &retryAt
	}
	if uerr := s.stockRepo.UpdateCompensation(ctx, entry); uerr != nil {
		return uerr
	}
	return err
}

// applyTx mutates all item counters atomically: either every movement of the
// operation lands or none does.
func (s *stockService) applyTx(ctx context.Context, op string, orgID, saleID uuid.UUID, items []model.SaleItem) error {
	return runTx(ctx, s.productRepo.DB(), func(tx *gorm.DB) error {
		for _, item := range items {
			p, err := s.productRepo.FindByIDTx(tx, item.ProductID)
			if err != nil {
				return fmt.Errorf("produto %s: %w", item.ProductID, err)
			}
			if !p.TrackStock {
				continue
			}

			actual, reserved := p.StockActual, p.StockReserved
			qty := item.Quantity

			switch op {
			case model.StockOpReserve:
				if actual-reserved < qty {
					return fmt.Errorf("estoque insuficiente para %s: disponível %d, necessário %d",
						p.Name, actual-reserved, qty)
				}
				reserved += qty
			case model.StockOpUnreserve:
				reserved -= qty
				if reserved < 0 {
					reserved = 0
				}
			case model.StockOpDeduct:
				actual -= qty
				reserved -= qty
				if reserved < 0 {
					reserved = 0
				}
				if actual < 0 {
					return fmt.Errorf("estoque de %s ficaria negativo", p.Name)
				}
			case model.StockOpRestore:
				actual += qty
			default:
				return fmt.Errorf("operação de estoque desconhecida: %s", op)
			}

			movement := &model.StockMovement{
				OrganizationID: orgID,
				ProductID:      p.ID,
				Operation:      op,
				Quantity:       qty,
				ActualBefore:   p.StockActual,
				ActualAfter:    actual,
				ReservedBefore: p.StockReserved,
				ReservedAfter:  reserved,
				Reason:         "venda",
				SaleID:         &saleID,
			}
			if err := s.stockRepo.CreateMovementTx(tx, movement); err != nil {
				return err
			}
			if err := s.productRepo.UpdateCountersTx(tx, p.ID, actual, reserved); err != nil {
				return err
			}
		}
		return nil
	})
}

// AdjustManual applies a direct counter correction. Unlike Apply this is
// hard-fail: callers get the error back.
func (s *stockService) AdjustManual(ctx context.Context, orgID, productID uuid.UUID, delta int, reason string) error {
	return runTx(ctx, s.productRepo.DB(), func(tx *gorm.DB) error {
		p, err := s.productRepo.FindByIDTx(tx, productID)
		if err != nil {
			return fmt.Errorf("produto não encontrado")
		}
		if p.OrganizationID != orgID {
			return fmt.Errorf("produto não encontrado")
		}

		actual := p.StockActual + delta
		if actual < 0 {
			return fmt.Errorf("ajuste deixaria o estoque negativo")
		}

		movement := &model.StockMovement{
			OrganizationID: orgID,
			ProductID:      p.ID,
			Operation:      model.StockOpAdjust,
			Quantity:       delta,
			ActualBefore:   p.StockActual,
			ActualAfter:    actual,
			ReservedBefore: p.StockReserved,
			ReservedAfter:  p.StockReserved,
			Reason:         reason,
		}
		if err := s.stockRepo.CreateMovementTx(tx, movement); err != nil {
			return err
		}
		return s.productRepo.UpdateCountersTx(tx, p.ID, actual, p.StockReserved)
	})
}

func (s *stockService) ListMovements(ctx context.Context, orgID uuid.UUID, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	return s.stockRepo.ListMovements(ctx, orgID, filter)
}
