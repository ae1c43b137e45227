package worker

// retry_cron.go
// Replays failed stock compensation ledger entries. Runs every 30s, picks the
// entries due for retry, re-applies the stock operation and backs off on
// failure. Entries that exhaust their attempts are marked as error and pushed
// to the DLQ for manual reconciliation.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"vendaflow/internal/model"
	"vendaflow/internal/repository"
	"vendaflow/internal/service"
)

const (
	retryInterval        = 30 * time.Second
	retryBatchSize       = 10
	maxCompensationTries = 5

	QueueStockCompensation = "jobs:stock_compensation"
)

// StartRetryCron launches the compensation replay loop.
func StartRetryCron(
	ctx context.Context,
	rdb *redis.Client,
	stockRepo repository.StockRepository,
	saleRepo repository.SaleRepository,
	stock service.StockService,
) {
	go func() {
		ticker := time.NewTicker(retryInterval)
		defer ticker.Stop()

		log.Info().Msg("stock compensation retry cron started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("stock compensation retry cron shutting down")
				return
			case <-ticker.C:
				replayBatch(ctx, rdb, stockRepo, saleRepo, stock)
			}
		}
	}()
}

func replayBatch(
	ctx context.Context,
	rdb *redis.Client,
	stockRepo repository.StockRepository,
	saleRepo repository.SaleRepository,
	stock service.StockService,
) {
	entries, err := stockRepo.ListFailedCompensations(ctx, time.Now(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to list pending compensations")
		return
	}
	if len(entries) == 0 {
		return
	}

	log.Info().Int("count", len(entries)).Msg("retry_cron: replaying stock compensations")
	for i := range entries {
		entry := &entries[i]

		if entry.Attempts >= maxCompensationTries {
			giveUp(ctx, rdb, stockRepo, entry)
			continue
		}

		sale, err := saleRepo.FindByID(ctx, entry.OrganizationID, entry.SaleID)
		if err != nil {
			log.Error().Err(err).
				Str("sale_id", entry.SaleID.String()).
				Msg("retry_cron: sale not found for compensation entry")
			giveUp(ctx, rdb, stockRepo, entry)
			continue
		}

		if err := stock.Replay(ctx, entry, sale.Items); err != nil {
			log.Warn().Err(err).
				Str("sale_id", entry.SaleID.String()).
				Str("operation", entry.Operation).
				Int("attempts", entry.Attempts).
				Msg("retry_cron: replay failed, will retry later")
			continue
		}
		log.Info().
			Str("sale_id", entry.SaleID.String()).
			Str("operation", entry.Operation).
			Msg("retry_cron: compensation applied")
	}
}

// giveUp marks an entry as permanently failed and parks it in the DLQ.
func giveUp(ctx context.Context, rdb *redis.Client, stockRepo repository.StockRepository, entry *model.StockCompensation) {
	entry.Status = model.CompensationError
	entry.NextRetryAt = nil
	if err := stockRepo.UpdateCompensation(ctx, entry); err != nil {
		log.Error().Err(err).Str("entry_id", entry.ID.String()).Msg("retry_cron: failed to mark entry as error")
		return
	}

	reason := "máximo de tentativas excedido"
	if entry.LastError != nil {
		reason = *entry.LastError
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("entry_id", entry.ID.String()).Msg("retry_cron: failed to marshal DLQ payload")
		return
	}
	SendToDLQ(ctx, rdb, QueueStockCompensation, Job{
		Type:     "stock_" + entry.Operation,
		Payload:  payload,
		Attempts: entry.Attempts,
	}, reason)
}
