package worker

// whatsapp_worker.go
// Sends queued outbound WhatsApp messages through the Z-API gateway, behind
// the gateway circuit breaker. Transient failures re-enqueue the job with an
// incremented attempt count; exhausted jobs land in the DLQ.

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"vendaflow/internal/infra"
)

const maxSendAttempts = 3

// WhatsAppJobPayload is the job envelope sent to QueueWhatsApp.
type WhatsAppJobPayload struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type WhatsAppWorker struct {
	zapi *infra.ZAPIClient
	cb   *infra.CircuitBreaker
}

func NewWhatsAppWorker(zapi *infra.ZAPIClient, cb *infra.CircuitBreaker) *WhatsAppWorker {
	return &WhatsAppWorker{zapi: zapi, cb: cb}
}

func (w *WhatsAppWorker) Process(ctx context.Context, rdb *redis.Client, job Job) {
	var payload WhatsAppJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		log.Error().Err(err).Msg("whatsapp_worker: invalid payload")
		return
	}
	if payload.Phone == "" || payload.Message == "" {
		log.Warn().Msg("whatsapp_worker: empty phone or message — skipping")
		return
	}

	err := w.cb.Execute(func() error {
		return w.zapi.SendText(ctx, payload.Phone, payload.Message)
	})
	if err == nil {
		log.Info().Str("phone", payload.Phone).Msg("whatsapp_worker: message sent")
		return
	}

	job.Attempts++
	if job.Attempts >= maxSendAttempts {
		SendToDLQ(ctx, rdb, QueueWhatsApp, job, err.Error())
		return
	}

	// Re-enqueue at the head so other messages are not starved.
	encoded, merr := json.Marshal(job)
	if merr != nil {
		log.Error().Err(merr).Msg("whatsapp_worker: failed to re-enqueue job")
		return
	}
	if rerr := rdb.LPush(ctx, QueueWhatsApp, encoded).Err(); rerr != nil {
		log.Error().Err(rerr).Msg("whatsapp_worker: failed to re-enqueue job")
		return
	}
	log.Warn().Err(err).Int("attempts", job.Attempts).Str("phone", payload.Phone).
		Msg("whatsapp_worker: send failed, re-enqueued")
}
