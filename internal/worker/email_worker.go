package worker

// email_worker.go
// Processes email jobs, currently discount-authorization alerts to managers.
// A payload may reference a PDF in local storage to attach.

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"vendaflow/internal/infra"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	// PDFPath, when set, is attached from local storage.
	PDFPath string `json:"pdf_path,omitempty"`
}

type EmailWorker struct {
	mailer *infra.Mailer
}

func NewEmailWorker(mailer *infra.Mailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

func (w *EmailWorker) Process(ctx context.Context, rdb *redis.Client, job Job) {
	var payload EmailJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if len(payload.To) == 0 {
		log.Warn().Msg("email_worker: empty recipient list — skipping")
		return
	}

	var attachments map[string][]byte
	if payload.PDFPath != "" {
		data, err := os.ReadFile(payload.PDFPath)
		if err != nil {
			log.Error().Err(err).Str("path", payload.PDFPath).Msg("email_worker: attachment unreadable")
		} else {
			attachments = map[string][]byte{filepath.Base(payload.PDFPath): data}
		}
	}

	if err := w.mailer.Send(payload.To, payload.Subject, payload.HTML, attachments); err != nil {
		job.Attempts++
		if job.Attempts >= maxSendAttempts {
			SendToDLQ(ctx, rdb, QueueEmail, job, err.Error())
			return
		}
		encoded, merr := json.Marshal(job)
		if merr == nil {
			_ = rdb.LPush(ctx, QueueEmail, encoded).Err()
		}
		log.Error().Err(err).Strs("to", payload.To).Msg("email_worker: send failed, re-enqueued")
		return
	}
	log.Info().Strs("to", payload.To).Msg("email_worker: email sent")
}
