package worker

// instance_monitor.go
// Watches the WhatsApp instance connection. While the instance is down it
// fetches a fresh pairing QR code every 35s, up to 3 times per outage, and
// logs it for the operator. A reconnect resets the budget.

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"vendaflow/internal/infra"
)

const (
	statusPollInterval = 8 * time.Second
	qrRefreshInterval  = 35 * time.Second
	maxQRFetches       = 3
)

// instanceGateway is the slice of the Z-API client the monitor needs.
type instanceGateway interface {
	GetStatus(ctx context.Context) (*infra.InstanceStatus, error)
	GetQRCode(ctx context.Context) (string, error)
}

type InstanceMonitor struct {
	gw instanceGateway

	mu        sync.Mutex
	connected bool
	qrFetches int
	lastQRAt  time.Time
}

func NewInstanceMonitor(gw instanceGateway) *InstanceMonitor {
	// Assume connected until the first poll says otherwise, so a healthy
	// startup does not log a spurious disconnect.
	return &InstanceMonitor{gw: gw, connected: true}
}

// StartInstanceMonitor launches the status poll loop. It stops when ctx is
// cancelled.
func StartInstanceMonitor(ctx context.Context, zapi *infra.ZAPIClient) *InstanceMonitor {
	m := NewInstanceMonitor(zapi)
	go m.run(ctx)
	return m
}

func (m *InstanceMonitor) run(ctx context.Context) {
	ticker := time.NewTicker(statusPollInterval)
	defer ticker.Stop()

	log.Info().Msg("whatsapp instance monitor started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("whatsapp instance monitor shutting down")
			return
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

func (m *InstanceMonitor) poll(ctx context.Context) {
	status, err := m.gw.GetStatus(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("instance_monitor: status check failed")
		return
	}
	m.observe(ctx, status.Connected, time.Now())
}

// observe records the connection state and, while disconnected, decides
// whether this tick should fetch a new pairing QR code.
func (m *InstanceMonitor) observe(ctx context.Context, connected bool, now time.Time) {
	m.mu.Lock()
	wasConnected := m.connected
	m.connected = connected
	if connected {
		m.qrFetches = 0
		m.mu.Unlock()
		if !wasConnected {
			log.Info().Msg("instance_monitor: whatsapp instance reconnected")
		}
		return
	}

	fetch := m.qrFetches < maxQRFetches && now.Sub(m.lastQRAt) >= qrRefreshInterval
	if fetch {
		m.qrFetches++
		m.lastQRAt = now
	}
	fetchNum := m.qrFetches
	m.mu.Unlock()

	if wasConnected {
		log.Warn().Msg("instance_monitor: whatsapp instance disconnected")
	}
	if !fetch {
		return
	}

	if _, err := m.gw.GetQRCode(ctx); err != nil {
		log.Warn().Err(err).Msg("instance_monitor: qr code fetch failed")
		return
	}
	log.Info().Int("fetch", fetchNum).Msg("instance_monitor: new pairing qr code available")
}

// Connected reports the last observed instance state.
func (m *InstanceMonitor) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}
