package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendaflow/internal/infra"
)

type fakeGateway struct {
	connected bool
	statusErr error
	qrErr     error
	qrCalls   int
}

func (f *fakeGateway) GetStatus(context.Context) (*infra.InstanceStatus, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &infra.InstanceStatus{Connected: f.connected}, nil
}

func (f *fakeGateway) GetQRCode(context.Context) (string, error) {
	f.qrCalls++
	if f.qrErr != nil {
		return "", f.qrErr
	}
	return "qr-data", nil
}

func TestInstanceMonitorFetchesQRWhileDisconnected(t *testing.T) {
	gw := &fakeGateway{}
	m := NewInstanceMonitor(gw)
	ctx := context.Background()
	base := time.Now()

	// First disconnected observation fetches a QR code right away.
	m.observe(ctx, false, base)
	assert.Equal(t, 1, gw.qrCalls)
	assert.False(t, m.Connected())

	// Polls inside the refresh window do not fetch again.
	m.observe(ctx, false, base.Add(statusPollInterval))
	m.observe(ctx, false, base.Add(2*statusPollInterval))
	assert.Equal(t, 1, gw.qrCalls)

	// A stale code is refreshed after the refresh interval elapses.
	m.observe(ctx, false, base.Add(qrRefreshInterval))
	assert.Equal(t, 2, gw.qrCalls)
	m.observe(ctx, false, base.Add(2*qrRefreshInterval))
	assert.Equal(t, 3, gw.qrCalls)
}

func TestInstanceMonitorCapsQRFetchesPerOutage(t *testing.T) {
	gw := &fakeGateway{}
	m := NewInstanceMonitor(gw)
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < maxQRFetches+3; i++ {
		m.observe(ctx, false, base.Add(time.Duration(i)*qrRefreshInterval))
	}
	assert.Equal(t, maxQRFetches, gw.qrCalls, "the operator gets a bounded number of codes per outage")

	// A reconnect resets the budget for the next outage.
	m.observe(ctx, true, base.Add(10*qrRefreshInterval))
	assert.True(t, m.Connected())
	m.observe(ctx, false, base.Add(11*qrRefreshInterval))
	assert.Equal(t, maxQRFetches+1, gw.qrCalls)
}

func TestInstanceMonitorStopsOnContextCancel(t *testing.T) {
	gw := &fakeGateway{connected: true}
	m := NewInstanceMonitor(gw)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop after context cancel")
	}
}

func TestDeadJobKeepsOriginalPayload(t *testing.T) {
	payload, err := json.Marshal(WhatsAppJobPayload{Phone: "5511987654321", Message: "olá"})
	require.NoError(t, err)

	dead := DeadJob{
		Queue:    QueueWhatsApp,
		Type:     "whatsapp_send",
		Payload:  payload,
		Reason:   errors.New("gateway indisponível").Error(),
		Attempts: maxSendAttempts,
		FailedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(dead)
	require.NoError(t, err)

	var back DeadJob
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, QueueWhatsApp, back.Queue)
	assert.Equal(t, maxSendAttempts, back.Attempts)

	var msg WhatsAppJobPayload
	require.NoError(t, json.Unmarshal(back.Payload, &msg))
	assert.Equal(t, "5511987654321", msg.Phone)
	assert.Equal(t, "olá", msg.Message)
}
