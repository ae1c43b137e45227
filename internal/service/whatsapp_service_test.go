package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendaflow/internal/dto"
)

func TestParseAssistantActionPlainJSON(t *testing.T) {
	action, err := parseAssistantAction(`{"action":"create_lead","reply":"Cadastrado!","lead":{"name":"João","phone":"11987654321"}}`)
	require.NoError(t, err)
	assert.Equal(t, "create_lead", action.Action)
	assert.Equal(t, "Cadastrado!", action.Reply)
	assert.Equal(t, "João", action.Lead.Name)
	assert.Equal(t, "11987654321", action.Lead.Phone)
}

func TestParseAssistantActionStripsCodeFences(t *testing.T) {
	fenced := "```json\n{\"action\":\"search_lead\",\"query\":\"maria\"}\n```"
	action, err := parseAssistantAction(fenced)
	require.NoError(t, err)
	assert.Equal(t, "search_lead", action.Action)
	assert.Equal(t, "maria", action.Query)

	// Fence without a language tag.
	action, err = parseAssistantAction("```\n{\"action\":\"help\",\"reply\":\"Oi\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "help", action.Action)
}

func TestParseAssistantActionRejectsGarbage(t *testing.T) {
	_, err := parseAssistantAction("desculpe, não entendi")
	require.Error(t, err)

	_, err = parseAssistantAction(`{"reply":"sem ação"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing action")
}

func TestProcessInboundIgnoresEchoesAndUnknownSenders(t *testing.T) {
	userRepo := newStubUserRepo()
	svc := NewWhatsAppService(userRepo, newStubLeadRepo(), nil, nil, nil, nil, nil, nil)

	// Our own outbound messages echo back through the webhook.
	msg := dto.WebhookMessage{Phone: "5511987654321", FromMe: true}
	msg.Text.Message = "olá"
	require.NoError(t, svc.ProcessInbound(context.Background(), msg))

	// Unknown numbers are dropped silently — the assistant is staff-only.
	msg.FromMe = false
	require.NoError(t, svc.ProcessInbound(context.Background(), msg))

	// Empty text (stickers, audio) is acknowledged and dropped.
	msg.Text.Message = "   "
	require.NoError(t, svc.ProcessInbound(context.Background(), msg))
}
