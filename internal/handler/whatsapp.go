package handler

import (
	"net/http"

	"vendaflow/internal/apierror"
	"vendaflow/internal/dto"
	"vendaflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type WhatsAppHandler struct {
	svc          service.WhatsAppService
	webhookToken string
}

func NewWhatsAppHandler(svc service.WhatsAppService, webhookToken string) *WhatsAppHandler {
	return &WhatsAppHandler{svc: svc, webhookToken: webhookToken}
}

// Webhook godoc
// @Summary      Webhook de mensagens Z-API
// @Description  Recebe mensagens do gateway. Autenticado por token de cabeçalho, não por JWT. Sempre responde 200 para evitar reentrega.
// @Tags         whatsapp
// @Accept       json
// @Param        X-Webhook-Token header string true "Token compartilhado com o gateway"
// @Success      200
// @Failure      401 {object} apierror.APIError
// @Router       /webhooks/whatsapp [post]
func (h *WhatsAppHandler) Webhook(c *gin.Context) {
	if h.webhookToken != "" && c.GetHeader("X-Webhook-Token") != h.webhookToken {
		c.JSON(http.StatusUnauthorized, apierror.New("token inválido"))
		return
	}

	var msg dto.WebhookMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		// Non-text callbacks (status, presence) arrive here too; just ack.
		c.Status(http.StatusOK)
		return
	}

	if err := h.svc.ProcessInbound(c.Request.Context(), msg); err != nil {
		// The gateway retries on non-2xx; our failures are logged, not returned.
		log.Error().Err(err).Str("message_id", msg.MessageID).Msg("webhook: failed to process inbound message")
	}
	c.Status(http.StatusOK)
}

// InstanceStatus godoc
// @Summary      Status da instância WhatsApp
// @Tags         whatsapp
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.InstanceStatusResponse
// @Router       /v1/whatsapp/status [get]
func (h *WhatsAppHandler) InstanceStatus(c *gin.Context) {
	resp, err := h.svc.InstanceStatus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, apierror.New("Gateway WhatsApp indisponível"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// QRCode godoc
// @Summary      QR code de pareamento
// @Tags         whatsapp
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.QRCodeResponse
// @Router       /v1/whatsapp/qr-code [get]
func (h *WhatsAppHandler) QRCode(c *gin.Context) {
	resp, err := h.svc.QRCode(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, apierror.New("Gateway WhatsApp indisponível"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
