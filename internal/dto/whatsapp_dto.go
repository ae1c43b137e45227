package dto

// ─── Webhook payload ─────────────────────────────────────────────────────────

// WebhookMessage is the Z-API message-received callback. Only text messages
// are processed; everything else is acknowledged and dropped.
type WebhookMessage struct {
	InstanceID string `json:"instanceId"`
	MessageID  string `json:"messageId"`
	Phone      string `json:"phone"`
	FromMe     bool   `json:"fromMe"`
	SenderName string `json:"senderName"`
	Moment     int64  `json:"momment"` // Z-API spells it this way
	Text       struct {
		Message string `json:"message"`
	} `json:"text"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type InstanceStatusResponse struct {
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

type QRCodeResponse struct {
	Value string `json:"value"` // base64 image
}
