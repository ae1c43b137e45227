package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ZAPIClient talks to the Z-API WhatsApp gateway: sending messages and
// checking/connecting the instance.
type ZAPIClient struct {
	baseURL    string
	instanceID string
	token      string
	httpClient *http.Client
}

func NewZAPIClient(baseURL, instanceID, token string) *ZAPIClient {
	return &ZAPIClient{
		baseURL:    baseURL,
		instanceID: instanceID,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *ZAPIClient) url(path string) string {
	return fmt.Sprintf("%s/instances/%s/token/%s%s", c.baseURL, c.instanceID, c.token, path)
}

// SendText sends a plain text WhatsApp message to a phone (digits only).
func (c *ZAPIClient) SendText(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
	})
	if err != nil {
		return fmt.Errorf("zapi: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/send-text"), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("zapi: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("zapi: gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("zapi: send-text returned %d", resp.StatusCode)
	}
	return nil
}

// InstanceStatus is the connection state of the WhatsApp instance.
type InstanceStatus struct {
	Connected bool   `json:"connected"`
	Error     string `json:"error"`
}

// GetStatus queries the instance connection state.
func (c *ZAPIClient) GetStatus(ctx context.Context) (*InstanceStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/status"), nil)
	if err != nil {
		return nil, fmt.Errorf("zapi: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zapi: gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("zapi: status returned %d", resp.StatusCode)
	}

	var status InstanceStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("zapi: decode status: %w", err)
	}
	return &status, nil
}

// GetQRCode fetches the pairing QR code as a base64 image string.
func (c *ZAPIClient) GetQRCode(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/qr-code/image"), nil)
	if err != nil {
		return "", fmt.Errorf("zapi: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("zapi: gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("zapi: qr-code returned %d", resp.StatusCode)
	}

	var payload struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("zapi: decode qr-code: %w", err)
	}
	return payload.Value, nil
}
