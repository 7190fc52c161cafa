// Package payment bridges the booking state machine to the external
// payment gateway: an HTTP client for the provider's API and a bounded
// poller reconciling transaction status with local state.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/figoaljufrie/roomstay/internal/domain"
	"github.com/figoaljufrie/roomstay/internal/service/ports"
)

type HTTPGateway struct {
	baseURL   string
	serverKey string
	client    *http.Client
}

func NewHTTPGateway(baseURL, serverKey string) *HTTPGateway {
	return &HTTPGateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		serverKey: serverKey,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *HTTPGateway) CreateTransaction(ctx context.Context, b *domain.Booking) (*ports.GatewayTransaction, error) {
	body := map[string]any{
		"order_id":     b.BookingNo,
		"gross_amount": int64(b.TotalAmount),
		"expiry_at":    b.PaymentDeadline.Format(time.RFC3339),
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal transaction: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v2/charge", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(g.serverKey, "")
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: create transaction: %s", domain.ErrGatewayUnavailable, resp.Status)
	}

	var out struct {
		TransactionID string `json:"transaction_id"`
		RedirectURL   string `json:"redirect_url"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	if out.TransactionID == "" {
		return nil, errors.New("gateway: empty transaction id")
	}

	return &ports.GatewayTransaction{Ref: out.TransactionID, PaymentURL: out.RedirectURL}, nil
}

func (g *HTTPGateway) QueryStatus(ctx context.Context, ref string) (ports.GatewayStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v2/"+ref+"/status", nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(g.serverKey, "")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: query status: %s", domain.ErrGatewayUnavailable, resp.Status)
	}

	var out struct {
		TransactionStatus string `json:"transaction_status"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode status: %w", err)
	}

	return ports.GatewayStatus(strings.ToLower(out.TransactionStatus)), nil
}
