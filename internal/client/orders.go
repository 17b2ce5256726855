package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/greenbasket/pos/internal/domain"
	"github.com/greenbasket/pos/pkg/httpclient"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.BreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// OrderClient talks to the order backend that persists sales.
type OrderClient struct {
	http    HTTPDoer
	baseURL string
	logger  *slog.Logger
}

// NewOrderClient creates a client for the order backend.
func NewOrderClient(httpClient HTTPDoer, baseURL string, logger *slog.Logger) *OrderClient {
	return &OrderClient{
		http:    httpClient,
		baseURL: baseURL,
		logger:  logger,
	}
}

// CreateOrderItem is one line of an order submission. Only the product ID
// and quantity go over the wire; the backend reprices every line itself.
type CreateOrderItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// CreateOrderRequest is the order submission payload.
type CreateOrderRequest struct {
	UserID        int64             `json:"userId"`
	ShopID        int64             `json:"shopId"`
	LocationCode  string            `json:"locationCode"`
	OrderSource   string            `json:"orderSource"`
	PaymentMethod string            `json:"paymentMethod"`
	Items         []CreateOrderItem `json:"items"`
}

type createOrderResponse struct {
	Order   domain.Order `json:"order"`
	Message string       `json:"message"`
}

// CreateOrder submits a sale to the order backend and returns the persisted
// order with backend-authoritative totals.
func (c *OrderClient) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*domain.Order, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal create order request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, httpReq)
	if err != nil {
		return nil, fmt.Errorf("call order service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, httpclient.ParseResponseError(resp, "order")
	}

	var orderResp createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&orderResp); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}

	c.logger.InfoContext(ctx, "order created",
		slog.Int64("order_id", orderResp.Order.ID),
		slog.String("total", orderResp.Order.Total.String()),
	)

	return &orderResp.Order, nil
}
