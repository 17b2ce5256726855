package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbasket/pos/internal/domain"
	apperrors "github.com/greenbasket/pos/pkg/errors"
	"github.com/greenbasket/pos/pkg/httpclient"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestHTTPClient keeps retry backoff out of the test run.
func newTestHTTPClient() *httpclient.Client {
	return httpclient.New(httpclient.Config{
		Timeout:         2 * time.Second,
		MaxRetries:      0,
		RetryWaitMin:    time.Millisecond,
		RetryWaitMax:    time.Millisecond,
		MaxConnsPerHost: 10,
	})
}

func TestOrderClient_CreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/orders", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(5), req.UserID)
		assert.Equal(t, "pos", req.OrderSource)
		require.Len(t, req.Items, 1)
		assert.Equal(t, int64(12), req.Items[0].ProductID)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"order": {
				"id": 42,
				"userId": 5,
				"shopId": 1,
				"total": "19.50",
				"status": "completed",
				"paymentMethod": "cash",
				"orderItems": [
					{"id": 1, "productId": 12, "quantity": 3, "priceAtOrderTime": "6.50", "subtotal": "19.50", "product": {"id": 12, "name": "Milk"}}
				]
			},
			"message": "order created"
		}`))
	}))
	defer srv.Close()

	c := NewOrderClient(newTestHTTPClient(), srv.URL, newTestLogger())

	order, err := c.CreateOrder(context.Background(), &CreateOrderRequest{
		UserID:        5,
		ShopID:        1,
		LocationCode:  "main",
		OrderSource:   "pos",
		PaymentMethod: "cash",
		Items:         []CreateOrderItem{{ProductID: 12, Quantity: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), order.ID)
	assert.Equal(t, domain.Money(1950), order.Total)
	require.Len(t, order.Items, 1)
	assert.Equal(t, domain.Money(650), order.Items[0].PriceAtOrderTime)
	assert.Equal(t, "Milk", order.Items[0].Product.Name)
}

func TestOrderClient_CreateOrder_DownstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"INVALID_INPUT","message":"product 12 is out of stock"}}`))
	}))
	defer srv.Close()

	c := NewOrderClient(newTestHTTPClient(), srv.URL, newTestLogger())

	_, err := c.CreateOrder(context.Background(), &CreateOrderRequest{
		Items: []CreateOrderItem{{ProductID: 12, Quantity: 3}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "out of stock")
}

func TestOrderClient_CreateOrder_Unreachable(t *testing.T) {
	c := NewOrderClient(newTestHTTPClient(), "http://127.0.0.1:1", newTestLogger())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := c.CreateOrder(ctx, &CreateOrderRequest{
		Items: []CreateOrderItem{{ProductID: 1, Quantity: 1}},
	})
	require.Error(t, err)
}

func TestOrderClient_CreateOrder_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"order": {"id": 7, "total": "1.00"}, "message": "order created"}`))
	}))
	defer srv.Close()

	retrying := httpclient.New(httpclient.Config{
		Timeout:         2 * time.Second,
		MaxRetries:      2,
		RetryWaitMin:    time.Millisecond,
		RetryWaitMax:    time.Millisecond,
		MaxConnsPerHost: 10,
	})
	c := NewOrderClient(retrying, srv.URL, newTestLogger())

	order, err := c.CreateOrder(context.Background(), &CreateOrderRequest{
		Items: []CreateOrderItem{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), order.ID)
	assert.Equal(t, int64(2), calls.Load())
}
