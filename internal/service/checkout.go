package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/greenbasket/pos/internal/client"
	"github.com/greenbasket/pos/internal/domain"
	"github.com/greenbasket/pos/internal/event"
	"github.com/greenbasket/pos/internal/repository"
	apperrors "github.com/greenbasket/pos/pkg/errors"
)

// submissionTTL bounds how long a checkout holds the session's submission
// lock before it is considered abandoned.
const submissionTTL = 2 * time.Minute

// StoreIdentity pins the till to its store account on the order backend.
type StoreIdentity struct {
	UserID       int64
	ShopID       int64
	LocationCode string
}

// CheckoutService submits the session cart to the order backend as a sale.
type CheckoutService struct {
	carts    repository.CartRepository
	guard    repository.CheckoutGuard
	cashbook repository.CashbookRepository
	orders   *client.OrderClient
	producer *event.Producer
	logger   *slog.Logger
	identity StoreIdentity
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	carts repository.CartRepository,
	guard repository.CheckoutGuard,
	cashbook repository.CashbookRepository,
	orders *client.OrderClient,
	producer *event.Producer,
	logger *slog.Logger,
	identity StoreIdentity,
) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		guard:    guard,
		cashbook: cashbook,
		orders:   orders,
		producer: producer,
		logger:   logger,
		identity: identity,
	}
}

// CheckoutInput holds the parameters for submitting a sale.
type CheckoutInput struct {
	PaymentMethod  string        `json:"payment_method" validate:"required,oneof=cash card"`
	ReceivedAmount *domain.Money `json:"received_amount,omitempty"`
}

// Checkout validates the session cart, submits it to the order backend, and
// clears the cart on success. The cart is left untouched when submission
// fails, so the cashier can retry. Submissions for one terminal are
// serialized: a second checkout while one is in flight is rejected.
func (s *CheckoutService) Checkout(ctx context.Context, terminalID string, input *CheckoutInput) (*domain.CompletedSale, error) {
	if terminalID == "" {
		return nil, apperrors.InvalidInput("terminal id is required")
	}
	if input == nil {
		return nil, apperrors.InvalidInput("checkout input is required")
	}
	if !domain.IsValidPaymentMethod(input.PaymentMethod) {
		return nil, apperrors.InvalidInput("payment method must be cash or card")
	}

	cart, err := s.carts.Get(ctx, terminalID)
	if err != nil {
		return nil, fmt.Errorf("get cart for checkout: %w", err)
	}
	if cart.IsEmpty() {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	// Cash preconditions are checked against the locally tracked total
	// before anything goes over the wire.
	if input.PaymentMethod == domain.PaymentCash {
		if input.ReceivedAmount == nil {
			return nil, apperrors.InvalidInput("received amount is required for cash payments")
		}
		if *input.ReceivedAmount < cart.TotalAmount {
			return nil, apperrors.InsufficientTender(fmt.Sprintf(
				"received %s does not cover cart total %s",
				input.ReceivedAmount.String(), cart.TotalAmount.String(),
			))
		}
	}

	acquired, err := s.guard.Acquire(ctx, terminalID, submissionTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire checkout lock: %w", err)
	}
	if !acquired {
		return nil, apperrors.CheckoutInProgress()
	}
	defer func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), terminalID); err != nil {
			s.logger.ErrorContext(ctx, "failed to release checkout lock",
				slog.String("terminal_id", terminalID),
				slog.String("error", err.Error()),
			)
		}
	}()

	req := &client.CreateOrderRequest{
		UserID:        s.identity.UserID,
		ShopID:        s.identity.ShopID,
		LocationCode:  s.identity.LocationCode,
		OrderSource:   "pos",
		PaymentMethod: input.PaymentMethod,
		Items:         make([]client.CreateOrderItem, len(cart.Items)),
	}
	for i, line := range cart.Items {
		req.Items[i] = client.CreateOrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		}
	}

	order, err := s.orders.CreateOrder(ctx, req)
	if err != nil {
		// Cart stays as-is so the sale can be retried.
		return nil, fmt.Errorf("submit order: %w", err)
	}

	sale := &domain.CompletedSale{Order: *order}

	// Change is computed against the backend's total, which is
	// authoritative and may differ from the cart's local amount.
	if input.PaymentMethod == domain.PaymentCash {
		sale.CashDetails = &domain.CashDetails{
			ReceivedAmount: *input.ReceivedAmount,
			Change:         *input.ReceivedAmount - order.Total,
		}
	}

	if err := s.carts.Delete(ctx, terminalID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after checkout",
			slog.String("terminal_id", terminalID),
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	// Record the sale in the drawer ledger; log but do not fail on error,
	// the order is already persisted.
	now := time.Now().UTC()
	ledger := &domain.Transaction{
		ShopID:          order.ShopID,
		OrderID:         &order.ID,
		Type:            domain.TransactionSale,
		PaymentMethod:   input.PaymentMethod,
		Amount:          order.Total,
		TransactionDate: now,
		CreatedAt:       now,
	}
	if err := s.cashbook.Record(ctx, ledger); err != nil {
		s.logger.ErrorContext(ctx, "failed to record sale in cashbook",
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	// Publish event; log but do not fail on error.
	if err := s.producer.PublishSaleCompleted(ctx, terminalID, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish pos.sale.completed event",
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "checkout completed",
		slog.String("terminal_id", terminalID),
		slog.Int64("order_id", order.ID),
		slog.String("total", order.Total.String()),
		slog.String("payment_method", input.PaymentMethod),
	)

	return sale, nil
}
