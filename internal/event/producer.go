package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/greenbasket/pos/internal/domain"
	pkgkafka "github.com/greenbasket/pos/pkg/kafka"
	"github.com/greenbasket/pos/pkg/logger"
)

// Kafka topic constants for till domain events.
const (
	TopicCartUpdated        = "pos.cart.updated"
	TopicSaleCompleted      = "pos.sale.completed"
	TopicCashbookWithdrawal = "pos.cashbook.withdrawal"
)

// Aggregate type constants.
const (
	AggregateTypeCart     = "cart"
	AggregateTypeSale     = "sale"
	AggregateTypeCashbook = "cashbook"
)

// Source identifier for events originating from this service.
const SourcePOSService = "pos-service"

// CartUpdatedData is the payload for a pos.cart.updated event.
type CartUpdatedData struct {
	CartID      string       `json:"cart_id"`
	TerminalID  string       `json:"terminal_id"`
	TotalItems  int          `json:"total_items"`
	TotalAmount domain.Money `json:"total_amount"`
	LineCount   int          `json:"line_count"`
}

// SaleCompletedData is the payload for a pos.sale.completed event.
type SaleCompletedData struct {
	OrderID       int64        `json:"order_id"`
	TerminalID    string       `json:"terminal_id"`
	ShopID        int64        `json:"shop_id"`
	Total         domain.Money `json:"total"`
	PaymentMethod string       `json:"payment_method"`
	ItemCount     int          `json:"item_count"`
}

// CashbookEntryData is the payload for a pos.cashbook.withdrawal event.
// Deposits share the topic; the type field disambiguates.
type CashbookEntryData struct {
	TransactionID int64        `json:"transaction_id"`
	ShopID        int64        `json:"shop_id"`
	Type          string       `json:"type"`
	PaymentMethod string       `json:"payment_method"`
	Amount        domain.Money `json:"amount"`
	Notes         string       `json:"notes,omitempty"`
}

// Producer publishes till domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the POS service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a pos.cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	data := CartUpdatedData{
		CartID:      cart.ID,
		TerminalID:  cart.TerminalID,
		TotalItems:  cart.TotalItems,
		TotalAmount: cart.TotalAmount,
		LineCount:   len(cart.Items),
	}

	event, err := pkgkafka.NewEvent(TopicCartUpdated, cart.TerminalID, AggregateTypeCart, SourcePOSService, data)
	if err != nil {
		return fmt.Errorf("create pos.cart.updated event: %w", err)
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicCartUpdated, event); err != nil {
		return fmt.Errorf("publish pos.cart.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published pos.cart.updated event",
		slog.String("cart_id", cart.ID),
		slog.String("terminal_id", cart.TerminalID),
	)

	return nil
}

// PublishSaleCompleted publishes a pos.sale.completed event.
func (p *Producer) PublishSaleCompleted(ctx context.Context, terminalID string, order *domain.Order) error {
	data := SaleCompletedData{
		OrderID:       order.ID,
		TerminalID:    terminalID,
		ShopID:        order.ShopID,
		Total:         order.Total,
		PaymentMethod: order.PaymentMethod,
		ItemCount:     len(order.Items),
	}

	event, err := pkgkafka.NewEvent(TopicSaleCompleted, fmt.Sprintf("%d", order.ID), AggregateTypeSale, SourcePOSService, data)
	if err != nil {
		return fmt.Errorf("create pos.sale.completed event: %w", err)
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicSaleCompleted, event); err != nil {
		return fmt.Errorf("publish pos.sale.completed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published pos.sale.completed event",
		slog.Int64("order_id", order.ID),
		slog.String("terminal_id", terminalID),
	)

	return nil
}

// PublishCashbookEntry publishes a pos.cashbook.withdrawal event for manual
// drawer movements.
func (p *Producer) PublishCashbookEntry(ctx context.Context, tx *domain.Transaction) error {
	data := CashbookEntryData{
		TransactionID: tx.ID,
		ShopID:        tx.ShopID,
		Type:          tx.Type,
		PaymentMethod: tx.PaymentMethod,
		Amount:        tx.Amount,
		Notes:         tx.Notes,
	}

	event, err := pkgkafka.NewEvent(TopicCashbookWithdrawal, fmt.Sprintf("%d", tx.ID), AggregateTypeCashbook, SourcePOSService, data)
	if err != nil {
		return fmt.Errorf("create pos.cashbook.withdrawal event: %w", err)
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicCashbookWithdrawal, event); err != nil {
		return fmt.Errorf("publish pos.cashbook.withdrawal event: %w", err)
	}

	p.logger.DebugContext(ctx, "published pos.cashbook.withdrawal event",
		slog.Int64("transaction_id", tx.ID),
		slog.String("type", tx.Type),
	)

	return nil
}
