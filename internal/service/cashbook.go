package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/greenbasket/pos/internal/domain"
	"github.com/greenbasket/pos/internal/event"
	"github.com/greenbasket/pos/internal/repository"
	apperrors "github.com/greenbasket/pos/pkg/errors"
)

// CashbookService manages the store's drawer ledger.
type CashbookService struct {
	repo     repository.CashbookRepository
	producer *event.Producer
	logger   *slog.Logger
	shopID   int64
}

// NewCashbookService creates a new cashbook service.
func NewCashbookService(repo repository.CashbookRepository, producer *event.Producer, logger *slog.Logger, shopID int64) *CashbookService {
	return &CashbookService{
		repo:     repo,
		producer: producer,
		logger:   logger,
		shopID:   shopID,
	}
}

// RecordEntryInput holds the parameters for a manual drawer movement.
type RecordEntryInput struct {
	Type          string        `json:"type" validate:"required,oneof=withdraw deposit"`
	PaymentMethod string        `json:"payment_method" validate:"required,oneof=cash card"`
	Amount        *domain.Money `json:"amount" validate:"required"`
	Notes         string        `json:"notes,omitempty" validate:"max=500"`
}

// RecordEntry records a manual withdrawal or deposit. Sales and returns are
// written by their own flows, never through this entry point.
func (s *CashbookService) RecordEntry(ctx context.Context, input *RecordEntryInput) (*domain.Transaction, error) {
	if input == nil {
		return nil, apperrors.InvalidInput("cashbook input is required")
	}
	if input.Type != domain.TransactionWithdraw && input.Type != domain.TransactionDeposit {
		return nil, apperrors.InvalidInput("type must be withdraw or deposit")
	}
	if !domain.IsValidPaymentMethod(input.PaymentMethod) {
		return nil, apperrors.InvalidInput("payment method must be cash or card")
	}
	if input.Amount == nil || *input.Amount <= 0 {
		return nil, apperrors.InvalidInput("amount must be greater than 0")
	}

	now := time.Now().UTC()
	tx := &domain.Transaction{
		ShopID:          s.shopID,
		Type:            input.Type,
		PaymentMethod:   input.PaymentMethod,
		Amount:          *input.Amount,
		Notes:           input.Notes,
		TransactionDate: now,
		CreatedAt:       now,
	}

	if err := s.repo.Record(ctx, tx); err != nil {
		return nil, fmt.Errorf("record cashbook entry: %w", err)
	}

	// Publish event; log but do not fail on error.
	if err := s.producer.PublishCashbookEntry(ctx, tx); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish pos.cashbook.withdrawal event",
			slog.Int64("transaction_id", tx.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cashbook entry recorded",
		slog.Int64("transaction_id", tx.ID),
		slog.String("type", tx.Type),
		slog.String("payment_method", tx.PaymentMethod),
		slog.String("amount", tx.Amount.String()),
	)

	return tx, nil
}

// ListTransactions returns ledger entries matching the filter, newest first,
// plus the unpaged total count.
func (s *CashbookService) ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]domain.Transaction, int, error) {
	if filter.Type != "" && !domain.IsValidTransactionType(filter.Type) {
		return nil, 0, apperrors.InvalidInput("unknown transaction type: " + filter.Type)
	}
	if filter.PaymentMethod != "" && !domain.IsValidPaymentMethod(filter.PaymentMethod) {
		return nil, 0, apperrors.InvalidInput("payment method must be cash or card")
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, 0, apperrors.InvalidInput("end date must not precede start date")
	}

	transactions, total, err := s.repo.List(ctx, s.shopID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list cashbook transactions: %w", err)
	}
	return transactions, total, nil
}

// GetTransaction retrieves a single ledger entry.
func (s *CashbookService) GetTransaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	tx, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get cashbook transaction: %w", err)
	}
	return tx, nil
}

// DaySummary aggregates one calendar day of drawer activity.
func (s *CashbookService) DaySummary(ctx context.Context, day time.Time) (*domain.DaySummary, error) {
	summary, err := s.repo.DaySummary(ctx, s.shopID, day)
	if err != nil {
		return nil, fmt.Errorf("get day summary: %w", err)
	}
	return summary, nil
}
