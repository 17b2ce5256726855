package repository

import (
	"context"
	"time"

	"github.com/greenbasket/pos/internal/domain"
)

// CartRepository persists the session cart between terminal requests.
type CartRepository interface {
	// Get retrieves the cart for a terminal session.
	// Returns apperrors.ErrNotFound when no cart exists.
	Get(ctx context.Context, terminalID string) (*domain.Cart, error)

	// Save stores the cart, overwriting any existing one for the session.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes the session's cart.
	Delete(ctx context.Context, terminalID string) error
}

// CheckoutGuard serializes checkout submissions per terminal session.
type CheckoutGuard interface {
	// Acquire takes the session's submission lock. Returns false when a
	// checkout for the session is already in flight.
	Acquire(ctx context.Context, terminalID string, ttl time.Duration) (bool, error)

	// Release frees the session's submission lock.
	Release(ctx context.Context, terminalID string) error
}

// TransactionFilter narrows cashbook listings.
type TransactionFilter struct {
	Type          string
	PaymentMethod string
	StartDate     *time.Time
	EndDate       *time.Time
	Limit         int
	Offset        int
}

// CashbookRepository is the store's drawer ledger.
type CashbookRepository interface {
	// Record inserts one ledger entry and fills in its generated ID.
	Record(ctx context.Context, tx *domain.Transaction) error

	// List returns matching transactions plus the unpaged total count.
	List(ctx context.Context, shopID int64, filter TransactionFilter) ([]domain.Transaction, int, error)

	// GetByID retrieves a single transaction.
	GetByID(ctx context.Context, id int64) (*domain.Transaction, error)

	// DaySummary aggregates one calendar day of drawer activity.
	DaySummary(ctx context.Context, shopID int64, day time.Time) (*domain.DaySummary, error)
}
